// Package realtime fans committed writes out to open back-office screens.
// Writers publish a small change notice on a redis channel; every API
// instance relays the channel to its Server-Sent Events clients, which then
// re-fetch whatever they are showing.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Channel is the redis pub/sub channel carrying change notices.
const Channel = "cellkom:changes"

// Actions.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event announces that a row changed. Clients treat it as an invalidation
// hint and never as the source of truth.
type Event struct {
	Table  string    `json:"table"`
	Action string    `json:"action"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Bus publishes and subscribes through redis.
type Bus struct {
	rdb *redis.Client
}

func NewBus(rdb *redis.Client) *Bus { return &Bus{rdb: rdb} }

func (b *Bus) Publish(ctx context.Context, events ...Event) error {
	for _, ev := range events {
		if ev.At.IsZero() {
			ev.At = time.Now().UTC()
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if err := b.rdb.Publish(ctx, Channel, data).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe streams events until ctx is done. The returned channel is
// closed when the subscription ends.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := b.rdb.Subscribe(ctx, Channel)
	// Wait for the subscription confirmation so a dead redis fails here.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Warn().Err(err).Msg("realtime: dropping malformed event")
					continue
				}
				select {
				case out <- ev:
				default:
					// slow client: drop, it will re-fetch on the next event
				}
			}
		}
	}()
	return out, nil
}

// Notify publishes events and logs a failure instead of returning it.
// Writes have already committed when this runs.
func Notify(ctx context.Context, p Publisher, events ...Event) {
	if p == nil || len(events) == 0 {
		return
	}
	if err := p.Publish(ctx, events...); err != nil {
		log.Warn().Err(err).Int("events", len(events)).Msg("realtime: publish failed")
	}
}

// Changed is shorthand for building an Event.
func Changed(table, action, id string) Event {
	return Event{Table: table, Action: action, ID: id}
}
