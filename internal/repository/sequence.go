package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Display id sequences. Created by infra.NewDatabase.
const (
	SeqSales          = "sales_display_seq"
	SeqServices       = "services_display_seq"
	SeqServiceEntries = "service_entries_display_seq"
	SeqOrders         = "orders_display_seq"
)

// NextDisplayID draws the next value of seq inside tx and formats it as
// PREFIX-YYYYMMDD-NNNNN. The sequence is global, so numbers never repeat
// even across days.
func NextDisplayID(tx *gorm.DB, seq, prefix string, now time.Time) (string, error) {
	var n int64
	if err := tx.Raw("SELECT nextval(?::regclass)", seq).Scan(&n).Error; err != nil {
		return "", err
	}
	return FormatDisplayID(prefix, now, n), nil
}

// FormatDisplayID pads n to five digits; larger values widen the id rather
// than wrap.
func FormatDisplayID(prefix string, now time.Time, n int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, now.Format("20060102"), n)
}
