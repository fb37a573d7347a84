package dto

// ReceiptResponse reports the delivery state of a receipt.
type ReceiptResponse struct {
	ID          string  `json:"id"`
	SourceType  string  `json:"source_type"`
	SourceID    string  `json:"source_id"`
	DisplayID   string  `json:"display_id"`
	Status      string  `json:"status"` // pending | generated | sent | error
	Email       *string `json:"email"`
	RetryCount  int     `json:"retry_count"`
	NextRetryAt *string `json:"next_retry_at"`
	LastError   *string `json:"last_error"`
}

// ResendReceiptRequest re-queues receipt generation, optionally to a new address.
type ResendReceiptRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
}
