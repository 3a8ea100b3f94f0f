package models

// Transaction audit event actions.
const (
	EventTransactionCreated = "created"
	EventTransactionUpdated = "updated"
	EventTransactionDeleted = "deleted"
)

// TransactionEvent is published to the audit topic whenever a transaction
// is written or removed.
type TransactionEvent struct {
	EventID         string `json:"event_id"`         // Unique event identifier
	Action          string `json:"action"`           // created, updated or deleted
	TransactionID   string `json:"transaction_id"`   // Affected transaction
	Type            string `json:"type"`             // Transaction type code
	CreatorUsername string `json:"creator_username"` // Owning account's username
	Timestamp       int64  `json:"timestamp"`        // Unix timestamp of the event
}
