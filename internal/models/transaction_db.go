package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionDB represents a transaction row in the database. Line items and
// file attachments are stored as JSONB documents alongside the envelope
// columns; the creator's username is joined in from the accounts table.
type TransactionDB struct {
	TransactionID   string    `db:"transaction_id"`   // Primary key
	Username        string    `db:"username"`         // Actor label, free text
	CreatorID       uuid.UUID `db:"creator_id"`       // Owning account
	CreatorUsername string    `db:"creator_username"` // Joined from accounts
	DateFinished    time.Time `db:"date_finished"`    // Completion timestamp
	Reversed        bool      `db:"reversed"`         // Reversal flag
	Type            string    `db:"type"`             // Variant discriminant
	Items           []byte    `db:"items"`            // JSONB line items
	FileAttachments []byte    `db:"file_attachments"` // JSONB attachment pairs
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ToTransaction rebuilds the domain transaction from the stored row.
func (r *TransactionDB) ToTransaction() (*Transaction, error) {
	txType, err := ParseTransactionType(r.Type)
	if err != nil {
		return nil, err
	}

	items, err := UnmarshalItems(txType, r.Items)
	if err != nil {
		return nil, err
	}

	var attachments []FileAttachment
	if len(r.FileAttachments) > 0 {
		if err := json.Unmarshal(r.FileAttachments, &attachments); err != nil {
			return nil, err
		}
	}

	return &Transaction{
		ID:              r.TransactionID,
		Username:        r.Username,
		Creator:         Account{AccountID: r.CreatorID, Username: r.CreatorUsername},
		DateFinished:    r.DateFinished,
		FileAttachments: attachments,
		Reversed:        r.Reversed,
		Type:            txType,
		Items:           items,
	}, nil
}
