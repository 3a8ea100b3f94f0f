package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/GlennEligio/dn-tx/internal/jwt"
	"github.com/GlennEligio/dn-tx/internal/models"
)

// TransactionTokener defines the token methods used by transaction handlers.
type TransactionTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// TransactionRequest represents the JSON body for creating or updating a transaction
// swagger:model TransactionRequest
type TransactionRequest struct {
	// Actor label, free text
	// required: true
	// default: mamamamika21
	Username string `json:"username"`

	// Completion timestamp, RFC3339; defaults to now on create
	DateFinished *time.Time `json:"dateFinished,omitempty"`

	// Attached proof files
	FileAttachments []models.FileAttachment `json:"fileAttachments,omitempty"`

	// Reversal flag
	Reversed bool `json:"reversed"`

	// Transaction type code
	// required: true
	// default: CC2GOLD
	Type string `json:"type"`

	// Line items, interpreted per the declared type
	// required: true
	TransactionItems []models.TransactionItemPayload `json:"transactionItems"`
}

// toTransaction converts the request into a domain transaction. The declared
// type gates every line item; a missing or unknown type fails here.
func (req TransactionRequest) toTransaction() (*models.Transaction, error) {
	txType, err := models.ParseTransactionType(req.Type)
	if err != nil {
		return nil, err
	}

	items := make([]models.TransactionItem, 0, len(req.TransactionItems))
	for _, p := range req.TransactionItems {
		item, err := p.ToItem(txType)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	tx := &models.Transaction{
		Username:        req.Username,
		FileAttachments: req.FileAttachments,
		Reversed:        req.Reversed,
		Type:            txType,
		Items:           items,
	}
	if req.DateFinished != nil {
		tx.DateFinished = *req.DateFinished
	}
	return tx, nil
}

// TransactionResponse represents a transaction in JSON responses
// swagger:model TransactionResponse
type TransactionResponse struct {
	// Transaction identifier
	ID string `json:"id"`

	// Actor label, free text
	Username string `json:"username"`

	// Username of the owning account
	CreatorUsername string `json:"creatorUsername"`

	// Completion timestamp
	DateFinished time.Time `json:"dateFinished"`

	// Attached proof files
	FileAttachments []models.FileAttachment `json:"fileAttachments"`

	// Reversal flag
	Reversed bool `json:"reversed"`

	// Transaction type code
	Type string `json:"type"`

	// Line items
	TransactionItems []models.TransactionItemPayload `json:"transactionItems"`
}

func newTransactionResponse(tx *models.Transaction) TransactionResponse {
	items := make([]models.TransactionItemPayload, 0, len(tx.Items))
	for _, item := range tx.Items {
		items = append(items, models.PayloadFromItem(item))
	}

	attachments := tx.FileAttachments
	if attachments == nil {
		attachments = []models.FileAttachment{}
	}

	return TransactionResponse{
		ID:               tx.ID,
		Username:         tx.Username,
		CreatorUsername:  tx.Creator.Username,
		DateFinished:     tx.DateFinished,
		FileAttachments:  attachments,
		Reversed:         tx.Reversed,
		Type:             string(tx.Type),
		TransactionItems: items,
	}
}

func newTransactionResponses(txs []models.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		responses = append(responses, newTransactionResponse(&txs[i]))
	}
	return responses
}
