package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the discriminant of the closed transaction-kind set.
type TransactionType string

// Canonical transaction type codes, also used as workbook sheet names.
const (
	TypeCcToGold   TransactionType = "CC2GOLD"
	TypeGoldToPhp  TransactionType = "GOLD2PHP"
	TypeItemToGold TransactionType = "ITEM2GOLD"
)

// TransactionTypes lists every supported type in fixed sheet order.
var TransactionTypes = []TransactionType{TypeCcToGold, TypeGoldToPhp, TypeItemToGold}

var (
	ErrMissingTransactionType = errors.New("transaction type must be present")
	ErrUnknownTransactionType = errors.New("unknown transaction type")
)

// ParseTransactionType resolves a canonical code into a TransactionType.
// A missing or unrecognized code is rejected; this is the only gate through
// which untrusted type tags enter the system.
func ParseTransactionType(code string) (TransactionType, error) {
	if code == "" {
		return "", ErrMissingTransactionType
	}
	for _, t := range TransactionTypes {
		if string(t) == code {
			return t, nil
		}
	}
	return "", ErrUnknownTransactionType
}

// TransactionItem is the closed sum of per-variant line-item payloads.
// Concrete types are CcToGoldItem, GoldToPhpItem and ItemToGoldItem.
type TransactionItem interface {
	ItemType() TransactionType
}

// CcToGoldItem is a line item of a CC2GOLD exchange.
// CcAmount keeps arbitrary precision and must not be folded into a float.
type CcToGoldItem struct {
	CcAmount  decimal.Decimal `json:"ccAmount" validate:"required,dgt"`
	GoldPerCC float64         `json:"goldPerCC" validate:"required,gt=0"`
	GoldPaid  float64         `json:"goldPaid" validate:"required,gt=0"`
}

func (CcToGoldItem) ItemType() TransactionType { return TypeCcToGold }

// GoldToPhpItem is a line item of a GOLD2PHP exchange.
type GoldToPhpItem struct {
	Name            string  `json:"name" validate:"required"`
	PhpPaid         float64 `json:"phpPaid" validate:"required,gt=0"`
	GoldPerPhp      float64 `json:"goldPerPhp" validate:"required,gt=0"`
	MethodOfPayment string  `json:"methodOfPayment" validate:"required"`
}

func (GoldToPhpItem) ItemType() TransactionType { return TypeGoldToPhp }

// ItemToGoldItem is a line item of an ITEM2GOLD exchange.
type ItemToGoldItem struct {
	ItemName        string  `json:"itemName" validate:"required"`
	ItemQuantity    int64   `json:"itemQuantity" validate:"required,gt=0"`
	ItemPriceInGold float64 `json:"itemPriceInGold" validate:"required,gt=0"`
}

func (ItemToGoldItem) ItemType() TransactionType { return TypeItemToGold }

// FileAttachment is a named link owned entirely by one transaction.
type FileAttachment struct {
	FileName string `json:"fileName" validate:"required"`
	FileUrl  string `json:"fileUrl" validate:"required"`
}

// Transaction is the envelope shared by every variant. Type is immutable
// after creation and every item must belong to it.
type Transaction struct {
	ID              string            `json:"id"`
	Username        string            `json:"username"`
	Creator         Account           `json:"-"`
	DateFinished    time.Time         `json:"dateFinished"`
	FileAttachments []FileAttachment  `json:"fileAttachments"`
	Reversed        bool              `json:"reversed"`
	Type            TransactionType   `json:"type"`
	Items           []TransactionItem `json:"transactionItems"`
}

// Update replaces the mutable envelope fields and the item list from src.
// Type and Creator are never touched.
func (t *Transaction) Update(src *Transaction) {
	t.Username = src.Username
	t.DateFinished = src.DateFinished
	t.FileAttachments = src.FileAttachments
	t.Reversed = src.Reversed
	t.Items = src.Items
}
