package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionItemPayload is the flat wire form of a line item. It carries
// every variant's fields as optional values; the transaction's declared type
// decides which of them are read when converting back to the sum type.
type TransactionItemPayload struct {
	// CC2GOLD
	CcAmount  *decimal.Decimal `json:"ccAmount,omitempty"`
	GoldPerCC *float64         `json:"goldPerCC,omitempty"`
	GoldPaid  *float64         `json:"goldPaid,omitempty"`

	// GOLD2PHP
	Name            *string  `json:"name,omitempty"`
	PhpPaid         *float64 `json:"phpPaid,omitempty"`
	GoldPerPhp      *float64 `json:"goldPerPhp,omitempty"`
	MethodOfPayment *string  `json:"methodOfPayment,omitempty"`

	// ITEM2GOLD
	ItemName        *string  `json:"itemName,omitempty"`
	ItemQuantity    *int64   `json:"itemQuantity,omitempty"`
	ItemPriceInGold *float64 `json:"itemPriceInGold,omitempty"`
}

// ToItem converts the payload into the concrete item of the given type.
// Absent fields become zero values; validation catches those afterwards.
func (p TransactionItemPayload) ToItem(t TransactionType) (TransactionItem, error) {
	switch t {
	case TypeCcToGold:
		return CcToGoldItem{
			CcAmount:  derefDecimal(p.CcAmount),
			GoldPerCC: derefFloat(p.GoldPerCC),
			GoldPaid:  derefFloat(p.GoldPaid),
		}, nil
	case TypeGoldToPhp:
		return GoldToPhpItem{
			Name:            derefString(p.Name),
			PhpPaid:         derefFloat(p.PhpPaid),
			GoldPerPhp:      derefFloat(p.GoldPerPhp),
			MethodOfPayment: derefString(p.MethodOfPayment),
		}, nil
	case TypeItemToGold:
		return ItemToGoldItem{
			ItemName:        derefString(p.ItemName),
			ItemQuantity:    derefInt(p.ItemQuantity),
			ItemPriceInGold: derefFloat(p.ItemPriceInGold),
		}, nil
	case "":
		return nil, ErrMissingTransactionType
	default:
		return nil, ErrUnknownTransactionType
	}
}

// PayloadFromItem flattens a concrete item back into its wire form.
func PayloadFromItem(item TransactionItem) TransactionItemPayload {
	switch it := item.(type) {
	case CcToGoldItem:
		return TransactionItemPayload{
			CcAmount:  &it.CcAmount,
			GoldPerCC: &it.GoldPerCC,
			GoldPaid:  &it.GoldPaid,
		}
	case GoldToPhpItem:
		return TransactionItemPayload{
			Name:            &it.Name,
			PhpPaid:         &it.PhpPaid,
			GoldPerPhp:      &it.GoldPerPhp,
			MethodOfPayment: &it.MethodOfPayment,
		}
	case ItemToGoldItem:
		return TransactionItemPayload{
			ItemName:        &it.ItemName,
			ItemQuantity:    &it.ItemQuantity,
			ItemPriceInGold: &it.ItemPriceInGold,
		}
	default:
		return TransactionItemPayload{}
	}
}

// MarshalItems serializes a line-item list for JSONB storage.
func MarshalItems(items []TransactionItem) ([]byte, error) {
	payloads := make([]TransactionItemPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, PayloadFromItem(item))
	}
	return json.Marshal(payloads)
}

// UnmarshalItems deserializes a stored line-item list, re-entering the
// type-gated conversion so an unknown type never yields silent zero items.
func UnmarshalItems(t TransactionType, data []byte) ([]TransactionItem, error) {
	var payloads []TransactionItemPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, fmt.Errorf("unmarshal transaction items: %w", err)
	}
	items := make([]TransactionItem, 0, len(payloads))
	for _, p := range payloads {
		item, err := p.ToItem(t)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Decimal{}
	}
	return *d
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefInt(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
