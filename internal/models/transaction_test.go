package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	for _, txType := range TransactionTypes {
		parsed, err := ParseTransactionType(string(txType))
		require.NoError(t, err)
		assert.Equal(t, txType, parsed)
	}

	_, err := ParseTransactionType("")
	assert.ErrorIs(t, err, ErrMissingTransactionType)

	_, err = ParseTransactionType("GOLD2USD")
	assert.ErrorIs(t, err, ErrUnknownTransactionType)

	// codes are case sensitive
	_, err = ParseTransactionType("cc2gold")
	assert.ErrorIs(t, err, ErrUnknownTransactionType)
}

func TestPayloadToItem(t *testing.T) {
	ccAmount := decimal.RequireFromString("1.5")
	goldPerCC := 450.0
	goldPaid := 675.0
	name := "Juan"
	phpPaid := 500.0
	goldPerPhp := 30.0
	method := "GCash"
	itemName := "Sword"
	itemQty := int64(3)
	itemPrice := 12.5

	tests := []struct {
		name    string
		payload TransactionItemPayload
		txType  TransactionType
		want    TransactionItem
	}{
		{
			name:    "cc2gold",
			payload: TransactionItemPayload{CcAmount: &ccAmount, GoldPerCC: &goldPerCC, GoldPaid: &goldPaid},
			txType:  TypeCcToGold,
			want:    CcToGoldItem{CcAmount: ccAmount, GoldPerCC: goldPerCC, GoldPaid: goldPaid},
		},
		{
			name:    "gold2php",
			payload: TransactionItemPayload{Name: &name, PhpPaid: &phpPaid, GoldPerPhp: &goldPerPhp, MethodOfPayment: &method},
			txType:  TypeGoldToPhp,
			want:    GoldToPhpItem{Name: name, PhpPaid: phpPaid, GoldPerPhp: goldPerPhp, MethodOfPayment: method},
		},
		{
			name:    "item2gold",
			payload: TransactionItemPayload{ItemName: &itemName, ItemQuantity: &itemQty, ItemPriceInGold: &itemPrice},
			txType:  TypeItemToGold,
			want:    ItemToGoldItem{ItemName: itemName, ItemQuantity: itemQty, ItemPriceInGold: itemPrice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := tt.payload.ToItem(tt.txType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, item)
			assert.Equal(t, tt.txType, item.ItemType())
		})
	}
}

func TestPayloadToItem_UnknownType(t *testing.T) {
	_, err := TransactionItemPayload{}.ToItem("")
	assert.ErrorIs(t, err, ErrMissingTransactionType)

	_, err = TransactionItemPayload{}.ToItem("GOLD2USD")
	assert.ErrorIs(t, err, ErrUnknownTransactionType)
}

func TestPayloadToItem_IgnoresForeignFields(t *testing.T) {
	// fields of the other variants are dropped, not mixed in
	name := "Juan"
	itemQty := int64(3)
	payload := TransactionItemPayload{Name: &name, ItemQuantity: &itemQty}

	item, err := payload.ToItem(TypeCcToGold)
	require.NoError(t, err)
	assert.Equal(t, CcToGoldItem{}, item)
}

func TestMarshalUnmarshalItems(t *testing.T) {
	items := []TransactionItem{
		ItemToGoldItem{ItemName: "Sword", ItemQuantity: 3, ItemPriceInGold: 12.5},
		ItemToGoldItem{ItemName: "Shield", ItemQuantity: 1, ItemPriceInGold: 40},
	}

	data, err := MarshalItems(items)
	require.NoError(t, err)

	restored, err := UnmarshalItems(TypeItemToGold, data)
	require.NoError(t, err)
	assert.Equal(t, items, restored)

	// the stored payload cannot be read back under a foreign type with
	// silently zeroed fields producing a valid-looking item of that type
	crossRead, err := UnmarshalItems(TypeGoldToPhp, data)
	require.NoError(t, err)
	for _, item := range crossRead {
		assert.Equal(t, TypeGoldToPhp, item.ItemType())
	}
}

func TestTransactionUpdate(t *testing.T) {
	creator := Account{Username: "glenneligio"}
	original := &Transaction{
		ID:           "tx-1",
		Username:     "before",
		Creator:      creator,
		DateFinished: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Reversed:     false,
		Type:         TypeGoldToPhp,
		Items: []TransactionItem{
			GoldToPhpItem{Name: "Juan", PhpPaid: 500, GoldPerPhp: 30, MethodOfPayment: "GCash"},
		},
	}

	src := &Transaction{
		ID:           "tx-ignored",
		Username:     "after",
		Creator:      Account{Username: "someone_else"},
		DateFinished: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Reversed:     true,
		Type:         TypeCcToGold,
		FileAttachments: []FileAttachment{
			{FileName: "proof.png", FileUrl: "https://files.example.com/proof.png"},
		},
		Items: []TransactionItem{
			GoldToPhpItem{Name: "Pedro", PhpPaid: 700, GoldPerPhp: 35, MethodOfPayment: "Bank"},
		},
	}

	original.Update(src)

	assert.Equal(t, "tx-1", original.ID)
	assert.Equal(t, "after", original.Username)
	assert.Equal(t, creator, original.Creator, "creator must never change on update")
	assert.Equal(t, TypeGoldToPhp, original.Type, "type must never change on update")
	assert.Equal(t, src.DateFinished, original.DateFinished)
	assert.True(t, original.Reversed)
	assert.Equal(t, src.FileAttachments, original.FileAttachments)
	assert.Equal(t, src.Items, original.Items)
}
