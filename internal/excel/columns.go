// Package excel maps transaction collections to and from a multi-sheet XLSX
// workbook: one sheet per transaction type, one row per line item, with file
// attachment pairs appended after the fixed columns.
package excel

import "github.com/GlennEligio/dn-tx/internal/models"

// Base column headers shared by every sheet.
const (
	colTransactionID   = "Transaction id"
	colUsername        = "Username"
	colCreatorUsername = "Creator Username"
	colDateFinished    = "Date finished"
	colIsReversed      = "Is Reversed"
	colType            = "Type"
)

// Variant column headers.
const (
	colCcAmount        = "CC Amount"
	colGoldPerCC       = "Gold per CC"
	colGoldPaid        = "Gold paid"
	colName            = "Name"
	colPhpPaid         = "Php paid"
	colGoldPerPhp      = "Gold per php"
	colMethodOfPayment = "Method of payment"
	colItemName        = "Item name"
	colItemQuantity    = "Item quantity"
	colItemPriceInGold = "Item price in gold"
)

var baseColumns = []string{
	colTransactionID, colUsername, colCreatorUsername,
	colDateFinished, colIsReversed, colType,
}

var variantColumns = map[models.TransactionType][]string{
	models.TypeCcToGold:   {colCcAmount, colGoldPerCC, colGoldPaid},
	models.TypeGoldToPhp:  {colName, colPhpPaid, colGoldPerPhp, colMethodOfPayment},
	models.TypeItemToGold: {colItemName, colItemQuantity, colItemPriceInGold},
}

// sheetColumns returns the fixed column headers of a sheet, base columns
// first. Attachment pairs follow these and carry no stable headers.
func sheetColumns(t models.TransactionType) []string {
	cols := make([]string, 0, len(baseColumns)+len(variantColumns[t]))
	cols = append(cols, baseColumns...)
	cols = append(cols, variantColumns[t]...)
	return cols
}
