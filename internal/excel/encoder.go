package excel

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
)

// ErrEncodeWorkbook wraps I/O faults while materializing the workbook bytes.
var ErrEncodeWorkbook = errors.New("failed to write transactions workbook")

// Encode projects transactions into an XLSX workbook with one sheet per
// transaction type, in fixed type order. Every sheet gets a header row even
// when no transaction of its type is present. A transaction with N items
// produces N rows, each repeating the envelope fields and the full
// attachment tail; a transaction without items is skipped entirely.
func Encode(transactions []models.Transaction) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, txType := range models.TransactionTypes {
		sheet := string(txType)
		if i == 0 {
			// Rename the default sheet so the workbook holds exactly the
			// three type sheets.
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEncodeWorkbook, err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEncodeWorkbook, err)
			}
		}

		if err := encodeSheet(f, sheet, txType, transactions); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Log.Errorw("failed to materialize workbook", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrEncodeWorkbook, err)
	}
	return buf, nil
}

func encodeSheet(f *excelize.File, sheet string, txType models.TransactionType, transactions []models.Transaction) error {
	cols := sheetColumns(txType)
	for ci, name := range cols {
		if err := setCell(f, sheet, ci, 1, name); err != nil {
			return err
		}
	}

	row := 2
	for _, tx := range transactions {
		if tx.Type != txType || len(tx.Items) == 0 {
			continue
		}

		for _, item := range tx.Items {
			cells := map[string]interface{}{
				colTransactionID:   tx.ID,
				colUsername:        tx.Username,
				colCreatorUsername: tx.Creator.Username,
				colDateFinished:    tx.DateFinished.Format(time.RFC3339Nano),
				colIsReversed:      tx.Reversed,
				colType:            string(tx.Type),
			}

			switch it := item.(type) {
			case models.CcToGoldItem:
				// The exact decimal string keeps ccAmount lossless; a float
				// cell would round it.
				cells[colCcAmount] = it.CcAmount.String()
				cells[colGoldPerCC] = it.GoldPerCC
				cells[colGoldPaid] = it.GoldPaid
			case models.GoldToPhpItem:
				cells[colName] = it.Name
				cells[colPhpPaid] = it.PhpPaid
				cells[colGoldPerPhp] = it.GoldPerPhp
				cells[colMethodOfPayment] = it.MethodOfPayment
			case models.ItemToGoldItem:
				cells[colItemName] = it.ItemName
				cells[colItemQuantity] = it.ItemQuantity
				cells[colItemPriceInGold] = it.ItemPriceInGold
			}

			for ci, name := range cols {
				if v, ok := cells[name]; ok {
					if err := setCell(f, sheet, ci, row, v); err != nil {
						return err
					}
				}
			}

			// Attachments are transaction-level but repeated on every row,
			// since rows are the unit of storage.
			ci := len(cols)
			for _, att := range tx.FileAttachments {
				if err := setCell(f, sheet, ci, row, att.FileName); err != nil {
					return err
				}
				if err := setCell(f, sheet, ci+1, row, att.FileUrl); err != nil {
					return err
				}
				ci += 2
			}

			row++
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeWorkbook, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeWorkbook, err)
	}
	return nil
}
