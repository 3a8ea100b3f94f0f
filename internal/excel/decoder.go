package excel

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/GlennEligio/dn-tx/internal/logger"
	"github.com/GlennEligio/dn-tx/internal/models"
)

// ErrMalformedWorkbook wraps every decode failure: an unreadable file, a
// missing type sheet, an unparsable cell, or a transaction id reappearing
// under another type. The whole decode aborts; no partial batch is returned.
var ErrMalformedWorkbook = errors.New("malformed transactions workbook")

// Decode is the inverse of Encode. Rows belonging to the same transaction id
// are coalesced into one transaction, collecting one item per row; the
// attachment tail is read once per transaction, from the first row carrying
// it. Result order is not significant.
func Decode(r io.Reader) ([]models.Transaction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		logger.Log.Errorw("failed to open workbook", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedWorkbook, err)
	}
	defer f.Close()

	acc := make(map[string]*models.Transaction)
	var order []string

	for _, txType := range models.TransactionTypes {
		rows, err := f.GetRows(string(txType))
		if err != nil {
			return nil, fmt.Errorf("%w: missing sheet %s", ErrMalformedWorkbook, txType)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: sheet %s has no header row", ErrMalformedWorkbook, txType)
		}

		// Columns are located by header text, not position, so the
		// variable-width attachment tail never shifts the lookup.
		index := headerIndex(rows[0])
		fixed := len(sheetColumns(txType))

		for ri, row := range rows[1:] {
			if err := decodeRow(txType, index, fixed, row, acc, &order); err != nil {
				return nil, fmt.Errorf("%w: sheet %s row %d: %v", ErrMalformedWorkbook, txType, ri+2, err)
			}
		}
	}

	out := make([]models.Transaction, 0, len(order))
	for _, id := range order {
		out = append(out, *acc[id])
	}
	return out, nil
}

func decodeRow(
	txType models.TransactionType,
	index map[string]int,
	fixed int,
	row []string,
	acc map[string]*models.Transaction,
	order *[]string,
) error {
	cell := func(name string) string {
		ci, ok := index[name]
		if !ok || ci >= len(row) {
			return ""
		}
		return row[ci]
	}

	id := cell(colTransactionID)
	if id == "" {
		return errors.New("missing transaction id")
	}

	tx, ok := acc[id]
	if !ok {
		shell, err := decodeEnvelope(txType, cell)
		if err != nil {
			return err
		}
		shell.ID = id
		acc[id] = shell
		*order = append(*order, id)
		tx = shell
	} else if tx.Type != txType {
		// Ids are assumed globally unique across sheets; an id reappearing
		// under another type would silently overwrite the first transaction.
		return fmt.Errorf("transaction id %s already seen in sheet %s", id, tx.Type)
	}

	item, err := decodeItem(txType, cell)
	if err != nil {
		return err
	}
	tx.Items = append(tx.Items, item)

	if len(tx.FileAttachments) == 0 {
		attachments, err := decodeAttachments(row, fixed)
		if err != nil {
			return err
		}
		tx.FileAttachments = attachments
	}
	return nil
}

func decodeEnvelope(txType models.TransactionType, cell func(string) string) (*models.Transaction, error) {
	dateFinished, err := time.Parse(time.RFC3339Nano, cell(colDateFinished))
	if err != nil {
		return nil, fmt.Errorf("unparsable date finished: %v", err)
	}

	reversed, err := strconv.ParseBool(strings.ToLower(cell(colIsReversed)))
	if err != nil {
		return nil, fmt.Errorf("unparsable reversed flag: %v", err)
	}

	declared, err := models.ParseTransactionType(cell(colType))
	if err != nil {
		return nil, err
	}
	if declared != txType {
		return nil, fmt.Errorf("type column %s does not match sheet %s", declared, txType)
	}

	return &models.Transaction{
		Username: cell(colUsername),
		// Only the username survives encoding; the creator account is
		// re-resolved canonically before anything is persisted.
		Creator:      models.Account{Username: cell(colCreatorUsername)},
		DateFinished: dateFinished,
		Reversed:     reversed,
		Type:         txType,
	}, nil
}

func decodeItem(txType models.TransactionType, cell func(string) string) (models.TransactionItem, error) {
	switch txType {
	case models.TypeCcToGold:
		ccAmount, err := decimal.NewFromString(cell(colCcAmount))
		if err != nil {
			return nil, fmt.Errorf("unparsable cc amount: %v", err)
		}
		goldPerCC, err := parseFloatCell(cell(colGoldPerCC), colGoldPerCC)
		if err != nil {
			return nil, err
		}
		goldPaid, err := parseFloatCell(cell(colGoldPaid), colGoldPaid)
		if err != nil {
			return nil, err
		}
		return models.CcToGoldItem{CcAmount: ccAmount, GoldPerCC: goldPerCC, GoldPaid: goldPaid}, nil

	case models.TypeGoldToPhp:
		phpPaid, err := parseFloatCell(cell(colPhpPaid), colPhpPaid)
		if err != nil {
			return nil, err
		}
		goldPerPhp, err := parseFloatCell(cell(colGoldPerPhp), colGoldPerPhp)
		if err != nil {
			return nil, err
		}
		return models.GoldToPhpItem{
			Name:            cell(colName),
			PhpPaid:         phpPaid,
			GoldPerPhp:      goldPerPhp,
			MethodOfPayment: cell(colMethodOfPayment),
		}, nil

	case models.TypeItemToGold:
		quantity, err := strconv.ParseInt(cell(colItemQuantity), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unparsable item quantity: %v", err)
		}
		price, err := parseFloatCell(cell(colItemPriceInGold), colItemPriceInGold)
		if err != nil {
			return nil, err
		}
		return models.ItemToGoldItem{
			ItemName:        cell(colItemName),
			ItemQuantity:    quantity,
			ItemPriceInGold: price,
		}, nil
	}
	return nil, models.ErrUnknownTransactionType
}

func parseFloatCell(value, column string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable %s: %v", strings.ToLower(column), err)
	}
	return f, nil
}

// decodeAttachments reads (fileName, fileUrl) pairs from the end of the
// fixed column set to the row's last populated cell.
func decodeAttachments(row []string, fixed int) ([]models.FileAttachment, error) {
	if len(row) <= fixed {
		return nil, nil
	}
	if (len(row)-fixed)%2 != 0 {
		return nil, errors.New("attachment columns are not paired")
	}

	var attachments []models.FileAttachment
	for ci := fixed; ci < len(row); ci += 2 {
		attachments = append(attachments, models.FileAttachment{
			FileName: row[ci],
			FileUrl:  row[ci+1],
		})
	}
	return attachments, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for ci, name := range header {
		index[name] = ci
	}
	return index
}
