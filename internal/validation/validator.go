package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/GlennEligio/dn-tx/internal/models"
)

// Violation is a single field-level constraint failure.
type Violation struct {
	Field   string `json:"field"`   // Path of the offending field, e.g. transactionItems[1].goldPaid
	Message string `json:"message"` // Human-readable constraint message
}

// Violations is the full set of constraint failures for one transaction.
// It is never truncated to the first failure.
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, 0, len(v))
	for _, violation := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", violation.Field, violation.Message))
	}
	return "invalid transaction: " + strings.Join(msgs, "; ")
}

// Validator checks transactions against envelope and per-variant constraints.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the decimal type adapter and json field names
// registered.
func New() *Validator {
	v := validator.New()

	// validator has no native understanding of decimal.Decimal; dgt checks
	// positivity without rounding the value through a float.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("dgt", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return false
		}
		return d.IsPositive()
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{validate: v}
}

// ValidateTransaction runs every envelope and variant constraint against tx
// and returns the collected Violations, or nil when the transaction is valid.
// Violations are accumulated across all items, not short-circuited.
func (val *Validator) ValidateTransaction(tx *models.Transaction) error {
	var violations Violations

	if strings.TrimSpace(tx.Username) == "" {
		violations = append(violations, Violation{Field: "username", Message: "must not be blank"})
	}
	if strings.TrimSpace(tx.Creator.Username) == "" {
		violations = append(violations, Violation{Field: "creator", Message: "must not be null"})
	}
	if !tx.DateFinished.IsZero() && tx.DateFinished.After(time.Now()) {
		violations = append(violations, Violation{Field: "dateFinished", Message: "must be in the past or present"})
	}
	if _, err := models.ParseTransactionType(string(tx.Type)); err != nil {
		violations = append(violations, Violation{Field: "type", Message: err.Error()})
	}
	if len(tx.Items) == 0 {
		violations = append(violations, Violation{Field: "transactionItems", Message: "must not be empty"})
	}

	for i, item := range tx.Items {
		path := fmt.Sprintf("transactionItems[%d]", i)
		if item.ItemType() != tx.Type {
			violations = append(violations, Violation{
				Field:   path,
				Message: fmt.Sprintf("item type %s does not match transaction type %s", item.ItemType(), tx.Type),
			})
			continue
		}
		violations = append(violations, val.structViolations(path, item)...)
	}

	for i, attachment := range tx.FileAttachments {
		path := fmt.Sprintf("fileAttachments[%d]", i)
		violations = append(violations, val.structViolations(path, attachment)...)
	}

	if len(violations) > 0 {
		return violations
	}
	return nil
}

func (val *Validator) structViolations(path string, s interface{}) Violations {
	err := val.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Violations{{Field: path, Message: err.Error()}}
	}

	out := make(Violations, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{
			Field:   path + "." + fe.Field(),
			Message: constraintMessage(fe),
		})
	}
	return out
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "gt", "dgt":
		return "must be positive"
	default:
		return fmt.Sprintf("failed constraint %q", fe.Tag())
	}
}
