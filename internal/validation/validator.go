// Package validation checks catalog and ledger snapshots before they are
// persisted, using the validator/v10 struct tags on the entities.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookstore-assistant/internal/entities"
)

// Error lists every violated rule, keyed by "<collection>[<index>].<field>".
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator wraps go-playground/validator with snapshot-level checks.
type Validator struct {
	v *validator.Validate
}

// New creates a validator reporting JSON field names.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" || name == "-" {
			return fld.Name
		}
		if i := strings.IndexByte(name, ','); i >= 0 {
			return name[:i]
		}
		return name
	})

	return &Validator{v: v}
}

// Catalog validates every item and that no two items share an ISBN.
func (v *Validator) Catalog(items []entities.CatalogItem) error {
	fields := make(map[string]string)
	seen := make(map[string]int, len(items))

	for i, item := range items {
		v.collect(fields, fmt.Sprintf("catalog[%d]", i), item)
		if item.Price.IsNegative() {
			fields[fmt.Sprintf("catalog[%d].price", i)] = "must not be negative"
		}
		if item.ISBN == "" {
			continue
		}
		if first, dup := seen[item.ISBN]; dup {
			fields[fmt.Sprintf("catalog[%d].isbn", i)] = fmt.Sprintf("duplicates catalog[%d]", first)
			continue
		}
		seen[item.ISBN] = i
	}

	if len(fields) > 0 {
		return &Error{Fields: fields}
	}
	return nil
}

// Ledger validates every entry and that dates are unique.
func (v *Validator) Ledger(entries []entities.DailySalesEntry) error {
	fields := make(map[string]string)
	seen := make(map[string]int, len(entries))

	for i, e := range entries {
		v.collect(fields, fmt.Sprintf("daily_sales[%d]", i), e)
		if first, dup := seen[e.Date]; dup {
			fields[fmt.Sprintf("daily_sales[%d].date", i)] = fmt.Sprintf("duplicates daily_sales[%d]", first)
			continue
		}
		seen[e.Date] = i
	}

	if len(fields) > 0 {
		return &Error{Fields: fields}
	}
	return nil
}

func (v *Validator) collect(fields map[string]string, prefix string, s any) {
	err := v.v.Struct(s)
	if err == nil {
		return
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		fields[prefix] = err.Error()
		return
	}
	for _, e := range validationErrs {
		fields[prefix+"."+e.Field()] = friendlyMessage(e)
	}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "numeric":
		return "must contain digits only"
	case "datetime":
		return "must be a date formatted as " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
