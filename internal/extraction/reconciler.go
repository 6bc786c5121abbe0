package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ridwanfathin/invoice-service/internal/clock"
	"github.com/ridwanfathin/invoice-service/internal/domain"
)

// DefaultClientName is used when the extraction names no recipient
const DefaultClientName = "Client"

// DefaultDueIn is the gap between the invoice date and the due date of a reconciled draft
const DefaultDueIn = 30 * 24 * time.Hour

// NumberSource issues fresh invoice numbers
type NumberSource interface {
	Next() string
}

// Config tunes the defaults applied to reconciled drafts
type Config struct {
	DueIn        time.Duration
	PaymentTerms string
}

// Reconciler maps untrusted extractor output into a typed invoice draft
type Reconciler struct {
	clock   clock.Clock
	numbers NumberSource
	config  Config
}

// NewReconciler creates a reconciler. Zero config values fall back to the defaults.
func NewReconciler(c clock.Clock, numbers NumberSource, cfg Config) *Reconciler {
	if cfg.DueIn <= 0 {
		cfg.DueIn = DefaultDueIn
	}
	if cfg.PaymentTerms == "" {
		cfg.PaymentTerms = domain.DefaultPaymentTerms
	}
	return &Reconciler{clock: c, numbers: numbers, config: cfg}
}

// Decode parses raw extractor output. Anything that is not a JSON object is an ExtractionError.
func Decode(raw []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &domain.ExtractionError{Reason: "output is not valid JSON", Err: err}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &domain.ExtractionError{Reason: "output is not a JSON object"}
	}
	return obj, nil
}

// ReconcileJSON decodes and reconciles in one step
func (r *Reconciler) ReconcileJSON(raw []byte) (*domain.Draft, error) {
	obj, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return r.Reconcile(obj)
}

// Reconcile validates the payload field by field. The invoice number and the dates
// are always generated here and never taken from the payload. Item totals from the
// payload are ignored; they are derived again when the draft is priced.
func (r *Reconciler) Reconcile(raw map[string]any) (*domain.Draft, error) {
	rawItems, ok := raw["items"]
	if !ok || rawItems == nil {
		return nil, &domain.ExtractionError{Field: "items", Reason: "missing"}
	}
	list, ok := rawItems.([]any)
	if !ok {
		return nil, &domain.ExtractionError{Field: "items", Reason: "not a list"}
	}
	if len(list) == 0 {
		return nil, &domain.ExtractionError{Field: "items", Reason: "empty"}
	}

	inputs := make([]domain.ItemInput, 0, len(list))
	for idx, entry := range list {
		item, err := reconcileItem(idx, entry)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, item)
	}

	billTo, err := reconcileParty(raw["billTo"])
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	return &domain.Draft{
		InvoiceNumber: r.numbers.Next(),
		InvoiceDate:   domain.DateFromTime(now),
		DueDate:       domain.DateFromTime(now.Add(r.config.DueIn)),
		BillTo:        billTo,
		Items:         inputs,
		Notes:         stringField(raw, "notes"),
		PaymentTerms:  r.config.PaymentTerms,
	}, nil
}

func reconcileItem(idx int, entry any) (domain.ItemInput, error) {
	field := fmt.Sprintf("items[%d]", idx)

	obj, ok := entry.(map[string]any)
	if !ok {
		return domain.ItemInput{}, &domain.ExtractionError{Field: field, Reason: "not an object"}
	}

	description := stringField(obj, "description")
	if description == "" {
		description = stringField(obj, "name")
	}
	if description == "" {
		return domain.ItemInput{}, &domain.ExtractionError{Field: field + ".description", Reason: "missing"}
	}

	quantity, err := requiredNumber(obj, field, "quantity")
	if err != nil {
		return domain.ItemInput{}, err
	}
	unitPrice, err := requiredNumber(obj, field, "unitPrice")
	if err != nil {
		return domain.ItemInput{}, err
	}

	taxPercent, present, err := numberField(obj, "taxPercent")
	if !present || err != nil {
		taxPercent = 0
	}

	return domain.ItemInput{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxPercent:  taxPercent,
	}, nil
}

func reconcileParty(v any) (domain.Party, error) {
	if v == nil {
		return domain.Party{Name: DefaultClientName}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.Party{}, &domain.ExtractionError{Field: "billTo", Reason: "not an object"}
	}

	name := stringField(obj, "businessName")
	if name == "" {
		name = stringField(obj, "name")
	}
	if name == "" {
		name = DefaultClientName
	}

	return domain.Party{
		Name:    name,
		Email:   stringField(obj, "email"),
		Address: stringField(obj, "address"),
		Phone:   stringField(obj, "phone"),
	}, nil
}

func requiredNumber(obj map[string]any, prefix, key string) (float64, error) {
	v, present, err := numberField(obj, key)
	if !present {
		return 0, &domain.ExtractionError{Field: prefix + "." + key, Reason: "missing"}
	}
	if err != nil {
		return 0, &domain.ExtractionError{Field: prefix + "." + key, Reason: "not a number", Err: err}
	}
	return v, nil
}

// numberField reads a JSON number or a numeric string. present is false for absent or null values.
func numberField(obj map[string]any, key string) (value float64, present bool, err error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, false, nil
	}

	switch x := v.(type) {
	case float64:
		value = x
	case json.Number:
		value, err = x.Float64()
	case string:
		value, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		err = fmt.Errorf("unexpected type %T", v)
	}
	if err != nil {
		return 0, true, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, true, fmt.Errorf("not a finite number")
	}
	return value, true, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}
