package domain

import "strings"

// Status is the payment state of an invoice
type Status string

const (
	StatusUnpaid Status = "Unpaid"
	StatusPaid   Status = "Paid"
)

// ParseStatus accepts either status in any letter case
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unpaid":
		return StatusUnpaid, nil
	case "paid":
		return StatusPaid, nil
	default:
		return "", NewValidationError("status", "must be one of Unpaid, Paid")
	}
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusUnpaid || s == StatusPaid
}
