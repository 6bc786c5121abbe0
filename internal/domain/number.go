package domain

import (
	"strconv"
	"sync"

	"github.com/ridwanfathin/invoice-service/internal/clock"
)

// InvoiceNumberPrefix starts every generated invoice number
const InvoiceNumberPrefix = "INV-"

// NumberGenerator issues invoice numbers of the form INV-<unix millis>.
// Numbers are strictly increasing within a process even when the clock stalls.
type NumberGenerator struct {
	clock clock.Clock
	mu    sync.Mutex
	last  int64
}

// NewNumberGenerator creates a generator reading time from c
func NewNumberGenerator(c clock.Clock) *NumberGenerator {
	return &NumberGenerator{clock: c}
}

// Next returns a fresh invoice number
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.clock.Now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return InvoiceNumberPrefix + strconv.FormatInt(ms, 10)
}
