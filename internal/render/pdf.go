package render

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/ridwanfathin/invoice-service/internal/domain"
)

const dateLayout = "2006-01-02"

// PDFRenderer lays out an invoice as a single PDF document
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF bytes for an invoice using only its stored, derived amounts
func (r *PDFRenderer) Render(invoice *domain.Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, errors.New("invoice is required")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(8, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, string(invoice.Status), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	dueDate := "-"
	if invoice.DueDate != nil {
		dueDate = invoice.DueDate.Format(dateLayout)
	}
	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+invoice.InvoiceDate.Format(dateLayout), props.Text{Top: 4}),
			text.New("Date due: "+dueDate, props.Text{Top: 8}),
			text.New("Payment terms: "+invoice.PaymentTerms, props.Text{Top: 12}),
		),
		col.New(6),
	)

	m.AddRow(35,
		partyCol("From", invoice.BillFrom),
		col.New(2),
		partyCol("Bill to", invoice.BillTo),
	)

	m.AddRow(10,
		text.NewCol(5, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Tax", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range invoice.Items {
		m.AddRow(8,
			text.NewCol(5, item.Description, props.Text{Size: 9}),
			text.NewCol(1, strconv.FormatFloat(item.Quantity, 'f', -1, 64), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, strconv.FormatFloat(item.TaxPercent, 'f', -1, 64)+"%", props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.Total), props.Text{Size: 9, Align: align.Right}),
		)
	}

	totalRow(m, "Subtotal", invoice.Subtotal, false)
	totalRow(m, "Tax", invoice.TaxTotal, false)
	totalRow(m, "Total", invoice.Total, true)

	if invoice.Notes != "" {
		m.AddRow(20,
			col.New(12).Add(
				text.New("Notes", props.Text{Style: fontstyle.Bold, Size: 9, Top: 5}),
				text.New(invoice.Notes, props.Text{Size: 9, Top: 10}),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func partyCol(title string, p domain.Party) core.Col {
	c := col.New(5).Add(
		text.New(title, props.Text{Style: fontstyle.Bold}),
		text.New(p.Name, props.Text{Top: 5}),
	)
	top := 10.0
	for _, line := range []string{p.Address, p.Email, p.Phone} {
		if line == "" {
			continue
		}
		c.Add(text.New(line, props.Text{Top: top, Size: 9}))
		top += 5
	}
	return c
}

func totalRow(m core.Maroto, label string, amount float64, bold bool) {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, label, props.Text{Size: 9, Style: style}),
		text.NewCol(2, money(amount), props.Text{Size: 9, Style: style, Align: align.Right}),
	)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
