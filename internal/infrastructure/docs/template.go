// Package docs renders stored invoices into printable PDF documents.
package docs

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
)

type invoiceLine struct {
	Description string
	Amount      int
	UnitPrice   string
	Vat         string
	LineTotal   string
}

type invoiceView struct {
	Reference   string
	Addressee   string
	Debtor      string
	Description string
	Credit      bool
	State       string
	CreatedAt   string
	Lines       []invoiceLine
	Total       string
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Reference}}</title>
<style>
  body { font-family: sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 20px; margin-bottom: 0; }
  .meta { margin: 12px 0 24px 0; color: #555; }
  .credit { color: #8a6d00; font-weight: bold; }
  table { width: 100%; border-collapse: collapse; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; }
  td.num, th.num { text-align: right; }
  tfoot td { font-weight: bold; border-top: 2px solid #222; border-bottom: none; }
</style>
</head>
<body>
<h1>{{if .Credit}}Credit invoice{{else}}Invoice{{end}} {{.Reference}}</h1>
<div class="meta">
  <div>To: {{.Addressee}} ({{.Debtor}})</div>
  {{if .Description}}<div>{{.Description}}</div>{{end}}
  <div>Date: {{.CreatedAt}} &mdash; Status: {{.State}}</div>
  {{if .Credit}}<div class="credit">Payout per selling party</div>{{end}}
</div>
<table>
<thead>
<tr><th>Description</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">VAT</th><th class="num">Total</th></tr>
</thead>
<tbody>
{{range .Lines}}<tr><td>{{.Description}}</td><td class="num">{{.Amount}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Vat}}</td><td class="num">{{.LineTotal}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="4">Total</td><td class="num">{{.Total}}</td></tr>
</tfoot>
</table>
</body>
</html>
`))

// moneyFormatter localizes amounts with grouping separators.
type moneyFormatter struct {
	printer *message.Printer
}

func newMoneyFormatter(tag language.Tag) *moneyFormatter {
	return &moneyFormatter{printer: message.NewPrinter(tag)}
}

func (f *moneyFormatter) format(m valueobject.Money) string {
	dec := number.Decimal(
		m.Decimal().InexactFloat64(),
		number.MinFractionDigits(int(m.Precision())),
		number.MaxFractionDigits(int(m.Precision())),
	)
	return f.printer.Sprintf("%v %s", dec, string(m.Currency()))
}

func buildInvoiceHTML(invoice *settlement.Invoice, debtor *identity.User, tag language.Tag) (string, error) {
	fmtr := newMoneyFormatter(tag)

	lines := make([]invoiceLine, len(invoice.Entries))
	for i, entry := range invoice.Entries {
		lines[i] = invoiceLine{
			Description: entry.Description,
			Amount:      entry.Amount,
			UnitPrice:   fmtr.format(entry.PriceInclVat),
			Vat:         entry.VatPercentage.StringFixed(1) + "%",
			LineTotal:   fmtr.format(entry.LineTotal()),
		}
	}

	view := invoiceView{
		Reference:   invoice.Reference,
		Addressee:   invoice.Addressee,
		Debtor:      debtor.FullName(),
		Description: invoice.Description,
		Credit:      invoice.Credit,
		State:       string(invoice.CurrentState),
		CreatedAt:   invoice.CreatedAt.Format(time.DateOnly),
		Lines:       lines,
		Total:       fmtr.format(invoice.Total),
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("executing invoice template: %w", err)
	}
	return buf.String(), nil
}
