// Package invoice renders payment receipts.
package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	paymentapp "github.com/pharmacy/backend/internal/application/payment"
	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const receiptTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Receipt {{ .OrderID }}</title></head>
<body>
<h1>Payment receipt</h1>
<p>Order {{ .OrderID }}<br>Paid {{ formatDateTime .PaidAt }}</p>
<table>
<tr><th>Product</th><th>Qty</th><th>Unit price</th><th>Total</th></tr>
{{ range .Lines }}<tr><td>{{ .Name }}</td><td>{{ .Quantity }}</td><td>{{ formatMoney .UnitPrice }}</td><td>{{ formatMoney .Total }}</td></tr>
{{ end }}</table>
<p><strong>Total: {{ formatMoney .Total }}</strong></p>
</body>
</html>
`

type receiptLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

type receiptData struct {
	OrderID string
	PaidAt  time.Time
	Lines   []receiptLine
	Total   decimal.Decimal
}

// HTMLRenderer renders receipts from an embedded HTML template, resolving
// line names through the catalog.
type HTMLRenderer struct {
	products catalog.ProductRepository
	tmpl     *template.Template
}

var _ paymentapp.InvoiceRenderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer creates a receipt renderer
func NewHTMLRenderer(products catalog.ProductRepository) *HTMLRenderer {
	funcMap := template.FuncMap{
		"formatMoney": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}
	return &HTMLRenderer{
		products: products,
		tmpl:     template.Must(template.New("receipt").Funcs(funcMap).Parse(receiptTemplate)),
	}
}

// Render produces the receipt document and its content type
func (r *HTMLRenderer) Render(ctx context.Context, o *order.Order) ([]byte, string, error) {
	paidAt := o.CreatedAt
	if o.PaidAt != nil {
		paidAt = *o.PaidAt
	}

	data := receiptData{
		OrderID: o.ID.String(),
		PaidAt:  paidAt,
		Total:   o.TotalAmount,
	}
	for i := range o.Items {
		item := &o.Items[i]
		name := item.ProductID.String()
		p, err := r.products.FindByID(ctx, item.ProductID)
		if err == nil {
			name = p.Name
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, "", fmt.Errorf("resolve product for receipt: %w", err)
		}
		data.Lines = append(data.Lines, receiptLine{
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: item.PriceAtPurchase,
			Total:     item.LineTotal(),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), "text/html", nil
}
