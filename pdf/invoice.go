// Package pdf renders finalized invoices. It is a pure downstream consumer
// of invoice values and imposes no constraints back on the core.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/diewo77/storefront/internal/models"
)

// Amount formats a minor-unit amount for display, e.g. 115000 -> "1150.00".
func Amount(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// RenderInvoice produces the PDF document for an invoice and the order it
// was derived from.
func RenderInvoice(inv models.Invoice, order models.Order) ([]byte, error) {
	m := maroto.New(config.NewBuilder().Build())

	m.AddRow(14, text.NewCol(12, "FACTURE", props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))
	m.AddRow(8,
		text.NewCol(6, inv.Number, props.Text{Style: fontstyle.Bold}),
		text.NewCol(6, fmt.Sprintf("Commande n°%d", order.ID), props.Text{Align: align.Right}),
	)
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Livraison : %s", order.DeliveryAddress)))
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Téléphone : %s", order.PhoneNumber)))
	m.AddRow(8, text.NewCol(12, ""))

	// line table
	m.AddRow(7,
		text.NewCol(6, "Produit", props.Text{Style: fontstyle.Bold}),
		text.NewCol(2, "Qté", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "P.U.", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Montant", props.Text{Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, it := range order.Items {
		m.AddRow(6,
			text.NewCol(6, fmt.Sprintf("Réf. %d", it.ProductID)),
			text.NewCol(2, fmt.Sprintf("%d", it.Quantity), props.Text{Align: align.Right}),
			text.NewCol(2, Amount(it.UnitPrice), props.Text{Align: align.Right}),
			text.NewCol(2, Amount(it.Amount()), props.Text{Align: align.Right}),
		)
	}

	m.AddRow(8, text.NewCol(12, ""))
	m.AddRow(6,
		text.NewCol(8, ""),
		text.NewCol(2, "Sous-total"),
		text.NewCol(2, Amount(inv.Subtotal), props.Text{Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(8, ""),
		text.NewCol(2, fmt.Sprintf("TVA %.0f%%", float64(inv.TaxRateBps)/100)),
		text.NewCol(2, Amount(inv.TaxAmount), props.Text{Align: align.Right}),
	)
	m.AddRow(7,
		text.NewCol(8, ""),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold}),
		text.NewCol(2, Amount(inv.Total), props.Text{Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(8, text.NewCol(12, fmt.Sprintf("Statut de paiement : %s", inv.PaymentStatus)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
