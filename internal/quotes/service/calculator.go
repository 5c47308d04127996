package service

import (
	"math"

	"caseflow_backend/internal/quotes/transport"
)

// roundCents rounds a float to the nearest cent (integer)
func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// CalculateQuote computes financial totals for a set of line items.
// Each line total is quantity times unit price rounded to the cent; the
// subtotal is the sum of rounded line totals, tax is applied to the subtotal
// and rounded once, and total = subtotal + tax. The stored total is
// authoritative afterwards: nothing recomputes it on read.
func CalculateQuote(req transport.QuoteCalculationRequest) transport.QuoteCalculationResponse {
	var subtotal int64
	lines := make([]transport.CalculatedLineItem, 0, len(req.Items))

	for _, item := range req.Items {
		lineTotal := roundCents(item.Quantity * float64(item.UnitPriceCents))
		subtotal += lineTotal

		lines = append(lines, transport.CalculatedLineItem{
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     lineTotal,
		})
	}

	taxAmount := roundCents(float64(subtotal) * float64(req.TaxRateBps) / 10000.0)

	return transport.QuoteCalculationResponse{
		SubtotalCents:  subtotal,
		TaxAmountCents: taxAmount,
		TotalCents:     subtotal + taxAmount,
		Lines:          lines,
	}
}
