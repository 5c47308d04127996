package service

import (
	"testing"

	"caseflow_backend/internal/quotes/transport"
)

func TestCalculateQuote_TotalsAndLineRounding(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		TaxRateBps: 2100,
		Items: []transport.QuoteItemRequest{
			{Name: "labour", Quantity: 3.5, UnitPriceCents: 6500},
			{Name: "materials", Quantity: 1, UnitPriceCents: 12450},
		},
	}

	result := CalculateQuote(req)

	if result.Lines[0].TotalCents != 22750 {
		t.Fatalf("expected labour line 22750, got %d", result.Lines[0].TotalCents)
	}
	if result.SubtotalCents != 35200 {
		t.Fatalf("expected subtotal 35200, got %d", result.SubtotalCents)
	}
	if result.TaxAmountCents != 7392 {
		t.Fatalf("expected tax 7392, got %d", result.TaxAmountCents)
	}
	if result.TotalCents != 42592 {
		t.Fatalf("expected total 42592, got %d", result.TotalCents)
	}
}

func TestCalculateQuote_FractionalQuantityRoundsPerLine(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		Items: []transport.QuoteItemRequest{
			{Name: "paint", Quantity: 0.333, UnitPriceCents: 1000},
			{Name: "paint", Quantity: 0.333, UnitPriceCents: 1000},
			{Name: "paint", Quantity: 0.333, UnitPriceCents: 1000},
		},
	}

	result := CalculateQuote(req)

	// Each line rounds independently: 333 * 3, not round(999).
	if result.SubtotalCents != 999 {
		t.Fatalf("expected subtotal 999, got %d", result.SubtotalCents)
	}
	if result.TotalCents != 999 {
		t.Fatalf("expected zero-tax total 999, got %d", result.TotalCents)
	}
}

func TestCalculateQuote_ZeroTaxRate(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		Items: []transport.QuoteItemRequest{
			{Name: "callout", Quantity: 1, UnitPriceCents: 9900},
		},
	}

	result := CalculateQuote(req)

	if result.TaxAmountCents != 0 {
		t.Fatalf("expected no tax, got %d", result.TaxAmountCents)
	}
	if result.TotalCents != result.SubtotalCents {
		t.Fatalf("expected total %d to equal subtotal %d", result.TotalCents, result.SubtotalCents)
	}
}

func TestCalculateQuote_TaxAppliedToSubtotalOnce(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		TaxRateBps: 900,
		Items: []transport.QuoteItemRequest{
			{Name: "a", Quantity: 1, UnitPriceCents: 55},
			{Name: "b", Quantity: 1, UnitPriceCents: 55},
		},
	}

	result := CalculateQuote(req)

	// round(110 * 0.09) = 10, not round(4.95) + round(4.95) = 10 either way,
	// but the invariant is a single rounding on the subtotal.
	if result.TaxAmountCents != 10 {
		t.Fatalf("expected tax 10, got %d", result.TaxAmountCents)
	}
	if result.TotalCents != 120 {
		t.Fatalf("expected total 120, got %d", result.TotalCents)
	}
}
