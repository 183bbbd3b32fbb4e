package reconcile_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicerecon/internal/config"
	"invoicerecon/internal/domain"
	"invoicerecon/internal/reconcile"
)

func newEngine() *reconcile.Engine {
	return reconcile.NewEngine(config.DefaultJurisdiction(), zerolog.Nop())
}

func num(s string) domain.Number { return domain.ParseNumber(s) }

func TestReconcile_SingleItemUsesNetTotal(t *testing.T) {
	e := newEngine()
	rec := &domain.InvoiceRecord{
		NetTotal: num("1180.00"),
		Items: []domain.LineItem{
			{Rate: num("500"), Quantity: num("7"), ItemAmount: num("12"), SGST: num("9"), CGST: num("9")},
		},
	}

	e.Reconcile(rec)

	item := rec.Items[0]
	assert.Equal(t, 1180.00, item.ItemAmount.Value)
	assert.Equal(t, domain.AmountSourceNetTotal, item.AmountSource)
	assert.Equal(t, 100, item.AmountConfidence)
	assert.Equal(t, 18.0, item.Tax.Value)
}

func TestReconcile_SingleItemWithoutNetTotal(t *testing.T) {
	e := newEngine()
	rec := &domain.InvoiceRecord{
		Items: []domain.LineItem{{Rate: num("1000"), Quantity: num("1"), IGST: num("18")}},
	}

	e.Reconcile(rec)

	assert.Equal(t, 1180.0, rec.Items[0].ItemAmount.Value)
	assert.Equal(t, domain.AmountSourceCalculated, rec.Items[0].AmountSource)
}

func TestReconcileItem_ExtractedMatchesReference(t *testing.T) {
	e := newEngine()
	item := domain.LineItem{
		Rate: num("1000"), Quantity: num("2"), SGST: num("9"), CGST: num("9"), ItemAmount: num("2360"),
	}

	assert.Equal(t, 2360.0, e.ReferenceAmount(&item, false))
	e.ReconcileItem(&item, false)

	assert.Equal(t, 2360.00, item.ItemAmount.Value)
	assert.Equal(t, domain.AmountSourceExtracted, item.AmountSource)
	assert.Equal(t, 100, item.AmountConfidence)
}

func TestReconcile_AmountEqualToRateForMultipleUnits(t *testing.T) {
	e := newEngine()
	rec := &domain.InvoiceRecord{
		Items: []domain.LineItem{{Rate: num("500"), Quantity: num("3"), ItemAmount: num("500")}},
	}

	e.Reconcile(rec)

	item := rec.Items[0]
	assert.Equal(t, 1500.00, item.ItemAmount.Value)
	assert.Equal(t, domain.AmountSourceCalculated, item.AmountSource)
	assert.Equal(t, 85, item.AmountConfidence)
}

func TestReconcileItem_Passes(t *testing.T) {
	e := newEngine()
	tests := []struct {
		name         string
		item         domain.LineItem
		taxInclusive bool
		wantAmount   float64
		wantSource   domain.AmountSource
		wantConf     int
	}{
		{
			name:       "extracted accepted with small mismatch",
			item:       domain.LineItem{Rate: num("100"), Quantity: num("1"), IGST: num("18"), ItemAmount: num("120.5")},
			wantAmount: 120.5, wantSource: domain.AmountSourceExtracted, wantConf: 100,
		},
		{
			name:       "extracted far from reference falls to calculated",
			item:       domain.LineItem{Rate: num("99.50"), Quantity: num("2"), ItemAmount: num("500")},
			wantAmount: 199, wantSource: domain.AmountSourceCalculated, wantConf: 85,
		},
		{
			name:         "tax inclusive reference ignores tax",
			item:         domain.LineItem{Rate: num("1180"), Quantity: num("2"), SGST: num("9"), CGST: num("9")},
			taxInclusive: true,
			wantAmount:   2360, wantSource: domain.AmountSourceCalculated, wantConf: 85,
		},
		{
			name:       "amount without rate is trusted",
			item:       domain.LineItem{ItemAmount: num("749.99")},
			wantAmount: 749.99, wantSource: domain.AmountSourceExtracted, wantConf: 100,
		},
		{
			name:       "no usable data",
			item:       domain.LineItem{Rate: num("n/a"), ItemAmount: num("")},
			wantAmount: 0, wantSource: domain.AmountSourceNone, wantConf: 0,
		},
		{
			name:       "quantity defaults to one",
			item:       domain.LineItem{Rate: num("250"), IGST: num("12")},
			wantAmount: 280, wantSource: domain.AmountSourceCalculated, wantConf: 85,
		},
		{
			name:       "rounding to two decimals",
			item:       domain.LineItem{Rate: num("333.333"), Quantity: num("1"), IGST: num("5")},
			wantAmount: 350, wantSource: domain.AmountSourceCalculated, wantConf: 85,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			e.ReconcileItem(&item, tt.taxInclusive)
			assert.Equal(t, tt.wantAmount, item.ItemAmount.Value)
			assert.Equal(t, tt.wantSource, item.AmountSource)
			assert.Equal(t, tt.wantConf, item.AmountConfidence)
			assert.GreaterOrEqual(t, item.ItemAmount.Value, 0.0)
		})
	}
}

func TestCombinedTax(t *testing.T) {
	assert.Equal(t, 18.0, reconcile.CombinedTax(&domain.LineItem{SGST: num("9"), CGST: num("9"), IGST: num("28")}))
	assert.Equal(t, 9.0, reconcile.CombinedTax(&domain.LineItem{SGST: num("9")}))
	assert.Equal(t, 28.0, reconcile.CombinedTax(&domain.LineItem{IGST: num("28")}))
	assert.Equal(t, 0.0, reconcile.CombinedTax(&domain.LineItem{}))
}

func TestDetectTaxInclusive(t *testing.T) {
	e := newEngine()
	tests := []struct {
		name  string
		items []domain.LineItem
		want  bool
	}{
		{"no items", nil, false},
		{"no comparable pairs", []domain.LineItem{{Rate: num("100")}, {ItemAmount: num("50")}}, false},
		{"all match", []domain.LineItem{{Rate: num("1180"), ItemAmount: num("1180")}}, true},
		{"half match", []domain.LineItem{
			{Rate: num("1000"), ItemAmount: num("1005")},
			{Rate: num("1000"), ItemAmount: num("1180")},
		}, true},
		{"minority match", []domain.LineItem{
			{Rate: num("1000"), ItemAmount: num("1000")},
			{Rate: num("1000"), ItemAmount: num("1180")},
			{Rate: num("500"), ItemAmount: num("590")},
		}, false},
		{"one percent is not a match", []domain.LineItem{{Rate: num("1000"), ItemAmount: num("1010")}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.DetectTaxInclusive(tt.items))
		})
	}
}

func TestReconcile_EmptyItems(t *testing.T) {
	e := newEngine()
	rec := &domain.InvoiceRecord{NetTotal: num("100"), TaxInclusive: true}

	e.Reconcile(rec)

	assert.False(t, rec.TaxInclusive)
	require.Empty(t, rec.Items)
}

func TestReconcileItem_FallbackWhenExtractionRejected(t *testing.T) {
	profile := config.DefaultJurisdiction()
	profile.Thresholds.ExtractAccept = 101
	e := reconcile.NewEngine(profile, zerolog.Nop())

	withoutRate := domain.LineItem{ItemAmount: num("749.99")}
	e.ReconcileItem(&withoutRate, false)
	assert.Equal(t, 749.99, withoutRate.ItemAmount.Value)
	assert.Equal(t, domain.AmountSourceExtractedFallback, withoutRate.AmountSource)
	assert.Equal(t, 50, withoutRate.AmountConfidence)

	withRate := domain.LineItem{Rate: num("100"), ItemAmount: num("118")}
	e.ReconcileItem(&withRate, false)
	assert.Equal(t, 100.0, withRate.ItemAmount.Value)
	assert.Equal(t, domain.AmountSourceCalculated, withRate.AmountSource)
}
