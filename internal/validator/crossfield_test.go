package validator_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicerecon/internal/domain"
)

func domainString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func num(s string) domain.Number { return domain.ParseNumber(s) }

func TestCrossValidate_Header(t *testing.T) {
	v := newValidator(t)
	rec := &domain.InvoiceRecord{
		InvoiceNumber: " INV/42 ",
		InvoiceDate:   "yesterday",
		GSTNumber:     "27aapfu0939f1zv",
		CustomerPhone: "12345",
		SupplierName:  "Acme Mobiles",
	}

	corrections := v.CrossValidate(rec)

	assert.Equal(t, "INV/42", rec.InvoiceNumber)
	assert.Equal(t, "", rec.InvoiceDate)
	assert.Equal(t, "27AAPFU0939F1ZV", rec.GSTNumber)
	assert.Equal(t, "", rec.CustomerPhone)
	assert.Equal(t, "Acme Mobiles", rec.SupplierName)

	require.Len(t, corrections, 4)
	assert.Equal(t, "gstNumber", corrections[0].Field)
	assert.Equal(t, "27aapfu0939f1zv", corrections[0].From)
	assert.Equal(t, "27AAPFU0939F1ZV", corrections[0].To)
	assert.Equal(t, corrections, rec.Corrections)
}

func TestCrossValidate_ValidRecordUnchanged(t *testing.T) {
	v := newValidator(t)
	rec := &domain.InvoiceRecord{
		InvoiceNumber: "INV-1",
		InvoiceDate:   "01/02/2024",
		GSTNumber:     "27AAPFU0939F1ZV",
		CustomerPhone: "9876543210",
		Items: []domain.LineItem{
			{IMEINumber: "351234567890123", SGST: num("9"), CGST: num("9")},
		},
	}

	assert.Empty(t, v.CrossValidate(rec))
	assert.Empty(t, rec.Corrections)
}

func TestCrossValidate_Items(t *testing.T) {
	v := newValidator(t)
	rec := &domain.InvoiceRecord{
		Items: []domain.LineItem{
			{IMEINumber: "IMEI 3512-3456-7890-123", SGST: num("9%"), CGST: num("7")},
			{IGST: num("17.995")},
		},
	}

	v.CrossValidate(rec)

	first := rec.Items[0]
	assert.Equal(t, "351234567890123", first.IMEINumber)
	assert.Equal(t, 9.0, first.SGST.Value)
	assert.True(t, first.CGST.IsEmpty())

	assert.Equal(t, 18.0, rec.Items[1].IGST.Value)

	var fields []string
	for _, c := range rec.Corrections {
		fields = append(fields, c.Field)
	}
	assert.Contains(t, fields, "items[0].imeiNumber")
	assert.Contains(t, fields, "items[0].cgst")
	assert.Contains(t, fields, "items[1].igst")
	assert.Contains(t, fields, "items[0].sgst")
}

func TestCrossValidate_RewrittenTaxTextIsLogged(t *testing.T) {
	v := newValidator(t)
	rec := &domain.InvoiceRecord{Items: []domain.LineItem{{IGST: num("18%")}}}

	corrections := v.CrossValidate(rec)

	require.Len(t, corrections, 1)
	assert.Equal(t, domain.Correction{Field: "items[0].igst", From: "18%", To: "18"}, corrections[0])
	assert.Equal(t, "18", rec.Items[0].IGST.Raw)
}

func TestCrossValidate_ZeroPairClearsIGST(t *testing.T) {
	v := newValidator(t)
	rec := &domain.InvoiceRecord{Items: []domain.LineItem{
		{SGST: num("0"), CGST: num("0"), IGST: num("18")},
	}}

	corrections := v.CrossValidate(rec)

	item := rec.Items[0]
	assert.True(t, item.SGST.Valid)
	assert.Equal(t, 0.0, item.SGST.Value)
	assert.True(t, item.CGST.Valid)
	assert.True(t, item.IGST.IsEmpty())
	require.Len(t, corrections, 1)
	assert.Equal(t, "items[0].igst", corrections[0].Field)
	assert.Equal(t, "18", corrections[0].From)
}

func TestCrossValidate_TaxExclusivity(t *testing.T) {
	v := newValidator(t)
	tests := []struct {
		name             string
		sgst, cgst, igst string
		wantSGST         bool
		wantIGST         bool
	}{
		{"both groups populated", "9", "9", "18", true, false},
		{"only sgst and igst", "9", "", "18", true, false},
		{"zero pair with igst rate", "0", "0", "18", true, false},
		{"igst only", "", "", "18", false, true},
		{"pair only", "9", "9", "", true, false},
		{"invalid igst is dropped first", "9", "9", "7", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &domain.InvoiceRecord{Items: []domain.LineItem{
				{SGST: num(tt.sgst), CGST: num(tt.cgst), IGST: num(tt.igst)},
			}}

			v.CrossValidate(rec)

			item := rec.Items[0]
			assert.Equal(t, tt.wantSGST, !item.SGST.IsEmpty())
			assert.Equal(t, tt.wantIGST, !item.IGST.IsEmpty())
			intra := !item.SGST.IsEmpty() || !item.CGST.IsEmpty()
			assert.False(t, intra && !item.IGST.IsEmpty(), "sgst/cgst and igst both present")
		})
	}
}
