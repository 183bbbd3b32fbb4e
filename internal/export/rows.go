// Package export projects processed invoice records into tabular form:
// one row per item and one row per invoice.
package export

import (
	"invoicerecon/internal/domain"
)

// headerColumns are the invoice-level columns shared by both projections.
var headerColumns = []string{
	"Image_File",
	"invoiceNumber",
	"invoiceNumberType",
	"invoiceDate",
	"supplierName",
	"gstNumber",
	"customerName",
	"customerPhone",
	"customerAddress",
	"downPayment",
	"stampPresent",
	"informationInStamp",
	"signaturePresent",
	"hypothecationStamp",
	"stampCompanyMatching_score",
}

// itemColumns follow the header columns on the item sheet. amount_source
// is one of extracted, calculated, extracted_fallback or none, plus
// net_total when a single-item invoice took the declared total.
var itemColumns = []string{
	"itemNo",
	"description",
	"brandName",
	"imeiNumber",
	"serialNumber",
	"quantity",
	"rate",
	"sgst",
	"cgst",
	"igst",
	"tax",
	"itemAmount",
	"amount_source",
	"adjusted",
}

var summaryColumns = []string{
	"Total_Amount",
	"Tax_Inclusive",
	"Confidence",
}

// ItemColumns returns the header row of the item projection.
func ItemColumns() []string {
	return concat(headerColumns, itemColumns)
}

// SummaryColumns returns the header row of the summary projection.
func SummaryColumns() []string {
	return concat(headerColumns, summaryColumns)
}

// ItemRows returns one row per line item, with the invoice header fields
// repeated on every row. Records without items contribute no rows. The
// amount_source cell may be "net_total" in addition to the four pass
// outcomes.
func ItemRows(records []*domain.InvoiceRecord) [][]any {
	var rows [][]any
	for _, rec := range records {
		header := headerValues(rec)
		for i := range rec.Items {
			item := &rec.Items[i]
			row := make([]any, 0, len(headerColumns)+len(itemColumns))
			row = append(row, header...)
			row = append(row,
				item.ItemNo,
				item.Description,
				item.BrandName,
				item.IMEINumber,
				item.SerialNumber,
				cell(item.Quantity),
				cell(item.Rate),
				cell(item.SGST),
				cell(item.CGST),
				cell(item.IGST),
				cell(item.Tax),
				cell(item.ItemAmount),
				string(item.AmountSource),
				yesNo(item.Adjusted),
			)
			rows = append(rows, row)
		}
	}
	return rows
}

// SummaryRows returns one row per invoice.
func SummaryRows(records []*domain.InvoiceRecord) [][]any {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, 0, len(headerColumns)+len(summaryColumns))
		row = append(row, headerValues(rec)...)
		row = append(row,
			TotalAmount(rec),
			yesNo(rec.TaxInclusive),
			rec.Confidence[domain.ScoreOverall],
		)
		rows = append(rows, row)
	}
	return rows
}

// TotalAmount is the invoice total reported in the summary. A single-item
// invoice reports its declared total when positive, otherwise the item
// amount; any other invoice reports the sum of its items.
func TotalAmount(rec *domain.InvoiceRecord) float64 {
	if len(rec.Items) == 1 {
		if rec.NetTotal.Positive() {
			return domain.Round2(rec.NetTotal.Value)
		}
		return domain.Round2(rec.Items[0].ItemAmount.Value)
	}
	return domain.Round2(rec.ItemsTotal())
}

func headerValues(rec *domain.InvoiceRecord) []any {
	return []any{
		rec.SourceFile,
		rec.InvoiceNumber,
		rec.InvoiceNumberType,
		rec.InvoiceDate,
		rec.SupplierName,
		rec.GSTNumber,
		rec.CustomerName,
		rec.CustomerPhone,
		rec.CustomerAddress,
		cell(rec.DownPayment),
		rec.StampPresent,
		rec.InformationInStamp,
		rec.SignaturePresent,
		rec.HypothecationStamp,
		cell(rec.StampCompanyMatchingScore),
	}
}

// cell keeps numbers numeric in the workbook and falls back to the
// extracted text when the value never parsed.
func cell(n domain.Number) any {
	if n.Valid {
		return n.Value
	}
	return n.Raw
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
