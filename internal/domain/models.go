package domain

import (
	"github.com/google/uuid"
)

// LineItem is one billed line of an invoice together with the provenance of
// its final amount.
type LineItem struct {
	ItemNo       string `json:"itemNo"`
	Description  string `json:"description"`
	BrandName    string `json:"brandName"`
	IMEINumber   string `json:"imeiNumber"`
	SerialNumber string `json:"serialNumber"`
	Quantity     Number `json:"quantity"`
	Rate         Number `json:"rate"`
	SGST         Number `json:"sgst"`
	CGST         Number `json:"cgst"`
	IGST         Number `json:"igst"`
	Tax          Number `json:"tax"`
	ItemAmount   Number `json:"itemAmount"`

	AmountSource     AmountSource `json:"amount_source,omitempty"`
	AmountConfidence int          `json:"amount_confidence"`
	Adjusted         bool         `json:"adjusted"`
}

// Units returns the billed quantity, defaulting to 1 when absent or not positive.
func (li *LineItem) Units() float64 {
	if li.Quantity.Positive() {
		return li.Quantity.Value
	}
	return 1
}

// TotalsValidation is the outcome of comparing the item sum with the
// declared net total.
type TotalsValidation struct {
	Valid           bool         `json:"valid"`
	Reason          TotalsReason `json:"reason"`
	CalculatedTotal float64      `json:"calculated_total"`
	NetTotal        float64      `json:"net_total"`
	Difference      float64      `json:"difference"`
	DifferencePct   float64      `json:"difference_pct"`
	Adjusted        bool         `json:"adjusted"`
}

// Correction records one field rewritten by cross-field validation.
type Correction struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
	Note  string `json:"note,omitempty"`
}

// InvoiceRecord is a single extracted invoice as it moves through the
// reconciliation pipeline.
type InvoiceRecord struct {
	ID         uuid.UUID `json:"id"`
	SourceFile string    `json:"source_file,omitempty"`

	InvoiceNumber             string `json:"invoiceNumber"`
	InvoiceNumberType         string `json:"invoiceNumberType"`
	InvoiceDate               string `json:"invoiceDate"`
	SupplierName              string `json:"supplierName"`
	GSTNumber                 string `json:"gstNumber"`
	CustomerName              string `json:"customerName"`
	CustomerPhone             string `json:"customerPhone"`
	CustomerAddress           string `json:"customerAddress"`
	DownPayment               Number `json:"downPayment"`
	NetTotal                  Number `json:"netTotal"`
	StampPresent              string `json:"stampPresent"`
	InformationInStamp        string `json:"informationInStamp"`
	SignaturePresent          string `json:"signaturePresent"`
	HypothecationStamp        string `json:"hypothecationStamp"`
	StampCompanyMatchingScore Number `json:"stampCompanyMatching_score"`

	Items []LineItem `json:"items"`

	Confidence   map[string]float64 `json:"confidence"`
	TaxInclusive bool               `json:"tax_inclusive"`
	Totals       TotalsValidation   `json:"totals"`
	Corrections  []Correction       `json:"corrections,omitempty"`
	Unparseable  bool               `json:"unparseable"`
}

// NewUnparseableRecord returns the record used when the extractor output
// could not be read as structured data.
func NewUnparseableRecord(sourceFile string) *InvoiceRecord {
	return &InvoiceRecord{
		ID:          uuid.New(),
		SourceFile:  sourceFile,
		Items:       []LineItem{},
		Confidence:  map[string]float64{},
		Unparseable: true,
	}
}

// ItemsTotal sums the current item amounts.
func (r *InvoiceRecord) ItemsTotal() float64 {
	var sum float64
	for i := range r.Items {
		sum += r.Items[i].ItemAmount.Value
	}
	return sum
}
