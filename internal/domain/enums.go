package domain

// FileType represents the document formats accepted for extraction.
type FileType string

const (
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypePDF  FileType = "pdf"
	FileTypeJSON FileType = "json"
)

// AllowedContentTypes maps MIME content types to FileType.
var AllowedContentTypes = map[string]FileType{
	"image/jpeg":       FileTypeJPG,
	"image/png":        FileTypePNG,
	"application/pdf":  FileTypePDF,
	"application/json": FileTypeJSON,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"pdf":  FileTypePDF,
	"json": FileTypeJSON,
}

// ContentTypes maps FileType to the MIME type sent to extractors.
var ContentTypes = map[FileType]string{
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypePDF:  "application/pdf",
	FileTypeJSON: "application/json",
}

// AmountSource records where a line item's final amount came from.
type AmountSource string

const (
	AmountSourceExtracted         AmountSource = "extracted"
	AmountSourceCalculated        AmountSource = "calculated"
	AmountSourceExtractedFallback AmountSource = "extracted_fallback"
	AmountSourceNone              AmountSource = "none"
	// AmountSourceNetTotal marks the single-item shortcut, where the line
	// equals the declared invoice total.
	AmountSourceNetTotal AmountSource = "net_total"
)

// TotalsReason explains the outcome of a totals check.
type TotalsReason string

const (
	TotalsWithinTolerance  TotalsReason = "within_tolerance"
	TotalsExceedsTolerance TotalsReason = "exceeds_tolerance"
	TotalsNoNetTotal       TotalsReason = "no_net_total"
	TotalsNoItems          TotalsReason = "no_items"
)

// Confidence map keys.
const (
	ScoreInvoiceNumber = "invoiceNumber"
	ScoreInvoiceDate   = "invoiceDate"
	ScoreSupplierName  = "supplierName"
	ScoreGSTNumber     = "gstNumber"
	ScoreItems         = "items"
	ScoreOverall       = "overall"
)

// ScoredFields is the fixed set of sub-scores that make up the overall score.
var ScoredFields = []string{
	ScoreInvoiceNumber,
	ScoreInvoiceDate,
	ScoreSupplierName,
	ScoreGSTNumber,
	ScoreItems,
}
