package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"invoicerecon/internal/domain"
	"invoicerecon/internal/logger"
)

const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "invoiceNumber": {"$ref": "#/$defs/scalar"},
    "invoiceNumberType": {"$ref": "#/$defs/scalar"},
    "invoiceDate": {"$ref": "#/$defs/scalar"},
    "supplierName": {"$ref": "#/$defs/scalar"},
    "DealerName": {"$ref": "#/$defs/scalar"},
    "gstNumber": {"$ref": "#/$defs/scalar"},
    "customerName": {"$ref": "#/$defs/scalar"},
    "customerPhone": {"$ref": "#/$defs/scalar"},
    "customerAddress": {"$ref": "#/$defs/scalar"},
    "downPayment": {"$ref": "#/$defs/scalar"},
    "netTotal": {"$ref": "#/$defs/scalar"},
    "stampPresent": {"$ref": "#/$defs/scalar"},
    "informationInStamp": {"$ref": "#/$defs/scalar"},
    "signaturePresent": {"$ref": "#/$defs/scalar"},
    "hypothecationStamp": {"$ref": "#/$defs/scalar"},
    "stampCompanyMatching_score": {"$ref": "#/$defs/scalar"},
    "items": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": {"$ref": "#/$defs/scalar"}
      }
    }
  },
  "$defs": {
    "scalar": {"type": ["string", "number", "boolean", "null"]}
  }
}`

var (
	errNoJSONObject = errors.New("no JSON object found in extractor output")

	codeFence     = regexp.MustCompile("(?s)^```(?:json)?\\s*|\\s*```$")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	pyTrue        = regexp.MustCompile(`\bTrue\b`)
	pyFalse       = regexp.MustCompile(`\bFalse\b`)
	pyNone        = regexp.MustCompile(`\bNone\b`)
)

// Decoder turns raw extractor output into an InvoiceRecord. It never fails:
// output that cannot be read yields an unparseable record.
type Decoder struct {
	schema *jsonschema.Schema
	log    zerolog.Logger
}

// NewDecoder compiles the record schema.
func NewDecoder(log zerolog.Logger) (*Decoder, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", strings.NewReader(recordSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Decoder{
		schema: schema,
		log:    logger.Component(log, "decoder"),
	}, nil
}

// Decode reads raw as an invoice record. sourceFile is only used for
// labelling and logging.
func (d *Decoder) Decode(sourceFile string, raw []byte) *domain.InvoiceRecord {
	rec, err := d.decode(raw)
	if err != nil {
		d.log.Error().Err(err).Str("file", sourceFile).Msg("could not read extractor output")
		return domain.NewUnparseableRecord(sourceFile)
	}
	rec.SourceFile = sourceFile
	return rec
}

// DecodeStrict reads raw without the repair strategies, for callers that
// must reject malformed input rather than degrade it.
func (d *Decoder) DecodeStrict(raw []byte) (*domain.InvoiceRecord, error) {
	if err := d.validate(raw); err != nil {
		return nil, err
	}
	return toRecord(raw)
}

func (d *Decoder) decode(raw []byte) (*domain.InvoiceRecord, error) {
	cleaned, err := LenientJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := d.validate(cleaned); err != nil {
		return nil, err
	}
	return toRecord(cleaned)
}

func (d *Decoder) validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
	}
	if _, ok := v.(map[string]any); !ok {
		return domain.ErrInvalidRecord
	}
	if err := d.schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
	}
	return nil
}

// LenientJSON returns the first reading of raw that is valid JSON: as is,
// without markdown fences, the outermost object, or the outermost object
// with common model mistakes repaired.
func LenientJSON(raw []byte) ([]byte, error) {
	text := strings.TrimSpace(string(raw))
	if json.Valid([]byte(text)) {
		return []byte(text), nil
	}

	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
	if json.Valid([]byte(cleaned)) {
		return []byte(cleaned), nil
	}

	start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, errNoJSONObject
	}
	block := cleaned[start : end+1]
	if json.Valid([]byte(block)) {
		return []byte(block), nil
	}

	block = trailingComma.ReplaceAllString(block, "$1")
	block = strings.ReplaceAll(block, "'", `"`)
	block = pyTrue.ReplaceAllString(block, "true")
	block = pyFalse.ReplaceAllString(block, "false")
	block = pyNone.ReplaceAllString(block, "null")
	if !json.Valid([]byte(block)) {
		return nil, fmt.Errorf("%w: repairs did not produce valid JSON", domain.ErrInvalidRecord)
	}
	return []byte(block), nil
}

// text is a string leaf that also accepts JSON numbers and booleans.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	default:
		*t = text(data)
	}
	return nil
}

type rawItem struct {
	ItemNo       text          `json:"itemNo"`
	Description  text          `json:"description"`
	BrandName    text          `json:"brandName"`
	IMEINumber   text          `json:"imeiNumber"`
	SerialNumber text          `json:"serialNumber"`
	Quantity     domain.Number `json:"quantity"`
	Rate         domain.Number `json:"rate"`
	SGST         domain.Number `json:"sgst"`
	CGST         domain.Number `json:"cgst"`
	IGST         domain.Number `json:"igst"`
	Tax          domain.Number `json:"tax"`
	ItemAmount   domain.Number `json:"itemAmount"`
}

type rawRecord struct {
	InvoiceNumber             text          `json:"invoiceNumber"`
	InvoiceNumberType         text          `json:"invoiceNumberType"`
	InvoiceDate               text          `json:"invoiceDate"`
	SupplierName              text          `json:"supplierName"`
	DealerName                text          `json:"DealerName"`
	GSTNumber                 text          `json:"gstNumber"`
	CustomerName              text          `json:"customerName"`
	CustomerPhone             text          `json:"customerPhone"`
	CustomerAddress           text          `json:"customerAddress"`
	DownPayment               domain.Number `json:"downPayment"`
	NetTotal                  domain.Number `json:"netTotal"`
	StampPresent              text          `json:"stampPresent"`
	InformationInStamp        text          `json:"informationInStamp"`
	SignaturePresent          text          `json:"signaturePresent"`
	HypothecationStamp        text          `json:"hypothecationStamp"`
	StampCompanyMatchingScore domain.Number `json:"stampCompanyMatching_score"`
	Items                     []rawItem     `json:"items"`
}

func toRecord(data []byte) (*domain.InvoiceRecord, error) {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
	}

	supplier := string(raw.SupplierName)
	if strings.TrimSpace(supplier) == "" {
		supplier = string(raw.DealerName)
	}

	rec := &domain.InvoiceRecord{
		ID:                        uuid.New(),
		InvoiceNumber:             string(raw.InvoiceNumber),
		InvoiceNumberType:         string(raw.InvoiceNumberType),
		InvoiceDate:               string(raw.InvoiceDate),
		SupplierName:              supplier,
		GSTNumber:                 string(raw.GSTNumber),
		CustomerName:              string(raw.CustomerName),
		CustomerPhone:             string(raw.CustomerPhone),
		CustomerAddress:           string(raw.CustomerAddress),
		DownPayment:               raw.DownPayment,
		NetTotal:                  raw.NetTotal,
		StampPresent:              string(raw.StampPresent),
		InformationInStamp:        string(raw.InformationInStamp),
		SignaturePresent:          string(raw.SignaturePresent),
		HypothecationStamp:        string(raw.HypothecationStamp),
		StampCompanyMatchingScore: raw.StampCompanyMatchingScore,
		Items:                     make([]domain.LineItem, 0, len(raw.Items)),
		Confidence:                map[string]float64{},
	}
	for i := range raw.Items {
		it := &raw.Items[i]
		rec.Items = append(rec.Items, domain.LineItem{
			ItemNo:       string(it.ItemNo),
			Description:  string(it.Description),
			BrandName:    string(it.BrandName),
			IMEINumber:   string(it.IMEINumber),
			SerialNumber: string(it.SerialNumber),
			Quantity:     it.Quantity,
			Rate:         it.Rate,
			SGST:         it.SGST,
			CGST:         it.CGST,
			IGST:         it.IGST,
			Tax:          it.Tax,
			ItemAmount:   it.ItemAmount,
		})
	}
	return rec, nil
}
