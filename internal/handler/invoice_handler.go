package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"invoicerecon/internal/domain"
	"invoicerecon/internal/export"
	"invoicerecon/internal/parser"
	"invoicerecon/internal/pipeline"
	"invoicerecon/internal/port"
)

// InvoiceHandlerConfig holds limits for the invoice endpoints.
type InvoiceHandlerConfig struct {
	MaxFileSize int64
	Concurrency int
}

// InvoiceHandler serves reconciliation, extraction and export.
type InvoiceHandler struct {
	pipeline  *pipeline.Pipeline
	extractor port.Extractor
	decoder   *parser.Decoder
	publisher *export.Publisher
	cfg       InvoiceHandlerConfig
}

// NewInvoiceHandler creates a new InvoiceHandler. publisher may be nil when
// no object storage is configured.
func NewInvoiceHandler(p *pipeline.Pipeline, ex port.Extractor, dec *parser.Decoder, publisher *export.Publisher, cfg InvoiceHandlerConfig) *InvoiceHandler {
	return &InvoiceHandler{
		pipeline:  p,
		extractor: ex,
		decoder:   dec,
		publisher: publisher,
		cfg:       cfg,
	}
}

// FileResult is the per-file outcome of an extraction request.
type FileResult struct {
	Filename string                `json:"filename"`
	Model    string                `json:"model,omitempty"`
	Data     *domain.InvoiceRecord `json:"data,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// ExtractResponse is the body of a successful extraction request.
type ExtractResponse struct {
	Count   int          `json:"count"`
	Results []FileResult `json:"results"`
}

// Reconcile handles POST /api/v1/invoices/reconcile. The body is one raw
// extracted record; the response is the processed record.
func (h *InvoiceHandler) Reconcile(c *gin.Context) {
	reader := io.Reader(c.Request.Body)
	if h.cfg.MaxFileSize > 0 {
		reader = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxFileSize)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read request body")
		return
	}

	rec, err := h.decoder.DecodeStrict(body)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, h.pipeline.Process(rec))
}

// Extract handles POST /api/v1/invoices/extract. Every file in the
// multipart "files" field is extracted and processed; a failed extraction
// is reported on its own entry without failing the request.
func (h *InvoiceHandler) Extract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "files field is required")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		HandleError(c, domain.ErrNoDocuments)
		return
	}

	docs := make([]pipeline.Document, 0, len(headers))
	for _, fh := range headers {
		doc, err := h.readDocument(fh)
		if err != nil {
			HandleError(c, err)
			return
		}
		docs = append(docs, doc)
	}

	results := h.pipeline.RunBatch(c.Request.Context(), docs, h.extractor, h.decoder, h.cfg.Concurrency)

	resp := ExtractResponse{Count: len(results), Results: make([]FileResult, len(results))}
	for i, r := range results {
		resp.Results[i] = FileResult{Filename: r.Name, Model: r.Model, Data: r.Record}
		if r.Err != nil {
			resp.Results[i].Error = r.Err.Error()
		}
	}
	RespondOK(c, resp)
}

// Export handles POST /api/v1/invoices/export. The body is an array of raw
// records. The response is the XLSX workbook, or with ?publish=true the
// storage location of the uploaded workbook.
func (h *InvoiceHandler) Export(c *gin.Context) {
	var raws []json.RawMessage
	if err := c.ShouldBindJSON(&raws); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be a JSON array of records")
		return
	}
	if len(raws) == 0 {
		HandleError(c, domain.ErrNoDocuments)
		return
	}

	records := make([]*domain.InvoiceRecord, 0, len(raws))
	for i, raw := range raws {
		rec, err := h.decoder.DecodeStrict(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_RECORD", fmt.Sprintf("record %d is not a valid invoice object", i))
			return
		}
		records = append(records, h.pipeline.Process(rec))
	}

	name := c.DefaultQuery("name", "invoices")

	if c.Query("publish") == "true" {
		if h.publisher == nil {
			RespondError(c, http.StatusServiceUnavailable, "STORAGE_NOT_CONFIGURED", "object storage is not configured")
			return
		}
		location, err := h.publisher.PublishWorkbook(c.Request.Context(), name, records)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondOK(c, gin.H{"location": location, "count": len(records)})
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, records); err != nil {
		HandleError(c, err)
		return
	}
	filename := export.BuildFilename(name, "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.WorkbookContentType, buf.Bytes())
}

func (h *InvoiceHandler) readDocument(fh *multipart.FileHeader) (pipeline.Document, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return pipeline.Document{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, fh.Filename)
	}
	if h.cfg.MaxFileSize > 0 && fh.Size > h.cfg.MaxFileSize {
		return pipeline.Document{}, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}

	return pipeline.Document{
		Name:        fh.Filename,
		Bytes:       data,
		ContentType: domain.ContentTypes[fileType],
	}, nil
}
