package port

import "context"

// ExtractInput carries one source document to an extraction provider.
type ExtractInput struct {
	FileName    string
	FileBytes   []byte
	ContentType string
}

// ExtractOutput is the provider's raw answer. Raw is expected to hold a JSON
// invoice object but may be wrapped in markdown or slightly malformed.
type ExtractOutput struct {
	Raw        []byte
	ModelUsed  string
	PromptUsed string
}

// Extractor abstracts the OCR/vision model that turns a document into a raw
// invoice record.
type Extractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
