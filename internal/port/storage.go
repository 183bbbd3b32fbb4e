package port

import (
	"context"
	"io"
)

// UploadInput describes one export object. DownloadName, when set, is the
// file name offered to whoever downloads the object later.
type UploadInput struct {
	Bucket       string
	Key          string
	Body         io.Reader
	ContentType  string
	DownloadName string
	Metadata     map[string]string
}

// UploadOutput is where the object ended up.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage is the sink for published exports.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
}
