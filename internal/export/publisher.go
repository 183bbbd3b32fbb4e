package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"

	"github.com/rs/zerolog"

	"invoicerecon/internal/domain"
	"invoicerecon/internal/logger"
	"invoicerecon/internal/port"
)

// Publisher uploads finished exports to object storage.
type Publisher struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
	log     zerolog.Logger
}

// NewPublisher creates a Publisher writing under prefix in bucket.
func NewPublisher(storage port.ObjectStorage, bucket, prefix string, log zerolog.Logger) *Publisher {
	return &Publisher{
		storage: storage,
		bucket:  bucket,
		prefix:  prefix,
		log:     logger.Component(log, "publisher"),
	}
}

// PublishWorkbook renders records as a workbook named after name and
// uploads it. It returns the storage location.
func (p *Publisher) PublishWorkbook(ctx context.Context, name string, records []*domain.InvoiceRecord) (string, error) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, records); err != nil {
		return "", err
	}

	filename := BuildFilename(name, "xlsx")
	key := path.Join(p.prefix, filename)
	out, err := p.storage.Upload(ctx, port.UploadInput{
		Bucket:       p.bucket,
		Key:          key,
		Body:         &buf,
		ContentType:  WorkbookContentType,
		DownloadName: filename,
		Metadata:     exportMetadata(records),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
	}

	p.log.Info().Str("bucket", p.bucket).Str("key", key).Int("records", len(records)).Msg("workbook published")
	return out.Location, nil
}

func exportMetadata(records []*domain.InvoiceRecord) map[string]string {
	var items, unbalanced int
	for _, rec := range records {
		items += len(rec.Items)
		if rec.Totals.Reason == domain.TotalsExceedsTolerance && !rec.Totals.Adjusted {
			unbalanced++
		}
	}
	return map[string]string{
		"records":    strconv.Itoa(len(records)),
		"items":      strconv.Itoa(items),
		"unbalanced": strconv.Itoa(unbalanced),
	}
}
