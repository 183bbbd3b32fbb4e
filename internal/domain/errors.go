package domain

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrNoDocuments         = errors.New("no documents to process")
	ErrInvalidRecord       = errors.New("record is not a JSON object")
	ErrUploadFailed        = errors.New("export upload to storage failed")
)
