package extraction

import "fmt"

// SourceUnreadableError means the file could not be opened or parsed as a
// PDF. It triggers the salvage chain.
type SourceUnreadableError struct {
	Path string
	Err  error
}

func (e *SourceUnreadableError) Error() string {
	return fmt.Sprintf("cannot read source %s: %v", e.Path, e.Err)
}

func (e *SourceUnreadableError) Unwrap() error { return e.Err }

// ImageUploadError is a per-image failure. It never aborts a run; the image
// is recorded as missing and assembly proceeds without it.
type ImageUploadError struct {
	Page     int
	Filename string
	Err      error
}

func (e *ImageUploadError) Error() string {
	return fmt.Sprintf("failed to upload image %s (page %d): %v", e.Filename, e.Page, e.Err)
}

func (e *ImageUploadError) Unwrap() error { return e.Err }

// ProcessingError is terminal: every salvage tier was exhausted. The run
// produced no documents and the caller must surface the failure.
type ProcessingError struct {
	Path string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("cannot process file %s: %v", e.Path, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }
