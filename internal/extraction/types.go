package extraction

// PageText is the raw text of one PDF page, 1-based.
type PageText struct {
	Page int
	Text string
}

// RawImage is an embedded image as found in the PDF, before upload.
type RawImage struct {
	Data []byte
	Ext  string // file type without dot, e.g. "png", "jpg"
}

// ExtractedImage is an uploaded image with its public URL. Instances are
// never mutated once the upload succeeded.
type ExtractedImage struct {
	Filename    string
	Page        int
	ContentType string
	URL         string
}

// MissingImage records an image whose upload failed. The assembler leaves
// an explicit placeholder for it instead of silently dropping the reference.
type MissingImage struct {
	Page     int
	Filename string
}

// PageDocument is one per-page artifact of a maintenance-case run.
type PageDocument struct {
	Page    int
	Content string
	Title   string
}

type DocumentMode string

const (
	ModeGeneric         DocumentMode = "generic"
	ModeMaintenanceCase DocumentMode = "maintenance_case"
)

// Output is the result of a run: either one merged document or a set of
// per-page documents. The two shapes are mutually exclusive.
type Output interface {
	Mode() DocumentMode
}

type MergedOutput struct {
	Text string
}

func (MergedOutput) Mode() DocumentMode { return ModeGeneric }

type PageOutput struct {
	Pages []PageDocument
}

func (PageOutput) Mode() DocumentMode { return ModeMaintenanceCase }
