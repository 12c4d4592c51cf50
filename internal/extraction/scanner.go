package extraction

import (
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Scanner opens PDFs for page-by-page reading. The returned Document must
// be closed by the caller on every exit path.
type Scanner interface {
	Open(path string) (Document, error)
}

// Document is an open PDF positioned for scanning. Pages are 1-based.
type Document interface {
	PageCount() int
	Page(n int) (PageText, []RawImage, error)
	Close() error
}

type PDFScanner struct{}

var _ Scanner = (*PDFScanner)(nil)

func NewPDFScanner() *PDFScanner { return &PDFScanner{} }

func (s *PDFScanner) Open(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &SourceUnreadableError{Path: path, Err: err}
	}

	// Embedded images come from a separate structural pass over the file.
	// Failure here is not fatal as long as the text layer opened: pages are
	// scanned image-less, mirroring the per-image skip policy.
	images, err := extractEmbeddedImages(path)
	if err != nil {
		slog.Warn("Failed to extract embedded images, continuing with text only", "path", path, "error", err)
		images = nil
	}

	return &pdfDocument{doc: doc, path: path, images: images}, nil
}

type pdfDocument struct {
	doc    *fitz.Document
	path   string
	images map[int][]RawImage
}

func (d *pdfDocument) PageCount() int { return d.doc.NumPage() }

func (d *pdfDocument) Page(n int) (PageText, []RawImage, error) {
	text, err := d.doc.Text(n - 1)
	if err != nil {
		return PageText{}, nil, &SourceUnreadableError{Path: d.path, Err: err}
	}
	return PageText{Page: n, Text: text}, d.images[n], nil
}

func (d *pdfDocument) Close() error { return d.doc.Close() }

// extractEmbeddedImages returns the raster images of each page keyed by
// 1-based page number, in encounter order. A single undecodable image is
// skipped with a warning.
func extractEmbeddedImages(path string) (map[int][]RawImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages, err := api.ExtractImagesRaw(f, nil, model.NewDefaultConfiguration())
	if err != nil {
		return nil, err
	}

	images := make(map[int][]RawImage)
	for _, pageImages := range pages {
		objNrs := make([]int, 0, len(pageImages))
		for objNr := range pageImages {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			img := pageImages[objNr]
			if img.Thumb {
				continue
			}

			data, err := io.ReadAll(img.Reader)
			if err != nil {
				slog.Warn("Failed to decode embedded image, skipping", "path", path, "page", img.PageNr, "object", objNr, "error", err)
				continue
			}

			images[img.PageNr] = append(images[img.PageNr], RawImage{Data: data, Ext: img.FileType})
		}
	}

	return images, nil
}
