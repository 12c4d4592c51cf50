package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"ragkb-backend/internal/storage"
)

// Materializer uploads extracted images and assigns their public URLs.
type Materializer struct {
	Store  storage.ObjectStore
	Bucket string
}

// UploadImage stores one image under a deterministic key and returns its
// record. index is 1-based within the page.
func (m *Materializer) UploadImage(ctx context.Context, img RawImage, pdfBaseName string, page, index int) (ExtractedImage, error) {
	filename := ImageObjectKey(pdfBaseName, page, index, img.Ext)
	contentType := "image/" + img.Ext

	url, err := m.Store.PutObject(ctx, m.Bucket, filename, bytes.NewReader(img.Data), contentType)
	if err != nil {
		return ExtractedImage{}, &ImageUploadError{Page: page, Filename: filename, Err: err}
	}

	return ExtractedImage{
		Filename:    filename,
		Page:        page,
		ContentType: img.Ext,
		URL:         url,
	}, nil
}

// ImageObjectKey derives the object key for an embedded image. The name is
// deterministic and unique within a run because (page, index) is unique;
// random identifiers are avoided so downstream consumers cannot mangle the
// reference.
func ImageObjectKey(pdfBaseName string, page, index int, ext string) string {
	return fmt.Sprintf("%s_page%d_img%d_v1.%s", sanitizeBaseName(pdfBaseName), page, index, ext)
}

const fallbackBaseName = "document"

// sanitizeBaseName keeps letters (any script), digits, '_' and '-'. Object
// keys derived from Chinese titles keep their characters; an emptied name
// falls back to a fixed token.
func sanitizeBaseName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	safe := strings.TrimSpace(b.String())
	if safe == "" {
		return fallbackBaseName
	}
	return safe
}
