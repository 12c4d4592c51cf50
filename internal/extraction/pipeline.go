package extraction

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"

	"ragkb-backend/internal/storage"
)

// Pipeline runs the five extraction stages sequentially: scan, materialize,
// classify, assemble, and — only when one of those fails — the salvage
// chain. One Pipeline value serves one run; the object store client is
// injected by the caller, which owns its lifecycle.
type Pipeline struct {
	Scanner    Scanner
	Store      storage.ObjectStore
	Classifier Classifier
	Assembler  *Assembler
	Bucket     string
}

func NewPipeline(store storage.ObjectStore, bucket string) *Pipeline {
	return &Pipeline{
		Scanner:    NewPDFScanner(),
		Store:      store,
		Classifier: NewKeywordClassifier(),
		Assembler:  NewAssembler(),
		Bucket:     bucket,
	}
}

// Result is the terminal artifact of a successful (or salvaged) run.
type Result struct {
	Output Output
	Images []ExtractedImage
}

// Process runs the pipeline over one PDF. Per-image upload failures degrade
// the output but never abort the run; scan or assembly failures fall into
// the salvage chain. Nothing is retried.
func (p *Pipeline) Process(ctx context.Context, pdfPath string) (*Result, error) {
	if err := p.Store.EnsureBucket(ctx, p.Bucket); err != nil {
		return nil, fmt.Errorf("failed to prepare bucket %s: %w", p.Bucket, err)
	}
	if err := p.Store.SetPublicRead(ctx, p.Bucket); err != nil {
		return nil, fmt.Errorf("failed to set bucket policy on %s: %w", p.Bucket, err)
	}

	baseName := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	materializer := &Materializer{Store: p.Store, Bucket: p.Bucket}

	doc, err := p.Scanner.Open(pdfPath)
	if err != nil {
		return p.salvage(ctx, pdfPath, 0, nil, err)
	}
	defer doc.Close()

	pageCount := doc.PageCount()
	slog.Info("PDF opened", "path", pdfPath, "pages", pageCount)

	var (
		pages   []PageText
		images  []ExtractedImage
		missing []MissingImage
	)

	for n := 1; n <= pageCount; n++ {
		page, rawImages, err := doc.Page(n)
		if err != nil {
			return p.salvage(ctx, pdfPath, pageCount, images, err)
		}
		pages = append(pages, page)

		for idx, raw := range rawImages {
			img, err := materializer.UploadImage(ctx, raw, baseName, n, idx+1)
			if err != nil {
				slog.Warn("Image upload failed, assembling without it", "page", n, "error", err)
				missing = append(missing, MissingImage{Page: n, Filename: ImageObjectKey(baseName, n, idx+1, raw.Ext)})
				continue
			}
			images = append(images, img)
		}
	}

	mode := p.Classifier.Classify(pages)
	slog.Info("Document classified", "path", pdfPath, "mode", mode, "images", len(images))

	var output Output
	switch mode {
	case ModeMaintenanceCase:
		output = p.Assembler.AssemblePages(pages, images, missing)
	default:
		output = p.Assembler.AssembleMerged(pages, images, missing)
	}

	return &Result{Output: output, Images: images}, nil
}

// salvage is the failure-recovery chain. Tier 1 reuses images uploaded
// before the failure; tier 2 treats the source file itself as a single
// raster image; tier 3 surfaces a terminal error.
func (p *Pipeline) salvage(ctx context.Context, pdfPath string, pageCount int, images []ExtractedImage, cause error) (*Result, error) {
	slog.Error("PDF processing failed, attempting salvage", "path", pdfPath, "error", cause)

	if len(images) > 0 {
		slog.Info("Salvaging run from already uploaded images", "count", len(images))
		output := p.Assembler.AssembleImageOnly(pageCount, images)
		return &Result{Output: output, Images: images}, nil
	}

	if img, ok := p.uploadFileAsImage(ctx, pdfPath); ok {
		slog.Info("Source file salvaged as a single image", "url", img.URL)
		output := MergedOutput{Text: imageTag(img.URL, salvageImageAlt)}
		return &Result{Output: output, Images: []ExtractedImage{img}}, nil
	}

	return nil, &ProcessingError{Path: pdfPath, Err: cause}
}

// uploadFileAsImage handles the mislabeled-file case: a "PDF" that is
// actually a raster image is uploaded whole.
func (p *Pipeline) uploadFileAsImage(ctx context.Context, path string) (ExtractedImage, bool) {
	f, err := os.Open(path)
	if err != nil {
		return ExtractedImage{}, false
	}
	defer f.Close()

	_, format, err := image.Decode(f)
	if err != nil {
		return ExtractedImage{}, false
	}

	if _, err := f.Seek(0, 0); err != nil {
		return ExtractedImage{}, false
	}

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	filename := fmt.Sprintf("document_image_%s.%s", suffix, format)

	url, err := p.Store.PutObject(ctx, p.Bucket, filename, f, "image/"+format)
	if err != nil {
		slog.Warn("Failed to upload source file as image", "path", path, "error", err)
		return ExtractedImage{}, false
	}

	return ExtractedImage{
		Filename:    filename,
		Page:        1,
		ContentType: format,
		URL:         url,
	}, true
}
