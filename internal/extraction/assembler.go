package extraction

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	imageDisplayWidth   = "300"
	genericImageAlt     = "文档图片"
	maintenanceImageAlt = "维修图片"
	salvageImageAlt     = "图片"
	imageSectionHeader  = "\n### 相关图片\n"
)

// CleanupProfile holds the text cleanup patterns applied before assembly.
// The default profile is tuned for Chinese technical documents; other
// document families can supply their own.
type CleanupProfile struct {
	Name string
	// LeadingArtifact strips numeric-only lines left behind by page
	// numbering, anchored per physical line.
	LeadingArtifact *regexp.Regexp
}

func ChineseTechnicalProfile() CleanupProfile {
	return CleanupProfile{
		Name:            "chinese-technical",
		LeadingArtifact: regexp.MustCompile(`(?m)^\d+\s*\n`),
	}
}

func (p CleanupProfile) Clean(text string) string {
	text = strings.TrimSpace(text)
	if p.LeadingArtifact != nil {
		text = p.LeadingArtifact.ReplaceAllString(text, "")
	}
	return text
}

// Assembler turns scanned pages and uploaded images into the final document
// shape. Segment order is always scan order: page ascending, then paragraph
// order, then image order.
type Assembler struct {
	Profile CleanupProfile
}

func NewAssembler() *Assembler {
	return &Assembler{Profile: ChineseTechnicalProfile()}
}

// AssembleMerged builds the single generic-mode document.
func (a *Assembler) AssembleMerged(pages []PageText, images []ExtractedImage, missing []MissingImage) MergedOutput {
	var segments []string

	for _, page := range pages {
		text := a.Profile.Clean(page.Text)

		for _, para := range strings.Split(text, "\n\n") {
			if para = strings.TrimSpace(para); para != "" {
				segments = append(segments, para)
			}
		}

		for _, img := range imagesForPage(images, page.Page) {
			segments = append(segments, "\n"+imageTag(img.URL, genericImageAlt)+"\n")
		}
		for _, miss := range missingForPage(missing, page.Page) {
			segments = append(segments, missingImageMarker(miss))
		}
	}

	return MergedOutput{Text: strings.Join(segments, "\n")}
}

// AssemblePages builds one independent document per page for
// maintenance-case documents.
func (a *Assembler) AssemblePages(pages []PageText, images []ExtractedImage, missing []MissingImage) PageOutput {
	docs := make([]PageDocument, 0, len(pages))

	for _, page := range pages {
		parts := []string{a.Profile.Clean(page.Text)}

		pageImages := imagesForPage(images, page.Page)
		pageMissing := missingForPage(missing, page.Page)
		if len(pageImages) > 0 || len(pageMissing) > 0 {
			parts = append(parts, imageSectionHeader)
			for _, img := range pageImages {
				parts = append(parts, imageTag(img.URL, maintenanceImageAlt))
			}
			for _, miss := range pageMissing {
				parts = append(parts, missingImageMarker(miss))
			}
		}

		docs = append(docs, PageDocument{
			Page:    page.Page,
			Content: strings.Join(parts, "\n"),
			Title:   fmt.Sprintf("维修案例第%d页", page.Page),
		})
	}

	return PageOutput{Pages: docs}
}

// AssembleImageOnly builds the tier-1 salvage document: per-page headings
// over the images uploaded before the failure, no text.
func (a *Assembler) AssembleImageOnly(pageCount int, images []ExtractedImage) MergedOutput {
	var segments []string

	for page := 1; page <= pageCount; page++ {
		pageImages := imagesForPage(images, page)
		if len(pageImages) == 0 {
			continue
		}

		segments = append(segments, fmt.Sprintf("## 第%d页图片\n", page))
		for _, img := range pageImages {
			segments = append(segments, "\n"+imageTag(img.URL, salvageImageAlt)+"\n")
		}
	}

	return MergedOutput{Text: strings.Join(segments, "\n")}
}

func imageTag(url, alt string) string {
	return fmt.Sprintf(`<img src="%s" alt="%s" width="%s">`, url, alt, imageDisplayWidth)
}

func missingImageMarker(miss MissingImage) string {
	return fmt.Sprintf("<!-- 图片上传失败: %s -->", miss.Filename)
}

func imagesForPage(images []ExtractedImage, page int) []ExtractedImage {
	var out []ExtractedImage
	for _, img := range images {
		if img.Page == page {
			out = append(out, img)
		}
	}
	return out
}

func missingForPage(missing []MissingImage, page int) []MissingImage {
	var out []MissingImage
	for _, miss := range missing {
		if miss.Page == page {
			out = append(out, miss)
		}
	}
	return out
}
