package extraction

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupProfile_StripsLeadingNumericLines(t *testing.T) {
	profile := ChineseTechnicalProfile()

	cleaned := profile.Clean("  12\n正文第一段\n3\n正文第二段  ")

	assert.Equal(t, "正文第一段\n正文第二段", cleaned)
}

func TestAssembleMerged_TextOnlyKeepsPageOrder(t *testing.T) {
	assembler := NewAssembler()

	pages := []PageText{
		{Page: 1, Text: "第一页第一段\n\n第一页第二段"},
		{Page: 2, Text: "第二页内容"},
		{Page: 3, Text: "第三页内容"},
	}

	out := assembler.AssembleMerged(pages, nil, nil)

	assert.Equal(t, ModeGeneric, out.Mode())
	assert.NotContains(t, out.Text, "<img")

	// all paragraphs present, in ascending page order
	idx1 := strings.Index(out.Text, "第一页第一段")
	idx2 := strings.Index(out.Text, "第一页第二段")
	idx3 := strings.Index(out.Text, "第二页内容")
	idx4 := strings.Index(out.Text, "第三页内容")
	require.True(t, idx1 >= 0 && idx2 >= 0 && idx3 >= 0 && idx4 >= 0)
	assert.True(t, idx1 < idx2 && idx2 < idx3 && idx3 < idx4)
}

func TestAssembleMerged_ImagesFollowPageText(t *testing.T) {
	assembler := NewAssembler()

	pages := []PageText{
		{Page: 1, Text: "第一页文本"},
		{Page: 2, Text: "第二页文本"},
	}
	images := []ExtractedImage{
		{Filename: "doc_page1_img1_v1.png", Page: 1, URL: "http://minio:9000/b/doc_page1_img1_v1.png"},
		{Filename: "doc_page1_img2_v1.png", Page: 1, URL: "http://minio:9000/b/doc_page1_img2_v1.png"},
	}

	out := assembler.AssembleMerged(pages, images, nil)

	assert.Equal(t, 2, strings.Count(out.Text, "<img"))

	// image order follows embedding order, after page 1 text and before page 2 text
	first := strings.Index(out.Text, images[0].URL)
	second := strings.Index(out.Text, images[1].URL)
	pageTwo := strings.Index(out.Text, "第二页文本")
	require.True(t, first >= 0 && second >= 0)
	assert.True(t, strings.Index(out.Text, "第一页文本") < first)
	assert.True(t, first < second && second < pageTwo)
	assert.Contains(t, out.Text, `alt="文档图片" width="300"`)
}

func TestAssemblePages_OneDocumentPerPage(t *testing.T) {
	assembler := NewAssembler()

	pages := []PageText{
		{Page: 1, Text: "设备名称: X"},
		{Page: 2, Text: "第二页说明"},
	}
	images := []ExtractedImage{
		{Filename: "doc_page1_img1_v1.png", Page: 1, URL: "http://minio:9000/b/doc_page1_img1_v1.png"},
	}

	out := assembler.AssemblePages(pages, images, nil)

	require.Len(t, out.Pages, 2)
	assert.Equal(t, ModeMaintenanceCase, out.Mode())

	pageOne := out.Pages[0]
	assert.Equal(t, 1, pageOne.Page)
	assert.Equal(t, "维修案例第1页", pageOne.Title)
	assert.Contains(t, pageOne.Content, "### 相关图片")
	assert.True(t, strings.HasSuffix(pageOne.Content, fmt.Sprintf(`<img src="%s" alt="维修图片" width="300">`, images[0].URL)))

	pageTwo := out.Pages[1]
	assert.Equal(t, 2, pageTwo.Page)
	assert.Equal(t, "维修案例第2页", pageTwo.Title)
	assert.NotContains(t, pageTwo.Content, "<img")
	assert.NotContains(t, pageTwo.Content, "### 相关图片")
}

func TestAssembleImageOnly_GroupsByPage(t *testing.T) {
	assembler := NewAssembler()

	images := []ExtractedImage{
		{Page: 1, URL: "http://minio:9000/b/p1.png"},
		{Page: 3, URL: "http://minio:9000/b/p3a.png"},
		{Page: 3, URL: "http://minio:9000/b/p3b.png"},
	}

	out := assembler.AssembleImageOnly(3, images)

	assert.Contains(t, out.Text, "## 第1页图片")
	assert.NotContains(t, out.Text, "## 第2页图片")
	assert.Contains(t, out.Text, "## 第3页图片")
	assert.Equal(t, 3, strings.Count(out.Text, "<img"))
}

func TestAssembleMerged_MissingImageLeavesMarker(t *testing.T) {
	assembler := NewAssembler()

	pages := []PageText{{Page: 1, Text: "文本"}}
	missing := []MissingImage{{Page: 1, Filename: "doc_page1_img1_v1.png"}}

	out := assembler.AssembleMerged(pages, nil, missing)

	assert.Contains(t, out.Text, "<!-- 图片上传失败: doc_page1_img1_v1.png -->")
	assert.NotContains(t, out.Text, "<img")
}
