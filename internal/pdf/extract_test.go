package pdf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestPDF assembles a minimal uncompressed PDF with one page per entry
// in pageTexts, computing the cross-reference table offsets as it goes. An
// empty string produces a page with no text content.
func buildTestPDF(pageTexts []string) []byte {
	var buf bytes.Buffer
	offsets := []int{0} // object 0 is the free-list head

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	numPages := len(pageTexts)
	// Object layout: 1 catalog, 2 pages root, then per page i:
	// page object (3+2i), content stream (4+2i), and finally the font.
	fontObj := 3 + 2*numPages

	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := ""
	for i := 0; i < numPages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, numPages))

	for i, text := range pageTexts {
		pageNum := 3 + 2*i
		contentNum := pageNum + 1
		writeObj(fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			pageNum, contentNum, fontObj))

		content := ""
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		writeObj(fmt.Sprintf(
			"%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			contentNum, len(content), content))
	}

	writeObj(fmt.Sprintf(
		"%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontObj))

	xrefOffset := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf(
		"trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets), xrefOffset))

	return buf.Bytes()
}

func TestExtract_SinglePage(t *testing.T) {
	data := buildTestPDF([]string{"Hello World"})

	pages, err := Extract(data)

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "Hello")
	assert.Contains(t, pages[0].Text, "World")
}

func TestExtract_PageWithoutTextYieldsEmptyText(t *testing.T) {
	data := buildTestPDF([]string{"Page one content", ""})

	pages, err := Extract(data)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0].Text, "Page one content")
	assert.Equal(t, 2, pages[1].Number)
	assert.Empty(t, pages[1].Text)
}

func TestExtract_NotAPDF(t *testing.T) {
	pages, err := Extract([]byte("this is just a text file, not a pdf"))

	assert.Nil(t, pages)
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeExtraction, domainErr.Code)
}

func TestExtract_EmptyPayload(t *testing.T) {
	pages, err := Extract(nil)

	assert.Nil(t, pages)
	assert.Error(t, err)
}
