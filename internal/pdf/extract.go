// Package pdf extracts per-page plain text from PDF payloads.
package pdf

import (
	"bytes"
	"fmt"
	"log"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/dslipak/pdf"
)

// Extract parses data as a PDF and returns the plain text of each page in
// order. Pages whose text cannot be extracted are returned with empty text
// rather than failing the whole document; a payload that is not a PDF at all
// fails with an extraction error.
func Extract(data []byte) ([]domain.PageText, error) {
	reader, err := openReader(data)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "payload is not a readable PDF", err)
	}

	numPages := reader.NumPage()
	pages := make([]domain.PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, domain.PageText{Number: i})
			continue
		}

		text, err := pageText(page)
		if err != nil {
			log.Printf("pdf: page %d text extraction failed: %v", i, err)
			pages = append(pages, domain.PageText{Number: i})
			continue
		}
		pages = append(pages, domain.PageText{Number: i, Text: text})
	}

	return pages, nil
}

// openReader guards against the parser panicking on malformed input.
func openReader(data []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf page panic: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}
