package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/spigell/resume-matcher/internal/utils"
)

// ErrExtraction reports that a document yielded no usable text.
var ErrExtraction = errors.New("text extraction failed")

// Text returns the plain text of a PDF document. Page texts are joined in page
// order and every whitespace run is collapsed to a single space. Pages without
// extractable text contribute nothing.
func Text(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: document is empty", ErrExtraction)
	}

	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: malformed document: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: opening document: %w", ErrExtraction, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		b.WriteString(content)
		b.WriteByte(' ')
	}

	text = utils.CollapseWhitespace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: no extractable text", ErrExtraction)
	}

	return text, nil
}
