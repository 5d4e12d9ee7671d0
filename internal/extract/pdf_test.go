package extract

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal uncompressed PDF with one page per content stream.
func buildPDF(contents ...string) []byte {
	pageCount := len(contents)
	fontID := 3 + 2*pageCount

	objects := make([]string, 0, 2+2*pageCount+1)
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, 0, pageCount)
	for i := range contents {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+2*i))
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pageCount))

	for i, content := range contents {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontID, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func textPage(s string) string {
	return fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", s)
}

func TestTextSinglePage(t *testing.T) {
	text, err := Text(buildPDF(textPage("Senior   Go    Engineer")))
	require.NoError(t, err)

	assert.Contains(t, text, "Senior Go Engineer")
	assert.Equal(t, strings.TrimSpace(text), text)
	assert.NotContains(t, text, "  ")
}

func TestTextKeepsPageOrder(t *testing.T) {
	text, err := Text(buildPDF(textPage("Kubernetes"), textPage("Terraform")))
	require.NoError(t, err)

	first := strings.Index(text, "Kubernetes")
	second := strings.Index(text, "Terraform")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
}

func TestTextSkipsEmptyPages(t *testing.T) {
	text, err := Text(buildPDF("", textPage("Docker")))
	require.NoError(t, err)
	assert.Contains(t, text, "Docker")
}

func TestTextFailures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty input", data: nil},
		{name: "not a pdf", data: []byte("this is a plain text resume")},
		{name: "truncated pdf", data: buildPDF(textPage("Go"))[:40]},
		{name: "no text on any page", data: buildPDF("", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Text(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExtraction)
			assert.Empty(t, text)
		})
	}
}
