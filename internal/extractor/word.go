package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
)

// WordExtractor converts .doc and .docx uploads via docconv.
type WordExtractor struct{}

func NewWordExtractor() *WordExtractor { return &WordExtractor{} }

func (w *WordExtractor) Extract(_ context.Context, data []byte) (string, error) {
	mime := docconv.MimeTypeByExtension(sniffName(data))
	res, err := docconv.Convert(bytes.NewReader(data), mime, true)
	if err != nil {
		return "", fmt.Errorf("convert word document: %w", err)
	}
	return strings.TrimSpace(res.Body), nil
}

// sniffName maps legacy OLE containers to .doc and zip containers to .docx
// so docconv picks the right converter without trusting the filename.
func sniffName(data []byte) string {
	if bytes.HasPrefix(data, []byte{0xD0, 0xCF, 0x11, 0xE0}) {
		return "f.doc"
	}
	return "f.docx"
}
