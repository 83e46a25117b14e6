package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"resume-assistant/internal/shared/storage/object"
)

const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	extractedSuffix = ".extracted.txt"
)

var (
	// ErrUnreadableDocument marks input that claims a supported type but cannot be decoded.
	ErrUnreadableDocument = errors.New("unreadable document")
	// ErrUnsupportedType marks input whose type has no extractor.
	ErrUnsupportedType = errors.New("unsupported document type")
)

// Result is the outcome of extracting a stored upload.
type Result struct {
	Text         string
	MimeType     string
	ExtractedKey string
}

// ExtractText reads a stored object, extracts its text, and saves the text as a
// derived object next to the original in the session's namespace. declared is
// the content type the client sent with the upload; the store's sniffed type on
// obj is not trusted over the file extension.
func ExtractText(ctx context.Context, store object.ObjectStore, sessionID string, obj object.Object, fileName, declared string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	body, err := store.Open(ctx, obj.Key)
	if err != nil {
		return Result{}, fmt.Errorf("extract text key=%s: open: %w", obj.Key, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return Result{}, fmt.Errorf("extract text key=%s: read: %w", obj.Key, err)
	}

	mime := ResolveMimeType(declared, fileName, raw)
	text, err := ExtractTextFromBytes(ctx, raw, mime, fileName)
	if err != nil {
		return Result{}, fmt.Errorf("extract text key=%s mime=%s: %w", obj.Key, mime, err)
	}

	derived, err := store.Save(ctx, sessionID, filepath.Base(obj.Key)+extractedSuffix, strings.NewReader(text))
	if err != nil {
		return Result{}, fmt.Errorf("extract text key=%s: save derived: %w", obj.Key, err)
	}

	return Result{Text: text, MimeType: mime, ExtractedKey: derived.Key}, nil
}

// ExtractTextFromBytes extracts trimmed text from an in-memory payload. An empty
// result is not an error.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch mime := ResolveMimeType(mimeType, fileName, data); mime {
	case MimePDF:
		return extractPDF(data)
	case MimeText:
		return extractPlainText(data)
	case MimeDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
}

// ResolveMimeType picks a supported declared type, then the file extension,
// then any other specific declared type, then the sniffed content type. Sniffed
// types that descend from a supported type resolve to that type.
func ResolveMimeType(declared string, fileName string, data []byte) string {
	clean := baseMime(declared)
	switch clean {
	case MimePDF, MimeText, MimeDOCX:
		return clean
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".txt", ".text":
		return MimeText
	case ".docx":
		return MimeDOCX
	}

	switch clean {
	case "", "application/octet-stream", "application/zip", "binary/octet-stream":
	default:
		return clean
	}

	if len(data) == 0 {
		if clean == "" {
			return MimeText
		}
		return clean
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		switch base := baseMime(m.String()); base {
		case MimePDF, MimeText, MimeDOCX:
			return base
		}
	}
	return baseMime(detected.String())
}

func baseMime(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
}

func extractPlainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnreadableDocument)
	}
	return strings.TrimSpace(string(data)), nil
}

// pageSource exposes a paged document one page at a time.
type pageSource interface {
	NumPage() int
	PageText(n int) (string, bool)
}

type pdfPages struct {
	r *pdf.Reader
}

func (p pdfPages) NumPage() int {
	return p.r.NumPage()
}

// PageText returns the page's plain text; ok is false for null pages and pages
// that fail to decode.
func (p pdfPages) PageText(n int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()
	page := p.r.Page(n)
	if page.V.IsNull() {
		return "", false
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return text, true
}

func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: pdf: %v", ErrUnreadableDocument, rec)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrUnreadableDocument, err)
	}
	return joinPages(pdfPages{r: reader}), nil
}

// joinPages concatenates page text in order with no separator.
func joinPages(src pageSource) string {
	var b strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		if text, ok := src.PageText(i); ok {
			b.WriteString(text)
		}
	}
	return strings.TrimSpace(b.String())
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty docx data", ErrUnreadableDocument)
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrUnreadableDocument, err)
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return strings.TrimSpace(raw)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
