package api

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// Multipart is a multipart/form-data body. Files are streamed from disk
// (or any reader) while the request is sent, so large videos are never
// held in memory.
type Multipart struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field    string
	filename string
	path     string
	reader   io.Reader
}

// NewMultipart returns an empty form.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Field adds a text field.
func (m *Multipart) Field(name, value string) *Multipart {
	m.fields = append(m.fields, formField{name: name, value: value})
	return m
}

// FilePath adds a file part read from path when the request is sent.
func (m *Multipart) FilePath(field, path string) *Multipart {
	m.files = append(m.files, formFile{field: field, filename: filepath.Base(path), path: path})
	return m
}

// FileReader adds a file part read from r.
func (m *Multipart) FileReader(field, filename string, r io.Reader) *Multipart {
	m.files = append(m.files, formFile{field: field, filename: filename, reader: r})
	return m
}

// open opens every file up front so a missing file fails before any
// network traffic, then streams the body through a pipe.
func (m *Multipart) open() (io.Reader, string, error) {
	readers := make([]io.Reader, len(m.files))
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	for i, f := range m.files {
		if f.reader != nil {
			readers[i] = f.reader
			continue
		}
		file, err := os.Open(f.path)
		if err != nil {
			closeAll()
			return nil, "", fmt.Errorf("%w: %s: %v", ErrInvalidInput, f.field, err)
		}
		closers = append(closers, file)
		readers[i] = file
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer closeAll()
		err := m.write(mw, readers)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType(), nil
}

func (m *Multipart) write(mw *multipart.Writer, readers []io.Reader) error {
	for _, f := range m.fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return err
		}
	}
	for i, f := range m.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.field), escapeQuotes(f.filename)))
		h.Set("Content-Type", contentTypeFor(f.filename))

		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, readers[i]); err != nil {
			return fmt.Errorf("write %s: %w", f.field, err)
		}
	}
	return nil
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
