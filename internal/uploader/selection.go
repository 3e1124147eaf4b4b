package uploader

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/gabriel-vasile/mimetype"
)

// SelectedFile is a file the user picked, not yet read.
// ContentType is what the picker declared; an empty or generic type is sniffed from the content.
type SelectedFile struct {
	Name        string
	ContentType string
	Size        int64
	open        func() (io.ReadCloser, error)
}

func FromPath(path string) (SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SelectedFile{}, err
	}
	if info.IsDir() {
		return SelectedFile{}, fmt.Errorf("%s is a directory", path)
	}
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return SelectedFile{}, fmt.Errorf("detect type of %s: %w", path, err)
	}
	return SelectedFile{
		Name:        filepath.Base(path),
		ContentType: detected.String(),
		Size:        info.Size(),
		open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func FromMultipart(fh *multipart.FileHeader) SelectedFile {
	return SelectedFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func FromBytes(name string, contentType string, data []byte) SelectedFile {
	return SelectedFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// MimeType returns the declared type, or the sniffed one when nothing useful was declared.
func (f SelectedFile) MimeType() string {
	declared := baseType(f.ContentType)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if f.open == nil {
		return declared
	}
	rc, err := f.open()
	if err != nil {
		return declared
	}
	defer rc.Close()
	detected, err := mimetype.DetectReader(rc)
	if err != nil {
		return declared
	}
	return baseType(detected.String())
}

func (f SelectedFile) IsPDF() bool {
	return f.MimeType() == config.PDFMimeType
}

func (f SelectedFile) read(limit int64) ([]byte, error) {
	if f.open == nil {
		return nil, fmt.Errorf("%s cannot be opened", f.Name)
	}
	rc, err := f.open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s is larger than %d MB", f.Name, limit>>20)
	}
	return data, nil
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
