package uploader

import (
	"bytes"
	"fmt"

	"github.com/dslipak/pdf"
)

// countPages returns the page count of a PDF held in memory.
// The parser panics on some malformed files, so that is reported as an error.
func countPages(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
