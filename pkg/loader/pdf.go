package loader

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// loadPDF extracts plain text from a PDF file.
func loadPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	defer file.Close()

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plainText); err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	return buf.String(), nil
}
