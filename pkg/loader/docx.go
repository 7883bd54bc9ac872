package loader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// loadDOCX extracts paragraph text from a DOCX file. A DOCX document is a
// zip archive whose word/document.xml holds the body; text lives in w:t
// elements grouped into w:p paragraphs.
func loadDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	defer archive.Close()

	var document *zip.File
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			document = file
			break
		}
	}
	if document == nil {
		return "", &DecodeError{Path: path, Err: fmt.Errorf("word/document.xml not found in archive")}
	}

	reader, err := document.Open()
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	defer reader.Close()

	text, err := extractDocumentXML(reader)
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	return text, nil
}

// extractDocumentXML walks the document XML, collecting text runs and
// emitting one line per paragraph.
func extractDocumentXML(reader io.Reader) (string, error) {
	decoder := xml.NewDecoder(reader)

	var sb strings.Builder
	inTextRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing document XML: %w", err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			switch element.Name.Local {
			case "t":
				inTextRun = true
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			}

		case xml.EndElement:
			switch element.Name.Local {
			case "t":
				inTextRun = false
			case "p":
				sb.WriteString("\n")
			}

		case xml.CharData:
			if inTextRun {
				sb.Write(element)
			}
		}
	}

	return sb.String(), nil
}
