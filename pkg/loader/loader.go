// Package loader reads plain text out of document files. Format support
// is registered per extension so individual formats can be faked in tests,
// and capability checks for external tools run lazily per format rather
// than at startup.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Format identifies a supported document format.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
)

// LoadFunc extracts plain text from a document file.
type LoadFunc func(path string) (string, error)

// CapabilityFunc reports whether a format can be loaded on this system.
// A nil return means the format is available.
type CapabilityFunc func() error

// Loader dispatches document loading on file extension.
type Loader struct {
	loaders      map[Format]LoadFunc
	capabilities map[Format]CapabilityFunc
}

// New creates a loader with the built-in format support: plain text, PDF,
// DOCX, and legacy DOC via the external antiword tool.
func New() *Loader {
	l := &Loader{
		loaders:      make(map[Format]LoadFunc),
		capabilities: make(map[Format]CapabilityFunc),
	}
	l.Register(FormatText, loadText, nil)
	l.Register(FormatPDF, loadPDF, nil)
	l.Register(FormatDOCX, loadDOCX, nil)
	l.Register(FormatDOC, loadDoc, docCapability)
	return l
}

// Register installs or replaces the loader for a format. The capability
// function may be nil for formats that are always available.
func (l *Loader) Register(format Format, fn LoadFunc, capability CapabilityFunc) {
	l.loaders[format] = fn
	l.capabilities[format] = capability
}

// Formats returns the registered formats in stable order.
func (l *Loader) Formats() []Format {
	formats := make([]Format, 0, len(l.loaders))
	for format := range l.loaders {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// SupportedExtensions returns the registered extensions with leading dots.
func (l *Loader) SupportedExtensions() []string {
	extensions := make([]string, 0, len(l.loaders))
	for format := range l.loaders {
		extensions = append(extensions, "."+string(format))
	}
	sort.Strings(extensions)
	return extensions
}

// FormatForPath resolves the format for a path from its extension.
func (l *Loader) FormatForPath(path string) (Format, error) {
	extension := strings.ToLower(filepath.Ext(path))
	format := Format(strings.TrimPrefix(extension, "."))
	if _, ok := l.loaders[format]; !ok {
		return "", &UnsupportedFormatError{
			Extension: extension,
			Supported: l.SupportedExtensions(),
		}
	}
	return format, nil
}

// Capability reports whether the format can be loaded on this system. The
// check runs when called, never at construction.
func (l *Loader) Capability(format Format) error {
	capability, ok := l.capabilities[format]
	if !ok {
		return &UnsupportedFormatError{
			Extension: "." + string(format),
			Supported: l.SupportedExtensions(),
		}
	}
	if capability == nil {
		return nil
	}
	return capability()
}

// Load extracts the plain-text content of the document at path. Analysis
// never proceeds on empty content; an extraction that yields no text is a
// DecodeError.
func (l *Loader) Load(path string) (string, error) {
	format, err := l.FormatForPath(path)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", &FileNotFoundError{Path: path}
		}
		return "", fmt.Errorf("accessing %s: %w", path, err)
	}

	text, err := l.loaders[format](path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &DecodeError{Path: path}
	}
	return text, nil
}

// loadText reads a plain text file, dropping invalid UTF-8 bytes.
func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
