package loader

import (
	"fmt"
	"strings"
)

// FileNotFoundError indicates the document path did not resolve.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// UnsupportedFormatError indicates the file extension is not one of the
// supported set.
type UnsupportedFormatError struct {
	Extension string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q (supported: %s)",
		e.Extension, strings.Join(e.Supported, ", "))
}

// MissingDependencyError indicates an external tool needed for a format is
// unavailable. It carries guidance on how to obtain the tool.
type MissingDependencyError struct {
	Format   Format
	Tool     string
	Guidance string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s support requires %s: %s", e.Format, e.Tool, e.Guidance)
}

// DecodeError indicates content extraction failed or yielded no text, for
// example a corrupt or image-only PDF.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no text content extracted from %s", e.Path)
	}
	return fmt.Sprintf("extracting text from %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
