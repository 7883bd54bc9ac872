package loader

import (
	"os/exec"
)

const antiwordTool = "antiword"

// docCapability reports whether legacy DOC support is available. The
// lookup runs when asked, not at startup.
func docCapability() error {
	if _, err := exec.LookPath(antiwordTool); err != nil {
		return &MissingDependencyError{
			Format:   FormatDOC,
			Tool:     antiwordTool,
			Guidance: "install it with your package manager, e.g. apt-get install antiword",
		}
	}
	return nil
}

// loadDoc extracts text from a legacy binary Word file via antiword.
func loadDoc(path string) (string, error) {
	if err := docCapability(); err != nil {
		return "", err
	}

	output, err := exec.Command(antiwordTool, path).Output()
	if err != nil {
		return "", &DecodeError{Path: path, Err: err}
	}
	return string(output), nil
}
