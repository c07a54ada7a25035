// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"

	"github.com/muesli/termenv"
	"go.trai.ch/matrix/internal/ui/output"
	"golang.org/x/term"
)

// OutputMode represents the rendering mode for the application.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeInteractive renders with the full color profile of the terminal.
	ModeInteractive
	// ModeLinear renders basic ANSI colors suited to CI logs.
	ModeLinear
	// ModePlain renders without any escape sequences.
	ModePlain
)

// DetectEnvironment returns the recommended output mode based on the environment.
// It checks if stdout is a TTY and if CI environment variables are set.
func DetectEnvironment() OutputMode {
	return Detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv("CI"))
}

// Detect picks a mode from the TTY state of stdout and the CI variable.
func Detect(isTTY bool, ci string) OutputMode {
	if ci == "true" || ci == "1" {
		return ModeLinear
	}
	if !isTTY {
		return ModePlain
	}
	return ModeInteractive
}

// ResolveMode applies user override flag to auto-detection.
// userFlag should be one of: "auto", "linear", "plain", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "linear", "ci":
		return ModeLinear
	case "plain":
		return ModePlain
	default:
		return autoDetected
	}
}

// Profile returns the color profile rendered in mode.
func Profile(mode OutputMode) termenv.Profile {
	switch mode {
	case ModePlain:
		return termenv.Ascii
	case ModeLinear:
		return output.ColorProfileANSI()
	default:
		return output.ColorProfile()
	}
}
