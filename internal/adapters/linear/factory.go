package linear

import (
	"io"

	"go.trai.ch/matrix/internal/adapters/detector"
	"go.trai.ch/matrix/internal/core/ports"
)

// Factory builds renderers for an output mode flag.
type Factory struct {
	detect func() detector.OutputMode
}

// NewFactory creates a Factory that resolves "auto" with detect.
func NewFactory(detect func() detector.OutputMode) *Factory {
	if detect == nil {
		detect = detector.DetectEnvironment
	}
	return &Factory{detect: detect}
}

// New returns a renderer for mode.
func (f *Factory) New(stdout, stderr io.Writer, mode string) ports.Renderer {
	resolved := detector.ResolveMode(f.detect(), mode)
	return NewRenderer(stdout, stderr, detector.Profile(resolved))
}
