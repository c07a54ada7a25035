// Package build holds build-time information.
package build

// These values default to development placeholders and are overwritten by
// linker flags, e.g. -X go.trai.ch/matrix/internal/build.Version=v1.2.0.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
