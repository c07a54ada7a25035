// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/matrix/internal/adapters/actions"
	_ "go.trai.ch/matrix/internal/adapters/config"
	_ "go.trai.ch/matrix/internal/adapters/fs"
	_ "go.trai.ch/matrix/internal/adapters/linear"
	_ "go.trai.ch/matrix/internal/adapters/logger"
	_ "go.trai.ch/matrix/internal/adapters/report"
	_ "go.trai.ch/matrix/internal/adapters/shell"
	_ "go.trai.ch/matrix/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/matrix/internal/adapters/toolchain"
	_ "go.trai.ch/matrix/internal/adapters/workspace"
	// Register app and engine nodes.
	_ "go.trai.ch/matrix/internal/app"
	_ "go.trai.ch/matrix/internal/engine/dispatcher"
)
