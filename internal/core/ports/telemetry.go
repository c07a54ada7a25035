package ports

import (
	"context"
	"io"

	"go.trai.ch/matrix/internal/core/domain"
)

// Telemetry records the progress of jobs and steps.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts a vertex identified by id and returns a context carrying it.
	Record(ctx context.Context, id, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// TelemetryFactory opens the telemetry session of one run.
type TelemetryFactory interface {
	// Open starts a session that journals to path. An empty path records nothing.
	Open(path string) (Telemetry, error)
}

// Vertex is one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer for the unit's standard output.
	Stdout() io.Writer
	// Stderr returns a writer for the unit's error output.
	Stderr() io.Writer
	// Log records a message associated with the unit.
	Log(level domain.LogLevel, msg string)
	// Complete marks the unit as finished, failed when err is non-nil.
	Complete(err error)
}

type vertexKey struct{}

// ContextWithVertex returns a copy of ctx carrying v.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex carried by ctx, if any.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}
