// Package progrock journals job and step progress with vito/progrock.
package progrock

import (
	"context"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/matrix/internal/adapters/telemetry"
	"go.trai.ch/matrix/internal/core/ports"
	"go.trai.ch/zerr"
)

// Journals implements ports.TelemetryFactory with progrock journal files.
type Journals struct{}

// NewJournals creates a new Journals.
func NewJournals() *Journals {
	return &Journals{}
}

// Open creates the journal at path and returns a Recorder writing to it. The
// journal holds one JSON encoded progrock.StatusUpdate per line. An empty
// path returns a telemetry that records nothing.
func (j *Journals) Open(path string) (ports.Telemetry, error) {
	if path == "" {
		return telemetry.NewNoOp(), nil
	}
	w, err := progrock.CreateJournal(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create journal"), "path", path)
	}
	return NewRecorder(&lockedWriter{w: w}), nil
}

// Recorder implements ports.Telemetry on top of a progrock.Recorder.
type Recorder struct {
	rec *progrock.Recorder
}

// NewRecorder creates a Recorder sending status updates to w.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{rec: progrock.NewRecorder(w)}
}

// Record starts a vertex. The vertex digest is derived from id, so repeated
// records of the same job or step update one vertex.
func (r *Recorder) Record(ctx context.Context, id, name string) (context.Context, ports.Vertex) {
	v := r.rec.Vertex(digest.FromString(id), name)
	vertex := &Vertex{vertex: v}
	return ports.ContextWithVertex(ctx, vertex), vertex
}

// Close completes the root group and closes the writer.
func (r *Recorder) Close() error {
	r.rec.Complete()
	return r.rec.Close()
}

// lockedWriter serializes status updates of concurrent jobs. Journal files
// are not safe for concurrent writes.
type lockedWriter struct {
	mu sync.Mutex
	w  progrock.Writer
}

func (l *lockedWriter) WriteStatus(u *progrock.StatusUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.WriteStatus(u)
}

func (l *lockedWriter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}
