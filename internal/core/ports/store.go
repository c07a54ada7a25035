package ports

import "go.trai.ch/matrix/internal/core/domain"

// ReportStore defines the interface for persisting run reports.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ReportStore interface {
	// Write stores the report at path, replacing any previous report.
	Write(path string, report *domain.RunReport) error

	// Read loads the report stored at path.
	Read(path string) (*domain.RunReport, error)
}
