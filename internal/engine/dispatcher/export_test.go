package dispatcher

import "go.trai.ch/matrix/internal/core/domain"

// JobStatusMap returns a copy of the internal job status map.
// This is exported for testing purposes only.
func (d *Dispatcher) JobStatusMap() map[string]domain.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	statusMap := make(map[string]domain.Status, len(d.jobStatus))
	for k, v := range d.jobStatus {
		statusMap[k] = v
	}
	return statusMap
}
