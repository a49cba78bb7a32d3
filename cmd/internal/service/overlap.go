package service

import "meetpoint/cmd/internal/domain/entity"

// OverlapDetector answers whether a host is already booked inside a
// time window. It leans on the store's range query and re-applies the
// half-open intersection predicate in memory, so its answer does not
// depend on how literal a store implementation's filtering is.
type OverlapDetector struct {
	Store AppointmentStore
}

// FindConflicts returns every non-cancelled appointment of the host
// whose [startTime, endTime) window intersects [start, end), in store
// order (ascending appointment id). excludeID removes one appointment
// from consideration; creation passes "" since a new appointment
// cannot conflict with itself. Rescheduling is not part of the current
// API surface, so excludeID only matters to future update paths.
func (d *OverlapDetector) FindConflicts(hostID string, start, end int64, excludeID string) ([]*entity.Appointment, error) {
	candidates, err := d.Store.FindOverlapping(hostID, start, end)
	if err != nil {
		return nil, err
	}

	var conflicts []*entity.Appointment
	for _, candidate := range candidates {
		if candidate.Status == entity.StatusCancelled {
			continue
		}
		if excludeID != "" && candidate.ID == excludeID {
			continue
		}
		if candidate.Overlaps(start, end) {
			conflicts = append(conflicts, candidate)
		}
	}
	return conflicts, nil
}
