package entity

// ListFilter narrows a listing query. Zero values mean "no
// constraint": empty strings for the id/status filters, nil for the
// time bounds. Times are epoch millis.
type ListFilter struct {
	LocationID     string
	Status         Status
	StartAtOrAfter *int64
	EndAtOrBefore  *int64
}

// Empty reports whether no constraint is set.
func (f ListFilter) Empty() bool {
	return f.LocationID == "" && f.Status == "" && f.StartAtOrAfter == nil && f.EndAtOrBefore == nil
}
