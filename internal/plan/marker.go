package plan

import (
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
)

// MarkerKind classifies a calendar marker.
type MarkerKind string

const (
	MarkerHoliday   MarkerKind = "holiday"
	MarkerDeadline  MarkerKind = "deadline"
	MarkerMilestone MarkerKind = "milestone"
	MarkerNote      MarkerKind = "note"
)

// Marker is a single-day annotation, global (SubjectID == 0) or pinned
// to one subject's row.
type Marker struct {
	ID          int64
	SubjectID   int64 // 0 = global
	Date        time.Time
	Title       string
	Description string
	Color       string
	Kind        MarkerKind
}

// NewMarker builds a marker with validation.
func NewMarker(subjectID int64, date time.Time, title string, kind MarkerKind) (*Marker, error) {
	if title == "" {
		return nil, ErrEmptyName
	}
	if kind == "" {
		kind = MarkerNote
	}
	return &Marker{
		SubjectID: subjectID,
		Date:      dateutil.TruncateToDay(date),
		Title:     title,
		Kind:      kind,
	}, nil
}

// Global returns true if the marker applies to every row.
func (m *Marker) Global() bool {
	return m.SubjectID == 0
}

// On returns true if the marker falls on the given date.
func (m *Marker) On(d time.Time) bool {
	return dateutil.SameDay(m.Date, d)
}
