package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

var allocationKinds = []plan.AllocationKind{
	plan.AllocationProject,
	plan.AllocationSLA,
	plan.AllocationMisc,
}

var markerKinds = []plan.MarkerKind{
	plan.MarkerNote,
	plan.MarkerDeadline,
	plan.MarkerMilestone,
	plan.MarkerHoliday,
}

// allocationForm collects the fields for creating or editing an
// allocation. Project and kind cycle with left/right; the rest are
// text inputs.
type allocationForm struct {
	editing   *plan.Allocation // nil when creating
	subjectID int64
	projects  []*plan.Project

	projectIdx int
	kindIdx    int
	title      textinput.Model
	start      textinput.Model
	end        textinput.Model
	perWeek    textinput.Model
	notes      textinput.Model

	focus     int
	fieldErrs map[string][]string
}

const allocationFormFields = 7 // project, kind, title, start, end, perWeek, notes

func dateInput(value time.Time) textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 10
	ti.Width = 12
	ti.SetValue(dateutil.FormatDate(value))
	return ti
}

func newAllocationForm(subjectID int64, projects []*plan.Project, start, end time.Time) *allocationForm {
	title := textinput.New()
	title.Placeholder = "Block title"
	title.CharLimit = 80
	title.Width = 30

	perWeek := textinput.New()
	perWeek.CharLimit = 4
	perWeek.Width = 6
	perWeek.SetValue("5")

	notes := textinput.New()
	notes.Placeholder = "Notes"
	notes.CharLimit = 200
	notes.Width = 40

	return &allocationForm{
		subjectID: subjectID,
		projects:  projects,
		title:     title,
		start:     dateInput(start),
		end:       dateInput(end),
		perWeek:   perWeek,
		notes:     notes,
	}
}

func newEditForm(a *plan.Allocation, projects []*plan.Project) *allocationForm {
	f := newAllocationForm(a.SubjectID, projects, a.StartDate, a.EndDate)
	f.editing = a
	for i, k := range allocationKinds {
		if k == a.Kind {
			f.kindIdx = i
		}
	}
	for i, p := range projects {
		if p.ID == a.ProjectID {
			f.projectIdx = i
		}
	}
	f.title.SetValue(a.Title)
	f.perWeek.SetValue(strconv.FormatFloat(a.DaysPerWeek, 'f', -1, 64))
	f.notes.SetValue(a.Notes)
	return f
}

func (f *allocationForm) kind() plan.AllocationKind {
	return allocationKinds[f.kindIdx]
}

func (f *allocationForm) projectID() int64 {
	if f.kind() != plan.AllocationProject || len(f.projects) == 0 {
		return 0
	}
	return f.projects[f.projectIdx].ID
}

// cycle adjusts the focused selector field by delta.
func (f *allocationForm) cycle(delta int) {
	switch f.focus {
	case 0:
		if n := len(f.projects); n > 0 {
			f.projectIdx = (f.projectIdx + delta + n) % n
		}
	case 1:
		n := len(allocationKinds)
		f.kindIdx = (f.kindIdx + delta + n) % n
	}
}

func (f *allocationForm) next() {
	f.setFocus((f.focus + 1) % allocationFormFields)
}

func (f *allocationForm) prev() {
	f.setFocus((f.focus + allocationFormFields - 1) % allocationFormFields)
}

func (f *allocationForm) setFocus(focus int) {
	f.focus = focus
	inputs := f.inputs()
	for i, ti := range inputs {
		if i+2 == focus {
			ti.Focus()
		} else {
			ti.Blur()
		}
	}
}

func (f *allocationForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.title, &f.start, &f.end, &f.perWeek, &f.notes}
}

// update forwards a message to the focused text input.
func (f *allocationForm) update(msg tea.Msg) tea.Cmd {
	if f.focus < 2 {
		return nil
	}
	in := f.inputs()[f.focus-2]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

// build validates the form into a domain record. Validation failures
// come back as a field error map mirroring the backend's, so inline
// display works the same for both.
func (f *allocationForm) build() (*plan.Allocation, bool) {
	f.fieldErrs = map[string][]string{}

	start, err := dateutil.ParseDate(f.start.Value())
	if err != nil {
		f.fieldErrs["start_date"] = []string{"use the YYYY-MM-DD format"}
	}
	end, err := dateutil.ParseDate(f.end.Value())
	if err != nil {
		f.fieldErrs["end_date"] = []string{"use the YYYY-MM-DD format"}
	}
	perWeek, err := strconv.ParseFloat(f.perWeek.Value(), 64)
	if err != nil {
		f.fieldErrs["days_per_week"] = []string{"must be a number"}
	}
	if len(f.fieldErrs) > 0 {
		return nil, false
	}

	a, err := plan.NewAllocation(f.subjectID, f.projectID(), f.kind(), f.title.Value(), start, end, perWeek)
	if err != nil {
		f.fieldErrs[fieldForError(err)] = []string{err.Error()}
		return nil, false
	}
	a.Notes = f.notes.Value()
	if f.editing != nil {
		a.ID = f.editing.ID
	}
	return a, true
}

// fieldForError maps domain validation errors onto form fields.
func fieldForError(err error) string {
	switch err {
	case plan.ErrProjectRequired:
		return "project_id"
	case plan.ErrTitleRequired:
		return "title"
	case plan.ErrEndBeforeStart:
		return "end_date"
	case plan.ErrInvalidDaysPerWeek:
		return "days_per_week"
	default:
		return "base"
	}
}

// markerForm collects the fields for a new or edited marker.
type markerForm struct {
	editing   *plan.Marker // nil when creating
	subjectID int64        // 0 = global
	kindIdx   int
	title     textinput.Model
	date      textinput.Model

	focus     int
	fieldErrs map[string][]string
}

const markerFormFields = 3 // kind, title, date

func newMarkerForm(subjectID int64, date time.Time) *markerForm {
	title := textinput.New()
	title.Placeholder = "Marker title"
	title.CharLimit = 80
	title.Width = 30
	title.Focus()

	return &markerForm{
		subjectID: subjectID,
		focus:     1,
		title:     title,
		date:      dateInput(date),
	}
}

func newMarkerEditForm(mk *plan.Marker) *markerForm {
	f := newMarkerForm(mk.SubjectID, mk.Date)
	f.editing = mk
	f.title.SetValue(mk.Title)
	for i, k := range markerKinds {
		if k == mk.Kind {
			f.kindIdx = i
		}
	}
	return f
}

func (f *markerForm) kind() plan.MarkerKind {
	return markerKinds[f.kindIdx]
}

func (f *markerForm) cycle(delta int) {
	if f.focus == 0 {
		n := len(markerKinds)
		f.kindIdx = (f.kindIdx + delta + n) % n
	}
}

func (f *markerForm) next() {
	f.setFocus((f.focus + 1) % markerFormFields)
}

func (f *markerForm) prev() {
	f.setFocus((f.focus + markerFormFields - 1) % markerFormFields)
}

func (f *markerForm) setFocus(focus int) {
	f.focus = focus
	f.title.Blur()
	f.date.Blur()
	switch focus {
	case 1:
		f.title.Focus()
	case 2:
		f.date.Focus()
	}
}

func (f *markerForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case 1:
		f.title, cmd = f.title.Update(msg)
	case 2:
		f.date, cmd = f.date.Update(msg)
	}
	return cmd
}

func (f *markerForm) build() (*plan.Marker, bool) {
	f.fieldErrs = map[string][]string{}

	date, err := dateutil.ParseDate(f.date.Value())
	if err != nil {
		f.fieldErrs["date"] = []string{"use the YYYY-MM-DD format"}
		return nil, false
	}
	m, err := plan.NewMarker(f.subjectID, date, f.title.Value(), f.kind())
	if err != nil {
		f.fieldErrs["title"] = []string{err.Error()}
		return nil, false
	}
	if f.editing != nil {
		m.ID = f.editing.ID
		m.Description = f.editing.Description
		m.Color = f.editing.Color
	}
	return m, true
}
