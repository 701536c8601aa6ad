package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

// Handler implements the HTTP endpoints over the store.
type Handler struct {
	store *Store
}

// NewHandler creates the endpoint handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Wire types. Dates travel as date-only strings; absent optional fields
// stay at their zero value.

type subjectPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Kind  string `json:"kind"`
}

type projectPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Status string `json:"status"`
}

type allocationPayload struct {
	ID          int64    `json:"id,omitempty"`
	SubjectID   int64    `json:"subject_id"`
	ProjectID   int64    `json:"project_id,omitempty"`
	Kind        string   `json:"kind"`
	Title       string   `json:"title,omitempty"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	DaysPerWeek float64  `json:"days_per_week"`
	Notes       string   `json:"notes,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

type leavePayload struct {
	ID        int64    `json:"id,omitempty"`
	SubjectID int64    `json:"subject_id"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	DaysCount int      `json:"days_count"`
	Status    string   `json:"status,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

type markerPayload struct {
	ID          int64  `json:"id,omitempty"`
	SubjectID   int64  `json:"subject_id,omitempty"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// fieldErrors accumulates the 422 field error map.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.store.Subjects(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	out := make([]subjectPayload, len(subjects))
	for i, s := range subjects {
		out[i] = subjectPayload{ID: s.ID, Name: s.Name, Color: s.Color, Kind: string(s.Kind)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.Projects(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	out := make([]projectPayload, len(projects))
	for i, p := range projects {
		out[i] = projectPayload{ID: p.ID, Name: p.Name, Color: p.Color, Status: string(p.Status)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	start, end, ok := rangeParams(w, r)
	if !ok {
		return
	}
	subjectID, _ := strconv.ParseInt(r.URL.Query().Get("subject_id"), 10, 64)
	projectID, _ := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)

	allocations, err := h.store.AllocationsOverlapping(r.Context(), start, end, subjectID, projectID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	out := make([]allocationPayload, len(allocations))
	for i, a := range allocations {
		out[i] = allocationToPayload(a, nil)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	var in allocationPayload
	if !decodeBody(w, r, &in) {
		return
	}
	a, verr := allocationFromPayload(in)
	if verr != nil {
		writeValidation(w, verr)
		return
	}
	warnings, err := h.leaveWarnings(r, a)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if err := h.store.CreateAllocation(r.Context(), a); err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, allocationToPayload(a, warnings))
}

func (h *Handler) UpdateAllocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.store.GetAllocation(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	var in allocationPayload
	if !decodeBody(w, r, &in) {
		return
	}
	a, verr := allocationFromPayload(in)
	if verr != nil {
		writeValidation(w, verr)
		return
	}
	a.ID = id
	warnings, err := h.leaveWarnings(r, a)
	if err != nil {
		writeServerError(w, err)
		return
	}
	if err := h.store.UpdateAllocation(r.Context(), a); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allocationToPayload(a, warnings))
}

func (h *Handler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteAllocation(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ListLeave(w http.ResponseWriter, r *http.Request) {
	start, end, ok := rangeParams(w, r)
	if !ok {
		return
	}
	subjectID, _ := strconv.ParseInt(r.URL.Query().Get("subject_id"), 10, 64)

	entries, err := h.store.LeaveOverlapping(r.Context(), start, end, subjectID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	out := make([]leavePayload, len(entries))
	for i, l := range entries {
		out[i] = leaveToPayload(l)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var in leavePayload
	if !decodeBody(w, r, &in) {
		return
	}
	l, verr := leaveFromPayload(in)
	if verr != nil {
		writeValidation(w, verr)
		return
	}
	if err := h.store.CreateLeave(r.Context(), l); err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, leaveToPayload(l))
}

func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.store.GetLeave(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	var in leavePayload
	if !decodeBody(w, r, &in) {
		return
	}
	l, verr := leaveFromPayload(in)
	if verr != nil {
		writeValidation(w, verr)
		return
	}
	l.ID = id
	if err := h.store.UpdateLeave(r.Context(), l); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaveToPayload(l))
}

func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteLeave(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ListMarkers(w http.ResponseWriter, r *http.Request) {
	start, end, ok := rangeParams(w, r)
	if !ok {
		return
	}
	subjectID, _ := strconv.ParseInt(r.URL.Query().Get("subject_id"), 10, 64)

	markers, err := h.store.MarkersOverlapping(r.Context(), start, end, subjectID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	out := make([]markerPayload, len(markers))
	for i, m := range markers {
		out[i] = markerToPayload(m)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateMarker(w http.ResponseWriter, r *http.Request) {
	var in markerPayload
	if !decodeBody(w, r, &in) {
		return
	}
	m, verr := markerFromPayload(in)
	if verr != nil {
		writeValidation(w, verr)
		return
	}
	if err := h.store.CreateMarker(r.Context(), m); err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, markerToPayload(m))
}

func (h *Handler) UpdateMarker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in markerPayload
	if !decodeBody(w, r, &in) {
		return
	}
	m, verr := markerFromPayload(in)
	if verr != nil {
		writeValidation(w, verr)
		return
	}
	m.ID = id
	if err := h.store.UpdateMarker(r.Context(), m); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markerToPayload(m))
}

func (h *Handler) DeleteMarker(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteMarker(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// leaveWarnings returns the non-blocking advisories for an allocation
// write: approved or requested leave overlapping the allocation range.
func (h *Handler) leaveWarnings(r *http.Request, a *plan.Allocation) ([]string, error) {
	entries, err := h.store.LeaveOverlapping(r.Context(), a.StartDate, a.EndDate, a.SubjectID)
	if err != nil {
		return nil, err
	}
	var warnings []string
	for _, l := range entries {
		warnings = append(warnings, fmt.Sprintf(
			"subject %d has %s leave from %s to %s overlapping this allocation",
			l.SubjectID, l.Status,
			dateutil.FormatDate(l.StartDate), dateutil.FormatDate(l.EndDate)))
	}
	return warnings, nil
}

func allocationToPayload(a *plan.Allocation, warnings []string) allocationPayload {
	return allocationPayload{
		ID:          a.ID,
		SubjectID:   a.SubjectID,
		ProjectID:   a.ProjectID,
		Kind:        string(a.Kind),
		Title:       a.Title,
		StartDate:   dateutil.FormatDate(a.StartDate),
		EndDate:     dateutil.FormatDate(a.EndDate),
		DaysPerWeek: a.DaysPerWeek,
		Notes:       a.Notes,
		Warnings:    warnings,
	}
}

// allocationFromPayload validates and builds the domain record,
// collecting field errors instead of stopping at the first.
func allocationFromPayload(in allocationPayload) (*plan.Allocation, fieldErrors) {
	errs := fieldErrors{}
	if in.SubjectID == 0 {
		errs.add("subject_id", "subject is required")
	}
	kind := plan.AllocationKind(in.Kind)
	if !kind.Valid() {
		errs.add("kind", "kind must be one of project, sla, misc")
	}
	start, end, ok := parseRange(in.StartDate, in.EndDate, errs)
	if !ok || len(errs) > 0 {
		// Run the remaining constructor checks anyway so a single round
		// trip reports everything.
		if ok {
			collectAllocationErrs(in, kind, start, end, errs)
		}
		return nil, errs
	}

	a, err := plan.NewAllocation(in.SubjectID, in.ProjectID, kind, in.Title, start, end, in.DaysPerWeek)
	if err != nil {
		collectAllocationErrs(in, kind, start, end, errs)
		if len(errs) == 0 {
			errs.add("base", err.Error())
		}
		return nil, errs
	}
	a.Notes = in.Notes
	return a, nil
}

func collectAllocationErrs(in allocationPayload, kind plan.AllocationKind, start, end time.Time, errs fieldErrors) {
	if kind == plan.AllocationProject && in.ProjectID == 0 {
		errs.add("project_id", "required when kind is project")
	}
	if kind.Valid() && kind != plan.AllocationProject && in.Title == "" {
		errs.add("title", "required for sla and misc allocations")
	}
	if end.Before(start) {
		errs.add("end_date", "must be on or after start date")
	}
	if in.DaysPerWeek < 0 || in.DaysPerWeek > 7 {
		errs.add("days_per_week", "must be between 0 and 7")
	}
}

func leaveToPayload(l *plan.LeaveEntry) leavePayload {
	return leavePayload{
		ID:        l.ID,
		SubjectID: l.SubjectID,
		StartDate: dateutil.FormatDate(l.StartDate),
		EndDate:   dateutil.FormatDate(l.EndDate),
		DaysCount: l.DaysCount,
		Status:    string(l.Status),
	}
}

func leaveFromPayload(in leavePayload) (*plan.LeaveEntry, fieldErrors) {
	errs := fieldErrors{}
	if in.SubjectID == 0 {
		errs.add("subject_id", "subject is required")
	}
	start, end, ok := parseRange(in.StartDate, in.EndDate, errs)
	if ok && end.Before(start) {
		errs.add("end_date", "must be on or after start date")
	}
	status := plan.LeaveStatus(in.Status)
	if in.Status == "" {
		status = plan.LeaveRequested
	} else if status != plan.LeaveRequested && status != plan.LeaveApproved {
		errs.add("status", "status must be requested or approved")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	l, err := plan.NewLeaveEntry(in.SubjectID, start, end)
	if err != nil {
		errs.add("base", err.Error())
		return nil, errs
	}
	l.Status = status
	return l, nil
}

func markerToPayload(m *plan.Marker) markerPayload {
	return markerPayload{
		ID:          m.ID,
		SubjectID:   m.SubjectID,
		Date:        dateutil.FormatDate(m.Date),
		Title:       m.Title,
		Description: m.Description,
		Color:       m.Color,
		Kind:        string(m.Kind),
	}
}

func markerFromPayload(in markerPayload) (*plan.Marker, fieldErrors) {
	errs := fieldErrors{}
	if in.Title == "" {
		errs.add("title", "title is required")
	}
	date, err := dateutil.ParseDate(in.Date)
	if err != nil {
		errs.add("date", "date must use the YYYY-MM-DD format")
	}
	kind := plan.MarkerKind(in.Kind)
	if in.Kind == "" {
		kind = plan.MarkerNote
	}
	if len(errs) > 0 {
		return nil, errs
	}

	m, err := plan.NewMarker(in.SubjectID, date, in.Title, kind)
	if err != nil {
		errs.add("base", err.Error())
		return nil, errs
	}
	m.Description = in.Description
	m.Color = in.Color
	return m, nil
}

func parseRange(startStr, endStr string, errs fieldErrors) (start, end time.Time, ok bool) {
	var err error
	ok = true
	if start, err = dateutil.ParseDate(startStr); err != nil {
		errs.add("start_date", "date must use the YYYY-MM-DD format")
		ok = false
	}
	if end, err = dateutil.ParseDate(endStr); err != nil {
		errs.add("end_date", "date must use the YYYY-MM-DD format")
		ok = false
	}
	return start, end, ok
}

func rangeParams(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	errs := fieldErrors{}
	start, end, ok = parseRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"), errs)
	if !ok {
		writeValidation(w, errs)
	}
	return start, end, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "record not found")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

func writeValidation(w http.ResponseWriter, errs fieldErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{
		Message: "validation failed",
		Errors:  errs,
	})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, plan.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeServerError(w, err)
}

func writeServerError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, err.Error())
}
