// Package tui provides the terminal user interface for crewcal: a
// horizontally scrolling capacity calendar with mouse-driven create,
// move, and resize gestures over the grid engine.
package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvilla/crewcal/internal/api"
	"github.com/mvilla/crewcal/internal/config"
	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
	"github.com/mvilla/crewcal/internal/tui/commands"
	"github.com/mvilla/crewcal/internal/tui/theme"
)

// UIMode represents the current overlay state on top of the grid.
type UIMode int

const (
	UINormal UIMode = iota
	UIMenu          // context menu over a block
	UIAssign        // assignment form after a create gesture
	UIEdit          // allocation edit form
	UIMarker        // marker form
	UIMarkerList    // markers on one day, for edit or delete
	UIConfirm       // delete confirmation
)

// gutterWidth is the fixed label column before the date grid.
const gutterWidth = 18

// headerHeight is the month row plus the day-of-month row.
const headerHeight = 2

// tokenSource shares the anti-forgery token between the event loop and
// the client's header injector.
type tokenSource struct {
	mu    sync.Mutex
	token string
}

func (t *tokenSource) get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

func (t *tokenSource) set(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

// toast is one transient notification.
type toast struct {
	text    string
	warning bool
	danger  bool
	expires time.Time
}

// Model is the main TUI model.
type Model struct {
	// Dependencies
	cfg    *config.Config
	client *api.Client
	csrf   *tokenSource

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// Grid engine
	window      *grid.DateWindow
	pagination  *grid.PaginationController
	interaction *grid.InteractionController
	overlay     *grid.OptimisticStore

	// Data
	base  grid.Dataset // last authoritative server snapshot
	data  grid.Dataset // base plus optimistic overlay
	index *grid.EntityIndex
	rows  []Row

	// View state
	viewMode  ViewMode
	scrollX   int
	rowOffset int
	width     int
	height    int
	loading   bool

	// Overlay state
	uiMode       UIMode
	menuCursor   int
	form         *allocationForm
	markerForm   *markerForm
	markerList   []*plan.Marker
	markerCursor int
	confirm      grid.Block

	// In-flight rewrites keep blocks at their previewed position until
	// the server answers, and the last submitted form is held so a
	// validation failure can reopen it with per-field messages.
	pendingAlloc map[int64]grid.Span
	pendingLeave map[int64]grid.Span
	pendingForm  *allocationForm

	// Messages
	toasts    []toast
	statusMsg string
	err       error

	now func() time.Time
}

// New creates the TUI model wired to the backend at cfg.API.BaseURL.
func New(cfg *config.Config) *Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("dark")
	}

	csrf := &tokenSource{}
	opts := []api.Option{api.WithHeaderInjector(api.CSRFToken(csrf.get))}
	if cfg.API.Token != "" {
		opts = append(opts, api.WithHeaderInjector(api.BearerToken(cfg.API.Token)))
	}
	client := api.NewClient(cfg.API.BaseURL, opts...)

	now := time.Now
	window := grid.NewMonthWindow(now(), cfg.Window.MonthsBefore, cfg.Window.MonthsAfter, cfg.UI.ColumnWidth)
	index := grid.NewEntityIndex(nil, nil, nil)

	m := &Model{
		cfg:          cfg,
		client:       client,
		csrf:         csrf,
		theme:        t,
		styles:       NewStyles(t),
		window:       window,
		pagination:   grid.NewPaginationController(),
		interaction:  grid.NewInteractionController(window, index, cfg.CanModify()),
		overlay:      grid.NewOptimisticStore(),
		index:        index,
		loading:      true,
		pendingAlloc: map[int64]grid.Span{},
		pendingLeave: map[int64]grid.Span{},
		now:          now,
	}
	// Open scrolled to today's column.
	if day := window.DayIndexOf(dateutil.TruncateToDay(now())); day >= 0 {
		m.scrollX = window.OffsetOfDay(day)
	}
	return m
}

// Init starts the anti-forgery handshake and the initial window load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		commands.FetchToken(m.client),
		commands.LoadDataset(m.client, m.window.Start(), m.window.End()),
		commands.DebounceTick(),
	)
}

// refresh rebuilds the derived collections after any data change: the
// merged dataset, the entity index, and the row layout. The interaction
// controller gets the fresh index but keeps its gesture state.
func (m *Model) refresh() {
	m.data = m.base.WithOverlay(m.overlay)
	m.index = m.data.Index()
	m.interaction.SetIndex(m.index)
	m.rows = buildRows(m.data, m.viewMode)
}

// pushToast queues a transient notification.
func (m *Model) pushToast(text string, warning, danger bool) {
	m.toasts = append(m.toasts, toast{
		text:    text,
		warning: warning,
		danger:  danger,
		expires: m.now().Add(4 * time.Second),
	})
}

// pruneToasts drops expired notifications.
func (m *Model) pruneToasts() {
	keep := m.toasts[:0]
	for _, t := range m.toasts {
		if m.now().Before(t.expires) {
			keep = append(keep, t)
		}
	}
	m.toasts = keep
}

// viewportWidth returns the width of the visible grid area.
func (m *Model) viewportWidth() int {
	w := m.width - gutterWidth
	if w < 0 {
		return 0
	}
	return w
}

// clampScroll keeps the viewport inside the content.
func (m *Model) clampScroll() {
	max := m.window.Width() - m.viewportWidth()
	if max < 0 {
		max = 0
	}
	if m.scrollX > max {
		m.scrollX = max
	}
	if m.scrollX < 0 {
		m.scrollX = 0
	}
}

// Run starts the TUI.
func Run(cfg *config.Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
