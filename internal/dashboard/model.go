package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/storelens/internal/fetch"
	"github.com/rileyhilliard/storelens/internal/presenter"
)

// LayoutMode represents the responsive layout mode based on terminal width.
type LayoutMode int

const (
	LayoutMinimal  LayoutMode = iota // < 80 cols: one column
	LayoutStandard                   // 80-159 cols: two columns
	LayoutWide                       // 160+ cols: three columns
)

// Width breakpoints for responsive layout
const (
	BreakpointStandard = 80
	BreakpointWide     = 160
)

const spinnerInterval = 150 * time.Millisecond

// Model is the Bubble Tea model for the store dashboard. Each mount, refresh
// or store switch starts a new controller cycle; results stream in one
// message at a time and results from a superseded cycle are discarded.
type Model struct {
	ctrl     *Controller
	stores   []string
	storeIdx int
	interval time.Duration

	view    presenter.View
	cycle   Cycle
	cancel  context.CancelFunc
	history *History

	width        int
	height       int
	selected     int
	viewMode     ViewMode
	showHelp     bool
	quitting     bool
	spinnerFrame int
	lastUpdate   time.Time

	detailViewport viewport.Model
	viewportReady  bool
}

// startMsg asks the model to begin its first cycle.
type startMsg struct{}

// tickMsg triggers an automatic refresh.
type tickMsg time.Time

// spinnerTickMsg advances loading animations.
type spinnerTickMsg time.Time

// resultMsg carries one settled source result together with the stream it came from.
type resultMsg struct {
	cycle  uint64
	result fetch.Result
	stream <-chan fetch.Result
}

// cycleDoneMsg is sent when a cycle's stream closes.
type cycleDoneMsg struct {
	cycle uint64
}

// NewModel creates a dashboard over ctrl for the given stores. The first
// store is shown on mount. An interval of zero disables auto-refresh.
func NewModel(ctrl *Controller, stores []string, interval time.Duration) Model {
	m := Model{
		ctrl:     ctrl,
		stores:   stores,
		interval: interval,
		history:  NewHistory(DefaultHistorySize),
	}
	m.view = ctrl.View()
	return m
}

// Init starts the first cycle and the timers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return startMsg{} },
		m.tickCmd(),
		m.spinnerTickCmd(),
	)
}

// Update handles incoming messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}
		if m.viewMode == ViewDetail && m.viewportReady {
			var vpCmd tea.Cmd
			m.detailViewport, vpCmd = m.detailViewport.Update(msg)
			return m, vpCmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, viewportHeight)
			m.detailViewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = viewportHeight
		}
		m.refreshDetail()

	case startMsg:
		return m, m.startCycle(m.StoreID())

	case tickMsg:
		return m, tea.Batch(m.tickCmd(), m.startCycle(m.StoreID()))

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % 10000
		return m, m.spinnerTickCmd()

	case resultMsg:
		err := m.ctrl.Deliver(msg.result)
		if msg.cycle != m.cycle.ID {
			return m, nil
		}
		if err == nil {
			m.history.Push(msg.result.SourceID, msg.result.Latency, msg.result.Status == fetch.StatusErr)
			m.lastUpdate = time.Now()
			m.setView(m.ctrl.View())
		}
		return m, waitForResult(msg.cycle, msg.stream)

	case cycleDoneMsg:
		if msg.cycle == m.cycle.ID {
			m.stopCycle()
		}
	}

	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetailView()
	}
	return m.renderDashboard()
}

// StoreID returns the store currently shown.
func (m Model) StoreID() string {
	if len(m.stores) == 0 {
		return ""
	}
	return m.stores[m.storeIdx]
}

// Cycle returns the cycle the model is displaying.
func (m Model) Cycle() Cycle {
	return m.cycle
}

// Snapshot returns the presented view the model is displaying.
func (m Model) Snapshot() presenter.View {
	return m.view
}

// Selected returns the index of the selected widget.
func (m Model) Selected() int {
	return m.selected
}

// Layout returns the layout mode for the current terminal width.
func (m Model) Layout() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointStandard:
		return LayoutStandard
	default:
		return LayoutMinimal
	}
}

// startCycle supersedes any running cycle and begins fetching for storeID.
func (m *Model) startCycle(storeID string) tea.Cmd {
	m.stopCycle()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.cycle = m.ctrl.Start(storeID)
	m.setView(m.ctrl.View())

	return waitForResult(m.cycle.ID, m.ctrl.Fetch(ctx, m.cycle))
}

// stopCycle cancels the in-flight requests of the current cycle, if any.
func (m *Model) stopCycle() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) setView(v presenter.View) {
	m.view = v
	if n := len(v.Widgets); m.selected >= n {
		m.selected = max(n-1, 0)
	}
	m.refreshDetail()
}

func (m *Model) widgetCount() int {
	return len(m.view.Widgets)
}

// selectedWidget returns the selected widget, if any.
func (m Model) selectedWidget() (presenter.WidgetView, bool) {
	if m.selected < 0 || m.selected >= len(m.view.Widgets) {
		return presenter.WidgetView{}, false
	}
	return m.view.Widgets[m.selected], true
}

// refreshDetail re-renders the detail viewport content when it is visible.
func (m *Model) refreshDetail() {
	if m.viewMode != ViewDetail || !m.viewportReady {
		return
	}
	m.detailViewport.SetContent(m.renderDetailContent())
}

func (m Model) tickCmd() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) spinnerTickCmd() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// waitForResult reads the next result of a cycle's stream.
func waitForResult(cycle uint64, stream <-chan fetch.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-stream
		if !ok {
			return cycleDoneMsg{cycle: cycle}
		}
		return resultMsg{cycle: cycle, result: r, stream: stream}
	}
}

// Run starts the dashboard on the terminal and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, ctrl *Controller, stores []string, interval time.Duration) error {
	m := NewModel(ctrl, stores, interval)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.stopCycle()
	}
	return err
}
