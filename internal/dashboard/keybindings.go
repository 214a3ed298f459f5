package dashboard

import tea "github.com/charmbracelet/bubbletea"

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewGrid ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit         = "q"
	KeyQuitAlt      = "ctrl+c"
	KeyRefresh      = "r"
	KeyNextStore    = "tab"
	KeyNextStoreAlt = "]"
	KeyPrevStore    = "shift+tab"
	KeyPrevStoreAlt = "["
	KeySelectPrev   = "up"
	KeySelectPrevK  = "k"
	KeySelectNext   = "down"
	KeySelectNextJ  = "j"
	KeySelectFirst  = "home"
	KeySelectLast   = "end"
	KeyExpand       = "enter"
	KeyCollapse     = "esc"
	KeyToggleHelp   = "?"
)

// HandleKeyMsg processes keyboard input and returns the command to run.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	if m.viewMode == ViewDetail && key == KeyCollapse {
		m.viewMode = ViewGrid
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		m.stopCycle()
		return true, tea.Quit

	case KeyRefresh:
		return true, m.startCycle(m.StoreID())

	case KeyNextStore, KeyNextStoreAlt:
		return true, m.switchStore(1)

	case KeyPrevStore, KeyPrevStoreAlt:
		return true, m.switchStore(-1)

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		m.refreshDetail()
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < m.widgetCount()-1 {
			m.selected++
		}
		m.refreshDetail()
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		m.refreshDetail()
		return true, nil

	case KeySelectLast:
		if n := m.widgetCount(); n > 0 {
			m.selected = n - 1
		}
		m.refreshDetail()
		return true, nil

	case KeyExpand:
		if m.viewMode == ViewGrid && m.widgetCount() > 0 {
			m.viewMode = ViewDetail
			m.refreshDetail()
			m.detailViewport.GotoTop()
		}
		return true, nil

	case KeyCollapse:
		m.viewMode = ViewGrid
		return true, nil
	}

	return false, nil
}

// switchStore moves to the next or previous configured store and starts a
// cycle for it. With a single store it is a no-op.
func (m *Model) switchStore(delta int) tea.Cmd {
	if len(m.stores) < 2 {
		return nil
	}
	m.storeIdx = (m.storeIdx + delta + len(m.stores)) % len(m.stores)
	return m.startCycle(m.StoreID())
}
