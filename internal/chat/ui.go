package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/storelens/internal/viewmodel"
)

// Asker answers one shopper message. *Client implements it.
type Asker interface {
	Query(ctx context.Context, text string) (Reply, error)
}

// Role identifies who wrote a message.
type Role int

const (
	RoleAssistant Role = iota
	RoleShopper
)

// Message is one entry in the conversation.
type Message struct {
	Role     Role
	Text     string
	Products []Product
	Failed   bool
}

const (
	headerHeight = 2
	inputHeight  = 3
	footerHeight = 1
	defaultWidth = 80
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D7FF"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	shopperStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FD75F"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF87D7"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	inputStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

type replyMsg struct {
	reply Reply
	err   error
}

// Model is the Bubble Tea model for the shopper chat.
type Model struct {
	ctx      context.Context
	asker    Asker
	format   viewmodel.Formatter
	style    string
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	history  []Message
	waiting  bool
	lastErr  error
	width    int
	height   int
	ready    bool
	quitting bool
}

// UIOption configures a Model.
type UIOption func(*Model)

// WithMarkdownStyle picks the glamour style for assistant replies. "auto"
// detects the terminal background.
func WithMarkdownStyle(style string) UIOption {
	return func(m *Model) { m.style = style }
}

// WithCurrency sets the symbol used for product prices.
func WithCurrency(symbol string) UIOption {
	return func(m *Model) { m.format = viewmodel.Formatter{Currency: symbol} }
}

// NewModel creates a chat model that sends messages through asker.
func NewModel(ctx context.Context, asker Asker, opts ...UIOption) Model {
	ti := textinput.New()
	ti.Placeholder = Placeholder
	ti.CharLimit = 500
	ti.Width = defaultWidth - 4
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = assistantStyle

	m := Model{
		ctx:      ctx,
		asker:    asker,
		style:    "auto",
		input:    ti,
		viewport: viewport.New(defaultWidth, 20),
		spinner:  sp,
		history:  []Message{{Role: RoleAssistant, Text: Greeting}},
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.renderer = newRenderer(m.style, defaultWidth-8)
	m.viewport.SetContent(m.renderHistory())
	return m
}

func newRenderer(style string, wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	styleOpt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return nil
	}
	return r
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.send()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-headerHeight-inputHeight-footerHeight-1, 3)
		m.input.Width = max(msg.Width-6, 10)
		m.renderer = newRenderer(m.style, msg.Width-8)
		m.ready = true
		m.refresh()
		return m, nil

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.lastErr = msg.err
			m.history = append(m.history, Message{Role: RoleAssistant, Text: FallbackText, Failed: true})
		} else {
			m.lastErr = nil
			m.history = append(m.history, Message{
				Role:     RoleAssistant,
				Text:     msg.reply.Text,
				Products: msg.reply.Products,
			})
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}
	m.history = append(m.history, Message{Role: RoleShopper, Text: text})
	m.input.Reset()
	m.waiting = true
	m.refresh()
	return m, tea.Batch(m.ask(text), m.spinner.Tick)
}

func (m Model) ask(text string) tea.Cmd {
	ctx, asker := m.ctx, m.asker
	return func() tea.Msg {
		reply, err := asker.Query(ctx, text)
		return replyMsg{reply: reply, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

// History returns the conversation so far, greeting first.
func (m Model) History() []Message {
	out := make([]Message, len(m.history))
	copy(out, m.history)
	return out
}

// Waiting reports whether a reply is outstanding.
func (m Model) Waiting() bool {
	return m.waiting
}

// Err returns the error behind the most recent fallback reply, if any.
func (m Model) Err() error {
	return m.lastErr
}

func (m Model) renderHistory() string {
	width := m.viewport.Width
	if width <= 0 {
		width = defaultWidth
	}

	var sb strings.Builder
	for i, msg := range m.history {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch msg.Role {
		case RoleShopper:
			sb.WriteString(shopperStyle.Render("You") + "\n")
			sb.WriteString(msg.Text + "\n")
		default:
			sb.WriteString(assistantStyle.Render("Assistant") + "\n")
			if msg.Failed {
				sb.WriteString(errorStyle.Render(msg.Text) + "\n")
				continue
			}
			sb.WriteString(m.markdown(msg.Text))
			if len(msg.Products) > 0 {
				sb.WriteString(RenderProductCards(msg.Products, m.format, width))
			}
		}
	}
	return sb.String()
}

// markdown renders text with glamour, falling back to the raw text.
func (m Model) markdown(text string) (out string) {
	if m.renderer == nil {
		return text + "\n"
	}
	defer func() {
		if r := recover(); r != nil {
			out = text + "\n"
		}
	}()
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return strings.TrimLeft(rendered, "\n")
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("storelens chat"))
	sb.WriteString(mutedStyle.Render("  shopping assistant"))
	sb.WriteString("\n\n")

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	if m.waiting {
		sb.WriteString(m.spinner.View() + " " + mutedStyle.Render("Thinking...") + "\n")
	} else {
		sb.WriteString("\n")
	}

	sb.WriteString(inputStyle.Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("enter send • pgup/pgdn scroll • esc quit"))
	return sb.String()
}

// Run starts the full-screen chat UI.
func Run(ctx context.Context, asker Asker, opts ...UIOption) error {
	p := tea.NewProgram(NewModel(ctx, asker, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
