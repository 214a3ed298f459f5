package chat

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAsker struct {
	reply Reply
	err   error
	asked []string
}

func (s *stubAsker) Query(_ context.Context, text string) (Reply, error) {
	s.asked = append(s.asked, text)
	return s.reply, s.err
}

func newTestModel(a Asker) Model {
	m := NewModel(context.Background(), a, WithMarkdownStyle("notty"))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

// submit presses enter and runs the returned command to completion.
func submit(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.True(t, m.Waiting())

	for _, msg := range flatten(cmd) {
		if r, ok := msg.(replyMsg); ok {
			next, _ = m.Update(r)
			return next.(Model)
		}
	}
	t.Fatal("no reply message produced")
	return m
}

func flatten(cmd tea.Cmd) []tea.Msg {
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			if c == nil {
				continue
			}
			if r, ok := c().(replyMsg); ok {
				out = append(out, r)
			}
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestModel_StartsWithGreeting(t *testing.T) {
	m := newTestModel(&stubAsker{})

	history := m.History()
	require.Len(t, history, 1)
	assert.Equal(t, RoleAssistant, history[0].Role)
	assert.Equal(t, Greeting, history[0].Text)
	assert.Contains(t, m.View(), "How can I help you find today?")
	assert.Contains(t, m.View(), Placeholder)
}

func TestModel_Recommend(t *testing.T) {
	asker := &stubAsker{reply: Reply{
		Text:   "Try these",
		Action: ActionRecommend,
		Products: []Product{
			{ItemID: "i1", Name: "Running Shoes", StoreID: "s1", Price: 1299, Description: "Lightweight"},
		},
	}}
	m := newTestModel(asker)
	m = typeText(m, "running shoes")
	m = submit(t, m)

	assert.Equal(t, []string{"running shoes"}, asker.asked)
	assert.False(t, m.Waiting())

	history := m.History()
	require.Len(t, history, 3)
	assert.Equal(t, RoleShopper, history[1].Role)
	assert.Equal(t, "running shoes", history[1].Text)
	assert.Len(t, history[2].Products, 1)

	view := m.View()
	assert.Contains(t, view, "Try these")
	assert.Contains(t, view, "Running Shoes")
	assert.Contains(t, view, "Price: ₹1,299.00")
	assert.Contains(t, view, "Store: s1")
}

func TestModel_FailureShowsFallback(t *testing.T) {
	asker := &stubAsker{err: fmt.Errorf("connection refused")}
	m := newTestModel(asker)
	m = typeText(m, "hello")
	m = submit(t, m)

	history := m.History()
	require.Len(t, history, 3)
	assert.True(t, history[2].Failed)
	assert.Equal(t, FallbackText, history[2].Text)
	assert.Error(t, m.Err())
	assert.Contains(t, m.View(), FallbackText)
}

func TestModel_IgnoresBlankAndBusyInput(t *testing.T) {
	asker := &stubAsker{reply: Reply{Text: "ok", Action: ActionInform}}
	m := newTestModel(asker)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, next.(Model).History(), 1)

	m = typeText(m, "first")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.Waiting())

	m = typeText(m, "second")
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, next.(Model).History(), 2)
}

func TestModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := newTestModel(&stubAsker{})
		next, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
		assert.Empty(t, next.(Model).View())
	}
}

func TestRenderReply(t *testing.T) {
	f := viewmodel.Formatter{}

	out := RenderReply(Reply{Text: "Which size?", Action: ActionClarify}, f)
	assert.Equal(t, "Which size?\n", out)

	out = RenderReply(Reply{
		Text:     "Found one",
		Action:   ActionRecommend,
		Products: []Product{{Name: "Socks", StoreID: "s2", Price: 49.9, Description: "Wool"}},
	}, f)
	assert.Contains(t, out, "Socks")
	assert.Contains(t, out, "Price: ₹49.90")
	assert.Contains(t, out, "Store: s2")
	assert.Contains(t, out, "Wool")
}

func TestRenderProductTable(t *testing.T) {
	f := viewmodel.Formatter{}
	assert.Equal(t, "No products found", RenderProductTable(nil, f))

	out := RenderProductTable([]Product{
		{Name: "Running Shoes", StoreID: "s1", Price: 1299, Description: "Lightweight trainers"},
	}, f)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Running Shoes")
	assert.Contains(t, out, "₹1,299.00")
}

func TestRenderProductCards(t *testing.T) {
	out := RenderProductCards([]Product{
		{Name: "A", StoreID: "s1", Price: 10},
		{Name: "B", StoreID: "s2", Price: 20.5},
	}, viewmodel.Formatter{Currency: "$"}, 40)

	assert.Contains(t, out, "$10.00")
	assert.Contains(t, out, "$20.50")
	assert.Contains(t, out, "Store: s2")
}
