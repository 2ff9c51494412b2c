package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitechat/internal/service"
)

type fakePort struct {
	loads   []string
	asks    []string
	loadErr error
}

func (f *fakePort) Load(_ context.Context, target string) (service.LoadReport, error) {
	f.loads = append(f.loads, target)
	if f.loadErr != nil {
		return service.LoadReport{}, f.loadErr
	}
	return service.LoadReport{Target: target, Source: "web", Count: 3, Summary: "A page about cats.", Took: 12 * time.Millisecond}, nil
}

func (f *fakePort) Ask(_ context.Context, question string) (string, error) {
	f.asks = append(f.asks, question)
	return "Based on the document content:\n\n• cats", nil
}

func submit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestURLInputLoadsAndClearsTranscript(t *testing.T) {
	port := &fakePort{}
	m := New(context.Background(), port, "")
	m.transcript = []entry{{roleUser, "old question"}}

	m, cmd := submit(t, m, "https://example.com/cats")
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())

	m = run(t, m, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, []string{"https://example.com/cats"}, port.loads)
	assert.Equal(t, "Successfully indexed 3 segments", m.status)
	assert.Equal(t, "A page about cats.", m.summary)
	require.Len(t, m.transcript, 1)
	assert.Equal(t, roleSystem, m.transcript[0].role)
}

func TestLoadCommand(t *testing.T) {
	port := &fakePort{}
	m := New(context.Background(), port, "")

	m, cmd := submit(t, m, "/load notes/*.md")
	_ = run(t, m, cmd)
	assert.Equal(t, []string{"notes/*.md"}, port.loads)

	m, cmd = submit(t, New(context.Background(), port, ""), "/load")
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "Usage")
}

func TestLoadErrorKeepsTranscript(t *testing.T) {
	port := &fakePort{loadErr: errors.New("404 Not Found")}
	m := New(context.Background(), port, "")
	m.transcript = []entry{{roleUser, "earlier"}}

	m, cmd := submit(t, m, "https://example.com/missing")
	m = run(t, m, cmd)
	assert.Equal(t, "Error: 404 Not Found", m.status)
	require.Len(t, m.transcript, 2)
	assert.Equal(t, "earlier", m.transcript[0].text)
}

func TestQuestionIsAnswered(t *testing.T) {
	port := &fakePort{}
	m := New(context.Background(), port, "")

	m, cmd := submit(t, m, "what about cats?")
	require.Len(t, m.transcript, 1)
	assert.Equal(t, roleUser, m.transcript[0].role)

	m = run(t, m, cmd)
	assert.Equal(t, []string{"what about cats?"}, port.asks)
	require.Len(t, m.transcript, 2)
	assert.Equal(t, roleBot, m.transcript[1].role)
	assert.Contains(t, m.transcript[1].text, "cats")
}

func TestBusyIgnoresInput(t *testing.T) {
	port := &fakePort{}
	m := New(context.Background(), port, "")
	m, _ = submit(t, m, "first question")

	m, cmd := submit(t, m, "second question")
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "wait")
	assert.Equal(t, "second question", m.input.Value())
}

func TestClearCommand(t *testing.T) {
	m := New(context.Background(), &fakePort{}, "")
	m.transcript = []entry{{roleUser, "a"}, {roleBot, "b"}}

	m, cmd := submit(t, m, "/clear")
	assert.Nil(t, cmd)
	assert.Empty(t, m.transcript)
}

func TestQuitKeys(t *testing.T) {
	m := New(context.Background(), &fakePort{}, "")
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD} {
		_, cmd := m.Update(tea.KeyMsg{Type: k})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestViewAfterResize(t *testing.T) {
	m := New(context.Background(), &fakePort{}, "")
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := next.(Model).View()
	assert.Contains(t, view, "sitechat")
	assert.Contains(t, view, "Load a page or file to start.")
}

func TestParseInput(t *testing.T) {
	cases := []struct {
		in   string
		kind inputKind
		arg  string
	}{
		{"/clear", inputClear, ""},
		{"/CLEAR", inputClear, ""},
		{"/load  docs/a.txt ", inputLoad, "docs/a.txt"},
		{"HTTPS://Example.com", inputLoad, "HTTPS://Example.com"},
		{"http://example.com", inputLoad, "http://example.com"},
		{"/loader", inputQuestion, "/loader"},
		{"what is this?", inputQuestion, "what is this?"},
	}
	for _, c := range cases {
		kind, arg := parseInput(c.in)
		assert.Equal(t, c.kind, kind, c.in)
		assert.Equal(t, c.arg, arg, c.in)
	}
}
