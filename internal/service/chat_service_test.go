package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitechat/internal/domain"
	"sitechat/internal/embedding/tfidf"
	"sitechat/internal/session"
	"sitechat/internal/summarizer"
)

type fakeSource struct {
	prefix   string
	segments []string
	err      error
	calls    int
}

func (f *fakeSource) Name() string { return "fake:" + f.prefix }

func (f *fakeSource) Accepts(target string) bool { return strings.HasPrefix(target, f.prefix) }

func (f *fakeSource) Extract(_ context.Context, _ string) ([]string, error) {
	f.calls++
	return f.segments, f.err
}

var catPassages = []string{
	"The cat sat on the mat near the window.",
	"Dogs are loyal companions for many families.",
	"Short",
	"Cats often sleep for most of the day.",
}

func newService(sources ...domain.Source) (*ChatService, *session.Session) {
	sess := session.New(session.Config{}, func() domain.Index { return tfidf.New(tfidf.Options{}) }, nil)
	return NewChatService(sources, sess, summarizer.NewFrequencySummarizer(), 2, nil), sess
}

func TestLoadThenAsk(t *testing.T) {
	src := &fakeSource{prefix: "doc:", segments: catPassages}
	svc, sess := newService(src)

	report, err := svc.Load(context.Background(), "  doc:cats ")
	require.NoError(t, err)
	assert.Equal(t, "doc:cats", report.Target)
	assert.Equal(t, "fake:doc:", report.Source)
	assert.Equal(t, 3, report.Count)
	assert.NotEmpty(t, report.Summary)
	assert.Equal(t, session.Ready, sess.State())

	answer, err := svc.Ask(context.Background(), "where did the cat sit on the mat")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(answer, "Based on the document content:"))
	assert.Contains(t, answer, "The cat sat on the mat near the window.")
}

func TestAskBeforeLoad(t *testing.T) {
	svc, _ := newService()
	answer, err := svc.Ask(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, session.NoContentMessage, answer)
}

func TestLoadPicksFirstAcceptingSource(t *testing.T) {
	web := &fakeSource{prefix: "http", segments: catPassages}
	files := &fakeSource{prefix: "", segments: catPassages}
	svc, _ := newService(web, files)

	report, err := svc.Load(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "fake:http", report.Source)
	assert.Equal(t, 1, web.calls)
	assert.Equal(t, 0, files.calls)

	report, err = svc.Load(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "fake:", report.Source)
}

func TestLoadFailureKeepsPreviousContent(t *testing.T) {
	good := &fakeSource{prefix: "good:", segments: catPassages}
	bad := &fakeSource{prefix: "bad:", err: errors.New("connection refused")}
	svc, sess := newService(good, bad)

	_, err := svc.Load(context.Background(), "good:one")
	require.NoError(t, err)

	_, err = svc.Load(context.Background(), "bad:two")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, session.Ready, sess.State())
	assert.Equal(t, 3, sess.Len())
}

func TestLoadRejectsEmptyAndUnroutableTargets(t *testing.T) {
	svc, _ := newService(&fakeSource{prefix: "doc:"})

	_, err := svc.Load(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	_, err = svc.Load(context.Background(), "ftp://example.com")
	assert.Error(t, err)
}

func TestLoadWithNoPassagesEmptiesSession(t *testing.T) {
	src := &fakeSource{prefix: "doc:", segments: catPassages}
	svc, sess := newService(src)
	_, err := svc.Load(context.Background(), "doc:first")
	require.NoError(t, err)

	src.segments = []string{"tiny", "also tiny"}
	report, err := svc.Load(context.Background(), "doc:second")
	require.NoError(t, err)
	assert.Zero(t, report.Count)
	assert.Empty(t, report.Summary)
	assert.Equal(t, session.Empty, sess.State())
}
