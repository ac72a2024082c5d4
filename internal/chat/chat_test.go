package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	reply  string
	err    error
	chunks []string
	panics bool

	gotSystem string
	gotUser   string
}

func (b *stubBackend) Complete(_ context.Context, system, user string) (string, error) {
	if b.panics {
		panic("backend fault")
	}
	b.gotSystem, b.gotUser = system, user
	return b.reply, b.err
}

func (b *stubBackend) CompleteStream(_ context.Context, system, user string, onChunk func(string)) (string, error) {
	if b.panics {
		panic("backend fault")
	}
	b.gotSystem, b.gotUser = system, user
	for _, c := range b.chunks {
		onChunk(c)
	}
	return b.reply, b.err
}

func TestAskCarriesPersona(t *testing.T) {
	b := &stubBackend{reply: "Hello!"}
	c := NewClient(b, "Ray", nil)

	reply, ok := c.Ask(context.Background(), "hi")
	require.True(t, ok)
	assert.Equal(t, "Hello!", reply)
	assert.Contains(t, b.gotSystem, "You are Ray")
	assert.Equal(t, "hi", b.gotUser)
}

func TestAskFailureModes(t *testing.T) {
	tests := []struct {
		name    string
		backend *stubBackend
	}{
		{"transport error", &stubBackend{err: errors.New("dial timeout")}},
		{"empty reply", &stubBackend{reply: "   "}},
		{"backend panic", &stubBackend{panics: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.backend, "Ray", nil)
			reply, ok := c.Ask(context.Background(), "anything")
			assert.False(t, ok)
			assert.Empty(t, reply)
		})
	}
}

func TestAskStreamRelaysChunksInOrder(t *testing.T) {
	b := &stubBackend{reply: "Paris.", chunks: []string{"Pa", "ris", "."}}
	c := NewClient(b, "Ray", nil)

	var got []string
	reply, ok := c.AskStream(context.Background(), "capital of france", func(f string) {
		got = append(got, f)
	})
	require.True(t, ok)
	assert.Equal(t, "Paris.", reply)
	assert.Equal(t, []string{"Pa", "ris", "."}, got)
}

func TestAskStreamNilChunkCallback(t *testing.T) {
	b := &stubBackend{reply: "fine", chunks: []string{"fi", "ne"}}
	c := NewClient(b, "Ray", nil)

	reply, ok := c.AskStream(context.Background(), "q", nil)
	require.True(t, ok)
	assert.Equal(t, "fine", reply)
}

func TestAskStreamFailureModes(t *testing.T) {
	tests := []struct {
		name    string
		backend *stubBackend
	}{
		{"transport error", &stubBackend{err: errors.New("reset")}},
		{"empty reply", &stubBackend{reply: ""}},
		{"backend panic", &stubBackend{panics: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.backend, "Ray", nil)
			reply, ok := c.AskStream(context.Background(), "anything", func(string) {})
			assert.False(t, ok)
			assert.Empty(t, reply)
		})
	}
}

func TestReplyIsTrimmed(t *testing.T) {
	b := &stubBackend{reply: "  answer \n"}
	c := NewClient(b, "Ray", nil)

	reply, ok := c.Ask(context.Background(), "q")
	require.True(t, ok)
	assert.Equal(t, "answer", reply)
}
