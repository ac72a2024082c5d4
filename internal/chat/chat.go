// Package chat is the conversational fallback: utterances no rule
// claims are sent to the chat backend as a two-message exchange. Both
// the blocking and the streaming path collapse every failure mode
// (transport error, empty reply, backend exception) into "no answer".
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Backend is the wire-level chat collaborator. Implementations may fail
// with an error but must not panic across this boundary.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteStream(ctx context.Context, system, user string, onChunk func(string)) (string, error)
}

// Client builds the persona exchange and interrogates the backend.
type Client struct {
	backend Backend
	persona string
	logger  *slog.Logger
}

func NewClient(backend Backend, assistantName string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		backend: backend,
		persona: fmt.Sprintf("You are %s, a helpful voice assistant. Provide concise, friendly answers (1-3 sentences max).", assistantName),
		logger:  logger,
	}
}

// Ask submits the utterance in blocking mode. ok is false when the
// backend yields no usable text for any reason.
func (c *Client) Ask(ctx context.Context, query string) (reply string, ok bool) {
	defer c.recoverBackend(&ok)

	text, err := c.backend.Complete(ctx, c.persona, query)
	if err != nil {
		c.logger.Warn("chat completion failed", "err", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}

// AskStream submits the utterance in streaming mode, relaying fragments
// to onChunk in arrival order and returning the concatenated reply.
// Failure precedence is identical to Ask.
func (c *Client) AskStream(ctx context.Context, query string, onChunk func(string)) (reply string, ok bool) {
	defer c.recoverBackend(&ok)

	if onChunk == nil {
		onChunk = func(string) {}
	}
	text, err := c.backend.CompleteStream(ctx, c.persona, query, onChunk)
	if err != nil {
		c.logger.Warn("chat stream failed", "err", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}

// A backend panic is an answer-less turn, not a crash.
func (c *Client) recoverBackend(ok *bool) {
	if rec := recover(); rec != nil {
		c.logger.Error("chat backend fault", "panic", rec)
		*ok = false
	}
}
