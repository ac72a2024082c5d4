// Package assist holds the session entry points: the externally
// callable operations that sequence capture → routing → chat fallback
// for one turn, under the listening guard.
package assist

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ray/internal/intent"
)

// Fixed user-facing sentences. Raw faults never reach the user; one of
// these does instead.
const (
	MsgDidntHear    = "I didn't hear anything. Please try again."
	MsgSaySomething = "Please say something."
	MsgNoAnswer     = "I couldn't find an answer to that question. Please try asking something else."
	MsgHandled      = "Command executed successfully."
	MsgFault        = "Sorry, something went wrong."
	MsgNoRegen      = "I couldn't generate a response. Please try again."
)

// Voice presents text to the user; it must not fail.
type Voice interface {
	Say(text string)
}

type router interface {
	Route(q string) intent.Verdict
}

type asker interface {
	Ask(ctx context.Context, query string) (string, bool)
	AskStream(ctx context.Context, query string, onChunk func(string)) (string, bool)
}

// Config wires an Assistant.
type Config struct {
	// Name is the assistant's spoken name, stripped from utterances
	// during normalization.
	Name string

	Voice  Voice
	Router router
	Chat   asker

	// Listen captures one utterance from the microphone. It returns a
	// lower-cased transcript or "" on timeout/failure; it never fails.
	Listen func() string

	// Chime plays the listening cue before capture. Optional.
	Chime func()

	// Stream receives fallback reply fragments in arrival order.
	// Optional; used by the shell to render the reply as it is
	// generated.
	Stream func(fragment string)

	// AskTimeout bounds one chat backend exchange. Zero means a minute.
	AskTimeout time.Duration

	Logger *slog.Logger
}

// Assistant sequences turns. One logical turn at a time: voice turns
// are admitted through the guard, and the same guard backs the shell's
// manual listening mode.
type Assistant struct {
	cfg   Config
	guard Guard

	manualMu      sync.Mutex
	manualRelease func()
}

func New(cfg Config) *Assistant {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AskTimeout <= 0 {
		cfg.AskTimeout = time.Minute
	}
	if cfg.Chime == nil {
		cfg.Chime = func() {}
	}
	if cfg.Stream == nil {
		cfg.Stream = func(string) {}
	}
	return &Assistant{cfg: cfg}
}

// Listening reports whether a turn or manual listening session holds
// the guard. The wake-word trigger path checks this before firing.
func (a *Assistant) Listening() bool {
	return a.guard.Held()
}

// HandleVoiceTurn runs one microphone turn: chime, capture, route,
// fallback. The guard is held for the whole turn and released on every
// exit path. A second caller while a turn is in flight is a silent
// no-op.
func (a *Assistant) HandleVoiceTurn() {
	release, ok := a.guard.TryAcquire()
	if !ok {
		a.cfg.Logger.Debug("voice turn skipped, listening guard held")
		return
	}
	defer release()
	defer a.recoverTurn(true)

	a.cfg.Chime()
	raw := a.cfg.Listen()

	q := intent.Normalize(raw, a.cfg.Name)
	if q == "" {
		a.cfg.Voice.Say(MsgDidntHear)
		return
	}
	a.cfg.Logger.Info("voice turn", "utterance", q)

	if a.cfg.Router.Route(q) == intent.Handled {
		return
	}

	reply, ok := a.askStream(q)
	if !ok {
		a.cfg.Voice.Say(MsgNoAnswer)
		return
	}
	a.cfg.Voice.Say(reply)
}

// HandleTextTurn runs one typed turn and returns the reply text shown
// to the user.
func (a *Assistant) HandleTextTurn(text string) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			a.cfg.Logger.Error("text turn fault", "panic", rec)
			a.cfg.Voice.Say(MsgFault)
			reply = MsgFault
		}
	}()

	if strings.TrimSpace(text) == "" {
		a.cfg.Voice.Say(MsgSaySomething)
		return MsgSaySomething
	}

	q := intent.Normalize(text, a.cfg.Name)
	a.cfg.Logger.Info("text turn", "utterance", q)

	if a.cfg.Router.Route(q) == intent.Handled {
		return MsgHandled
	}

	answer, ok := a.askStream(q)
	if !ok {
		return MsgNoAnswer
	}
	a.cfg.Voice.Say(answer)
	return answer
}

// Regenerate re-asks the chat backend for a prior query in blocking
// mode. It never replays built-in commands: their side effects must not
// run twice.
func (a *Assistant) Regenerate(priorQuery string) string {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.AskTimeout)
	defer cancel()

	reply, ok := a.cfg.Chat.Ask(ctx, intent.Normalize(priorQuery, a.cfg.Name))
	if !ok {
		return MsgNoRegen
	}
	return reply
}

// StartListening acquires the guard on behalf of the shell's manual
// microphone mode, keeping wake triggers out until StopListening.
func (a *Assistant) StartListening() {
	a.manualMu.Lock()
	defer a.manualMu.Unlock()

	if a.manualRelease != nil {
		return
	}
	if release, ok := a.guard.TryAcquire(); ok {
		a.manualRelease = release
	}
}

// StopListening releases the manual hold, if any.
func (a *Assistant) StopListening() {
	a.manualMu.Lock()
	defer a.manualMu.Unlock()

	if a.manualRelease != nil {
		a.manualRelease()
		a.manualRelease = nil
	}
}

func (a *Assistant) askStream(q string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.AskTimeout)
	defer cancel()
	return a.cfg.Chat.AskStream(ctx, q, a.cfg.Stream)
}

func (a *Assistant) recoverTurn(speak bool) {
	if rec := recover(); rec != nil {
		a.cfg.Logger.Error("turn fault", "panic", rec)
		if speak {
			a.cfg.Voice.Say(MsgFault)
		}
	}
}
