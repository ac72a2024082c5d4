// Package intent classifies normalized utterances against a fixed
// priority list of pattern rules and executes the matched rule's side
// effects through injected collaborators. Anything no rule claims is
// reported Unhandled so the caller can fall back to the chat backend.
package intent

import (
	"log/slog"
	"math/rand"
	"strings"
	"time"
)

// Verdict is the outcome of routing one utterance.
type Verdict int

const (
	Unhandled Verdict = iota
	Handled
)

func (v Verdict) String() string {
	if v == Handled {
		return "handled"
	}
	return "unhandled"
}

// Normalize produces the canonical form of a raw utterance: lower-cased,
// trimmed, with the assistant's name removed wherever it appears.
// Addressing punctuation left dangling by the removal ("Ray, open
// chrome") is stripped too, so the prefix rules still see "open ...".
func Normalize(raw, assistantName string) string {
	q := strings.ToLower(strings.TrimSpace(raw))
	name := strings.ToLower(strings.TrimSpace(assistantName))
	if name != "" && strings.Contains(q, name) {
		q = strings.ReplaceAll(q, name, "")
		q = strings.TrimLeft(q, " \t,.!?;:")
		q = strings.TrimSpace(q)
	}
	return q
}

// Collaborator contracts. Each is the minimal surface the router needs;
// implementations live elsewhere and tests stub them.

// Voice presents text to the user, visually and best-effort audibly.
type Voice interface {
	Say(text string)
}

// AppResolver turns friendly names into launchable targets.
type AppResolver interface {
	ResolveApp(target string) (path string, ok bool)
	ResolveWebsite(name string) (url string, ok bool)
}

// Launcher starts local executables and opens URLs in the browser.
type Launcher interface {
	Start(path string) error
	OpenURL(url string) error
}

// Player plays the top video result for a search term, falling back to
// a results page internally. Returns the confirmation to speak.
type Player interface {
	PlayTopResult(term string) (string, error)
}

// Messenger delivers a direct message to a recipient.
type Messenger interface {
	SendDirectMessage(recipient, body string) error
}

// WeatherReporter returns a spoken weather summary for a location
// phrase; empty phrase means "use current IP-based location".
type WeatherReporter interface {
	Report(location string) (string, error)
}

// BatteryReader returns a spoken battery summary.
type BatteryReader interface {
	Status() (string, error)
}

// Mailer sends one email built from the structured parse.
type Mailer interface {
	Send(to, subject, body string) error
}

// Config wires a Router. Voice, Apps and Launcher are required; the
// remaining collaborators may be nil, in which case their rules answer
// with the feature-unavailable sentence.
type Config struct {
	Voice     Voice
	Apps      AppResolver
	Launcher  Launcher
	Player    Player
	Messenger Messenger
	Weather   WeatherReporter
	Battery   BatteryReader
	Mailer    Mailer

	// Quit ends the session; invoked by the close/quit rule after the
	// farewell has been spoken.
	Quit func()

	// Now and Rand are injectable for deterministic tests.
	Now  func() time.Time
	Rand *rand.Rand

	Logger *slog.Logger
}

// Router evaluates the rule list in order against one utterance per
// call. Not safe for concurrent invocation; the session layer runs one
// turn at a time.
type Router struct {
	cfg   Config
	rules []rule
}

func NewRouter(cfg Config) *Router {
	if cfg.Quit == nil {
		cfg.Quit = func() {}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r := &Router{cfg: cfg}
	r.rules = r.buildRules()
	return r
}

// Route dispatches q through the priority list. The first matching rule
// runs its side effects inline and short-circuits everything below it.
// A panicking handler is recovered here: the attempted action may have
// already had side effects, so the turn is reported Handled with a
// spoken apology instead of falling through to the chat backend.
func (r *Router) Route(q string) (v Verdict) {
	defer func() {
		if rec := recover(); rec != nil {
			r.cfg.Logger.Error("command handler fault", "utterance", q, "panic", rec)
			r.say("Sorry, something went wrong.")
			v = Handled
		}
	}()

	if q == "" {
		return Unhandled
	}

	for _, rule := range r.rules {
		if rule.match(q) {
			r.cfg.Logger.Debug("rule matched", "rule", rule.name, "utterance", q)
			rule.run(q)
			return Handled
		}
	}

	return Unhandled
}

func (r *Router) say(text string) {
	r.cfg.Voice.Say(text)
}

func (r *Router) pick(variants []string) string {
	return variants[r.cfg.Rand.Intn(len(variants))]
}
