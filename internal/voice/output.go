// Package voice implements the assistant's two I/O channels: Say
// presents text visually and best-effort audibly, Capture turns one
// microphone phrase into a lower-cased transcript. Neither surfaces
// failures to callers; degraded output and empty transcripts are the
// contract.
package voice

import (
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Display is the visual half of the output channel, satisfied by the
// shell hub.
type Display interface {
	Display(text string)
	Chat(from, text string)
}

// Output speaks through the shell and a TTS subprocess. TTS faults
// degrade to text-only presentation.
type Output struct {
	name    string
	display Display
	logger  *slog.Logger

	ttsBinary string
	ttsVoice  string
	timeout   time.Duration
}

func NewOutput(name string, display Display, logger *slog.Logger) *Output {
	if logger == nil {
		logger = slog.Default()
	}
	return &Output{
		name:      name,
		display:   display,
		logger:    logger,
		ttsBinary: "espeak-ng",
		ttsVoice:  "en",
		timeout:   30 * time.Second,
	}
}

// Say never fails: audio rendering problems are logged and the text
// stays on screen.
func (o *Output) Say(text string) {
	if text == "" {
		return
	}
	o.display.Display(text)
	o.display.Chat(o.name, text)

	if err := o.speakAloud(text); err != nil {
		o.logger.Debug("tts unavailable, text-only", "err", err)
	}
}

func (o *Output) speakAloud(text string) error {
	if _, err := exec.LookPath(o.ttsBinary); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	return exec.CommandContext(ctx, o.ttsBinary, "-v", o.ttsVoice, text).Run()
}
