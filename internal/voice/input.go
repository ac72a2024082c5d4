package voice

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"ray/internal/audio"
	"ray/pkg/stt"
)

// Input captures one phrase from the microphone and transcribes it.
type Input struct {
	rec      *audio.Recorder
	tr       *stt.Transcriber
	display  Display
	logger   *slog.Logger
	language string
}

func NewInput(rec *audio.Recorder, tr *stt.Transcriber, display Display, language string, logger *slog.Logger) *Input {
	if logger == nil {
		logger = slog.Default()
	}
	if language == "" {
		language = "en"
	}
	return &Input{rec: rec, tr: tr, display: display, logger: logger, language: language}
}

// Capture blocks for the ambient calibration window plus a bounded
// listen, then transcribes. Returns "" on timeout, silence or any
// failure; it never reports an error to the caller.
func (in *Input) Capture() string {
	in.display.Display("listening....")

	pcm, err := in.rec.Listen(audio.ListenOptions{
		Calibration:     time.Second,
		MaxWait:         10 * time.Second,
		MaxUtterance:    6 * time.Second,
		TrailingSilence: 600 * time.Millisecond,
	})
	if err != nil {
		in.logger.Warn("microphone capture failed", "err", err)
		return ""
	}
	if len(pcm) == 0 {
		in.logger.Info("listening timed out waiting for phrase")
		return ""
	}

	in.display.Display("recognizing...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	res, err := in.tr.Transcribe(ctx, pcm, stt.Options{Language: in.language})
	if err != nil {
		in.logger.Warn("transcription failed", "err", err)
		return ""
	}

	text := strings.ToLower(strings.TrimSpace(res.Text))
	if text != "" {
		in.display.Display(text)
	}
	return text
}

// Muted is the null input channel, used when no microphone hardware is
// available. Every capture is an empty utterance.
type Muted struct{}

func (Muted) Capture() string { return "" }
