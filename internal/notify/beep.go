// Package notify plays the short chime heard before the assistant
// starts listening.
package notify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Chime decodes its sound once and replays it from a buffer on every
// Play.
type Chime struct {
	initOnce sync.Once
	initErr  error

	buf    *beep.Buffer
	format beep.Format
	path   string
}

func NewChime(path string) *Chime {
	return &Chime{path: path}
}

func (c *Chime) load() {
	f, err := os.Open(c.path)
	if err != nil {
		c.initErr = err
		return
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(c.path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		err = errors.New("chime must be .mp3 or .wav")
	}
	if err != nil {
		c.initErr = fmt.Errorf("decode chime %s: %w", c.path, err)
		return
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		c.initErr = fmt.Errorf("init speaker: %w", err)
		return
	}

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	c.buf = buf
	c.format = format
}

// Play blocks until the chime finishes. Missing or undecodable chime
// files make Play a no-op error rather than a fault.
func (c *Chime) Play() error {
	c.initOnce.Do(c.load)
	if c.initErr != nil {
		return c.initErr
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(
		c.buf.Streamer(0, c.buf.Len()),
		beep.Callback(func() { close(done) }),
	))
	<-done
	return nil
}
