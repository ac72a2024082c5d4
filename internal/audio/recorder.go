// Package audio records microphone input for transcription. Capture is
// voice-activity based: a short calibration window measures the room,
// then recording starts on speech and stops on trailing silence or the
// phrase limit.
package audio

import (
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate = 16000
	frameSize  = 320 // 20ms at 16kHz
	frameDur   = 20 * time.Millisecond

	// thresholdFloor keeps a dead-quiet room from setting a threshold
	// that triggers on electrical noise.
	thresholdFloor = 0.01
	// thresholdGain scales the calibrated ambient level into the
	// speech threshold.
	thresholdGain = 3.0
)

type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// ListenOptions bounds one capture.
type ListenOptions struct {
	// Calibration is the ambient-noise measurement window before
	// listening starts.
	Calibration time.Duration
	// MaxWait is how long to wait for speech to begin. Expiry is a
	// timeout, not an error: Listen returns empty samples.
	MaxWait time.Duration
	// MaxUtterance caps the recorded phrase length.
	MaxUtterance time.Duration
	// TrailingSilence ends the phrase once speech has started.
	TrailingSilence time.Duration
}

func (o *ListenOptions) defaults() {
	if o.Calibration <= 0 {
		o.Calibration = time.Second
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 10 * time.Second
	}
	if o.MaxUtterance <= 0 {
		o.MaxUtterance = 6 * time.Second
	}
	if o.TrailingSilence <= 0 {
		o.TrailingSilence = 600 * time.Millisecond
	}
}

// Listen records one phrase as mono float32 at 16 kHz. An empty result
// with nil error means nobody spoke within MaxWait.
func (r *Recorder) Listen(opt ListenOptions) ([]float32, error) {
	opt.defaults()

	buf := make([]float32, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	// Calibration: measure the room, derive the speech threshold.
	calibFrames := int(opt.Calibration / frameDur)
	var ambient float64
	for i := 0; i < calibFrames; i++ {
		if err := stream.Read(); err != nil {
			return nil, err
		}
		ambient += frameRMS(buf)
	}
	if calibFrames > 0 {
		ambient /= float64(calibFrames)
	}
	threshold := math.Max(ambient*thresholdGain, thresholdFloor)

	var (
		out           []float32
		speaking      bool
		silenceFrames int
		spokenFrames  int
	)

	waitFrames := int(opt.MaxWait / frameDur)
	phraseFrames := int(opt.MaxUtterance / frameDur)
	silenceLimit := int(opt.TrailingSilence / frameDur)

	for i := 0; ; i++ {
		if !speaking && i >= waitFrames {
			return nil, nil // listen timeout
		}
		if speaking && spokenFrames >= phraseFrames {
			break
		}

		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > threshold {
			speaking = true
			silenceFrames = 0
		} else if speaking {
			silenceFrames++
			if silenceFrames >= silenceLimit {
				break
			}
		}

		if speaking {
			out = append(out, buf...)
			spokenFrames++
		}
	}

	return out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
