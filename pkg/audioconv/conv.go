// Package audioconv normalizes compressed audio into the mono 16 kHz
// float32 stream the transcriber expects. WAV, MP3, Ogg Vorbis and Ogg
// Opus are supported; Ogg streams try Vorbis first and fall back to
// Opus.
package audioconv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

const targetRate = 16000

// DecodeFile reads and decodes path. The extension picks the decoder;
// unknown extensions fall back to container sniffing.
func DecodeFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data, filepath.Base(path))
}

// DecodeBytes decodes an in-memory blob. name is the original filename
// and is only consulted for its extension; pass "" to force sniffing.
func DecodeBytes(data []byte, name string) ([]float32, error) {
	if len(data) == 0 {
		return nil, errors.New("empty audio data")
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return decodeWAV(data)
	case ".mp3":
		return decodeMP3(data)
	case ".ogg", ".oga":
		return decodeOgg(data)
	}

	// No usable extension; sniff the container magic.
	if len(data) >= 4 {
		switch string(data[:4]) {
		case "RIFF":
			return decodeWAV(data)
		case "OggS":
			return decodeOgg(data)
		}
	}
	if looksLikeMP3(data) {
		return decodeMP3(data)
	}
	return nil, fmt.Errorf("unrecognized audio format in %q", name)
}

func looksLikeMP3(data []byte) bool {
	if len(data) >= 3 && string(data[:3]) == "ID3" {
		return true
	}
	// Bare frame sync.
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

func decodeWAV(data []byte) ([]float32, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, errors.New("wav file has no samples")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	pcm := intsToFloat32(pb.Data, depth)

	channels, rate := 1, 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			channels = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
	}
	return toMono16k(pcm, channels, rate), nil
}

func decodeMP3(data []byte) ([]float32, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	ints := make([]int16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &ints); err != nil {
		return nil, err
	}
	// go-mp3 always emits interleaved stereo int16.
	pcm := int16sToFloat32(ints)
	return toMono16k(pcm, 2, dec.SampleRate()), nil
}

func decodeOgg(data []byte) ([]float32, error) {
	pcm, verr := decodeVorbis(data)
	if verr == nil {
		return pcm, nil
	}
	pcm, oerr := decodeOpus(data)
	if oerr == nil {
		return pcm, nil
	}
	return nil, fmt.Errorf("ogg stream is neither vorbis (%v) nor opus (%v)", verr, oerr)
}

func decodeVorbis(data []byte) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid vorbis stream")
	}
	return toMono16k(pcm, format.Channels, format.SampleRate), nil
}

func decodeOpus(data []byte) ([]float32, error) {
	dec, err := popus.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()

	channels := dec.ChannelCount()
	if channels <= 0 {
		channels = 1
	}

	var pcm48 []float32
	buf := make([]int16, 48000*channels/2)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm48 = append(pcm48, int16sToFloat32(buf[:n*channels])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(pcm48) == 0 {
		return nil, errors.New("opus stream has no samples")
	}
	// libopus decodes at 48 kHz regardless of the encoded rate.
	return toMono16k(pcm48, channels, 48000), nil
}

// toMono16k collapses interleaved channels and resamples to the
// transcriber's rate.
func toMono16k(pcm []float32, channels, rate int) []float32 {
	if channels > 1 {
		pcm = downmix(pcm, channels)
	}
	if rate > 0 && rate != targetRate {
		pcm = resampleLinear(pcm, rate, targetRate)
	}
	return pcm
}

func intsToFloat32(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range data {
		x := float64(v) * scale
		if x > 1 {
			x = 1
		} else if x < -1 {
			x = -1
		}
		out[i] = float32(x)
	}
	return out
}

func int16sToFloat32(data []int16) []float32 {
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v) / 32768
	}
	return out
}

func downmix(in []float32, channels int) []float32 {
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(in[i*channels+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

func resampleLinear(in []float32, from, to int) []float32 {
	if len(in) == 0 || from == to {
		return in
	}
	ratio := float64(to) / float64(from)
	n := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, n)
	for i := range out {
		pos := float64(i) / ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}
