// Codec support: a canonical encode/decode path through the cwbudde/wav
// and go-audio libraries, as distinct from EncodePCM16's byte-exact
// raw-header path. Neither the CLI nor the synthesis pipeline calls it.
package wav

import (
	"bytes"
	"errors"
	"fmt"

	cwbwav "github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
)

// ErrFormatMismatch is returned when a decoded WAV does not match the
// fixed SampleRate/Channels/BitDepth format.
var ErrFormatMismatch = errors.New("wav: format mismatch")

// Encode encodes float32 PCM samples in [-1, 1] as a canonical WAV
// byte slice at the fixed SampleRate/Channels/BitDepth.
func Encode(samples []float32) ([]byte, error) {
	var buf bytes.Buffer

	sw := &seekBuffer{buf: &buf}
	enc := cwbwav.NewEncoder(sw, SampleRate, BitDepth, Channels, 1) // 1 = PCM

	pcmBuf := &goaudio.Float32Buffer{
		Data:           samples,
		Format:         &goaudio.Format{SampleRate: SampleRate, NumChannels: Channels},
		SourceBitDepth: BitDepth,
	}

	if err := enc.Write(pcmBuf); err != nil {
		return nil, fmt.Errorf("writing PCM: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode decodes WAV bytes into float32 PCM samples, validating the
// format matches SampleRate/Channels/BitDepth.
func Decode(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, errors.New("wav: empty input")
	}

	dec := cwbwav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("wav: invalid file")
	}

	if dec.SampleRate != SampleRate {
		return nil, fmt.Errorf("%w: sample rate %d, want %d", ErrFormatMismatch, dec.SampleRate, SampleRate)
	}

	if dec.NumChans != Channels {
		return nil, fmt.Errorf("%w: channels %d, want %d", ErrFormatMismatch, dec.NumChans, Channels)
	}

	if dec.BitDepth != BitDepth {
		return nil, fmt.Errorf("%w: bit depth %d, want %d", ErrFormatMismatch, dec.BitDepth, BitDepth)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	return pcm.Data, nil
}

// seekBuffer wraps a bytes.Buffer to satisfy io.WriteSeeker, which
// wav.NewEncoder requires.
type seekBuffer struct {
	buf *bytes.Buffer
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if s.pos == s.buf.Len() {
		n, err := s.buf.Write(p)
		s.pos += n
		return n, err
	}

	data := s.buf.Bytes()
	n := copy(data[s.pos:], p)
	if n < len(p) {
		data = append(data, p[n:]...)
		s.buf.Reset()
		s.buf.Write(data)
		n = len(p)
	}

	s.pos += n

	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int
	switch whence {
	case 0: // io.SeekStart
		newPos = int(offset)
	case 1: // io.SeekCurrent
		newPos = s.pos + int(offset)
	case 2: // io.SeekEnd
		newPos = s.buf.Len() + int(offset)
	}

	if newPos < 0 {
		return 0, fmt.Errorf("wav: seek before start")
	}

	s.pos = newPos

	return int64(newPos), nil
}
