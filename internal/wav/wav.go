// Package wav packages PCM16 samples into the canonical WAV container
// §6 specifies: RIFF/WAVE, PCM format code 1, 1 channel, 24000 Hz,
// 16 bits per sample, a 44-byte header.
package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// SampleRate, Channels and BitDepth are the fixed output format the
// Waveform Renderer always packages into, regardless of an
// AudioQuery's output_sampling_rate/output_stereo fields (§6).
const (
	SampleRate    = 24000
	Channels      = 1
	BitDepth      = 16
	BytesPerFrame = Channels * BitDepth / 8
	ByteRate      = SampleRate * BytesPerFrame
)

func toUint32Checked(value int64, label string) (uint32, error) {
	const maxUint32 = int64(^uint32(0))
	if value < 0 || value > maxUint32 {
		return 0, fmt.Errorf("%s exceeds uint32: %d", label, value)
	}

	return uint32(value), nil
}

// EncodePCM16 packages already-quantized int16 samples into a complete
// WAV byte slice at the fixed SampleRate/Channels/BitDepth.
//
//nolint:funlen // header construction stays explicit and validated in one place.
func EncodePCM16(samples []int16) ([]byte, error) {
	dataSize := int64(len(samples)) * 2
	riffSize := int64(4+(8+16)+8) + dataSize

	riffSizeU32, err := toUint32Checked(riffSize, "riff size")
	if err != nil {
		return nil, err
	}

	dataSizeU32, err := toUint32Checked(dataSize, "data size")
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	buf.Grow(int(riffSizeU32) + 8)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, riffSizeU32)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(ByteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(BytesPerFrame))
	_ = binary.Write(buf, binary.LittleEndian, uint16(BitDepth))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSizeU32)

	for _, s := range samples {
		_ = binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes(), nil
}

// QuantizePCM16 implements §4.5 step 6: clamp(round(x*32767), -32768, 32767)
// for each sample in [-1, 1]-nominal range.
func QuantizePCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := roundHalfAwayFromZero(float64(s) * 32767)
		out[i] = clampInt16(v)
	}

	return out
}

func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}

	return float64(int64(v - 0.5))
}

func clampInt16(v float64) int16 {
	switch {
	case v < -32768:
		return -32768
	case v > 32767:
		return 32767
	default:
		return int16(v)
	}
}
