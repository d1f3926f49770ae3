package wav

import (
	"encoding/binary"
	"io"
)

// WriteHeaderStreaming writes a 44-byte WAV header suitable for
// streaming where the total data length isn't known in advance: both
// the RIFF chunk size and the data sub-chunk size are set to
// 0xFFFFFFFF, the conventional marker for an unknown/streaming length.
func WriteHeaderStreaming(w io.Writer) (int, error) {
	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 0xFFFFFFFF)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], Channels)
	binary.LittleEndian.PutUint32(hdr[24:28], SampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], ByteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], BytesPerFrame)
	binary.LittleEndian.PutUint16(hdr[34:36], BitDepth)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], 0xFFFFFFFF)

	return w.Write(hdr[:])
}

// WritePCM16Samples writes already-quantized int16 samples to w as
// little-endian 16-bit signed integers.
func WritePCM16Samples(w io.Writer, samples []int16) (int, error) {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}

	return w.Write(buf)
}
