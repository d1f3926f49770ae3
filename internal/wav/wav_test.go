package wav

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodePCM16HeaderFields(t *testing.T) {
	samples := []int16{100, -200, 32767, -32768}

	data, err := EncodePCM16(samples)
	if err != nil {
		t.Fatalf("EncodePCM16: %v", err)
	}

	if len(data) != 44+len(samples)*2 {
		t.Fatalf("len(data) = %d, want %d", len(data), 44+len(samples)*2)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE markers: %q", data[0:12])
	}

	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Fatalf("missing fmt /data markers: %q %q", data[12:16], data[36:40])
	}

	gotRate := binary.LittleEndian.Uint32(data[24:28])
	if gotRate != SampleRate {
		t.Errorf("sample rate = %d, want %d", gotRate, SampleRate)
	}

	gotBitDepth := binary.LittleEndian.Uint16(data[34:36])
	if gotBitDepth != BitDepth {
		t.Errorf("bit depth = %d, want %d", gotBitDepth, BitDepth)
	}

	gotDataSize := binary.LittleEndian.Uint32(data[40:44])
	if gotDataSize != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", gotDataSize, len(samples)*2)
	}

	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(data[44+i*2 : 46+i*2]))
		if got != want {
			t.Errorf("sample[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestQuantizePCM16ClampsAndRounds(t *testing.T) {
	in := []float32{0, 1.0, -1.0, 2.0, -2.0, 0.00002}
	got := QuantizePCM16(in)
	want := []int16{0, 32767, -32767, 32767, -32768, 1}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("QuantizePCM16(%v)[%d] = %d, want %d", in[i], i, got[i], want[i])
		}
	}
}

func TestWriteHeaderStreamingUsesUnknownLengthMarkers(t *testing.T) {
	var buf bytes.Buffer

	n, err := WriteHeaderStreaming(&buf)
	if err != nil {
		t.Fatalf("WriteHeaderStreaming: %v", err)
	}

	if n != 44 {
		t.Fatalf("n = %d, want 44", n)
	}

	data := buf.Bytes()
	if binary.LittleEndian.Uint32(data[4:8]) != 0xFFFFFFFF {
		t.Error("riff size should be the unknown-length marker")
	}

	if binary.LittleEndian.Uint32(data[40:44]) != 0xFFFFFFFF {
		t.Error("data size should be the unknown-length marker")
	}
}

func TestWritePCM16SamplesRoundTrips(t *testing.T) {
	var buf bytes.Buffer

	samples := []int16{1, -1, 1234, -5678}
	if _, err := WritePCM16Samples(&buf, samples); err != nil {
		t.Fatalf("WritePCM16Samples: %v", err)
	}

	data := buf.Bytes()
	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
		if got != want {
			t.Errorf("sample[%d] = %d, want %d", i, got, want)
		}
	}
}
