package inference

import "testing"

func TestPadForDecodePadsZerosAndPauOneHot(t *testing.T) {
	const phonemeSize = 4
	f0 := []float32{1, 2, 3}
	phoneme := []float32{0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

	paddedF0, paddedPhoneme := padForDecode(len(f0), phonemeSize, f0, phoneme)

	wantLen := len(f0) + 2*DecodePaddingFrames
	if len(paddedF0) != wantLen {
		t.Fatalf("len(paddedF0) = %d, want %d", len(paddedF0), wantLen)
	}

	for i := 0; i < DecodePaddingFrames; i++ {
		if paddedF0[i] != 0 {
			t.Fatalf("paddedF0[%d] = %v, want 0 (leading pad)", i, paddedF0[i])
		}

		if paddedPhoneme[i*phonemeSize] != 1 {
			t.Fatalf("paddedPhoneme leading pad frame %d not one-hot on index 0", i)
		}
	}

	for i, v := range f0 {
		if paddedF0[DecodePaddingFrames+i] != v {
			t.Fatalf("paddedF0 body[%d] = %v, want %v", i, paddedF0[DecodePaddingFrames+i], v)
		}
	}

	trailingStart := DecodePaddingFrames + len(f0)
	for i := trailingStart; i < wantLen; i++ {
		if paddedPhoneme[i*phonemeSize] != 1 {
			t.Fatalf("paddedPhoneme trailing pad frame %d not one-hot on index 0", i)
		}
	}
}

func TestCropDecodeOutputStripsBothEnds(t *testing.T) {
	const length = 5
	paddedLength := length + 2*DecodePaddingFrames
	padded := make([]float32, paddedLength*SamplesPerFrame)

	bodyStart := DecodePaddingFrames * SamplesPerFrame
	bodyEnd := bodyStart + length*SamplesPerFrame
	for i := bodyStart; i < bodyEnd; i++ {
		padded[i] = 1
	}

	cropped := cropDecodeOutput(padded)
	if len(cropped) != length*SamplesPerFrame {
		t.Fatalf("len(cropped) = %d, want %d", len(cropped), length*SamplesPerFrame)
	}

	for i, v := range cropped {
		if v != 1 {
			t.Fatalf("cropped[%d] = %v, want 1", i, v)
		}
	}
}

func TestDurationFloorClamp(t *testing.T) {
	data := []float32{0.2, 0.0005, -1, 0.01}
	for i, v := range data {
		if v < DurationFloor {
			data[i] = DurationFloor
		}
	}

	for i, v := range data {
		if v < DurationFloor {
			t.Fatalf("data[%d] = %v still below floor %v", i, v, DurationFloor)
		}
	}
}
