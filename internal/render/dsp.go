package render

import "math"

// Hook is a post-processing pass over decoded samples, applied after
// quantization-independent rendering and before packaging. Opt-in only
// — synthesis_wave_format itself never applies one by default.
type Hook func(samples []float32) []float32

// ApplyHooks threads samples through hooks in order.
func ApplyHooks(samples []float32, hooks ...Hook) []float32 {
	out := samples
	for _, hook := range hooks {
		out = hook(out)
	}

	return out
}

// PeakNormalize scales samples so the peak absolute amplitude reaches
// 1.0. A silent buffer is returned unchanged.
func PeakNormalize(samples []float32) []float32 {
	var peak float32
	for _, s := range samples {
		if abs := float32(math.Abs(float64(s))); abs > peak {
			peak = abs
		}
	}

	if peak == 0 {
		return samples
	}

	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = s / peak
	}

	return out
}

// DCBlock removes DC offset with a one-pole high-pass filter,
// y[n] = x[n] - x[n-1] + R*y[n-1], R close to 1.
func DCBlock(samples []float32, sampleRate int) []float32 {
	if len(samples) == 0 {
		return samples
	}

	const cutoffHz = 20.0
	r := float32(1 - (2 * math.Pi * cutoffHz / float64(sampleRate)))

	out := make([]float32, len(samples))
	var prevX, prevY float32

	for i, x := range samples {
		y := x - prevX + r*prevY
		out[i] = y
		prevX, prevY = x, y
	}

	return out
}

// FadeIn applies a linear fade-in ramp over the given duration in
// milliseconds, starting from silence.
func FadeIn(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeSampleCount(sampleRate, ms, len(samples))
	if n == 0 {
		return samples
	}

	out := append([]float32(nil), samples...)
	for i := 0; i < n; i++ {
		out[i] *= float32(i) / float32(n)
	}

	return out
}

// FadeOut applies a linear fade-out ramp over the given duration in
// milliseconds, ending in silence.
func FadeOut(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeSampleCount(sampleRate, ms, len(samples))
	if n == 0 {
		return samples
	}

	out := append([]float32(nil), samples...)
	start := len(out) - n

	for i := 0; i < n; i++ {
		out[start+i] *= float32(n-i-1) / float32(n)
	}

	return out
}

func fadeSampleCount(sampleRate int, ms float64, total int) int {
	n := int(float64(sampleRate) * ms / 1000)
	if n > total {
		n = total
	}

	if n < 0 {
		n = 0
	}

	return n
}
