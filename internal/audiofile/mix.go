package audiofile

import "math"

// Mix downmixes two equal-purpose mono streams by averaging. Output
// length is the longer input; the shorter side pads with zeros. Pure
// function, no I/O.
func Mix(a, b []int16) []int16 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		var sa, sb int32
		if i < len(a) {
			sa = int32(a[i])
		}
		if i < len(b) {
			sb = int32(b[i])
		}
		m := (sa + sb) / 2
		if m > math.MaxInt16 {
			m = math.MaxInt16
		} else if m < math.MinInt16 {
			m = math.MinInt16
		}
		out[i] = int16(m)
	}
	return out
}

// ToFloat32 converts int16 samples to the normalized [-1, 1] float
// buffer the speech engines consume.
func ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768
	}
	return out
}

// FromFloat32 converts a normalized float buffer back to int16 with
// clamping.
func FromFloat32(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := s * 32767
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		out[i] = int16(v)
	}
	return out
}
