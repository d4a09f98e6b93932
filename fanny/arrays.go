package fanny

// ToNative copies values into a buffer of the engine's number type. The input is
// not modified and not referenced afterwards.
func ToNative(values []float64) []float32 {
	buf := make([]float32, len(values))
	for i, v := range values {
		buf[i] = float32(v)
	}
	return buf
}

// FromNative copies the first n values of buf. n larger than len(buf) panics.
func FromNative(buf []float32, n int) []float64 {
	out := make([]float64, n)
	for i, v := range buf[:n] {
		out[i] = float64(v)
	}
	return out
}
