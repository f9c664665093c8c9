package quiz

// Source is the randomness the generator draws from. *math/rand/v2.Rand
// satisfies it, so tests can pass a seeded PCG source.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Shuffle permutes s in place with a Fisher-Yates shuffle.
func Shuffle[T any](src Source, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// Sample returns n elements of s in random order without modifying s.
// If n exceeds len(s), all elements are returned.
func Sample[T any](src Source, s []T, n int) []T {
	out := make([]T, len(s))
	copy(out, s)
	Shuffle(src, out)
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func uniform(src Source, r Range) float64 {
	return r.Min + src.Float64()*(r.Max-r.Min)
}

// signed draws a magnitude from r and gives it a random sign.
func signed(src Source, r Range) float64 {
	v := uniform(src, r)
	if src.IntN(2) == 0 {
		return -v
	}
	return v
}

// sourceReader adapts a Source to io.Reader for UUID generation.
type sourceReader struct {
	src Source
}

func (r sourceReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.src.IntN(256))
	}
	return len(p), nil
}
