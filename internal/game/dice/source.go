package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource is a reproducible Source for simulations and replays.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source; equal seeds yield equal
// sequences.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Sequence is a Source that replays fixed die faces, used to script rolls.
// Each value is a 1-based face; Intn(n) returns face-1 bounded to [0, n).
// When the sequence is exhausted it wraps around.
type Sequence struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewSequence returns a Source replaying faces in order.
//
// Precondition: len(faces) > 0.
func NewSequence(faces ...int) *Sequence {
	if len(faces) == 0 {
		panic("dice: NewSequence requires at least one face")
	}
	return &Sequence{faces: faces}
}

// Intn returns the next scripted face minus one, bounded to [0, n).
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	face := s.faces[s.next%len(s.faces)]
	s.next++
	return Clamp(face, n) - 1
}

// Used reports how many faces have been consumed.
func (s *Sequence) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
