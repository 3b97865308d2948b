package world

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// Rng is a serializable random source. Wandering NPCs draw from it, and its
// state rides along in snapshots so a restored session produces the same walk
// a continuous session would have.
type Rng struct {
	pcg *rand.PCG
	src *rand.Rand
}

// NewRng seeds a fresh source. The same seed always yields the same stream.
func NewRng(seed uint64) *Rng {
	pcg := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Rng{pcg: pcg, src: rand.New(pcg)}
}

// IntN returns a uniform value in [0, n). n must be positive.
func (r *Rng) IntN(n int) int { return r.src.IntN(n) }

// MarshalJSON encodes the generator state as base64.
func (r *Rng) MarshalJSON() ([]byte, error) {
	state, err := r.pcg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal rng state: %w", err)
	}
	return json.Marshal(base64.StdEncoding.EncodeToString(state))
}

// UnmarshalJSON restores the generator state.
func (r *Rng) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("unmarshal rng state: %w", err)
	}
	state, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode rng state: %w", err)
	}
	r.pcg = &rand.PCG{}
	if err := r.pcg.UnmarshalBinary(state); err != nil {
		return fmt.Errorf("restore rng state: %w", err)
	}
	r.src = rand.New(r.pcg)
	return nil
}
