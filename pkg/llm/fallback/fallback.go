// Package fallback provides a deterministic, hash-derived embedding
// provider: a total, reduced-quality embedder that needs no upstream model.
//
// internal/app selects it when the fallback is forced or the configured
// embedding provider cannot be constructed; it is not switched in when a
// constructed provider's calls fail at run time. This package only
// supplies the vectors, a pure function of text under a fixed dimension.
package fallback

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// DefaultDimension is the output width used when a caller doesn't specify
// one, matching the rest of the system's default vector width.
const DefaultDimension = 384

// BoostTable maps a lowercase keyword to a (dimension, increment) pair
// applied additively when the keyword is present in the normalized text.
// The boost table is a tunable default rather than a fixed constant — this
// embedder is the degraded path, not the primary one.
type BoostTable map[string]Boost

// Boost is one semantic nudge: dimension index and signed increment.
type Boost struct {
	Dimension int
	Increment float32
}

// DefaultBoosts seeds a handful of domain keywords so the fallback space is
// not purely random noise for common network-RAG terms.
func DefaultBoosts() BoostTable {
	return BoostTable{
		"olt":      {Dimension: 0, Increment: 0.4},
		"ftth":     {Dimension: 1, Increment: 0.4},
		"mobile":   {Dimension: 2, Increment: 0.4},
		"modem":    {Dimension: 3, Increment: 0.4},
		"health":   {Dimension: 4, Increment: 0.3},
		"critical": {Dimension: 5, Increment: 0.5},
		"warning":  {Dimension: 6, Increment: 0.3},
		"team":     {Dimension: 7, Increment: 0.3},
		"lag":      {Dimension: 8, Increment: 0.3},
	}
}

// Embedder is the EmbeddingProvider fallback: it never errors and never
// calls out, so it is always available.
type Embedder struct {
	dimension int
	boosts    BoostTable
}

// New builds an Embedder with the given output dimension and boost table.
// A dimension of 0 uses DefaultDimension.
func New(dimension int, boosts BoostTable) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if boosts == nil {
		boosts = DefaultBoosts()
	}
	return &Embedder{dimension: dimension, boosts: boosts}
}

func (e *Embedder) Name() string { return "hash-fallback" }

func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vectorFor(t)
	}
	return out, nil
}

func (e *Embedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	return e.vectorFor(text), nil
}

// vectorFor hashes the normalized text, expands the digest into Dimension
// components in [-1,1], applies configured boosts, then clamps.
func (e *Embedder) vectorFor(text string) []float32 {
	normalized := strings.ToLower(strings.TrimSpace(text))
	vec := make([]float32, e.dimension)

	seed := []byte(normalized)
	for i := 0; i < e.dimension; i++ {
		h := sha256.Sum256(append(seed, byte(i), byte(i>>8)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u)/float32(1<<32)*2 - 1 // map uint32 onto [-1,1]
	}

	for keyword, boost := range e.boosts {
		if strings.Contains(normalized, keyword) && boost.Dimension < e.dimension {
			vec[boost.Dimension] += boost.Increment
		}
	}

	for i, v := range vec {
		if v > 1 {
			vec[i] = 1
		} else if v < -1 {
			vec[i] = -1
		}
	}

	return vec
}
