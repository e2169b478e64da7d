// Package fileset provides a set of fingerprinted files keyed by content digest.
package fileset

import (
	"github.com/hyperjump/dirdiff/internal/models"
)

// Set holds at most one file per digest. The first file added for a digest stays
// its representative; later files with the same digest are dropped.
// The zero value is not usable; call New.
type Set struct {
	byKey map[string]models.FingerprintedFile
	order []string
}

// New returns an empty Set.
func New() *Set {
	return &Set{byKey: make(map[string]models.FingerprintedFile)}
}

// Add inserts f unless a file with the same digest is already present.
// Returns true if f became a member.
func (s *Set) Add(f models.FingerprintedFile) bool {
	key := f.Key()
	if _, ok := s.byKey[key]; ok {
		return false
	}
	s.byKey[key] = f
	s.order = append(s.order, key)
	return true
}

// ContainsKey reports whether a member has the given digest key.
func (s *Set) ContainsKey(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

// Len returns the number of distinct digests.
func (s *Set) Len() int {
	return len(s.byKey)
}

// Files returns the members in insertion order.
func (s *Set) Files() []models.FingerprintedFile {
	out := make([]models.FingerprintedFile, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byKey[key])
	}
	return out
}

// Difference returns the members of s whose digest does not occur in other.
// Paths play no part: a file in s is excluded iff other holds the same content
// under any name. Insertion order of s is kept.
func (s *Set) Difference(other *Set) *Set {
	out := New()
	for _, key := range s.order {
		if other != nil && other.ContainsKey(key) {
			continue
		}
		out.Add(s.byKey[key])
	}
	return out
}
