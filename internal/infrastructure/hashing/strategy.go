// Package hashing provides HashingStrategy implementations for the caches in
// this module.
//
// A strategy pairs a hash function with an equality predicate. Every strategy
// here upholds the contract that Equal(a, b) implies Hash(a) == Hash(b).
package hashing

import (
	"hash/maphash"

	"golang.org/x/text/cases"

	"github.com/bnema/retain/internal/application/port"
)

// Natural returns a strategy using Go's built-in equality for comparable keys.
// Pointer keys therefore compare by identity.
func Natural[K comparable]() port.HashingStrategy[K] {
	return natural[K]{seed: maphash.MakeSeed()}
}

type natural[K comparable] struct {
	seed maphash.Seed
}

func (s natural[K]) Hash(key K) uint64 {
	return maphash.Comparable(s.seed, key)
}

func (natural[K]) Equal(a, b K) bool {
	return a == b
}

// Identity returns a strategy that treats two pointers as equal only when they
// address the same object, regardless of what the pointees contain.
func Identity[T any]() port.HashingStrategy[*T] {
	return identity[T]{seed: maphash.MakeSeed()}
}

type identity[T any] struct {
	seed maphash.Seed
}

func (s identity[T]) Hash(key *T) uint64 {
	return maphash.Comparable(s.seed, key)
}

func (identity[T]) Equal(a, b *T) bool {
	return a == b
}

// CaseInsensitive returns a strategy for string keys that ignores case using
// full Unicode case folding.
func CaseInsensitive() port.HashingStrategy[string] {
	return caseInsensitive{seed: maphash.MakeSeed()}
}

type caseInsensitive struct {
	seed maphash.Seed
}

// fold allocates a fresh Caser per call: cases.Caser is stateful and must not
// be shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(s)
}

func (s caseInsensitive) Hash(key string) uint64 {
	return maphash.String(s.seed, fold(key))
}

func (caseInsensitive) Equal(a, b string) bool {
	return a == b || fold(a) == fold(b)
}

// Funcs builds a strategy from a hash function and an equality predicate.
// The caller is responsible for keeping the two consistent.
func Funcs[K any](hash func(K) uint64, equal func(a, b K) bool) port.HashingStrategy[K] {
	return funcs[K]{hash: hash, equal: equal}
}

type funcs[K any] struct {
	hash  func(K) uint64
	equal func(a, b K) bool
}

func (f funcs[K]) Hash(key K) uint64 {
	return f.hash(key)
}

func (f funcs[K]) Equal(a, b K) bool {
	return f.equal(a, b)
}

// Spread mixes the bits of h so that strategies with weak low bits (for
// example hashing only the last character of a string) still distribute
// across power-of-two bucket tables.
func Spread(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}
