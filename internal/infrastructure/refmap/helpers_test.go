package refmap

import (
	"hash/maphash"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/infrastructure/hashing"
)

// token is a heap object large enough to get its own allocation, so weak
// pointers to it are cleared promptly.
type token struct {
	name string
	pad  [4]int64
}

func tok(name string) *token {
	return &token{name: name}
}

var tokenSeed = maphash.MakeSeed()

// byName compares tokens by name, so a fresh token can probe for a collected
// one.
func byName() port.HashingStrategy[*token] {
	return hashing.Funcs(
		func(t *token) uint64 { return maphash.String(tokenSeed, t.name) },
		func(a, b *token) bool { return a.name == b.name },
	)
}

// lastCharFold hashes only the last character, folded, and compares keys
// case-insensitively, so distinct keys share buckets.
func lastCharFold() port.HashingStrategy[string] {
	return hashing.Funcs(
		func(k string) uint64 {
			if k == "" {
				return 0
			}
			return uint64(strings.ToLower(k[len(k)-1:])[0])
		},
		strings.EqualFold,
	)
}

// collectUntil runs collection cycles until cond holds.
func collectUntil(t *testing.T, cond func() bool, msgAndArgs ...any) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		return cond()
	}, 5*time.Second, 10*time.Millisecond, msgAndArgs...)
}

// purgeAll purges until the queue is observed empty twice in a row.
func purgeAll(m port.ReferenceMap[*token, string]) {
	for !m.Purge() {
	}
}

//go:noinline
func putTransientKey(m port.ReferenceMap[*token, string], name string) {
	m.Put(tok(name), name)
}

//go:noinline
func putTransientValue(m port.ReferenceMap[string, *token], name string) {
	m.Put(name, tok(name))
}
