package entity

import (
	"fmt"
	"strings"
)

// Retention selects how strongly a reference map holds one side of an entry.
type Retention string

const (
	// RetentionStrong keeps the referent alive for as long as the entry exists.
	RetentionStrong Retention = "strong"
	// RetentionWeak lets the collector reclaim the referent once nothing else
	// references it.
	RetentionWeak Retention = "weak"
	// RetentionSoft keeps the referent alive until memory pressure releases it.
	RetentionSoft Retention = "soft"
)

// Retentions lists every supported retention kind in declaration order.
func Retentions() []Retention {
	return []Retention{RetentionStrong, RetentionWeak, RetentionSoft}
}

// IsValid reports whether r is one of the declared retention kinds.
func (r Retention) IsValid() bool {
	switch r {
	case RetentionStrong, RetentionWeak, RetentionSoft:
		return true
	default:
		return false
	}
}

// IsReclaimable reports whether the collector may clear a referent held with r.
func (r Retention) IsReclaimable() bool {
	return r == RetentionWeak || r == RetentionSoft
}

func (r Retention) String() string {
	return string(r)
}

// ParseRetention converts a config or flag value into a Retention.
// Matching is case-insensitive; "hard" is accepted as an alias for strong.
func ParseRetention(s string) (Retention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strong", "hard":
		return RetentionStrong, nil
	case "weak":
		return RetentionWeak, nil
	case "soft":
		return RetentionSoft, nil
	default:
		return "", fmt.Errorf("%w: unknown retention %q", ErrUnsupportedConfiguration, s)
	}
}
