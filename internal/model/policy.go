package model

import (
	"fmt"
	"strings"
)

// Policy selects when session feedback is persisted.
type Policy int

const (
	// PolicyIncremental persists after every session, accepted and rejected words alike.
	PolicyIncremental Policy = iota
	// PolicyWinOnly persists only completed sessions, and only the words the
	// game reports as found at completion.
	PolicyWinOnly
)

// ParsePolicy parses "incremental" or "win-only".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incremental", "a":
		return PolicyIncremental, nil
	case "win-only", "winonly", "b":
		return PolicyWinOnly, nil
	default:
		return 0, fmt.Errorf("unknown persistence policy %q (want incremental or win-only)", s)
	}
}

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyWinOnly:
		return "win-only"
	default:
		return "incremental"
	}
}
