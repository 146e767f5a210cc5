package extremes

import (
	"fmt"
	"strings"

	"github.com/wonny/extremes/internal/contracts"
)

// Policy decides whether the threshold moves after a breach
type Policy string

const (
	// PolicyFixed measures every compare date against the base-period extreme
	PolicyFixed Policy = "fixed"
	// PolicyRatchet moves the threshold to each new extreme
	PolicyRatchet Policy = "ratchet"
)

// DefaultPolicy is fixed for new lows and ratchet for new highs.
// The two modes historically disagree; both are kept selectable.
func DefaultPolicy(mode contracts.Mode) Policy {
	if mode == contracts.ModeMax {
		return PolicyRatchet
	}
	return PolicyFixed
}

// ParsePolicy accepts fixed or ratchet; empty means the mode's default
func ParsePolicy(s string, mode contracts.Mode) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultPolicy(mode), nil
	case string(PolicyFixed):
		return PolicyFixed, nil
	case string(PolicyRatchet):
		return PolicyRatchet, nil
	default:
		return "", fmt.Errorf("unknown threshold policy %q (want fixed or ratchet)", s)
	}
}
