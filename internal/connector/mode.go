package connector

import (
	"fmt"
	"strconv"
)

// AllSentinel is the string value of the limit parameter that requests the
// entire history of a source.
const AllSentinel = "-all"

// ModeKind identifies how a fetch limit was interpreted.
type ModeKind int

const (
	// ModeRecent fetches the latest N posts.
	ModeRecent ModeKind = iota
	// ModeFromID fetches posts starting from a specific message id.
	ModeFromID
	// ModeAll fetches the entire available history.
	ModeAll
)

func (k ModeKind) String() string {
	switch k {
	case ModeRecent:
		return "recent"
	case ModeFromID:
		return "from_id"
	case ModeAll:
		return "all"
	default:
		return "unknown"
	}
}

// Mode is the parsed intent of the overloaded limit parameter.
type Mode struct {
	Kind ModeKind
	N    int // post count for recent, message id for from_id, 0 for all
}

// ParseLimit interprets the overloaded limit parameter:
//
//	positive int     → Mode{ModeRecent, n}
//	negative int     → Mode{ModeFromID, abs(n)}
//	"-all"           → Mode{ModeAll, 0}
//	numeric string   → parsed as int, then as above
//
// Zero and everything else are rejected with a descriptive error rather than
// silently defaulting.
func ParseLimit(limit any) (Mode, error) {
	switch v := limit.(type) {
	case int:
		return parseInt(v)
	case string:
		if v == AllSentinel {
			return Mode{Kind: ModeAll}, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Mode{}, fmt.Errorf("invalid limit %q: want an integer or %q", v, AllSentinel)
		}
		return parseInt(n)
	default:
		return Mode{}, fmt.Errorf("invalid limit type %T: want int or string", limit)
	}
}

func parseInt(n int) (Mode, error) {
	switch {
	case n > 0:
		return Mode{Kind: ModeRecent, N: n}, nil
	case n < 0:
		return Mode{Kind: ModeFromID, N: -n}, nil
	default:
		return Mode{}, fmt.Errorf("limit cannot be zero")
	}
}
