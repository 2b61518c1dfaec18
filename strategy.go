package agglo

import (
	"fmt"
	"strings"
)

// Strategy selects how the merge loop finds the next pair of clusters.
type Strategy string

const (
	// StrategyAuto picks StrategyNNChain for reducible rules and
	// StrategyAnderberg otherwise.
	StrategyAuto Strategy = "auto"

	// StrategyExhaustive scans every active pair before each merge.
	// O(n³) time, always correct.
	StrategyExhaustive Strategy = "exhaustive"

	// StrategyAnderberg caches every cluster's nearest neighbor and only
	// rescans rows whose neighbor changed. O(n²) on typical data, O(n³) in
	// the worst case.
	StrategyAnderberg Strategy = "anderberg"

	// StrategyNNChain follows chains of nearest neighbors until it reaches
	// a reciprocal pair. O(n²) time, reducible rules only.
	StrategyNNChain Strategy = "nnchain"

	// StrategyMST builds a minimum spanning tree with Prim's algorithm
	// straight from the distance function. Single linkage only; O(n²) time
	// and O(n) memory.
	StrategyMST Strategy = "mst"
)

// ParseStrategy resolves a strategy name as used in configuration files.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case "":
		return StrategyAuto, nil
	case StrategyAuto, StrategyExhaustive, StrategyAnderberg, StrategyNNChain, StrategyMST:
		return s, nil
	case "nn-chain", "chain":
		return StrategyNNChain, nil
	case "nncache", "nn-cache", "cache":
		return StrategyAnderberg, nil
	case "naive", "agnes":
		return StrategyExhaustive, nil
	default:
		return "", fmt.Errorf("agglo: unknown strategy %q: %w", name, ErrInvalidStrategy)
	}
}

// selectStrategy resolves StrategyAuto into a concrete strategy for the
// linkage rule and validates that user-forced choices are compatible with it.
// A nil rule stands for MiniMax linkage, which is reducible but has no
// Lance-Williams form.
func selectStrategy(s Strategy, rule LinkageRule) (Strategy, error) {
	reducible := rule == nil || rule.Reducible()

	switch s {
	case StrategyAuto:
		if reducible {
			return StrategyNNChain, nil
		}
		return StrategyAnderberg, nil
	case StrategyExhaustive, StrategyAnderberg:
		return s, nil
	case StrategyNNChain:
		if !reducible {
			return "", fmt.Errorf("agglo: %s linkage cannot be used with %s: %w", rule, s, ErrNonReducible)
		}
		return s, nil
	case StrategyMST:
		if _, ok := rule.(SingleLinkage); !ok {
			name := "minimax"
			if rule != nil {
				name = rule.String()
			}
			return "", fmt.Errorf("agglo: %s strategy requires single linkage, got %s: %w", s, name, ErrInvalidStrategy)
		}
		return s, nil
	default:
		return "", fmt.Errorf("agglo: invalid Strategy %q: %w", s, ErrInvalidStrategy)
	}
}
