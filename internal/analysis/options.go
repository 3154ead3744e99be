package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"harshagw/phraser/internal/diag"
)

// Option keys accepted by ParseOptions.
const (
	OptDestutterMaxConsecutive = "destutter_max_consecutive"
	OptReplaceHTMLEntities     = "replace_html_entities"
)

// ParseOptions converts a loosely typed option map. Absent keys keep their
// defaults; unknown keys and wrongly typed values are rejected.
func ParseOptions(raw map[string]any) (Options, error) {
	opts := DefaultOptions()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := raw[k]
		switch k {
		case OptDestutterMaxConsecutive:
			n, ok := toNonNegativeInt(v)
			if !ok {
				return opts, fmt.Errorf("%w: %s must be a non-negative integer, got %v (%T)", diag.ErrBadOption, k, v, v)
			}
			opts.DestutterMaxConsecutive = n
		case OptReplaceHTMLEntities:
			b, ok := v.(bool)
			if !ok {
				return opts, fmt.Errorf("%w: %s must be a bool, got %v (%T)", diag.ErrBadOption, k, v, v)
			}
			opts.ReplaceHTMLEntities = b
		default:
			return opts, fmt.Errorf("%w: unknown analysis option %q", diag.ErrBadOption, k)
		}
	}
	return opts, nil
}

func toNonNegativeInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case int32:
		return int(n), n >= 0
	case int64:
		return int(n), n >= 0 && n <= math.MaxInt32
	case uint:
		return int(n), n <= math.MaxInt32
	case uint32:
		return int(n), n <= math.MaxInt32
	case uint64:
		return int(n), n <= math.MaxInt32
	case float64:
		// JSON numbers decode as float64.
		if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return toNonNegativeInt(i)
	default:
		return 0, false
	}
}
