package relation

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatValue produces the canonical string form of a cell used for
// grouping, deduplication, and key matching. The empty string marks a null;
// empty and null cells are equivalent everywhere value identity matters.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
