package tableview

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// comparator orders mixed sort keys: two numbers (or numeric strings)
// compare numerically, two other strings collate, and anything else
// compares as numbers with non-numbers treated as zero.
//
// A collate.Collator is not safe for concurrent use, so one comparator is
// built per sort.
type comparator struct {
	coll *collate.Collator
}

func newComparator(tag language.Tag) *comparator {
	return &comparator{coll: collate.New(tag)}
}

func (c *comparator) compare(a, b any) int {
	na, okA := toNumber(a)
	nb, okB := toNumber(b)
	if okA && okB {
		return compareFloat(na, nb)
	}
	sa, strA := a.(string)
	sb, strB := b.(string)
	if strA && strB {
		return c.coll.CompareString(sa, sb)
	}
	return compareFloat(na, nb)
}

// toNumber parses a sort key. Strings must be a complete decimal number;
// "2024-01-05" is text, not 2024.
func toNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
