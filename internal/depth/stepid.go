package depth

import (
	"sort"
	"strconv"
	"strings"
)

// stepKey is the numeric sort key of a hierarchical step id such as "5",
// "5_1_1" or "5.2.1". Components compare numerically, so "10" sorts after
// "2". Ids that do not parse sort after every valid id.
type stepKey struct {
	parts   []int
	invalid bool
}

func parseStepKey(id string) stepKey {
	id = strings.TrimSpace(id)
	if id == "" {
		return stepKey{invalid: true}
	}
	norm := strings.ReplaceAll(id, ".", "_")
	fields := strings.Split(norm, "_")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return stepKey{invalid: true}
		}
		parts = append(parts, n)
	}
	return stepKey{parts: parts}
}

func (k stepKey) less(other stepKey) bool {
	if k.invalid != other.invalid {
		return !k.invalid
	}
	if k.invalid {
		return false
	}
	for i := 0; i < len(k.parts) && i < len(other.parts); i++ {
		if k.parts[i] != other.parts[i] {
			return k.parts[i] < other.parts[i]
		}
	}
	return len(k.parts) < len(other.parts)
}

// sortSteps orders a step sequence by hierarchical step id in place.
func sortSteps(steps []stepRef) {
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].key.less(steps[j].key)
	})
}
