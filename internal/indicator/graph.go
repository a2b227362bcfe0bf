package indicator

import (
	"fmt"
	"sort"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/formula"
)

// definition is the unified shape the calculator evaluates: both value
// definitions (cost factors, aggregates) and indicators reduce to it.
type definition struct {
	id         string
	formulaSrc string
	level      domain.AggregationLevel
	variables  map[string]domain.VariableSpec
	order      int // position in the combined config list, used as tie-break
}

// buildOrder returns defs sorted so that every definition comes after the
// definitions it references by id. References are formula variables whose
// name matches another definition's id and that have no explicit variable
// spec of their own. Kahn's algorithm; stable with respect to config order.
func buildOrder(defs []*definition) ([]*definition, error) {
	byID := make(map[string]*definition, len(defs))
	for _, d := range defs {
		byID[d.id] = d
	}

	deps := make(map[string][]string, len(defs))
	indegree := make(map[string]int, len(defs))
	for _, d := range defs {
		indegree[d.id] = 0
	}

	for _, d := range defs {
		names, err := formula.Variables(d.formulaSrc)
		if err != nil {
			return nil, fmt.Errorf("definition %s: %w", d.id, err)
		}
		for _, name := range names {
			if _, explicit := d.variables[name]; explicit {
				continue
			}
			if _, known := byID[name]; !known {
				continue
			}
			deps[name] = append(deps[name], d.id)
			indegree[d.id]++
		}
	}

	// ready definitions in config order keeps evaluation deterministic
	var ready []*definition
	for _, d := range defs {
		if indegree[d.id] == 0 {
			ready = append(ready, d)
		}
	}

	ordered := make([]*definition, 0, len(defs))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)

		for _, depID := range deps[next.id] {
			indegree[depID]--
			if indegree[depID] == 0 {
				ready = insertByOrder(ready, byID[depID])
			}
		}
	}

	if len(ordered) != len(defs) {
		var cyclic []string
		for id, n := range indegree {
			if n > 0 {
				cyclic = append(cyclic, id)
			}
		}
		sort.Strings(cyclic)
		return nil, fmt.Errorf("%w: %v", ErrCircularDependency, cyclic)
	}
	return ordered, nil
}

func insertByOrder(queue []*definition, d *definition) []*definition {
	i := 0
	for i < len(queue) && queue[i].order < d.order {
		i++
	}
	queue = append(queue, nil)
	copy(queue[i+1:], queue[i:])
	queue[i] = d
	return queue
}
