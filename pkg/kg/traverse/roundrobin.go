package traverse

import "github.com/matzehuels/smdgraph/pkg/kg"

// roundRobin hands out incidences one relation type at a time, cycling
// through types in the order they first appear, so a node with forty
// HAS_SYMPTOM edges cannot starve its single CAUSES edge.
type roundRobin struct {
	types  []kg.EdgeType
	queues map[kg.EdgeType][]kg.Incidence
	cursor int
}

func newRoundRobin(entries []kg.Incidence) *roundRobin {
	rr := &roundRobin{queues: make(map[kg.EdgeType][]kg.Incidence)}
	for _, inc := range entries {
		if _, ok := rr.queues[inc.Type]; !ok {
			rr.types = append(rr.types, inc.Type)
		}
		rr.queues[inc.Type] = append(rr.queues[inc.Type], inc)
	}
	return rr
}

// next pops the head of the current type's queue and advances to the next
// type. Exhausted types drop out of the rotation.
func (rr *roundRobin) next() (kg.Incidence, bool) {
	for len(rr.types) > 0 {
		if rr.cursor >= len(rr.types) {
			rr.cursor = 0
		}
		typ := rr.types[rr.cursor]
		q := rr.queues[typ]
		if len(q) == 0 {
			rr.types = append(rr.types[:rr.cursor], rr.types[rr.cursor+1:]...)
			continue
		}
		inc := q[0]
		rr.queues[typ] = q[1:]
		rr.cursor++
		return inc, true
	}
	return kg.Incidence{}, false
}
