package executor

import (
	"sort"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// GroupByPhase buckets contexts by Phase in the fixed schedule order
// (early, main, final), sorts each bucket by agent name, and omits empty
// phases entirely.
func GroupByPhase(contexts []model.AgentExecutionContext) [][]model.AgentExecutionContext {
	buckets := make(map[model.Phase][]model.AgentExecutionContext)
	for _, c := range contexts {
		buckets[c.Phase] = append(buckets[c.Phase], c)
	}

	var groups [][]model.AgentExecutionContext
	for _, phase := range model.Phases {
		group := buckets[phase]
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].AgentName < group[j].AgentName })
		groups = append(groups, group)
	}
	return groups
}
