package client

import (
	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/graphql"
)

// Policy selects how a successful mutation brings dependent queries up to
// date.
type Policy int

const (
	// PolicyMerge relies on the merged payload; dependents are only marked
	// stale and refetch on their next read.
	PolicyMerge Policy = iota
	// PolicyRefetch marks dependents stale and re-issues the active ones
	// before the mutation call returns.
	PolicyRefetch
)

func (p Policy) String() string {
	if p == PolicyRefetch {
		return "refetch"
	}
	return "merge"
}

// MutationName identifies a mutation operation
type MutationName string

const (
	MutationCreateProject  MutationName = graphql.OpCreateProject
	MutationUpdateProject  MutationName = graphql.OpUpdateProject
	MutationCreateTask     MutationName = graphql.OpCreateTask
	MutationUpdateTask     MutationName = graphql.OpUpdateTask
	MutationAddTaskComment MutationName = graphql.OpAddTaskComment
)

// Scope carries the identifiers dependents are keyed on.
type Scope struct {
	ProjectID string
	TaskID    string
}

// Effect declares what a mutation invalidates.
type Effect struct {
	Policy     Policy
	Dependents func(Scope) []cache.QueryKey
}

// effects is the fixed mapping from mutation to the queries it affects.
var effects = map[MutationName]Effect{
	MutationCreateProject: {
		Policy: PolicyRefetch,
		Dependents: func(Scope) []cache.QueryKey {
			return []cache.QueryKey{ProjectsKey(), ProjectsWithTasksKey()}
		},
	},
	MutationUpdateProject: {
		Policy: PolicyMerge,
		Dependents: func(Scope) []cache.QueryKey {
			return nil
		},
	},
	MutationCreateTask: {
		Policy: PolicyRefetch,
		Dependents: func(s Scope) []cache.QueryKey {
			return []cache.QueryKey{
				TasksKey(s.ProjectID),
				ProjectsWithTasksKey(),
				ProjectStatsKey(s.ProjectID),
			}
		},
	},
	MutationUpdateTask: {
		Policy: PolicyMerge,
		Dependents: func(s Scope) []cache.QueryKey {
			if s.ProjectID == "" {
				return []cache.QueryKey{cache.AnyArgs(QueryProjectStats)}
			}
			return []cache.QueryKey{ProjectStatsKey(s.ProjectID)}
		},
	},
	MutationAddTaskComment: {
		Policy: PolicyRefetch,
		Dependents: func(s Scope) []cache.QueryKey {
			return []cache.QueryKey{TaskCommentsKey(s.TaskID)}
		},
	},
}

// EffectOf returns the declared effect of a mutation
func EffectOf(name MutationName) (Effect, bool) {
	e, ok := effects[name]
	return e, ok
}
