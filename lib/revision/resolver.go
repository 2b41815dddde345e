package revision

import (
	"fmt"
	"sort"

	"github.com/ether/articlestore/lib/models/revision"
)

// ActualPolicy decides which revisions of a scope are listed as actual.
type ActualPolicy string

const (
	// ActualPolicyIncludeRolledBack lists the highest enabled revision and
	// every disabled revision above it.
	ActualPolicyIncludeRolledBack ActualPolicy = "includeRolledBack"
	// ActualPolicyLatestEnabled lists only the highest enabled revision.
	ActualPolicyLatestEnabled ActualPolicy = "latestEnabled"
)

func ParseActualPolicy(value string) (ActualPolicy, error) {
	switch ActualPolicy(value) {
	case "", ActualPolicyIncludeRolledBack:
		return ActualPolicyIncludeRolledBack, nil
	case ActualPolicyLatestEnabled:
		return ActualPolicyLatestEnabled, nil
	default:
		return "", fmt.Errorf("unknown actual policy %q", value)
	}
}

// Resolver answers which revisions are current. It keeps no state between
// calls.
type Resolver struct {
	versions *VersionStore
	policy   ActualPolicy
}

func NewResolver(versions *VersionStore, policy ActualPolicy) *Resolver {
	if policy == "" {
		policy = ActualPolicyIncludeRolledBack
	}
	return &Resolver{versions: versions, policy: policy}
}

// ResolveActual returns the actual revisions of every given scope, highest
// version first. Scopes without an enabled revision contribute nothing.
func (r *Resolver) ResolveActual(scopes []revision.Scope) ([]revision.ResolvedRevision, error) {
	unique := make([]revision.Scope, 0, len(scopes))
	seen := make(map[revision.Scope]struct{}, len(scopes))
	for _, scope := range scopes {
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		unique = append(unique, scope)
	}

	maxEnabled, err := r.versions.MaxEnabledVersions(unique)
	if err != nil {
		return nil, err
	}
	if len(maxEnabled) == 0 {
		return []revision.ResolvedRevision{}, nil
	}

	candidates, err := r.versions.RevisionsSince(maxEnabled)
	if err != nil {
		return nil, err
	}

	actual := make([]revision.ResolvedRevision, 0, len(maxEnabled))
	for _, candidate := range candidates {
		top := maxEnabled[candidate.Revision.Scope]
		switch {
		case candidate.Revision.Version == top:
			actual = append(actual, candidate)
		case candidate.Revision.Version > top && !candidate.Revision.Enabled &&
			r.policy == ActualPolicyIncludeRolledBack:
			actual = append(actual, candidate)
		}
	}

	sortByVersionDesc(actual)
	return actual, nil
}

// ResolveOne returns the revision regardless of its enabled flag.
func (r *Resolver) ResolveOne(scope revision.Scope, version int) (*revision.ResolvedRevision, error) {
	return r.versions.GetWithContent(scope, version)
}

// History returns every revision of scope at or above floor, highest first.
func (r *Resolver) History(scope revision.Scope, floor int) ([]revision.ResolvedRevision, error) {
	if floor < 1 {
		floor = 1
	}
	rows, err := r.versions.RevisionsSince(map[revision.Scope]int{scope: floor})
	if err != nil {
		return nil, err
	}
	sortByVersionDesc(rows)
	return rows, nil
}

func sortByVersionDesc(rows []revision.ResolvedRevision) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Revision, rows[j].Revision
		if a.Version != b.Version {
			return a.Version > b.Version
		}
		return a.Scope.Key() < b.Scope.Key()
	})
}
