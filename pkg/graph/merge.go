package graph

import "fmt"

// Patch carries ingestion results to fold into a graph with [Merge].
type Patch struct {
	// Nodes are added, or replace the attributes of an existing node of the
	// same kind. Existing annotations are kept.
	Nodes []Node

	// Edges are added or update existing edges. A depends_on endpoint missing
	// from the graph is created as an ExternalRepo with unknown activity; a
	// contributed_to source missing from the graph is created as an active
	// Contributor. Other edges with missing endpoints are skipped.
	Edges []Edge

	// Adoption replaces the adoption counters of existing package nodes.
	Adoption map[string]Adoption

	// Activity replaces the activity metadata of existing package nodes and
	// recomputes their active flag against the merge window.
	Activity map[string]Activity
}

// Adoption holds external adoption counters for one package.
type Adoption struct {
	Stars     int64
	Forks     int64
	Downloads int64
}

// Activity holds commit-recency metadata for one package.
type Activity struct {
	DaysSinceCommit Days
	Archived        bool
}

// MergeStats counts what a merge changed.
type MergeStats struct {
	NodesAdded   int
	NodesUpdated int
	EdgesAdded   int
	EdgesUpdated int
	Skipped      int
}

// IsActive reports whether an activity record counts as active for a window:
// known age within the window and not archived.
func (a Activity) IsActive(windowDays int) bool {
	return a.DaysSinceCommit.Known() && int(a.DaysSinceCommit) <= windowDays && !a.Archived
}

// Merge folds p into a copy of g and returns the copy; g is not modified.
// Merge never deletes nodes or edges. windowDays decides the active flag of
// packages that receive an Activity record.
func Merge(g *Graph, p Patch, windowDays int) (*Graph, MergeStats, error) {
	out := g.Clone()
	var stats MergeStats

	for _, n := range p.Nodes {
		if n.ID == "" {
			return nil, stats, ErrInvalidNodeID
		}
		existing, ok := out.Node(n.ID)
		if !ok {
			if err := out.AddNode(n.clone()); err != nil {
				return nil, stats, err
			}
			stats.NodesAdded++
			continue
		}
		if existing.Kind != n.Kind {
			return nil, stats, fmt.Errorf("%w: %s is %s, patch has %s", ErrKindMismatch, n.ID, existing.Kind, n.Kind)
		}
		annotations := existing.Annotations
		*existing = n.clone()
		existing.normalize()
		if existing.Annotations == nil {
			existing.Annotations = annotations
		}
		stats.NodesUpdated++
	}

	for _, e := range p.Edges {
		switch e.Relation {
		case DependsOn:
			for _, id := range []string{e.From, e.To} {
				if !out.Has(id) {
					eco := ""
					if e.Dependency != nil {
						eco = e.Dependency.Ecosystem
					}
					_ = out.AddNode(NewExternalRepo(id, RepoAttrs{Ecosystem: eco, DaysSinceCommit: UnknownDays}))
					stats.NodesAdded++
				}
			}
		case ContributedTo:
			if !out.Has(e.To) {
				stats.Skipped++
				continue
			}
			if !out.Has(e.From) {
				_ = out.AddNode(NewContributor(e.From, ContributorAttrs{DisplayName: e.From, Active: true}))
				stats.NodesAdded++
			}
		default:
			if !out.Has(e.From) || !out.Has(e.To) {
				stats.Skipped++
				continue
			}
		}

		before := out.EdgeCount()
		if err := out.AddEdge(e.clone()); err != nil {
			return nil, stats, err
		}
		if out.EdgeCount() > before {
			stats.EdgesAdded++
		} else {
			stats.EdgesUpdated++
		}
	}

	for id, a := range p.Adoption {
		n, ok := out.Node(id)
		if !ok || n.Repo == nil {
			stats.Skipped++
			continue
		}
		n.Repo.Stars = a.Stars
		n.Repo.Forks = a.Forks
		n.Repo.Downloads = a.Downloads
		stats.NodesUpdated++
	}

	for id, a := range p.Activity {
		n, ok := out.Node(id)
		if !ok || n.Repo == nil {
			stats.Skipped++
			continue
		}
		n.Repo.DaysSinceCommit = a.DaysSinceCommit
		n.Repo.Archived = a.Archived
		n.Repo.Active = a.IsActive(windowDays)
		stats.NodesUpdated++
	}

	return out, stats, nil
}
