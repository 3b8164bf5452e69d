package graph

import (
	"maps"
	"time"
)

// =============================================================================
// Node Kinds
// =============================================================================

// Kind discriminates the node variants.
type Kind uint8

const (
	// KindUnknown marks a node whose type was missing or unrecognised.
	KindUnknown Kind = iota
	KindProject
	KindRepo
	KindExternalRepo
	KindContributor
)

var kindNames = [...]string{
	KindUnknown:      "Unknown",
	KindProject:      "Project",
	KindRepo:         "Repo",
	KindExternalRepo: "ExternalRepo",
	KindContributor:  "Contributor",
}

// String returns the wire name of the kind ("Project", "Repo", ...).
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// ParseKind maps a wire name to a Kind. Unrecognised names map to KindUnknown.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if k != int(KindUnknown) && name == s {
			return Kind(k)
		}
	}
	return KindUnknown
}

// IsPackage reports whether the kind participates in the dependency graph
// (Repo or ExternalRepo).
func (k Kind) IsPackage() bool { return k == KindRepo || k == KindExternalRepo }

// =============================================================================
// Relations
// =============================================================================

// Relation is the type of a directed edge.
type Relation uint8

const (
	BelongsTo Relation = iota
	DependsOn
	ContributedTo

	numRelations = 3
)

var relationNames = [numRelations]string{
	BelongsTo:     "belongs_to",
	DependsOn:     "depends_on",
	ContributedTo: "contributed_to",
}

// String returns the wire name of the relation.
func (r Relation) String() string {
	if int(r) < numRelations {
		return relationNames[r]
	}
	return "unknown"
}

// ParseRelation maps a wire name to a Relation.
func ParseRelation(s string) (Relation, bool) {
	for r, name := range relationNames {
		if name == s {
			return Relation(r), true
		}
	}
	return 0, false
}

// =============================================================================
// Activity
// =============================================================================

// Days is a non-negative day count, or [UnknownDays].
type Days int

// UnknownDays marks a node whose last commit date is not known.
const UnknownDays Days = -1

// Known reports whether d holds a real day count.
func (d Days) Known() bool { return d >= 0 }

// DaysOf converts n to Days; negative values become UnknownDays.
func DaysOf(n int) Days {
	if n < 0 {
		return UnknownDays
	}
	return Days(n)
}

// =============================================================================
// Node Attributes
// =============================================================================

// ProjectAttrs holds the funding-layer attributes of a Project.
type ProjectAttrs struct {
	Title             string
	Category          string
	Funding           float64 // total awarded, in currency units
	IntegrationStatus string
	Description       string
}

// RepoAttrs holds activity and adoption attributes shared by Repo and ExternalRepo.
type RepoAttrs struct {
	Ecosystem       string
	Active          bool
	DaysSinceCommit Days
	Stars           int64
	Forks           int64
	Downloads       int64
	Archived        bool
}

// ContributorAttrs holds the attributes of a Contributor.
type ContributorAttrs struct {
	DisplayName string
	Active      bool
}

// =============================================================================
// Node
// =============================================================================

// Node is a tagged union over the node kinds. Exactly one of Project, Repo
// and Contributor is set for known kinds (Repo for both KindRepo and
// KindExternalRepo); all three are nil for KindUnknown.
type Node struct {
	ID   string
	Kind Kind

	// RawType preserves the original node_type value of a KindUnknown node.
	RawType string

	Project     *ProjectAttrs
	Repo        *RepoAttrs
	Contributor *ContributorAttrs

	// Annotations holds advisory computed values (adoption score, k-core
	// number, ...) written back after scoring. The score maps returned by
	// the scorers are authoritative.
	Annotations map[string]float64
}

// NewProject returns a Project node.
func NewProject(id string, attrs ProjectAttrs) Node {
	return Node{ID: id, Kind: KindProject, Project: &attrs}
}

// NewRepo returns a Repo node.
func NewRepo(id string, attrs RepoAttrs) Node {
	return Node{ID: id, Kind: KindRepo, Repo: &attrs}
}

// NewExternalRepo returns an ExternalRepo node.
func NewExternalRepo(id string, attrs RepoAttrs) Node {
	return Node{ID: id, Kind: KindExternalRepo, Repo: &attrs}
}

// NewContributor returns a Contributor node.
func NewContributor(id string, attrs ContributorAttrs) Node {
	return Node{ID: id, Kind: KindContributor, Contributor: &attrs}
}

// DaysSinceCommit returns the node's activity age, or UnknownDays for nodes
// without repository attributes.
func (n *Node) DaysSinceCommit() Days {
	if n.Repo == nil {
		return UnknownDays
	}
	return n.Repo.DaysSinceCommit
}

// IsActive reports the node's active flag. Projects are always active;
// unknown kinds never are.
func (n *Node) IsActive() bool {
	switch {
	case n.Repo != nil:
		return n.Repo.Active
	case n.Contributor != nil:
		return n.Contributor.Active
	case n.Project != nil:
		return true
	}
	return false
}

// Ecosystem returns the repository ecosystem tag, or "" for non-package nodes.
func (n *Node) Ecosystem() string {
	if n.Repo == nil {
		return ""
	}
	return n.Repo.Ecosystem
}

// Annotation keys written by the pipeline.
const (
	AnnotationAdoption    = "adoption_score"
	AnnotationCriticality = "criticality"
	AnnotationKCore       = "kcore"
)

// Annotation returns an advisory annotation value.
func (n *Node) Annotation(key string) (float64, bool) {
	v, ok := n.Annotations[key]
	return v, ok
}

// normalize fills in the attribute struct required by the node's kind.
func (n *Node) normalize() {
	switch n.Kind {
	case KindProject:
		if n.Project == nil {
			n.Project = &ProjectAttrs{}
		}
	case KindRepo, KindExternalRepo:
		if n.Repo == nil {
			n.Repo = &RepoAttrs{DaysSinceCommit: UnknownDays}
		}
	case KindContributor:
		if n.Contributor == nil {
			n.Contributor = &ContributorAttrs{}
		}
	}
}

// clone returns a deep copy of the node.
func (n Node) clone() Node {
	out := n
	if n.Project != nil {
		p := *n.Project
		out.Project = &p
	}
	if n.Repo != nil {
		r := *n.Repo
		out.Repo = &r
	}
	if n.Contributor != nil {
		c := *n.Contributor
		out.Contributor = &c
	}
	if n.Annotations != nil {
		out.Annotations = maps.Clone(n.Annotations)
	}
	return out
}

// =============================================================================
// Edge Attributes
// =============================================================================

// Confidence labels how a dependency edge was established.
type Confidence string

const (
	ConfidenceDirect   Confidence = "direct"
	ConfidenceInferred Confidence = "inferred"
)

// DependencyAttrs holds the attributes of a depends_on edge.
type DependencyAttrs struct {
	Ecosystem  string
	Confidence Confidence
}

// ContributionAttrs holds the attributes of a contributed_to edge. Commits is
// counted over the ingestion's rolling window.
type ContributionAttrs struct {
	Commits     int
	FirstCommit time.Time
	LastCommit  time.Time
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed, typed connection. Dependency is set for DependsOn edges
// and Contribution for ContributedTo edges; BelongsTo edges carry no attributes.
type Edge struct {
	From     string
	To       string
	Relation Relation

	Dependency   *DependencyAttrs
	Contribution *ContributionAttrs
}

// BelongsToEdge returns a repo → project ownership edge.
func BelongsToEdge(repo, project string) Edge {
	return Edge{From: repo, To: project, Relation: BelongsTo}
}

// DependsOnEdge returns a from → to dependency edge.
func DependsOnEdge(from, to string, attrs DependencyAttrs) Edge {
	return Edge{From: from, To: to, Relation: DependsOn, Dependency: &attrs}
}

// ContributedToEdge returns a contributor → repo contribution edge.
func ContributedToEdge(contributor, repo string, attrs ContributionAttrs) Edge {
	return Edge{From: contributor, To: repo, Relation: ContributedTo, Contribution: &attrs}
}

// Commits returns the edge's commit count, or 0 when absent.
func (e Edge) Commits() int {
	if e.Contribution == nil {
		return 0
	}
	return e.Contribution.Commits
}

func (e *Edge) normalize() {
	switch e.Relation {
	case DependsOn:
		if e.Dependency == nil {
			e.Dependency = &DependencyAttrs{}
		}
		if e.Dependency.Confidence == "" {
			e.Dependency.Confidence = ConfidenceInferred
		}
		e.Contribution = nil
	case ContributedTo:
		if e.Contribution == nil {
			e.Contribution = &ContributionAttrs{}
		}
		e.Dependency = nil
	case BelongsTo:
		e.Dependency = nil
		e.Contribution = nil
	}
}

func (e Edge) clone() Edge {
	out := e
	if e.Dependency != nil {
		d := *e.Dependency
		out.Dependency = &d
	}
	if e.Contribution != nil {
		c := *e.Contribution
		out.Contribution = &c
	}
	return out
}
