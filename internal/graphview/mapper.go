// Package graphview turns a person's career subgraph into a node/edge list
// for a force-directed view.
package graphview

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/models"
)

// Node groups.
const (
	GroupPerson     = "person"
	GroupSkill      = "skill"
	GroupExperience = "experience"
	GroupEducation  = "education"
	GroupResume     = "resume"
	GroupJob        = "job"
)

// Edge labels.
const (
	HasSkill      = "HAS_SKILL"
	HasExperience = "HAS_EXPERIENCE"
	HasEducation  = "HAS_EDUCATION"
	HasResume     = "HAS_RESUME"
	SavedJob      = "SAVED_JOB"
)

// DuplicatePolicy decides what happens when two entities derive the same id.
type DuplicatePolicy string

const (
	// Keep emits every node, so ids may repeat.
	Keep DuplicatePolicy = "keep"
	// Merge keeps the first node and drops repeated nodes and edges.
	Merge DuplicatePolicy = "merge"
	// Fail aborts the mapping.
	Fail DuplicatePolicy = "error"
	// Disambiguate suffixes repeats with #2, #3, ...
	Disambiguate DuplicatePolicy = "disambiguate"
)

// Policies lists the accepted policy names.
var Policies = []DuplicatePolicy{Keep, Merge, Fail, Disambiguate}

// ParsePolicy validates a policy name. Empty selects Disambiguate.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	if s == "" {
		return Disambiguate, nil
	}
	for _, p := range Policies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("graphview: unknown duplicate policy %q: %w", s, apperr.ErrInvalid)
}

// Options tune the mapping.
type Options struct {
	Duplicates DuplicatePolicy
}

// Node is a visual node. Properties carries the original record.
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Group      string         `json:"group"`
	Title      string         `json:"title"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge is a directed visual edge.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Graph is the mapped result.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the first node with id. A miss means nothing is selected.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Groups returns the distinct node groups in first-seen order.
func (g *Graph) Groups() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, n := range g.Nodes {
		if _, ok := seen[n.Group]; ok {
			continue
		}
		seen[n.Group] = struct{}{}
		out = append(out, n.Group)
	}
	return out
}

type builder struct {
	g      *Graph
	policy DuplicatePolicy
	ids    map[string]int
	edges  map[Edge]struct{}
}

// add inserts n and returns the id it ended up with. ok is false when the
// node was merged into an earlier one.
func (b *builder) add(n Node) (string, bool, error) {
	count := b.ids[n.ID]
	b.ids[n.ID]++
	if count > 0 {
		switch b.policy {
		case Merge:
			return n.ID, false, nil
		case Fail:
			return "", false, fmt.Errorf("graphview: duplicate node id %q: %w", n.ID, apperr.ErrConflict)
		case Disambiguate:
			n.ID = b.nextID(n.ID, count+1)
		}
	}
	b.g.Nodes = append(b.g.Nodes, n)
	return n.ID, true, nil
}

func (b *builder) nextID(base string, n int) string {
	for {
		id := base + "#" + strconv.Itoa(n)
		if b.ids[id] == 0 {
			b.ids[id]++
			return id
		}
		n++
	}
}

func (b *builder) link(from, to, label string) {
	e := Edge{From: from, To: to, Label: label}
	if b.policy == Merge {
		if _, ok := b.edges[e]; ok {
			return
		}
		b.edges[e] = struct{}{}
	}
	b.g.Edges = append(b.g.Edges, e)
}

// Map converts data into a Graph. The same input always yields the same ids.
func Map(data *models.GraphData, opts Options) (*Graph, error) {
	if data == nil {
		return nil, fmt.Errorf("graphview: nil graph data: %w", apperr.ErrInvalid)
	}
	policy := opts.Duplicates
	if policy == "" {
		policy = Disambiguate
	}
	b := &builder{
		g:      &Graph{Nodes: []Node{}, Edges: []Edge{}},
		policy: policy,
		ids:    make(map[string]int),
		edges:  make(map[Edge]struct{}),
	}

	name := data.PersonName()
	personID, _, err := b.add(Node{
		ID:         "person:" + name,
		Label:      name,
		Group:      GroupPerson,
		Title:      "Person: " + name,
		Properties: data.Person,
	})
	if err != nil {
		return nil, err
	}

	for _, s := range data.Skills {
		label := s.String()
		id, _, err := b.add(Node{
			ID:         "skill:" + label,
			Label:      label,
			Group:      GroupSkill,
			Title:      "Skill: " + label,
			Properties: map[string]any{"name": label},
		})
		if err != nil {
			return nil, err
		}
		b.link(personID, id, HasSkill)
	}

	for i, rec := range data.Experiences {
		title, company := rec.Text("title"), rec.Text("company")
		tooltip := joinNonEmpty(" @ ", title, company)
		if desc := rec.Text("description"); desc != "" {
			tooltip += "\n\n" + desc
		}
		label := joinNonEmpty(" @ ", title, company)
		if label == "" {
			label = "Experience"
		}
		id, _, err := b.add(Node{
			ID:         "exp:" + strconv.Itoa(i),
			Label:      label,
			Group:      GroupExperience,
			Title:      tooltip,
			Properties: rec,
		})
		if err != nil {
			return nil, err
		}
		b.link(personID, id, HasExperience)
	}

	for i, rec := range data.Education {
		degree, institution := rec.Text("degree"), rec.Text("institution")
		label := rec.First("degree", "institution")
		if label == "" {
			label = "Education"
		}
		tooltip := joinNonEmpty(" — ", degree, institution)
		if year := rec.First("year", "graduation_year", "dates"); year != "" {
			tooltip += "\n" + year
		}
		id, _, err := b.add(Node{
			ID:         "edu:" + strconv.Itoa(i),
			Label:      label,
			Group:      GroupEducation,
			Title:      tooltip,
			Properties: rec,
		})
		if err != nil {
			return nil, err
		}
		b.link(personID, id, HasEducation)
	}

	var firstResume string
	for _, rec := range data.Resumes {
		key := rec.First("resume_id", "id", "resume_name", "name")
		if key == "" {
			key = "unknown"
		}
		label := rec.First("resume_name", "name")
		if label == "" {
			label = "Resume"
		}
		id, _, err := b.add(Node{
			ID:         "resume:" + key,
			Label:      label,
			Group:      GroupResume,
			Title:      "Resume: " + label,
			Properties: rec,
		})
		if err != nil {
			return nil, err
		}
		if firstResume == "" {
			firstResume = id
		}
		b.link(personID, id, HasResume)
	}

	jobParent := personID
	if firstResume != "" {
		jobParent = firstResume
	}
	for i, rec := range data.SavedJobs {
		key := rec.First("apply_url", "source_url", "title")
		if key == "" {
			key = strconv.Itoa(i)
		}
		safe := SanitizeKey(key)
		label := rec.First("title", "company")
		if label == "" {
			label = safe
		}
		id, _, err := b.add(Node{
			ID:         "job:" + safe,
			Label:      label,
			Group:      GroupJob,
			Title:      joinNonEmpty(" @ ", rec.Text("title"), rec.Text("company")),
			Properties: rec,
		})
		if err != nil {
			return nil, err
		}
		b.link(jobParent, id, SavedJob)
	}

	return b.g, nil
}

var separatorRe = regexp.MustCompile(`[/\s]+`)

// SanitizeKey strips a URL scheme and collapses slashes and whitespace into
// underscores.
func SanitizeKey(s string) string {
	lower := strings.ToLower(s)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			s = s[len(scheme):]
			break
		}
	}
	return separatorRe.ReplaceAllString(s, "_")
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
