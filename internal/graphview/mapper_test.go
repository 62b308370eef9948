package graphview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/models"
)

func graphData(t *testing.T, raw string) *models.GraphData {
	t.Helper()
	var g models.GraphData
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	return &g
}

func TestMap_PersonAndSkills(t *testing.T) {
	g, err := Map(graphData(t, `{"person":{"name":"Ada"},"skills":["Go","SQL"]}`), Options{})
	require.NoError(t, err)

	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, "person:Ada", g.Nodes[0].ID)
	assert.Equal(t, "Person: Ada", g.Nodes[0].Title)
	assert.Equal(t, "skill:Go", g.Nodes[1].ID)
	assert.Equal(t, "Skill: SQL", g.Nodes[2].Title)
	for _, e := range g.Edges {
		assert.Equal(t, HasSkill, e.Label)
		assert.Equal(t, "person:Ada", e.From)
	}
}

func TestMap_StructuredPersonName(t *testing.T) {
	g, err := Map(graphData(t, `{"person":{"name":{"label":"Ada L."}},"skills":[{"name":"Go"}]}`), Options{})
	require.NoError(t, err)
	assert.Equal(t, "person:Ada L.", g.Nodes[0].ID)
	assert.Equal(t, "skill:Go", g.Nodes[1].ID)
}

func TestMap_ExperienceAndEducation(t *testing.T) {
	g, err := Map(graphData(t, `{
		"person":{"name":"Ada"},
		"experiences":[
			{"title":"Engineer","company":"Acme","description":"Built things"},
			{"title":"Intern"}
		],
		"education":[
			{"degree":"BSc","institution":"MIT","year":2018},
			{}
		]
	}`), Options{})
	require.NoError(t, err)

	exp0, ok := g.Node("exp:0")
	require.True(t, ok)
	assert.Equal(t, "Engineer @ Acme", exp0.Label)
	assert.Equal(t, "Engineer @ Acme\n\nBuilt things", exp0.Title)
	assert.Equal(t, "Acme", exp0.Properties["company"])

	exp1, _ := g.Node("exp:1")
	assert.Equal(t, "Intern", exp1.Title)

	edu0, _ := g.Node("edu:0")
	assert.Equal(t, "BSc", edu0.Label)
	assert.Equal(t, "BSc — MIT\n2018", edu0.Title)

	edu1, _ := g.Node("edu:1")
	assert.Equal(t, "Education", edu1.Label)

	labels := map[string]int{}
	for _, e := range g.Edges {
		labels[e.Label]++
	}
	assert.Equal(t, map[string]int{HasExperience: 2, HasEducation: 2}, labels)
}

func TestMap_ResumesAndSavedJobs(t *testing.T) {
	g, err := Map(graphData(t, `{
		"person":{"name":"Ada"},
		"resumes":[{"id":"r1","name":"Main"},{"resume_id":"r2"}],
		"saved_jobs":[
			{"apply_url":"https://jobs.example.com/go dev/1","title":"Go dev"},
			{"title":"No URL"},
			{}
		]
	}`), Options{})
	require.NoError(t, err)

	_, ok := g.Node("resume:r1")
	assert.True(t, ok)
	_, ok = g.Node("resume:r2")
	assert.True(t, ok)

	for _, id := range []string{"job:jobs.example.com_go_dev_1", "job:No_URL", "job:2"} {
		_, ok := g.Node(id)
		assert.True(t, ok, id)
	}
	for _, e := range g.Edges {
		if e.Label == SavedJob {
			assert.Equal(t, "resume:r1", e.From)
		}
	}
	assert.Equal(t, []string{GroupPerson, GroupResume, GroupJob}, g.Groups())
}

func TestMap_SavedJobWithoutResumeLinksPerson(t *testing.T) {
	g, err := Map(graphData(t, `{"person":{"name":"Ada"},"saved_jobs":[{"apply_url":"http://x.io/1"}]}`), Options{})
	require.NoError(t, err)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, Edge{From: "person:Ada", To: "job:x.io_1", Label: SavedJob}, g.Edges[0])
}

func TestMap_DuplicatePolicies(t *testing.T) {
	data := `{"person":{"name":"Ada"},"skills":["Go","Go"]}`

	t.Run("keep", func(t *testing.T) {
		g, err := Map(graphData(t, data), Options{Duplicates: Keep})
		require.NoError(t, err)
		require.Len(t, g.Nodes, 3)
		assert.Equal(t, g.Nodes[1].ID, g.Nodes[2].ID)
		assert.Len(t, g.Edges, 2)
	})
	t.Run("merge", func(t *testing.T) {
		g, err := Map(graphData(t, data), Options{Duplicates: Merge})
		require.NoError(t, err)
		assert.Len(t, g.Nodes, 2)
		assert.Len(t, g.Edges, 1)
	})
	t.Run("error", func(t *testing.T) {
		_, err := Map(graphData(t, data), Options{Duplicates: Fail})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
	t.Run("disambiguate", func(t *testing.T) {
		g, err := Map(graphData(t, data), Options{})
		require.NoError(t, err)
		require.Len(t, g.Nodes, 3)
		assert.Equal(t, "skill:Go", g.Nodes[1].ID)
		assert.Equal(t, "skill:Go#2", g.Nodes[2].ID)
		assert.Equal(t, "skill:Go#2", g.Edges[1].To)
	})
}

func TestMap_Idempotent(t *testing.T) {
	data := graphData(t, `{"person":{"name":"Ada"},"skills":["Go"],"experiences":[{"title":"Eng"}]}`)
	a, err := Map(data, Options{})
	require.NoError(t, err)
	b, err := Map(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNode_Miss(t *testing.T) {
	g, err := Map(graphData(t, `{"person":{"name":"Ada"}}`), Options{})
	require.NoError(t, err)
	_, ok := g.Node("nowhere")
	assert.False(t, ok)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Disambiguate, p)
	_, err = ParsePolicy("bogus")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "x.io_a_b", SanitizeKey("https://x.io/a//b"))
	assert.Equal(t, "Senior_Go_Dev", SanitizeKey("Senior  Go\tDev"))
}
