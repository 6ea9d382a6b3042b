package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/curator/internal/bitbucket"
)

func strptr(s string) *string { return &s }

func TestMapProject(t *testing.T) {
	t.Run("full projection", func(t *testing.T) {
		p := bitbucket.Project{
			Key:         "ENG",
			Name:        "Engineering",
			Description: strptr("the eng org"),
			Type:        "NORMAL",
			Public:      true,
			Links: bitbucket.Links{
				Self: []bitbucket.Link{{Href: "http://h/projects/ENG"}},
			},
		}

		e := MapProject(p)
		assert.Equal(t, "ENG", e.Identifier)
		assert.Equal(t, "Engineering", e.Title)
		assert.Equal(t, "NORMAL", e.Properties["type"])
		assert.Equal(t, true, e.Properties["public"])
		assert.Equal(t, "http://h/projects/ENG", e.Properties["link"])
		assert.Empty(t, e.Relations)
	})

	t.Run("missing description maps to null", func(t *testing.T) {
		e := MapProject(bitbucket.Project{Key: "ENG"})
		bs, err := json.Marshal(e.Properties)
		require.NoError(t, err)
		assert.Contains(t, string(bs), `"description":null`)
	})
}

func TestMapRepository(t *testing.T) {
	repo := bitbucket.Repository{
		Slug:        "svc-a",
		Name:        "Service A",
		Description: strptr("x"),
		State:       "AVAILABLE",
		Forkable:    true,
		Public:      false,
		Links: bitbucket.Links{
			Self: []bitbucket.Link{{Href: "http://h/ENG/svc-a"}},
		},
		Project: bitbucket.ProjectRef{Key: "ENG"},
	}

	t.Run("full projection", func(t *testing.T) {
		e := MapRepository(repo, "# Service A\n")

		assert.Equal(t, "svc-a", e.Identifier)
		assert.Equal(t, "Service A", e.Title)
		assert.Equal(t, "AVAILABLE", e.Properties["state"])
		assert.Equal(t, true, e.Properties["forkable"])
		assert.Equal(t, false, e.Properties["public"])
		assert.Equal(t, "http://h/ENG/svc-a", e.Properties["link"])
		assert.Equal(t, "# Service A\n", e.Properties["documentation"])
		assert.Equal(t, "https://api.svc-a.com", e.Properties["swagger_url"])
		assert.Equal(t, map[string]string{"project": "ENG"}, e.Relations)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := MapRepository(repo, "docs\n")
		b := MapRepository(repo, "docs\n")

		assert.Equal(t, a, b)

		abs, err := json.Marshal(a)
		require.NoError(t, err)
		bbs, err := json.Marshal(b)
		require.NoError(t, err)
		assert.Equal(t, abs, bbs)
	})

	t.Run("no README publishes empty documentation", func(t *testing.T) {
		e := MapRepository(repo, "")
		doc, ok := e.Properties["documentation"]
		require.True(t, ok)
		assert.Equal(t, "", doc)
	})
}
