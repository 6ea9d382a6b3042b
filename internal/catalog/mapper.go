package catalog

import (
	"fmt"

	"github.com/turbolytics/curator/internal/bitbucket"
)

// swaggerURLTemplate is a derived placeholder field, synthesized from
// the repository slug rather than fetched from the source.
const swaggerURLTemplate = "https://api.%s.com"

// MapProject projects a Bitbucket project onto a catalog entity. Pure
// function; a missing description maps to a null property.
func MapProject(p bitbucket.Project) Entity {
	return Entity{
		Identifier: p.Key,
		Title:      p.Name,
		Properties: map[string]any{
			"description": p.Description,
			"type":        p.Type,
			"public":      p.Public,
			"link":        p.Links.SelfHref(),
		},
		Relations: map[string]string{},
	}
}

// MapRepository projects a Bitbucket repository and its assembled
// README onto a catalog entity. The documentation property is always
// set, defaulting to the empty string when the repository has no
// README. The entity relates back to its parent project by key.
func MapRepository(r bitbucket.Repository, readme string) Entity {
	return Entity{
		Identifier: r.Slug,
		Title:      r.Name,
		Properties: map[string]any{
			"description":   r.Description,
			"state":         r.State,
			"forkable":      r.Forkable,
			"public":        r.Public,
			"link":          r.Links.SelfHref(),
			"documentation": readme,
			"swagger_url":   fmt.Sprintf(swaggerURLTemplate, r.Slug),
		},
		Relations: map[string]string{
			"project": r.Project.Key,
		},
	}
}
