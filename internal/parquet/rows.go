package parquet

import "github.com/turbolytics/curator/internal/catalog"

type projectRow struct {
	Identifier  string `parquet:"name=identifier, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title       string `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description string `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	Type        string `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Public      bool   `parquet:"name=public, type=BOOLEAN"`
	Link        string `parquet:"name=link, type=BYTE_ARRAY, convertedtype=UTF8"`
}

type repositoryRow struct {
	Identifier    string `parquet:"name=identifier, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title         string `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description   string `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	State         string `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8"`
	Forkable      bool   `parquet:"name=forkable, type=BOOLEAN"`
	Public        bool   `parquet:"name=public, type=BOOLEAN"`
	Link          string `parquet:"name=link, type=BYTE_ARRAY, convertedtype=UTF8"`
	Documentation string `parquet:"name=documentation, type=BYTE_ARRAY, convertedtype=UTF8"`
	SwaggerURL    string `parquet:"name=swagger_url, type=BYTE_ARRAY, convertedtype=UTF8"`
	Project       string `parquet:"name=project, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func newProjectRow(e catalog.Entity) *projectRow {
	return &projectRow{
		Identifier:  e.Identifier,
		Title:       e.Title,
		Description: stringProp(e, "description"),
		Type:        stringProp(e, "type"),
		Public:      boolProp(e, "public"),
		Link:        stringProp(e, "link"),
	}
}

func newRepositoryRow(e catalog.Entity) *repositoryRow {
	return &repositoryRow{
		Identifier:    e.Identifier,
		Title:         e.Title,
		Description:   stringProp(e, "description"),
		State:         stringProp(e, "state"),
		Forkable:      boolProp(e, "forkable"),
		Public:        boolProp(e, "public"),
		Link:          stringProp(e, "link"),
		Documentation: stringProp(e, "documentation"),
		SwaggerURL:    stringProp(e, "swagger_url"),
		Project:       e.Relations["project"],
	}
}

// stringProp tolerates both plain and nullable string properties;
// parquet columns have no null here, absent collapses to "".
func stringProp(e catalog.Entity, key string) string {
	switch v := e.Properties[key].(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	}
	return ""
}

func boolProp(e catalog.Entity, key string) bool {
	v, _ := e.Properties[key].(bool)
	return v
}
