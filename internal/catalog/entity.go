package catalog

// Entity is the unit of exchange with the catalog's entity API. An
// entity belongs to a blueprint and is identified uniquely within it;
// the identifier is what makes upserts idempotent across runs.
type Entity struct {
	Identifier string            `json:"identifier"`
	Title      string            `json:"title"`
	Properties map[string]any    `json:"properties"`
	Relations  map[string]string `json:"relations"`
}
