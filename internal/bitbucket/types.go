package bitbucket

// Link is a single hyperlink entry inside a resource's links block.
type Link struct {
	Href string `json:"href"`
}

type Links struct {
	Self []Link `json:"self"`
}

// SelfHref returns the first self link, or an empty string when the
// resource carries none.
func (l Links) SelfHref() string {
	if len(l.Self) == 0 {
		return ""
	}
	return l.Self[0].Href
}

// Project is a Bitbucket Server project as returned by the
// /rest/api/1.0/projects listing.
type Project struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Type        string  `json:"type"`
	Public      bool    `json:"public"`
	Links       Links   `json:"links"`
}

// ProjectRef is the embedded project reference carried by repository
// records.
type ProjectRef struct {
	Key string `json:"key"`
}

// Repository is a Bitbucket Server repository as returned by the
// /rest/api/1.0/projects/{key}/repos listing.
type Repository struct {
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	State       string     `json:"state"`
	Forkable    bool       `json:"forkable"`
	Public      bool       `json:"public"`
	Links       Links      `json:"links"`
	Project     ProjectRef `json:"project"`
}

// ReadmeLine is one line of file content from the browse endpoint. A
// missing text field decodes to the empty string.
type ReadmeLine struct {
	Text string `json:"text"`
}
