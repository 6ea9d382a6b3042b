package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, "user", "secret",
		WithMaxRetries(1),
		WithRetryInterval(time.Millisecond),
	)
	return c, srv
}

func TestFetchAllPagination(t *testing.T) {
	t.Run("concatenates pages in order and stops on absent cursor", func(t *testing.T) {
		pages := []string{
			`{"values": [{"key": "A"}, {"key": "B"}], "nextPageStart": 2}`,
			`{"values": [{"key": "C"}], "nextPageStart": 3}`,
			`{"values": [{"key": "D"}]}`,
		}

		var calls int
		starts := []string{}
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			starts = append(starts, r.URL.Query().Get("start"))
			fmt.Fprint(w, pages[calls])
			calls++
		}))

		projects, err := c.Projects(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 3, calls)
		assert.Equal(t, []string{"", "2", "3"}, starts)

		keys := make([]string, 0, len(projects))
		for _, p := range projects {
			keys = append(keys, p.Key)
		}
		assert.Equal(t, []string{"A", "B", "C", "D"}, keys)
	})

	t.Run("empty record list with cursor does not terminate", func(t *testing.T) {
		pages := []string{
			`{"values": [], "nextPageStart": 25}`,
			`{"values": [{"key": "A"}]}`,
		}

		var calls int
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, pages[calls])
			calls++
		}))

		projects, err := c.Projects(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		require.Len(t, projects, 1)
		assert.Equal(t, "A", projects[0].Key)
	})

	t.Run("null cursor terminates", func(t *testing.T) {
		var calls int
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			fmt.Fprint(w, `{"values": [{"key": "A"}], "nextPageStart": null}`)
		}))

		projects, err := c.Projects(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Len(t, projects, 1)
	})

	t.Run("missing data key treated as empty page", func(t *testing.T) {
		pages := []string{
			`{"errors": [{"message": "boom"}], "nextPageStart": 1}`,
			`{"values": [{"key": "A"}]}`,
		}

		var calls int
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, pages[calls])
			calls++
		}))

		projects, err := c.Projects(context.Background())
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "A", projects[0].Key)
	})

	t.Run("non-list value under data key skipped", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"values": "oops"}`)
		}))

		projects, err := c.Projects(context.Background())
		require.NoError(t, err)
		assert.Empty(t, projects)
	})

	t.Run("transient failure retries the same cursor", func(t *testing.T) {
		var calls int
		starts := []string{}
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			starts = append(starts, r.URL.Query().Get("start"))
			if calls == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"values": [{"key": "A"}]}`)
		}))

		projects, err := c.Projects(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"", ""}, starts)
		assert.Len(t, projects, 1)
	})

	t.Run("persistent failure surfaces after retry budget", func(t *testing.T) {
		var calls int
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := c.Projects(context.Background())
		require.Error(t, err)
		assert.Equal(t, 2, calls) // initial try + 1 retry
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := c.Projects(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestClientAuthAndParams(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "/rest/api/1.0/projects", r.URL.Path)
		fmt.Fprint(w, `{"values": []}`)
	}))

	_, err := c.Projects(context.Background())
	require.NoError(t, err)
}

func TestRepositoriesPath(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/1.0/projects/ENG/repos", r.URL.Path)
		fmt.Fprint(w, `{"values": [{"slug": "svc-a", "project": {"key": "ENG"}}]}`)
	}))

	repos, err := c.Repositories(context.Background(), "ENG")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "svc-a", repos[0].Slug)
	assert.Equal(t, "ENG", repos[0].Project.Key)
}

func TestReadme(t *testing.T) {
	t.Run("fetches lines with large page size", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/api/1.0/projects/ENG/repos/svc-a/browse/README.md", r.URL.Path)
			assert.Equal(t, "500", r.URL.Query().Get("limit"))
			fmt.Fprint(w, `{"lines": [{"text": "# Service A"}, {"text": "docs"}]}`)
		}))

		text, err := c.Readme(context.Background(), "ENG", "svc-a")
		require.NoError(t, err)
		assert.Equal(t, "# Service A\ndocs\n", text)
	})

	t.Run("missing README yields empty content", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		text, err := c.Readme(context.Background(), "ENG", "svc-a")
		require.NoError(t, err)
		assert.Equal(t, "", text)
	})
}
