package labelstudio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newServer serves routes and asserts every request carries the token.
func newServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range routes {
		h := h
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL+"/", "test-key", WithHTTPClient(srv.Client()))
}

func TestListProjects_Paginated(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/projects": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"count": 3, "results": [
				{"id": 1, "title": "Penguins"},
				{"title": "no id"},
				{"id": 2, "title": ""}
			]}`))
		},
	})

	projects, err := newTestClient(srv).ListProjects(context.Background())
	require.NoError(t, err)

	want := []Project{{ID: 1, Title: "Penguins"}, {ID: 2}}
	if diff := cmp.Diff(want, projects); diff != "" {
		t.Errorf("projects mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Unnamed Project", projects[1].DisplayName())
}

func TestListProjects_BareArray(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/projects": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id": 5, "title": "Turtles"}]`))
		},
	})

	projects, err := newTestClient(srv).ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Turtles", projects[0].DisplayName())
}

func TestListProjects_StatusError(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/projects": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
		},
	})

	_, err := newTestClient(srv).ListProjects(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Body, "invalid token")
}

func TestGetProject_Labels(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/projects/9": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"id": 9,
				"title": "Zoo",
				"parsed_label_config": {
					"label": {"type": "RectangleLabels", "labels": ["penguin", "turtle"]}
				}
			}`))
		},
	})

	p, err := newTestClient(srv).GetProject(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Zoo", p.Title)
	assert.Equal(t, []string{"penguin", "turtle"}, p.Labels())
}

func TestProjectLabels_None(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/projects/5": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id": 5, "title": "Empty", "parsed_label_config": {}}`))
		},
	})

	_, err := newTestClient(srv).ProjectLabels(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNoLabels)
}

func TestProject_LabelsFallback(t *testing.T) {
	p := Project{ParsedLabelConfig: map[string]ControlConfig{
		"zz":    {Labels: []string{"late"}},
		"box":   {Labels: []string{"car", "bus"}},
		"empty": {},
	}}
	assert.Equal(t, []string{"car", "bus"}, p.Labels())

	assert.Nil(t, Project{}.Labels())
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "k")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c = NewClient("http://ls:8080///", "k")
	assert.Equal(t, "http://ls:8080", c.BaseURL())
}
