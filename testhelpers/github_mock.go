package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServer is an httptest server that mocks the pull request endpoints
// of the GitHub API for a single owner/repo
type MockGitHubServer struct {
	*httptest.Server
	Owner string
	Repo  string

	mu         sync.Mutex
	prs        []*github.PullRequest
	nextNumber int
}

// NewMockGitHubServer starts a mock server for owner/repo; it is closed when the test ends
func NewMockGitHubServer(t *testing.T) *MockGitHubServer {
	t.Helper()

	m := &MockGitHubServer{Owner: "owner", Repo: "repo", nextNumber: 1}

	mux := http.NewServeMux()
	base := "/repos/" + m.Owner + "/" + m.Repo + "/pulls"
	mux.HandleFunc("POST "+base, m.handleCreate)
	mux.HandleFunc("GET "+base, m.handleList)
	mux.HandleFunc("PATCH "+base+"/{number}", m.handleEdit)

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Close)
	return m
}

// Client returns a go-github client pointed at the mock server
func (m *MockGitHubServer) Client() *github.Client {
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(m.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL
	return client
}

// AddOpenPullRequest registers an open pull request from head into base
func (m *MockGitHubServer) AddOpenPullRequest(head, base, title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(head, base, title, "", false)
}

// PullRequests returns a snapshot of every pull request the server knows about
func (m *MockGitHubServer) PullRequests() []github.PullRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]github.PullRequest, 0, len(m.prs))
	for _, pr := range m.prs {
		out = append(out, *pr)
	}
	return out
}

func (m *MockGitHubServer) addLocked(head, base, title, body string, draft bool) int {
	number := m.nextNumber
	m.nextNumber++
	m.prs = append(m.prs, &github.PullRequest{
		Number:  github.Int(number),
		State:   github.String("open"),
		Title:   github.String(title),
		Body:    github.String(body),
		Draft:   github.Bool(draft),
		HTMLURL: github.String(fmt.Sprintf("https://github.com/%s/%s/pull/%d", m.Owner, m.Repo, number)),
		Head:    &github.PullRequestBranch{Ref: github.String(head)},
		Base:    &github.PullRequestBranch{Ref: github.String(base)},
	})
	return number
}

func (m *MockGitHubServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req github.NewPullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.addLocked(req.GetHead(), req.GetBase(), req.GetTitle(), req.GetBody(), req.GetDraft())
	pr := *m.prs[len(m.prs)-1]
	m.mu.Unlock()

	writeJSON(w, http.StatusCreated, pr)
}

func (m *MockGitHubServer) handleList(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	head := r.URL.Query().Get("head")
	if i := strings.Index(head, ":"); i >= 0 {
		head = head[i+1:]
	}

	m.mu.Lock()
	matches := []github.PullRequest{}
	for _, pr := range m.prs {
		if state != "" && state != "all" && pr.GetState() != state {
			continue
		}
		if head != "" && pr.GetHead().GetRef() != head {
			continue
		}
		matches = append(matches, *pr)
	}
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, matches)
}

func (m *MockGitHubServer) handleEdit(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		http.Error(w, "invalid pull request number", http.StatusBadRequest)
		return
	}
	var update struct {
		State *string `json:"state,omitempty"`
		Title *string `json:"title,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pr := range m.prs {
		if pr.GetNumber() != number {
			continue
		}
		if update.State != nil {
			pr.State = update.State
		}
		if update.Title != nil {
			pr.Title = update.Title
		}
		writeJSON(w, http.StatusOK, *pr)
		return
	}
	http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
