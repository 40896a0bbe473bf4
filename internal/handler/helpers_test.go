package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/msomdec/limur-users/internal/handler"
	"github.com/msomdec/limur-users/internal/remote"
	"github.com/msomdec/limur-users/internal/repository/sqlite"
	"github.com/msomdec/limur-users/internal/service"
)

const testProfileSecret = "test-secret-for-handler-tests-0123456789"

const remoteUsersJSON = `[
  {"id":1,"name":"Leanne Graham","username":"Bret","email":"Sincere@april.biz",
   "address":{"street":"Kulas Light","suite":"Apt. 556","city":"Gwenborough","zipcode":"92998-3874","geo":{"lat":"-37.3159","lng":"81.1496"}},
   "phone":"1-770-736-8031 x56442","website":"hildegard.org",
   "company":{"name":"Romaguera-Crona","catchPhrase":"Multi-layered client-server neural-net","bs":"harness real-time e-markets"}},
  {"id":2,"name":"Ervin Howell","username":"Antonette","email":"Shanna@melissa.tv",
   "address":{"street":"Victor Plains","suite":"Suite 879","city":"Wisokyburgh","zipcode":"90566-7771","geo":{"lat":"-43.9509","lng":"-34.4618"}},
   "phone":"010-692-6593 x09125","website":"anastasia.net",
   "company":{"name":"Deckow-Crist","catchPhrase":"Proactive didactic contingency","bs":"synergize scalable supply-chains"}}
]`

// fakeRemote serves the demo users list, or 503 while failing.
type fakeRemote struct {
	mu      sync.Mutex
	calls   int
	failing bool
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls++
	failing := f.failing
	f.mu.Unlock()

	if failing {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, remoteUsersJSON)
}

func (f *fakeRemote) setFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *fakeRemote) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newFakeRemote(t *testing.T) (*fakeRemote, string) {
	t.Helper()
	fake := &fakeRemote{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv.URL + "/users"
}

// newTestServer wires the full handler stack against a fresh database and
// the given remote endpoint. A nil limiter allows every request.
func newTestServer(t *testing.T, endpoint string, limiter *service.TokenBucket) *httptest.Server {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	client := remote.NewClient(remote.WithEndpoint(endpoint), remote.WithTimeout(5*time.Second))
	stores := service.NewUserStores(db.KV, client)
	profiles := service.NewProfileService(testProfileSecret)
	if limiter == nil {
		limiter = service.NewTokenBucket(1000, 1000)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, stores, profiles, limiter, nil, false)

	srv := httptest.NewServer(handler.LogRequests(handler.SecurityHeaders(mux)))
	t.Cleanup(srv.Close)
	return srv
}

// newTestClient returns a client that keeps cookies and does not follow
// redirects.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// getBody performs a GET and returns the status and body.
func getBody(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}
