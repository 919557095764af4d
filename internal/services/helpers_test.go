package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/franciscosanchezn/fitbit-gateway/internal/database"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type cannedResponse struct {
	status int
	body   string
}

// fakeFitbit serves canned responses per path and records what it saw.
type fakeFitbit struct {
	mu        sync.Mutex
	responses map[string]cannedResponse
	hits      map[string]int
	headers   http.Header
	rawQuery  string
}

func newFakeFitbit(t *testing.T, responses map[string]cannedResponse) (*fakeFitbit, *FitbitClient) {
	f := &fakeFitbit{responses: responses, hits: map[string]int{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, NewFitbitClient(srv.URL, 5*time.Second)
}

func (f *fakeFitbit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.headers = r.Header.Clone()
	f.rawQuery = r.URL.RawQuery
	resp, ok := f.responses[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		resp = cannedResponse{status: http.StatusNotFound, body: `{"errors":[{"errorType":"not_found"}]}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (f *fakeFitbit) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeFitbit) lastHeaders() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers
}

// fakeFreshener swaps in a refreshed access token without any network.
type fakeFreshener struct {
	access string
	err    error
	calls  int
}

func (f *fakeFreshener) EnsureFresh(ctx context.Context, tok *models.Token) (*models.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	fresh := *tok
	if f.access != "" {
		fresh.AccessToken = f.access
	}
	return &fresh, nil
}

func testToken() *models.Token {
	return &models.Token{
		UserID:      "ABC123",
		AccessToken: "access-1",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().UTC().Add(time.Hour),
	}
}

func intPtr(v int) *int {
	return &v
}

func (f *fakeFitbit) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rawQuery
}
