package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/franciscosanchezn/fitbit-gateway/internal/database"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testClientID     = "23TEST"
	testClientSecret = "test-client-secret"
	testRedirectURI  = "http://localhost/callback"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection to :memory: would get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// fakeTokenEndpoint answers every request with a canned status and body.
type fakeTokenEndpoint struct {
	status int
	body   string
	delay  time.Duration

	calls atomic.Int32

	mu        sync.Mutex
	lastForm  url.Values
	basicUser string
	basicPass string
}

func (f *fakeTokenEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	_ = r.ParseForm()
	user, pass, _ := r.BasicAuth()

	f.mu.Lock()
	f.lastForm = r.PostForm
	f.basicUser, f.basicPass = user, pass
	body := f.body
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeTokenEndpoint) setBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = body
}

func (f *fakeTokenEndpoint) form() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastForm
}

func (f *fakeTokenEndpoint) basicAuth() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.basicUser, f.basicPass
}

// fakeResolver stands in for the profile lookup.
type fakeResolver struct {
	userID string
	err    error
	calls  atomic.Int32
}

func (r *fakeResolver) ResolveUserID(ctx context.Context, accessToken string) (string, error) {
	r.calls.Add(1)
	if accessToken == "" {
		return "", errors.New("empty access token")
	}
	return r.userID, r.err
}

func newTestManager(t *testing.T, endpoint http.Handler, resolver UserIDResolver) (*TokenManager, *GormTokenStore) {
	srv := httptest.NewServer(endpoint)
	t.Cleanup(srv.Close)

	store := NewGormTokenStore(setupTestDB(t))
	m := NewTokenManager(ManagerConfig{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURI:  testRedirectURI,
		AuthURL:      srv.URL + "/oauth2/authorize",
		TokenURL:     srv.URL + "/oauth2/token",
		Leeway:       time.Minute,
		HTTPClient:   &http.Client{Timeout: 5 * time.Second},
	}, store, resolver)
	return m, store
}

func countTokens(t *testing.T, store *GormTokenStore, userID string) int64 {
	var n int64
	require.NoError(t, store.db.Model(&models.Token{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}
