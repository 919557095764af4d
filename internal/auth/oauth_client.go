package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/franciscosanchezn/fitbit-gateway/internal/config"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	switch config.GetEnvAsType("APP_ENV", "development") {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

// SetLogLevel overrides the APP_ENV default for OAuth lifecycle logging.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// DefaultScopes is the fixed permission set requested at authorization.
var DefaultScopes = []string{"heartrate", "activity", "sleep", "weight", "profile"}

// DefaultLeeway is how close to expiry a token may get before it is refreshed.
const DefaultLeeway = 60 * time.Second

// stateBytes is the entropy of the CSRF state value.
const stateBytes = 32

// UserIDResolver looks up the Fitbit user id owning an access token.
type UserIDResolver interface {
	ResolveUserID(ctx context.Context, accessToken string) (string, error)
}

// ManagerConfig configures a TokenManager.
type ManagerConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
	Leeway       time.Duration
	HTTPClient   *http.Client
}

// ManagerConfigFrom builds the manager settings from the application configuration.
func ManagerConfigFrom(c *config.Config) ManagerConfig {
	return ManagerConfig{
		ClientID:     c.FitbitClientID,
		ClientSecret: c.FitbitClientSecret,
		RedirectURI:  c.FitbitRedirectURI,
		AuthURL:      c.FitbitAuthURL,
		TokenURL:     c.FitbitTokenURL,
		Scopes:       DefaultScopes,
		Leeway:       c.RefreshLeeway,
		HTTPClient:   &http.Client{Timeout: c.UpstreamTimeout},
	}
}

// TokenManager runs the OAuth authorization-code flow against Fitbit and keeps
// stored tokens fresh.
type TokenManager struct {
	oauthConfig *oauth2.Config
	store       TokenStore
	resolver    UserIDResolver
	httpClient  *http.Client
	leeway      time.Duration
	now         func() time.Time
	locks       *userLocks
}

// LoginResult is the confirmation returned once a callback completes. It never
// carries the tokens themselves.
type LoginResult struct {
	OK     bool   `json:"ok"`
	UserID string `json:"user_id"`
	Scope  string `json:"scope"`
}

func NewTokenManager(cfg ManagerConfig, store TokenStore, resolver UserIDResolver) *TokenManager {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	leeway := cfg.Leeway
	if leeway == 0 {
		leeway = DefaultLeeway
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &TokenManager{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		store:      store,
		resolver:   resolver,
		httpClient: httpClient,
		leeway:     leeway,
		now:        func() time.Time { return time.Now().UTC() },
		locks:      newUserLocks(),
	}
}

// Store exposes the token store backing the manager.
func (m *TokenManager) Store() TokenStore {
	return m.store
}

// LoginURL returns the Fitbit authorization URL together with the fresh state
// value that must round-trip through the callback.
func (m *TokenManager) LoginURL() (string, string, error) {
	state, err := newState()
	if err != nil {
		return "", "", err
	}
	return m.oauthConfig.AuthCodeURL(state), state, nil
}

func newState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// TokenFor returns the stored token for userID, or the single stored token when
// userID is empty.
func (m *TokenManager) TokenFor(ctx context.Context, userID string) (*models.Token, error) {
	if userID == "" {
		return m.store.First(ctx)
	}
	return m.store.Get(ctx, userID)
}

// withHTTPClient makes x/oauth2 use the manager's bounded client.
func (m *TokenManager) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// tokenEndpointError classifies an x/oauth2 failure. Non-success responses map
// to kind; transport failures map to models.ErrUpstream.
func tokenEndpointError(kind error, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		status := 0
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		return &models.UpstreamError{Kind: kind, Status: status, Body: string(rerr.Body)}
	}
	return &models.UpstreamError{Kind: models.ErrUpstream, Body: err.Error()}
}

// extraString reads a string field of the raw token response.
func extraString(tok *oauth2.Token, key string) string {
	if v, ok := tok.Extra(key).(string); ok {
		return v
	}
	return ""
}

// expiresAt computes the absolute expiry of a freshly issued token.
func (m *TokenManager) expiresAt(tok *oauth2.Token) time.Time {
	if tok.Expiry.IsZero() {
		return m.now().Add(models.DefaultExpiresIn)
	}
	return tok.Expiry.UTC()
}

type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for userID and returns its release func.
func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
