package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/franciscosanchezn/fitbit-gateway/internal/metrics"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel adjusts the verbosity of upstream call logging.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// DefaultLocale is sent as Accept-Language on every upstream call.
const DefaultLocale = "en_US"

const breakerName = "fitbit-api"

// FitbitAPI performs authenticated reads against the Fitbit Web API.
type FitbitAPI interface {
	// Get returns the JSON body of path untouched.
	Get(ctx context.Context, tok *models.Token, path string, params url.Values) (json.RawMessage, error)
}

// FitbitClient is the upstream proxy. It attaches the bearer token, maps
// failures onto the domain errors and guards the API with a circuit breaker.
type FitbitClient struct {
	baseURL    string
	httpClient *http.Client
	locale     string
	cb         *gobreaker.CircuitBreaker[json.RawMessage]
}

// NewFitbitClient creates a client for the API rooted at baseURL. Every call is
// bounded by timeout.
func NewFitbitClient(baseURL string, timeout time.Duration) *FitbitClient {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Rejections of our own credentials or parameters say nothing about
		// upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || !isOutage(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &FitbitClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		locale:     DefaultLocale,
		cb:         cb,
	}
}

func (c *FitbitClient) Get(ctx context.Context, tok *models.Token, path string, params url.Values) (json.RawMessage, error) {
	body, err := c.cb.Execute(func() (json.RawMessage, error) {
		return c.get(ctx, tok.AccessToken, path, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.UpstreamRequests.WithLabelValues("rejected").Inc()
		return nil, &models.UpstreamError{Kind: models.ErrUpstream, Status: http.StatusServiceUnavailable, Body: err.Error()}
	}
	return body, err
}

func (c *FitbitClient) get(ctx context.Context, accessToken, path string, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", c.locale)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("transport_error").Inc()
		log.WithError(err).WithField("path", path).Warn("Fitbit request failed")
		return nil, &models.UpstreamError{Kind: models.ErrUpstream, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("transport_error").Inc()
		return nil, &models.UpstreamError{Kind: models.ErrUpstream, Status: resp.StatusCode, Body: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.UpstreamRequests.WithLabelValues("unauthorized").Inc()
		return nil, &models.UpstreamError{Kind: models.ErrUnauthorizedAPI, Status: resp.StatusCode, Body: string(body)}
	case resp.StatusCode >= 500:
		metrics.UpstreamRequests.WithLabelValues("server_error").Inc()
		return nil, &models.UpstreamError{Kind: models.ErrUpstream, Status: resp.StatusCode, Body: string(body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.UpstreamRequests.WithLabelValues("client_error").Inc()
		return nil, &models.UpstreamError{Kind: models.ErrUpstream, Status: resp.StatusCode, Body: string(body)}
	}

	if !json.Valid(body) {
		metrics.UpstreamRequests.WithLabelValues("server_error").Inc()
		return nil, &models.UpstreamError{Kind: models.ErrUpstream, Status: resp.StatusCode, Body: "response is not valid JSON"}
	}

	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	log.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode}).Debug("Fitbit request succeeded")
	return json.RawMessage(body), nil
}

// ResolveUserID reads the encoded user id from the profile of accessToken's owner.
func (c *FitbitClient) ResolveUserID(ctx context.Context, accessToken string) (string, error) {
	body, err := c.Get(ctx, &models.Token{AccessToken: accessToken}, ProfilePath, nil)
	if err != nil {
		return "", err
	}
	var profile struct {
		User struct {
			EncodedID string `json:"encodedId"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", fmt.Errorf("failed to decode profile: %w", err)
	}
	if profile.User.EncodedID == "" {
		return "", errors.New("profile has no encodedId")
	}
	return profile.User.EncodedID, nil
}

// isOutage reports whether err indicates the upstream itself is failing.
func isOutage(err error) bool {
	var upstream *models.UpstreamError
	if !errors.As(err, &upstream) {
		return true
	}
	return upstream.Status == 0 || upstream.Status >= 500
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
