package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/goccy/go-json"
)

// Fitbit Web API paths used by the gateway.
const (
	ProfilePath          = "/1/user/-/profile.json"
	sleepPathFmt         = "/1.2/user/-/sleep/date/%s.json"
	dailyActivityPathFmt = "/1/user/-/activities/date/%s.json"
	stepsSeriesPathFmt   = "/1/user/-/activities/steps/date/%s/1d.json"
	heartTodaySecondPath = "/1/user/-/activities/heart/date/today/1d/1sec.json"
	heartTodayPath       = "/1/user/-/activities/heart/date/today/1d.json"
	stepsIntradayPathFmt = "/1/user/-/activities/steps/date/%s/1d/1min.json"
	heartIntradayPathFmt = "/1/user/-/activities/heart/date/%s/1d/1min.json"
)

// TokenFreshener hands back a token that is safe to use upstream.
type TokenFreshener interface {
	EnsureFresh(ctx context.Context, tok *models.Token) (*models.Token, error)
}

// BiometricsService proxies the read endpoints of the Fitbit API
type BiometricsService interface {
	// Profile returns the user's profile document
	Profile(ctx context.Context, tok *models.Token) (json.RawMessage, error)
	// Sleep returns the sleep log of day
	Sleep(ctx context.Context, tok *models.Token, day string) (json.RawMessage, error)
	// Steps returns the daily activity summary of day, falling back to the
	// one-day steps series when the summary is refused
	Steps(ctx context.Context, tok *models.Token, day string) (json.RawMessage, error)
	// HeartToday returns today's heart-rate series at per-second detail,
	// falling back to the daily series
	HeartToday(ctx context.Context, tok *models.Token) (json.RawMessage, error)
}

type biometricsService struct {
	api    FitbitAPI
	tokens TokenFreshener
}

// NewBiometricsService creates a new instance of BiometricsService
func NewBiometricsService(api FitbitAPI, tokens TokenFreshener) BiometricsService {
	return &biometricsService{api: api, tokens: tokens}
}

func (s *biometricsService) Profile(ctx context.Context, tok *models.Token) (json.RawMessage, error) {
	return s.get(ctx, tok, ProfilePath)
}

func (s *biometricsService) Sleep(ctx context.Context, tok *models.Token, day string) (json.RawMessage, error) {
	return s.get(ctx, tok, fmt.Sprintf(sleepPathFmt, day))
}

func (s *biometricsService) Steps(ctx context.Context, tok *models.Token, day string) (json.RawMessage, error) {
	return s.getWithFallback(ctx, tok, fmt.Sprintf(dailyActivityPathFmt, day), fmt.Sprintf(stepsSeriesPathFmt, day))
}

func (s *biometricsService) HeartToday(ctx context.Context, tok *models.Token) (json.RawMessage, error) {
	return s.getWithFallback(ctx, tok, heartTodaySecondPath, heartTodayPath)
}

func (s *biometricsService) get(ctx context.Context, tok *models.Token, path string) (json.RawMessage, error) {
	fresh, err := s.tokens.EnsureFresh(ctx, tok)
	if err != nil {
		return nil, err
	}
	return s.api.Get(ctx, fresh, path, nil)
}

// getWithFallback tries secondary when primary is refused upstream. A failed
// refresh never reaches either path.
func (s *biometricsService) getWithFallback(ctx context.Context, tok *models.Token, primary, secondary string) (json.RawMessage, error) {
	fresh, err := s.tokens.EnsureFresh(ctx, tok)
	if err != nil {
		return nil, err
	}

	body, err := s.api.Get(ctx, fresh, primary, nil)
	if err == nil {
		return body, nil
	}
	if !errors.Is(err, models.ErrUpstream) && !errors.Is(err, models.ErrUnauthorizedAPI) {
		return nil, err
	}

	log.WithError(err).WithField("path", primary).Info("Primary Fitbit endpoint failed, using fallback")
	return s.api.Get(ctx, fresh, secondary, nil)
}
