package controllers

import (
	"context"
	"time"

	"github.com/franciscosanchezn/fitbit-gateway/internal/auth"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLoginFlow struct {
	url, state string
	result     *auth.LoginResult
	err        error

	gotCode, gotState, gotCookie string
}

func (f *fakeLoginFlow) LoginURL() (string, string, error) {
	return f.url, f.state, f.err
}

func (f *fakeLoginFlow) CompleteLogin(ctx context.Context, code, state, cookieState string) (*auth.LoginResult, error) {
	f.gotCode, f.gotState, f.gotCookie = code, state, cookieState
	if cookieState == "" || state != cookieState {
		return nil, models.ErrInvalidState
	}
	return f.result, f.err
}

type fakeTokenSource struct {
	tokens map[string]*models.Token
	asked  []string
}

func (f *fakeTokenSource) TokenFor(ctx context.Context, userID string) (*models.Token, error) {
	f.asked = append(f.asked, userID)
	if userID == "" {
		for _, tok := range f.tokens {
			return tok, nil
		}
		return nil, models.ErrNoTokenStored
	}
	tok, ok := f.tokens[userID]
	if !ok {
		return nil, models.ErrNoTokenStored
	}
	return tok, nil
}

func singleToken() *fakeTokenSource {
	return &fakeTokenSource{tokens: map[string]*models.Token{
		"ABC123": {UserID: "ABC123", AccessToken: "access-1", ExpiresAt: time.Now().Add(time.Hour)},
	}}
}

type fakeBiometrics struct {
	body    json.RawMessage
	err     error
	lastDay string
}

func (f *fakeBiometrics) Profile(ctx context.Context, tok *models.Token) (json.RawMessage, error) {
	return f.body, f.err
}

func (f *fakeBiometrics) Sleep(ctx context.Context, tok *models.Token, day string) (json.RawMessage, error) {
	f.lastDay = day
	return f.body, f.err
}

func (f *fakeBiometrics) Steps(ctx context.Context, tok *models.Token, day string) (json.RawMessage, error) {
	f.lastDay = day
	return f.body, f.err
}

func (f *fakeBiometrics) HeartToday(ctx context.Context, tok *models.Token) (json.RawMessage, error) {
	return f.body, f.err
}

// fakeSeries keeps stored days in memory.
type fakeSeries struct {
	live     []models.MinutePoint
	fetchErr error
	stored   map[string][]models.MinutePoint
	fetches  int
}

func newFakeSeries(live []models.MinutePoint) *fakeSeries {
	return &fakeSeries{live: live, stored: map[string][]models.MinutePoint{}}
}

func (f *fakeSeries) FetchMinuteSeries(ctx context.Context, tok *models.Token, day string) ([]models.MinutePoint, error) {
	f.fetches++
	return f.live, f.fetchErr
}

func (f *fakeSeries) StoreDay(ctx context.Context, userID, day string, points []models.MinutePoint) (int, error) {
	f.stored[userID+"/"+day] = points
	return len(points), nil
}

func (f *fakeSeries) LoadDay(ctx context.Context, userID, day string) ([]models.MinutePoint, error) {
	points, ok := f.stored[userID+"/"+day]
	if !ok || len(points) == 0 {
		return nil, models.ErrNoDataForDate
	}
	return points, nil
}

func intPtr(v int) *int {
	return &v
}
