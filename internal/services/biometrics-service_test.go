package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiometricsProfileUsesFreshToken(t *testing.T) {
	f, client := newFakeFitbit(t, map[string]cannedResponse{
		ProfilePath: {status: http.StatusOK, body: `{"user":{"encodedId":"ABC123"}}`},
	})
	tokens := &fakeFreshener{access: "access-refreshed"}
	service := NewBiometricsService(client, tokens)

	body, err := service.Profile(context.Background(), testToken())
	require.NoError(t, err)

	assert.JSONEq(t, `{"user":{"encodedId":"ABC123"}}`, string(body))
	assert.Equal(t, 1, tokens.calls)
	assert.Equal(t, "Bearer access-refreshed", f.lastHeaders().Get("Authorization"))
}

func TestBiometricsSleep(t *testing.T) {
	path := fmt.Sprintf(sleepPathFmt, "2025-03-01")
	f, client := newFakeFitbit(t, map[string]cannedResponse{
		path: {status: http.StatusOK, body: `{"sleep":[],"summary":{"totalMinutesAsleep":0}}`},
	})
	service := NewBiometricsService(client, &fakeFreshener{})

	_, err := service.Sleep(context.Background(), testToken(), "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, f.hitCount(path))
}

func TestBiometricsStepsFallsBackToSeries(t *testing.T) {
	day := "2025-03-01"
	summary := fmt.Sprintf(dailyActivityPathFmt, day)
	series := fmt.Sprintf(stepsSeriesPathFmt, day)

	t.Run("summary available", func(t *testing.T) {
		f, client := newFakeFitbit(t, map[string]cannedResponse{
			summary: {status: http.StatusOK, body: `{"summary":{"steps":8123}}`},
			series:  {status: http.StatusOK, body: `{"activities-steps":[]}`},
		})
		service := NewBiometricsService(client, &fakeFreshener{})

		body, err := service.Steps(context.Background(), testToken(), day)
		require.NoError(t, err)
		assert.JSONEq(t, `{"summary":{"steps":8123}}`, string(body))
		assert.Equal(t, 0, f.hitCount(series))
	})

	t.Run("summary refused", func(t *testing.T) {
		f, client := newFakeFitbit(t, map[string]cannedResponse{
			summary: {status: http.StatusBadRequest, body: `{"errors":[{"errorType":"validation"}]}`},
			series:  {status: http.StatusOK, body: `{"activities-steps":[{"dateTime":"2025-03-01","value":"8123"}]}`},
		})
		service := NewBiometricsService(client, &fakeFreshener{})

		body, err := service.Steps(context.Background(), testToken(), day)
		require.NoError(t, err)
		assert.Contains(t, string(body), "activities-steps")
		assert.Equal(t, 1, f.hitCount(summary))
		assert.Equal(t, 1, f.hitCount(series))
	})

	t.Run("both refused", func(t *testing.T) {
		_, client := newFakeFitbit(t, map[string]cannedResponse{
			summary: {status: http.StatusBadRequest, body: `{}`},
			series:  {status: http.StatusForbidden, body: `{"errors":[{"errorType":"insufficient_scope"}]}`},
		})
		service := NewBiometricsService(client, &fakeFreshener{})

		_, err := service.Steps(context.Background(), testToken(), day)
		require.ErrorIs(t, err, models.ErrUpstream)
		var upstream *models.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusForbidden, upstream.Status)
	})
}

func TestBiometricsHeartTodayFallsBackToDaily(t *testing.T) {
	f, client := newFakeFitbit(t, map[string]cannedResponse{
		heartTodaySecondPath: {status: http.StatusForbidden, body: `{"errors":[{"errorType":"insufficient_permissions"}]}`},
		heartTodayPath:       {status: http.StatusOK, body: `{"activities-heart":[{"value":{"restingHeartRate":58}}]}`},
	})
	service := NewBiometricsService(client, &fakeFreshener{})

	body, err := service.HeartToday(context.Background(), testToken())
	require.NoError(t, err)

	assert.Contains(t, string(body), "restingHeartRate")
	assert.Equal(t, 1, f.hitCount(heartTodaySecondPath))
	assert.Equal(t, 1, f.hitCount(heartTodayPath))
}

func TestBiometricsRefreshFailureSkipsUpstream(t *testing.T) {
	f, client := newFakeFitbit(t, map[string]cannedResponse{
		ProfilePath: {status: http.StatusOK, body: `{}`},
	})
	service := NewBiometricsService(client, &fakeFreshener{err: models.ErrRefreshFailed})

	_, err := service.Profile(context.Background(), testToken())
	assert.ErrorIs(t, err, models.ErrRefreshFailed)
	_, err = service.HeartToday(context.Background(), testToken())
	assert.ErrorIs(t, err, models.ErrRefreshFailed)
	assert.Equal(t, 0, f.hitCount(ProfilePath))
	assert.Equal(t, 0, f.hitCount(heartTodaySecondPath))
}
