package services

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitbitClientGetReturnsBodyVerbatim(t *testing.T) {
	body := `{"user":{"encodedId":"ABC123","displayName":"Runner"}}`
	f, client := newFakeFitbit(t, map[string]cannedResponse{
		ProfilePath: {status: http.StatusOK, body: body},
	})

	got, err := client.Get(context.Background(), testToken(), ProfilePath, url.Values{"period": {"1d"}})
	require.NoError(t, err)

	assert.JSONEq(t, body, string(got))
	headers := f.lastHeaders()
	assert.Equal(t, "Bearer access-1", headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
	assert.Equal(t, DefaultLocale, headers.Get("Accept-Language"))
	assert.Equal(t, "period=1d", f.lastQuery())
}

func TestFitbitClientGetErrors(t *testing.T) {
	testCases := []struct {
		name       string
		response   cannedResponse
		wantKind   error
		wantStatus int
	}{
		{
			name:       "unauthorized",
			response:   cannedResponse{status: http.StatusUnauthorized, body: `{"errors":[{"errorType":"invalid_token"}]}`},
			wantKind:   models.ErrUnauthorizedAPI,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rate limited",
			response:   cannedResponse{status: http.StatusTooManyRequests, body: `{"errors":[{"errorType":"system"}]}`},
			wantKind:   models.ErrUpstream,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "server error",
			response:   cannedResponse{status: http.StatusInternalServerError, body: `{"errors":[]}`},
			wantKind:   models.ErrUpstream,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "not json",
			response:   cannedResponse{status: http.StatusOK, body: "<html>maintenance</html>"},
			wantKind:   models.ErrUpstream,
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, client := newFakeFitbit(t, map[string]cannedResponse{ProfilePath: tc.response})

			_, err := client.Get(context.Background(), testToken(), ProfilePath, nil)
			require.ErrorIs(t, err, tc.wantKind)

			var upstream *models.UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, tc.wantStatus, upstream.Status)
		})
	}
}

func TestFitbitClientUnauthorizedIsNotGenericUpstream(t *testing.T) {
	_, client := newFakeFitbit(t, map[string]cannedResponse{
		ProfilePath: {status: http.StatusUnauthorized, body: `{}`},
	})

	_, err := client.Get(context.Background(), testToken(), ProfilePath, nil)
	assert.ErrorIs(t, err, models.ErrUnauthorizedAPI)
	assert.NotErrorIs(t, err, models.ErrUpstream)
}

func TestFitbitClientBreakerOpensOnServerErrors(t *testing.T) {
	f, client := newFakeFitbit(t, map[string]cannedResponse{
		ProfilePath: {status: http.StatusBadGateway, body: `{"errors":[]}`},
	})

	for i := 0; i < 5; i++ {
		_, err := client.Get(context.Background(), testToken(), ProfilePath, nil)
		require.ErrorIs(t, err, models.ErrUpstream)
	}

	_, err := client.Get(context.Background(), testToken(), ProfilePath, nil)
	require.ErrorIs(t, err, models.ErrUpstream)
	var upstream *models.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.Status)
	assert.Equal(t, 5, f.hitCount(ProfilePath), "open breaker short-circuits the call")
}

func TestFitbitClientClientErrorsDoNotTripBreaker(t *testing.T) {
	f, client := newFakeFitbit(t, map[string]cannedResponse{
		ProfilePath: {status: http.StatusUnauthorized, body: `{}`},
	})

	for i := 0; i < 8; i++ {
		_, err := client.Get(context.Background(), testToken(), ProfilePath, nil)
		require.ErrorIs(t, err, models.ErrUnauthorizedAPI)
	}
	assert.Equal(t, 8, f.hitCount(ProfilePath))
}

func TestResolveUserID(t *testing.T) {
	t.Run("reads encoded id", func(t *testing.T) {
		f, client := newFakeFitbit(t, map[string]cannedResponse{
			ProfilePath: {status: http.StatusOK, body: `{"user":{"encodedId":"7XYZ99"}}`},
		})

		id, err := client.ResolveUserID(context.Background(), "fresh-access")
		require.NoError(t, err)
		assert.Equal(t, "7XYZ99", id)
		assert.Equal(t, "Bearer fresh-access", f.lastHeaders().Get("Authorization"))
	})

	t.Run("missing encoded id", func(t *testing.T) {
		_, client := newFakeFitbit(t, map[string]cannedResponse{
			ProfilePath: {status: http.StatusOK, body: `{"user":{}}`},
		})

		_, err := client.ResolveUserID(context.Background(), "fresh-access")
		assert.Error(t, err)
	})

	t.Run("profile rejected", func(t *testing.T) {
		_, client := newFakeFitbit(t, map[string]cannedResponse{
			ProfilePath: {status: http.StatusUnauthorized, body: `{}`},
		})

		_, err := client.ResolveUserID(context.Background(), "fresh-access")
		assert.ErrorIs(t, err, models.ErrUnauthorizedAPI)
	})
}

func TestSetLogLevelEnablesDebugRequestLogs(t *testing.T) {
	var buf bytes.Buffer
	out, level := log.Out, log.GetLevel()
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetLevel(level)
	})
	_, client := newFakeFitbit(t, map[string]cannedResponse{
		ProfilePath: {status: http.StatusOK, body: `{"user":{"encodedId":"ABC123"}}`},
	})

	SetLogLevel(logrus.InfoLevel)
	_, err := client.Get(context.Background(), testToken(), ProfilePath, nil)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Fitbit request succeeded")

	SetLogLevel(logrus.DebugLevel)
	_, err = client.Get(context.Background(), testToken(), ProfilePath, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Fitbit request succeeded")
}
