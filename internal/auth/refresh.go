package auth

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/fitbit-gateway/internal/metrics"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const errNoRefreshToken = "no refresh token stored; visit /auth/login again"

// EnsureFresh returns tok unchanged while it is valid beyond the leeway window.
// Otherwise it refreshes the token once, persists it and returns the new record.
// Concurrent callers for the same user serialize here, and whoever waited behind
// a successful refresh gets the already refreshed row.
func (m *TokenManager) EnsureFresh(ctx context.Context, tok *models.Token) (*models.Token, error) {
	if !tok.ExpiresWithin(m.now(), m.leeway) {
		return tok, nil
	}

	unlock := m.locks.lock(tok.UserID)
	defer unlock()

	current, err := m.store.Get(ctx, tok.UserID)
	switch {
	case errors.Is(err, models.ErrNoTokenStored):
		current = tok
	case err != nil:
		return nil, err
	case !current.ExpiresWithin(m.now(), m.leeway):
		metrics.TokenRefreshes.WithLabelValues("skipped").Inc()
		return current, nil
	}

	refreshed, err := m.Refresh(ctx, current)
	if err != nil {
		return nil, err
	}
	if err := m.store.Upsert(ctx, refreshed); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// Refresh trades the stored refresh token for a new token bundle. It makes a
// single attempt; a rejection yields models.ErrRefreshFailed. The client id
// travels in the Basic auth header alongside the secret.
func (m *TokenManager) Refresh(ctx context.Context, tok *models.Token) (*models.Token, error) {
	if tok.RefreshToken == "" {
		metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
		log.WithField("user_id", tok.UserID).Warn("Token refresh skipped: no refresh token stored")
		return nil, &models.UpstreamError{Kind: models.ErrRefreshFailed, Body: errNoRefreshToken}
	}

	src := m.oauthConfig.TokenSource(m.withHTTPClient(ctx), &oauth2.Token{RefreshToken: tok.RefreshToken})
	fresh, err := src.Token()
	if err != nil {
		rerr := tokenEndpointError(models.ErrRefreshFailed, err)
		if errors.Is(rerr, models.ErrRefreshFailed) {
			metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
		} else {
			metrics.TokenRefreshes.WithLabelValues("error").Inc()
		}
		log.WithError(err).WithField("user_id", tok.UserID).Warn("Token refresh failed")
		return nil, rerr
	}

	updated := *tok
	updated.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		updated.RefreshToken = fresh.RefreshToken
	}
	if scope := extraString(fresh, "scope"); scope != "" {
		updated.Scope = scope
	}
	if fresh.TokenType != "" {
		updated.TokenType = fresh.TokenType
	}
	updated.ExpiresAt = m.expiresAt(fresh)

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	log.WithFields(logrus.Fields{
		"user_id":    updated.UserID,
		"expires_at": updated.ExpiresAt,
	}).Info("Fitbit token refreshed")
	return &updated, nil
}
