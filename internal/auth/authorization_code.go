package auth

import (
	"context"
	"fmt"

	"github.com/franciscosanchezn/fitbit-gateway/internal/metrics"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// CompleteLogin verifies the CSRF state, exchanges the authorization code and
// upserts the resulting token for the Fitbit user.
func (m *TokenManager) CompleteLogin(ctx context.Context, code, state, cookieState string) (*LoginResult, error) {
	// The state cookie is the only CSRF binding.
	if cookieState == "" || state != cookieState {
		metrics.TokenExchanges.WithLabelValues("invalid_state").Inc()
		log.WithField("cookie_present", cookieState != "").Warn("OAuth state mismatch")
		return nil, models.ErrInvalidState
	}

	tok, err := m.oauthConfig.Exchange(m.withHTTPClient(ctx), code,
		oauth2.SetAuthURLParam("client_id", m.oauthConfig.ClientID))
	if err != nil {
		metrics.TokenExchanges.WithLabelValues("rejected").Inc()
		log.WithError(err).Warn("Authorization code exchange failed")
		return nil, tokenEndpointError(models.ErrTokenExchangeFailed, err)
	}

	userID := extraString(tok, "user_id")
	if userID == "" {
		userID, err = m.resolver.ResolveUserID(ctx, tok.AccessToken)
		if err != nil {
			metrics.TokenExchanges.WithLabelValues("error").Inc()
			log.WithError(err).Warn("Profile lookup for user id failed")
			return nil, fmt.Errorf("%w: %v", models.ErrUserIDUnresolved, err)
		}
		if userID == "" {
			metrics.TokenExchanges.WithLabelValues("error").Inc()
			return nil, models.ErrUserIDUnresolved
		}
	}

	record := &models.Token{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scope:        extraString(tok, "scope"),
		TokenType:    tok.Type(),
		ExpiresAt:    m.expiresAt(tok),
	}
	if err := m.store.Upsert(ctx, record); err != nil {
		metrics.TokenExchanges.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.TokenExchanges.WithLabelValues("success").Inc()
	log.WithFields(logrus.Fields{
		"user_id":    userID,
		"scope":      record.Scope,
		"expires_at": record.ExpiresAt,
	}).Info("Fitbit account authorized")

	return &LoginResult{OK: true, UserID: userID, Scope: record.Scope}, nil
}
