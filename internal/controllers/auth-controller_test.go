package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/fitbit-gateway/internal/auth"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(flow LoginFlow) *gin.Engine {
	router := gin.New()
	NewAuthController(flow).RegisterRoutes(router.Group("/auth"))
	return router
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestLoginRedirectsAndSetsStateCookie(t *testing.T) {
	flow := &fakeLoginFlow{url: "https://www.fitbit.com/oauth2/authorize?state=s1", state: "s1"}
	router := setupAuthRouter(flow)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, flow.url, w.Header().Get("Location"))

	cookie := findCookie(t, w, StateCookieName)
	assert.Equal(t, "s1", cookie.Value)
	assert.Equal(t, 600, cookie.MaxAge)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestCallback(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		cookie         string
		flowErr        error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "matching state",
			query:          "?code=abc&state=s1",
			cookie:         "s1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "state mismatch",
			query:          "?code=abc&state=forged",
			cookie:         "s1",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.ErrCodeInvalidState,
		},
		{
			name:           "missing cookie",
			query:          "?code=abc&state=s1",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.ErrCodeInvalidState,
		},
		{
			name:   "exchange rejected",
			query:  "?code=abc&state=s1",
			cookie: "s1",
			flowErr: &models.UpstreamError{
				Kind: models.ErrTokenExchangeFailed, Status: http.StatusBadRequest, Body: `{"errors":[{"errorType":"invalid_grant"}]}`,
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.ErrCodeTokenExchangeFailed,
		},
		{
			name:           "user id unresolved",
			query:          "?code=abc&state=s1",
			cookie:         "s1",
			flowErr:        models.ErrUserIDUnresolved,
			expectedStatus: http.StatusBadGateway,
			expectedCode:   models.ErrCodeUserIDUnresolved,
		},
		{
			name:           "consent denied",
			query:          "?error=access_denied&state=s1",
			cookie:         "s1",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.ErrBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			flow := &fakeLoginFlow{
				result: &auth.LoginResult{OK: true, UserID: "ABC123", Scope: "activity heartrate"},
				err:    tc.flowErr,
			}
			router := setupAuthRouter(flow)

			req := httptest.NewRequest(http.MethodGet, "/auth/callback"+tc.query, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: StateCookieName, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code, w.Body.String())
			if tc.expectedCode != "" {
				assert.Contains(t, w.Body.String(), `"code":"`+tc.expectedCode+`"`)
				return
			}

			assert.JSONEq(t, `{"ok":true,"user_id":"ABC123","scope":"activity heartrate"}`, w.Body.String())
			assert.NotContains(t, w.Body.String(), "access")
			assert.Equal(t, "abc", flow.gotCode)
			cleared := findCookie(t, w, StateCookieName)
			assert.Empty(t, cleared.Value)
			assert.True(t, cleared.MaxAge < 0)
		})
	}
}

func TestCallbackExchangeErrorCarriesUpstreamDetail(t *testing.T) {
	flow := &fakeLoginFlow{err: &models.UpstreamError{
		Kind: models.ErrTokenExchangeFailed, Status: http.StatusUnauthorized, Body: "Authorization code expired",
	}}
	router := setupAuthRouter(flow)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=old&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: StateCookieName, Value: "s1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization code expired")
	assert.Contains(t, w.Body.String(), `"upstream_status":401`)
}
