package controllers

import (
	"context"
	"net/http"

	"github.com/franciscosanchezn/fitbit-gateway/internal/auth"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/gin-gonic/gin"
)

// StateCookieName holds the CSRF state between login and callback.
const StateCookieName = "fitbit_oauth_state"

// stateCookieMaxAge is ten minutes, in seconds.
const stateCookieMaxAge = 600

// LoginFlow is the part of the token manager the auth endpoints drive.
type LoginFlow interface {
	LoginURL() (string, string, error)
	CompleteLogin(ctx context.Context, code, state, cookieState string) (*auth.LoginResult, error)
}

type AuthController struct {
	flow LoginFlow
}

func NewAuthController(flow LoginFlow) *AuthController {
	return &AuthController{flow: flow}
}

// RegisterRoutes mounts /login and /callback on rg
func (ac *AuthController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/login", ac.Login)
	rg.GET("/callback", ac.Callback)
}

// Login godoc
// @Summary Start the Fitbit authorization
// @Description Redirects to the Fitbit consent page and sets the state cookie
// @Tags auth
// @Success 302
// @Failure 500 {object} models.APIError
// @Router /auth/login [get]
func (ac *AuthController) Login(c *gin.Context) {
	url, state, err := ac.flow.LoginURL()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookieName, state, stateCookieMaxAge, "/", "", true, true)
	c.Redirect(http.StatusFound, url)
}

// Callback godoc
// @Summary Complete the Fitbit authorization
// @Description Verifies the state, exchanges the code and stores the token
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /auth/login"
// @Success 200 {object} auth.LoginResult
// @Failure 400 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Router /auth/callback [get]
func (ac *AuthController) Callback(c *gin.Context) {
	// Fitbit reports a denied consent on the redirect itself
	if reason := c.Query("error"); reason != "" {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "authorization was not granted",
			map[string]interface{}{"error": reason, "error_description": c.Query("error_description")}))
		return
	}

	cookieState, err := c.Cookie(StateCookieName)
	if err != nil {
		cookieState = ""
	}

	result, err := ac.flow.CompleteLogin(c.Request.Context(), c.Query("code"), c.Query("state"), cookieState)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookieName, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, result)
}
