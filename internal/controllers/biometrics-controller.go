package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/franciscosanchezn/fitbit-gateway/internal/charts"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/franciscosanchezn/fitbit-gateway/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

var dayPattern = regexp.MustCompile(`^(today|yesterday|\d{4}-\d{2}-\d{2})$`)

// TokenSource finds the stored token a request acts on. An empty user id
// selects the single stored token.
type TokenSource interface {
	TokenFor(ctx context.Context, userID string) (*models.Token, error)
}

// BiometricsController handles the /api/v1/biometrics endpoints
type BiometricsController struct {
	tokens     TokenSource
	biometrics services.BiometricsService
	series     services.TimeSeriesService
	now        func() time.Time
}

// NewBiometricsController creates a new instance of BiometricsController
func NewBiometricsController(tokens TokenSource, biometrics services.BiometricsService, series services.TimeSeriesService) *BiometricsController {
	return &BiometricsController{
		tokens:     tokens,
		biometrics: biometrics,
		series:     series,
		now:        time.Now,
	}
}

// RegisterRoutes mounts every biometrics endpoint on rg
func (bc *BiometricsController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", bc.Profile)
	rg.GET("/sleep", bc.Sleep)
	rg.GET("/steps", bc.Steps)
	rg.GET("/heart/today", bc.HeartToday)
	rg.GET("/motion-heart", bc.MotionHeart)
	rg.GET("/ingest/motion-heart", bc.IngestMotionHeart)
	rg.POST("/ingest/motion-heart", bc.IngestMotionHeart)
	rg.GET("/motion-heart.db", bc.CachedMotionHeart)
	rg.GET("/charts/motion-heart.png", bc.MotionHeartChart)
	rg.GET("/charts/motion-heart.db.png", bc.CachedMotionHeartChart)
}

// Profile godoc
// @Summary Fitbit profile
// @Description Proxies the user's Fitbit profile
// @Tags biometrics
// @Produce json
// @Param user_id query string false "Fitbit user id, defaults to the stored account"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/biometrics/profile [get]
func (bc *BiometricsController) Profile(c *gin.Context) {
	tok, ok := bc.token(c)
	if !ok {
		return
	}
	bc.proxied(c)(bc.biometrics.Profile(c.Request.Context(), tok))
}

// Sleep godoc
// @Summary Sleep log
// @Description Proxies the sleep log of a day
// @Tags biometrics
// @Produce json
// @Param day query string false "today, yesterday or YYYY-MM-DD" default(today)
// @Param user_id query string false "Fitbit user id, defaults to the stored account"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/biometrics/sleep [get]
func (bc *BiometricsController) Sleep(c *gin.Context) {
	day, tok, ok := bc.dayAndToken(c)
	if !ok {
		return
	}
	bc.proxied(c)(bc.biometrics.Sleep(c.Request.Context(), tok, day))
}

// Steps godoc
// @Summary Daily activity
// @Description Proxies the daily activity summary, or the steps series when the summary is unavailable
// @Tags biometrics
// @Produce json
// @Param day query string false "today, yesterday or YYYY-MM-DD" default(today)
// @Param user_id query string false "Fitbit user id, defaults to the stored account"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/biometrics/steps [get]
func (bc *BiometricsController) Steps(c *gin.Context) {
	day, tok, ok := bc.dayAndToken(c)
	if !ok {
		return
	}
	bc.proxied(c)(bc.biometrics.Steps(c.Request.Context(), tok, day))
}

// HeartToday godoc
// @Summary Today's heart rate
// @Description Per-second heart rate for today, or the daily summary when intraday data is unavailable
// @Tags biometrics
// @Produce json
// @Param user_id query string false "Fitbit user id, defaults to the stored account"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/biometrics/heart/today [get]
func (bc *BiometricsController) HeartToday(c *gin.Context) {
	tok, ok := bc.token(c)
	if !ok {
		return
	}
	bc.proxied(c)(bc.biometrics.HeartToday(c.Request.Context(), tok))
}

// MotionHeart godoc
// @Summary Live minute series
// @Description Steps and heart rate per minute, fetched from Fitbit and merged
// @Tags biometrics
// @Produce json
// @Param day query string false "today, yesterday or YYYY-MM-DD" default(today)
// @Param user_id query string false "Fitbit user id, defaults to the stored account"
// @Success 200 {object} models.DaySeries
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/biometrics/motion-heart [get]
func (bc *BiometricsController) MotionHeart(c *gin.Context) {
	day, tok, ok := bc.dayAndToken(c)
	if !ok {
		return
	}
	points, err := bc.series.FetchMinuteSeries(c.Request.Context(), tok, day)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DaySeries{Day: day, Points: points})
}

// IngestMotionHeart godoc
// @Summary Cache a day of minute data
// @Description Fetches the merged minute series and replaces the cached rows of that day
// @Tags biometrics
// @Produce json
// @Param day query string false "today, yesterday or YYYY-MM-DD" default(today)
// @Param user_id query string false "Fitbit user id, defaults to the stored account"
// @Success 200 {object} models.IngestResult
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/biometrics/ingest/motion-heart [post]
func (bc *BiometricsController) IngestMotionHeart(c *gin.Context) {
	day, tok, ok := bc.dayAndToken(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	points, err := bc.series.FetchMinuteSeries(ctx, tok, day)
	if err != nil {
		respondWithError(c, err)
		return
	}
	stored, err := bc.series.StoreDay(ctx, tok.UserID, day, points)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.IngestResult{OK: true, Day: day, Stored: stored})
}

// CachedMotionHeart godoc
// @Summary Cached minute series
// @Description Reads a previously ingested day without calling Fitbit
// @Tags biometrics
// @Produce json
// @Param day query string false "today, yesterday or YYYY-MM-DD" default(today)
// @Param user_id query string false "Fitbit user id, defaults to the stored account"
// @Success 200 {object} models.DaySeries
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/biometrics/motion-heart.db [get]
func (bc *BiometricsController) CachedMotionHeart(c *gin.Context) {
	day, tok, ok := bc.dayAndToken(c)
	if !ok {
		return
	}
	points, err := bc.series.LoadDay(c.Request.Context(), tok.UserID, day)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DaySeries{Day: day, Points: points})
}

// MotionHeartChart godoc
// @Summary Live minute chart
// @Description PNG chart of steps and heart rate per minute, fetched from Fitbit
// @Tags charts
// @Produce png
// @Param day query string false "today, yesterday or YYYY-MM-DD" default(today)
// @Param user_id query string false "Fitbit user id, defaults to the stored account"
// @Success 200 {file} binary
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/biometrics/charts/motion-heart.png [get]
func (bc *BiometricsController) MotionHeartChart(c *gin.Context) {
	day, tok, ok := bc.dayAndToken(c)
	if !ok {
		return
	}
	points, err := bc.series.FetchMinuteSeries(c.Request.Context(), tok, day)
	if err != nil {
		respondWithError(c, err)
		return
	}
	bc.chart(c, day, points)
}

// CachedMotionHeartChart godoc
// @Summary Cached minute chart
// @Description PNG chart of a previously ingested day
// @Tags charts
// @Produce png
// @Param day query string false "today, yesterday or YYYY-MM-DD" default(today)
// @Param user_id query string false "Fitbit user id, defaults to the stored account"
// @Success 200 {file} binary
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/biometrics/charts/motion-heart.db.png [get]
func (bc *BiometricsController) CachedMotionHeartChart(c *gin.Context) {
	day, tok, ok := bc.dayAndToken(c)
	if !ok {
		return
	}
	points, err := bc.series.LoadDay(c.Request.Context(), tok.UserID, day)
	if err != nil {
		respondWithError(c, err)
		return
	}
	bc.chart(c, day, points)
}

func (bc *BiometricsController) chart(c *gin.Context, day string, points []models.MinutePoint) {
	var buf bytes.Buffer
	if err := charts.RenderMotionHeart(&buf, day, points); err != nil {
		respondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// proxied writes an upstream JSON document as is.
func (bc *BiometricsController) proxied(c *gin.Context) func(json.RawMessage, error) {
	return func(body json.RawMessage, err error) {
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}

func (bc *BiometricsController) token(c *gin.Context) (*models.Token, bool) {
	tok, err := bc.tokens.TokenFor(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return tok, true
}

func (bc *BiometricsController) dayAndToken(c *gin.Context) (string, *models.Token, bool) {
	day, err := resolveDay(c.DefaultQuery("day", "today"), bc.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, err.Error()))
		return "", nil, false
	}
	tok, ok := bc.token(c)
	return day, tok, ok
}

// resolveDay turns today, yesterday or an explicit YYYY-MM-DD into a calendar day.
func resolveDay(raw string, now time.Time) (string, error) {
	if !dayPattern.MatchString(raw) {
		return "", fmt.Errorf("invalid day %q: expected today, yesterday or YYYY-MM-DD", raw)
	}
	switch raw {
	case "today":
		return now.Format(services.DayLayout), nil
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(services.DayLayout), nil
	}
	if _, err := time.Parse(services.DayLayout, raw); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", raw, err)
	}
	return raw, nil
}
