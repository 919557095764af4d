package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/franciscosanchezn/fitbit-gateway/internal/metrics"
	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DayLayout is the calendar-day format used in paths, queries and the cache key.
const DayLayout = "2006-01-02"

const (
	minuteLabelLayout = "15:04:05"
	storeBatchSize    = 500
)

// TimeSeriesService aligns intraday steps and heart rate and caches them per day.
type TimeSeriesService interface {
	// FetchMinuteSeries pulls the 1-minute steps and heart-rate series of day
	// and merges them
	FetchMinuteSeries(ctx context.Context, tok *models.Token, day string) ([]models.MinutePoint, error)
	// StoreDay replaces the cached rows of (userID, day) with points
	StoreDay(ctx context.Context, userID, day string, points []models.MinutePoint) (int, error)
	// LoadDay reads the cached rows of (userID, day) in time order
	LoadDay(ctx context.Context, userID, day string) ([]models.MinutePoint, error)
}

type timeSeriesService struct {
	db     *gorm.DB
	api    FitbitAPI
	tokens TokenFreshener
}

// NewTimeSeriesService creates a new instance of TimeSeriesService
func NewTimeSeriesService(db *gorm.DB, api FitbitAPI, tokens TokenFreshener) TimeSeriesService {
	return &timeSeriesService{db: db, api: api, tokens: tokens}
}

type intradayDataset struct {
	Dataset []struct {
		Time  string `json:"time"`
		Value int    `json:"value"`
	} `json:"dataset"`
}

func (d intradayDataset) byTime() map[string]int {
	values := make(map[string]int, len(d.Dataset))
	for _, sample := range d.Dataset {
		values[sample.Time] = sample.Value
	}
	return values
}

func (s *timeSeriesService) FetchMinuteSeries(ctx context.Context, tok *models.Token, day string) ([]models.MinutePoint, error) {
	fresh, err := s.tokens.EnsureFresh(ctx, tok)
	if err != nil {
		return nil, err
	}

	stepsBody, err := s.api.Get(ctx, fresh, fmt.Sprintf(stepsIntradayPathFmt, day), nil)
	if err != nil {
		return nil, err
	}
	heartBody, err := s.api.Get(ctx, fresh, fmt.Sprintf(heartIntradayPathFmt, day), nil)
	if err != nil {
		return nil, err
	}

	var steps struct {
		Intraday intradayDataset `json:"activities-steps-intraday"`
	}
	if err := json.Unmarshal(stepsBody, &steps); err != nil {
		return nil, fmt.Errorf("failed to decode intraday steps: %w", err)
	}
	var heart struct {
		Intraday intradayDataset `json:"activities-heart-intraday"`
	}
	if err := json.Unmarshal(heartBody, &heart); err != nil {
		return nil, fmt.Errorf("failed to decode intraday heart rate: %w", err)
	}

	points := MergeMinuteSeries(steps.Intraday.byTime(), heart.Intraday.byTime())
	log.WithFields(logrus.Fields{
		"user_id": fresh.UserID,
		"day":     day,
		"points":  len(points),
	}).Debug("Fetched intraday series")
	return points, nil
}

// MergeMinuteSeries outer-joins steps and heart rate on their time labels.
// Points are ordered by label; missing steps read as 0, missing heart rate as nil.
func MergeMinuteSeries(steps, hr map[string]int) []models.MinutePoint {
	labels := make([]string, 0, len(steps)+len(hr))
	for label := range steps {
		labels = append(labels, label)
	}
	for label := range hr {
		if _, ok := steps[label]; !ok {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	points := make([]models.MinutePoint, 0, len(labels))
	for _, label := range labels {
		point := models.MinutePoint{Time: label, Steps: steps[label]}
		if v, ok := hr[label]; ok {
			point.HR = &v
		}
		points = append(points, point)
	}
	return points
}

func (s *timeSeriesService) StoreDay(ctx context.Context, userID, day string, points []models.MinutePoint) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("cannot store intraday rows without a user id")
	}
	if _, err := time.Parse(DayLayout, day); err != nil {
		return 0, fmt.Errorf("invalid day %q: %w", day, err)
	}

	rows := make([]models.IntradayMinute, 0, len(points))
	for _, p := range points {
		ts, err := minuteTimestamp(day, p.Time)
		if err != nil {
			return 0, err
		}
		steps := p.Steps
		rows = append(rows, models.IntradayMinute{
			UserID: userID,
			Day:    day,
			Ts:     ts,
			Steps:  &steps,
			HR:     p.HR,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND day = ?", userID, day).Delete(&models.IntradayMinute{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, storeBatchSize).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store intraday rows for %s: %w", day, err)
	}

	metrics.IntradayRowsStored.Add(float64(len(rows)))
	log.WithFields(logrus.Fields{"user_id": userID, "day": day, "stored": len(rows)}).Info("Stored intraday rows")
	return len(rows), nil
}

func (s *timeSeriesService) LoadDay(ctx context.Context, userID, day string) ([]models.MinutePoint, error) {
	var rows []models.IntradayMinute
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		Order("ts").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load intraday rows for %s: %w", day, err)
	}
	if len(rows) == 0 {
		metrics.IntradayCacheLookups.WithLabelValues("miss").Inc()
		return nil, models.ErrNoDataForDate
	}
	metrics.IntradayCacheLookups.WithLabelValues("hit").Inc()

	points := make([]models.MinutePoint, 0, len(rows))
	for _, r := range rows {
		point := models.MinutePoint{Time: r.Ts.UTC().Format(minuteLabelLayout), HR: r.HR}
		if r.Steps != nil {
			point.Steps = *r.Steps
		}
		points = append(points, point)
	}
	return points, nil
}

// minuteTimestamp places a time label on day. Fitbit labels are HH:MM:SS in
// the user's local day; they are stored with that wall clock in UTC.
func minuteTimestamp(day, label string) (time.Time, error) {
	for _, layout := range []string{minuteLabelLayout, "15:04"} {
		if ts, err := time.ParseInLocation(DayLayout+" "+layout, day+" "+label, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time label %q", label)
}
