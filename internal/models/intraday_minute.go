package models

import (
	"time"
)

// IntradayMinute is one cached minute of merged steps and heart rate.
// A day's rows are always replaced together.
type IntradayMinute struct {
	UserID string    `gorm:"primaryKey"`
	Day    string    `gorm:"primaryKey;size:10"` // YYYY-MM-DD
	Ts     time.Time `gorm:"primaryKey"`
	Steps  *int
	HR     *int `gorm:"column:hr"`
}

func (IntradayMinute) TableName() string {
	return "intraday_minutes"
}

// MinutePoint is a single aligned sample as served to callers.
type MinutePoint struct {
	Time  string `json:"time"` // HH:MM:SS
	Steps int    `json:"steps"`
	HR    *int   `json:"hr"`
}

// DaySeries is the JSON shape returned for a day of merged samples.
type DaySeries struct {
	Day    string        `json:"day"`
	Points []MinutePoint `json:"points"`
}

// IngestResult reports how many minutes an ingestion wrote for a day.
type IngestResult struct {
	OK     bool   `json:"ok"`
	Day    string `json:"day"`
	Stored int    `json:"stored"`
}
