// Package charts renders intraday series as PNG images.
package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	width  = 1500
	height = 600
)

var (
	stepsColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	heartColor = drawing.Color{R: 214, G: 39, B: 40, A: 255}
)

// heartRun is a stretch of consecutive minutes that all carry a heart-rate reading.
type heartRun struct {
	x []float64
	y []float64
}

// heartRuns splits the heart-rate samples of points at every missing reading,
// so a gap is drawn as a break in the line.
func heartRuns(points []models.MinutePoint) []heartRun {
	var runs []heartRun
	var current *heartRun
	for i, p := range points {
		if p.HR == nil {
			current = nil
			continue
		}
		if current == nil {
			runs = append(runs, heartRun{})
			current = &runs[len(runs)-1]
		}
		current.x = append(current.x, float64(i))
		current.y = append(current.y, float64(*p.HR))
	}
	return runs
}

// RenderMotionHeart writes a dual-axis line chart of day's points to w:
// steps per minute on the left axis and heart rate on the right axis, one x
// step per minute sample. Minutes without a heart-rate reading break the line.
func RenderMotionHeart(w io.Writer, day string, points []models.MinutePoint) error {
	if len(points) == 0 {
		return models.ErrNoDataForDate
	}

	stepsX := make([]float64, 0, len(points))
	stepsY := make([]float64, 0, len(points))
	maxSteps := 0.0
	for i, p := range points {
		stepsX = append(stepsX, float64(i))
		stepsY = append(stepsY, float64(p.Steps))
		if float64(p.Steps) > maxSteps {
			maxSteps = float64(p.Steps)
		}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Steps/min",
			XValues: stepsX,
			YValues: stepsY,
			Style:   chart.Style{StrokeColor: stepsColor, StrokeWidth: 1},
		},
	}

	// go-chart refuses a zero-width range, so every axis gets explicit bounds.
	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  fmt.Sprintf("Minutes of %s", day),
			Range: &chart.ContinuousRange{Min: 0, Max: maxFloat(float64(len(points)-1), 1)},
		},
		YAxis: chart.YAxis{
			Name:      "Steps/min",
			NameStyle: chart.Style{FontColor: stepsColor},
			Style:     chart.Style{FontColor: stepsColor},
			Range:     &chart.ContinuousRange{Min: 0, Max: maxFloat(maxSteps*1.1, 1)},
		},
	}

	legend := series
	if runs := heartRuns(points); len(runs) > 0 {
		minHR, maxHR := runs[0].y[0], runs[0].y[0]
		for i, run := range runs {
			for _, v := range run.y {
				minHR = math.Min(minHR, v)
				maxHR = math.Max(maxHR, v)
			}
			s := chart.ContinuousSeries{
				Name:    "Heart rate (bpm)",
				YAxis:   chart.YAxisSecondary,
				XValues: run.x,
				YValues: run.y,
				Style:   chart.Style{StrokeColor: heartColor, StrokeWidth: 1},
			}
			series = append(series, s)
			if i == 0 {
				legend = append(legend, s)
			}
		}
		graph.YAxisSecondary = chart.YAxis{
			Name:      "Heart rate (bpm)",
			NameStyle: chart.Style{FontColor: heartColor},
			Style:     chart.Style{FontColor: heartColor},
			Range:     &chart.ContinuousRange{Min: minHR - 5, Max: maxHR + 5},
		}
	}

	// the legend lists each quantity once however many runs the heart rate has
	legendSource := graph
	legendSource.Series = legend
	graph.Series = series
	graph.Elements = []chart.Renderable{chart.LegendLeft(&legendSource)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart for %s: %w", day, err)
	}
	return nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
