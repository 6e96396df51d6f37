package schemadiff

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// TelemetryCollector accumulates per-stage timings and cache counters for
// a Patcher. It is attached only in verbose mode and sits outside the core
// algorithms; the core never blocks on it.
type TelemetryCollector struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`

	Runs        int                      `json:"runs"`
	CacheHits   int                      `json:"cacheHits"`
	CacheMisses int                      `json:"cacheMisses"`
	Stages      map[string]time.Duration `json:"stages"`
}

func newTelemetryCollector() *TelemetryCollector {
	return &TelemetryCollector{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Stages:    make(map[string]time.Duration),
	}
}

func (t *TelemetryCollector) record(stage string, d time.Duration) {
	if t == nil {
		return
	}
	t.Stages[stage] += d
}

func (t *TelemetryCollector) countRun(cacheHit bool) {
	if t == nil {
		return
	}
	t.Runs++
	if cacheHit {
		t.CacheHits++
	} else {
		t.CacheMisses++
	}
}

// SavePerformanceReport writes the collected numbers as JSON.
func (t *TelemetryCollector) SavePerformanceReport(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	return nil
}
