// Package usage records model token consumption per model, operation and
// day, persisted to .pulse/usage.json.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"citypulse/internal/config"
)

// DefaultSaveDelay batches the writes of a burst of calls.
const DefaultSaveDelay = 2 * time.Second

const dataVersion = "1"

// Data is the persisted document.
type Data struct {
	Version   string          `json:"version"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// AggregatedStats holds counters broken down by dimension.
type AggregatedStats struct {
	Total       TokenCounts            `json:"total"`
	ByModel     map[string]TokenCounts `json:"by_model"`
	ByOperation map[string]TokenCounts `json:"by_operation"` // routes, incident, chat
	ByDay       map[string]TokenCounts `json:"by_day"`       // YYYY-MM-DD
}

// TokenCounts holds prompt and response token sums.
type TokenCounts struct {
	Calls  int64 `json:"calls"`
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

// Add counts one call.
func (tc *TokenCounts) Add(input, output int) {
	tc.Calls++
	tc.Input += int64(input)
	tc.Output += int64(output)
	tc.Total += int64(input + output)
}

// Tracker accumulates usage and saves it shortly after it changes.
type Tracker struct {
	path      string
	clock     clock.Clock
	saveDelay time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	data     Data
	saveTask *clock.Timer
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(t *Tracker) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithSaveDelay overrides DefaultSaveDelay.
func WithSaveDelay(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.saveDelay = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Path returns the usage file location inside workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, config.Dir, "usage.json")
}

// NewTracker loads the usage file of workspace. A corrupt file is logged
// and replaced on the next save.
func NewTracker(workspace string, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		path:      Path(workspace),
		clock:     clock.New(),
		saveDelay: DefaultSaveDelay,
		logger:    zap.NewNop(),
		data:      emptyData(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(t.path), err)
	}
	if err := t.load(); err != nil {
		t.logger.Warn("Ignoring unreadable usage file", zap.String("path", t.path), zap.Error(err))
		t.data = emptyData()
	}
	return t, nil
}

func emptyData() Data {
	return Data{
		Version: dataVersion,
		Aggregate: AggregatedStats{
			ByModel:     make(map[string]TokenCounts),
			ByOperation: make(map[string]TokenCounts),
			ByDay:       make(map[string]TokenCounts),
		},
	}
}

func (t *Tracker) load() error {
	raw, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	data := emptyData()
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	// Partial files leave maps nil
	if data.Aggregate.ByModel == nil {
		data.Aggregate.ByModel = make(map[string]TokenCounts)
	}
	if data.Aggregate.ByOperation == nil {
		data.Aggregate.ByOperation = make(map[string]TokenCounts)
	}
	if data.Aggregate.ByDay == nil {
		data.Aggregate.ByDay = make(map[string]TokenCounts)
	}
	t.data = data
	return nil
}

// Track records one model call.
func (t *Tracker) Track(model, operation string, input, output int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	day := t.clock.Now().Format("2006-01-02")
	t.data.Aggregate.Total.Add(input, output)
	addTo(t.data.Aggregate.ByModel, model, input, output)
	addTo(t.data.Aggregate.ByOperation, operation, input, output)
	addTo(t.data.Aggregate.ByDay, day, input, output)

	if t.saveTask == nil {
		t.saveTask = t.clock.AfterFunc(t.saveDelay, func() {
			if err := t.Flush(); err != nil {
				t.logger.Warn("Failed to save usage", zap.Error(err))
			}
		})
	}
}

// Flush writes pending usage now.
func (t *Tracker) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saveTask == nil {
		return nil
	}
	t.saveTask.Stop()
	t.saveTask = nil

	raw, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}
	if err := os.WriteFile(t.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write usage: %w", err)
	}
	return nil
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByModel = copyCounts(stats.ByModel)
	stats.ByOperation = copyCounts(stats.ByOperation)
	stats.ByDay = copyCounts(stats.ByDay)
	return stats
}

func copyCounts(src map[string]TokenCounts) map[string]TokenCounts {
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addTo(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}
