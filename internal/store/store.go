// Package store provides persistent storage for metric samples using SQLite
// for durability across restarts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/saashqdev/foresight/internal/forecast"
)

// Config holds configuration for the sample store.
type Config struct {
	DBPath          string
	WriteBufferSize int           // Number of samples to buffer before batch write
	FlushInterval   time.Duration // Max time between flushes
	Retention       time.Duration // How long to keep samples
}

// DefaultConfig returns sensible defaults for sample storage.
func DefaultConfig(dataDir string) Config {
	return Config{
		DBPath:          filepath.Join(dataDir, "samples.db"),
		WriteBufferSize: 100,
		FlushInterval:   5 * time.Second,
		Retention:       7 * 24 * time.Hour,
	}
}

// bufferedSample holds a sample waiting to be written.
type bufferedSample struct {
	entityID  string
	metric    string
	value     float64
	timestamp time.Time
}

// Store provides persistent sample storage. It satisfies
// forecast.SampleProvider.
type Store struct {
	db     *sql.DB
	config Config

	// Write buffer
	bufferMu sync.Mutex
	buffer   []bufferedSample

	// Background worker
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a sample store with the given configuration.
func New(config Config) (*Store, error) {
	dir := filepath.Dir(config.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL mode for better concurrent access
	db, err := sql.Open("sqlite", config.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sample database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{
		db:     db,
		config: config,
		buffer: make([]bufferedSample, 0, config.WriteBufferSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	go store.backgroundWorker()

	log.Info().
		Str("path", config.DBPath).
		Int("bufferSize", config.WriteBufferSize).
		Msg("Sample store initialized")

	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_id TEXT NOT NULL,
			metric TEXT NOT NULL,
			value REAL NOT NULL,
			timestamp INTEGER NOT NULL
		);

		-- Index for efficient queries by entity and time
		CREATE INDEX IF NOT EXISTS idx_samples_lookup
		ON samples(entity_id, metric, timestamp);

		-- Index for retention pruning
		CREATE INDEX IF NOT EXISTS idx_samples_time
		ON samples(timestamp);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debug().Msg("Sample schema initialized")
	return nil
}

// Write adds a sample to the write buffer.
func (s *Store) Write(entityID, metric string, value float64, timestamp time.Time) {
	s.bufferMu.Lock()
	defer s.bufferMu.Unlock()

	s.buffer = append(s.buffer, bufferedSample{
		entityID:  entityID,
		metric:    metric,
		value:     value,
		timestamp: timestamp,
	})

	// Flush asynchronously if the buffer is full
	if len(s.buffer) >= s.config.WriteBufferSize {
		batch := s.takeBufferLocked()
		go s.writeBatch(batch)
	}
}

// takeBufferLocked removes and returns the current buffer contents (caller
// must hold bufferMu).
func (s *Store) takeBufferLocked() []bufferedSample {
	if len(s.buffer) == 0 {
		return nil
	}
	batch := make([]bufferedSample, len(s.buffer))
	copy(batch, s.buffer)
	s.buffer = s.buffer[:0]
	return batch
}

// Flush synchronously writes any buffered samples to the database.
func (s *Store) Flush() {
	s.bufferMu.Lock()
	batch := s.takeBufferLocked()
	s.bufferMu.Unlock()

	s.writeBatch(batch)
}

// writeBatch writes a batch of samples to the database.
func (s *Store) writeBatch(samples []bufferedSample) {
	if len(samples) == 0 {
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		log.Error().Err(err).Msg("Failed to begin sample transaction")
		return
	}

	stmt, err := tx.Prepare(`
		INSERT INTO samples (entity_id, metric, value, timestamp)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		log.Error().Err(err).Msg("Failed to prepare sample insert")
		return
	}
	defer stmt.Close()

	for _, sm := range samples {
		_, err := stmt.Exec(sm.entityID, sm.metric, sm.value, sm.timestamp.Unix())
		if err != nil {
			log.Warn().Err(err).
				Str("entity", sm.entityID).
				Str("metric", sm.metric).
				Msg("Failed to insert sample")
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("Failed to commit sample batch")
		return
	}

	log.Debug().Int("count", len(samples)).Msg("Wrote sample batch")
}

// FetchSamples retrieves samples for one (entity, metric) pair going back
// lookback from now, ordered oldest first. It implements
// forecast.SampleProvider.
func (s *Store) FetchSamples(ctx context.Context, entityID, metric string, lookback time.Duration) ([]forecast.Sample, error) {
	cutoff := time.Now().Add(-lookback).Unix()

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, value
		FROM samples
		WHERE entity_id = ? AND metric = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`, entityID, metric, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []forecast.Sample
	for rows.Next() {
		var ts int64
		var value float64
		if err := rows.Scan(&ts, &value); err != nil {
			log.Warn().Err(err).Msg("Failed to scan sample row")
			continue
		}
		samples = append(samples, forecast.Sample{Timestamp: time.Unix(ts, 0), Value: value})
	}

	return samples, rows.Err()
}

// Metrics returns the distinct metric names stored for an entity.
func (s *Store) Metrics(ctx context.Context, entityID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT metric FROM samples WHERE entity_id = ? ORDER BY metric
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// backgroundWorker runs periodic flush and retention tasks.
func (s *Store) backgroundWorker() {
	defer close(s.doneCh)

	flushTicker := time.NewTicker(s.config.FlushInterval)
	retentionTicker := time.NewTicker(1 * time.Hour)

	defer flushTicker.Stop()
	defer retentionTicker.Stop()

	for {
		select {
		case <-s.stopCh:
			// Final flush before stopping
			s.Flush()
			return

		case <-flushTicker.C:
			s.Flush()

		case <-retentionTicker.C:
			s.runRetention()
		}
	}
}

// runRetention deletes samples older than the retention period.
func (s *Store) runRetention() {
	start := time.Now()
	cutoff := start.Add(-s.config.Retention).Unix()

	result, err := s.db.Exec(`DELETE FROM samples WHERE timestamp < ?`, cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prune samples")
		return
	}

	if deleted, _ := result.RowsAffected(); deleted > 0 {
		log.Info().
			Int64("deleted", deleted).
			Dur("duration", time.Since(start)).
			Msg("Sample retention cleanup completed")
	}
}

// Close shuts down the store gracefully, flushing any buffered samples.
func (s *Store) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	select {
	case <-s.doneCh:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Sample store shutdown timed out")
	}

	return s.db.Close()
}

// Stats holds sample store statistics.
type Stats struct {
	DBPath      string `json:"dbPath"`
	DBSize      int64  `json:"dbSize"`
	SampleCount int64  `json:"sampleCount"`
	BufferSize  int    `json:"bufferSize"`
}

// GetStats returns storage statistics.
func (s *Store) GetStats() Stats {
	stats := Stats{
		DBPath: s.config.DBPath,
	}

	row := s.db.QueryRow(`SELECT COUNT(*) FROM samples`)
	if err := row.Scan(&stats.SampleCount); err != nil {
		log.Debug().Err(err).Msg("Failed to count samples")
	}

	if fi, err := os.Stat(s.config.DBPath); err == nil {
		stats.DBSize = fi.Size()
	}

	s.bufferMu.Lock()
	stats.BufferSize = len(s.buffer)
	s.bufferMu.Unlock()

	return stats
}
