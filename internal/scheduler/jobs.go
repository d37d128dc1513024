package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/foliolens/foliolens/internal/database"
	"github.com/foliolens/foliolens/internal/marketdata"
)

// PurgeCacheJob removes expired market data cache entries
type PurgeCacheJob struct {
	service *marketdata.Service
	log     zerolog.Logger
}

// NewPurgeCacheJob creates a new cache purge job
func NewPurgeCacheJob(service *marketdata.Service, log zerolog.Logger) *PurgeCacheJob {
	return &PurgeCacheJob{
		service: service,
		log:     log.With().Str("job", "purge_cache").Logger(),
	}
}

func (j *PurgeCacheJob) Name() string { return "purge_cache" }

func (j *PurgeCacheJob) Run() error {
	removed, err := j.service.PurgeExpired()
	if err != nil {
		return err
	}
	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Purged expired cache entries")
	}
	return nil
}

// WarmBenchmarkJob keeps the benchmark series cached so analyses never
// pay the fetch cost on the hot path
type WarmBenchmarkJob struct {
	service *marketdata.Service
	period  string
	timeout time.Duration
	log     zerolog.Logger
}

// NewWarmBenchmarkJob creates a new benchmark warm job
func NewWarmBenchmarkJob(service *marketdata.Service, period string, log zerolog.Logger) *WarmBenchmarkJob {
	return &WarmBenchmarkJob{
		service: service,
		period:  period,
		timeout: 2 * time.Minute,
		log:     log.With().Str("job", "warm_benchmark").Logger(),
	}
}

func (j *WarmBenchmarkJob) Name() string { return "warm_benchmark" }

func (j *WarmBenchmarkJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	j.service.WarmBenchmark(ctx, j.period)
	return nil
}

// WALCheckpointJob checkpoints the SQLite WAL files so they do not grow
// unbounded under steady cache writes
type WALCheckpointJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(databases []*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

func (j *WALCheckpointJob) Name() string { return "wal_checkpoint" }

func (j *WALCheckpointJob) Run() error {
	for _, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			return err
		}
		j.log.Debug().Str("database", db.Name()).Msg("WAL checkpoint completed")
	}
	return nil
}
