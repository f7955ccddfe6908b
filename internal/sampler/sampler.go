// Package sampler collects host resource utilisation and records it as
// samples for the forecasting engine.
package sampler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	gocpu "github.com/shirou/gopsutil/v4/cpu"
	godisk "github.com/shirou/gopsutil/v4/disk"
	gomem "github.com/shirou/gopsutil/v4/mem"
)

var (
	cpuPercent    = gocpu.PercentWithContext
	virtualMemory = gomem.VirtualMemoryWithContext
	diskUsage     = godisk.UsageWithContext
)

// SampleWriter receives collected samples. *store.Store satisfies it.
type SampleWriter interface {
	Write(entityID, metric string, value float64, timestamp time.Time)
}

// Sampler collects cpu_usage, memory_usage and disk_usage for one entity at
// a fixed cadence.
type Sampler struct {
	entityID string
	diskPath string
	writer   SampleWriter
	now      func() time.Time
}

// New creates a sampler writing to the given writer. diskPath is the
// mountpoint measured for disk_usage; empty means "/".
func New(entityID, diskPath string, writer SampleWriter) *Sampler {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Sampler{
		entityID: entityID,
		diskPath: diskPath,
		writer:   writer,
		now:      time.Now,
	}
}

// CollectOnce gathers a point-in-time reading of each resource and records
// whatever was obtainable. Per-resource failures are logged and skipped.
func (s *Sampler) CollectOnce(ctx context.Context) {
	collectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := s.now()

	if usage, err := collectCPUUsage(collectCtx); err == nil {
		s.writer.Write(s.entityID, "cpu_usage", usage, now)
	} else {
		log.Debug().Err(err).Msg("CPU sample unavailable")
	}

	if memStats, err := virtualMemory(collectCtx); err == nil {
		s.writer.Write(s.entityID, "memory_usage", memStats.UsedPercent, now)
	} else {
		log.Debug().Err(err).Msg("Memory sample unavailable")
	}

	if usage, err := diskUsage(collectCtx, s.diskPath); err == nil && usage.Total > 0 {
		s.writer.Write(s.entityID, "disk_usage", usage.UsedPercent, now)
	} else if err != nil {
		log.Debug().Err(err).Str("path", s.diskPath).Msg("Disk sample unavailable")
	}
}

// Run collects at the given interval until the context is cancelled. The
// first collection happens immediately.
func (s *Sampler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.CollectOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.CollectOnce(ctx)
		}
	}
}

func collectCPUUsage(ctx context.Context) (float64, error) {
	percentages, err := cpuPercent(ctx, time.Second, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, nil
	}

	usage := percentages[0]
	if usage < 0 {
		usage = 0
	}
	if usage > 100 {
		usage = 100
	}
	return usage, nil
}
