package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"taskhub/runtime"

	"github.com/shirou/gopsutil/process"
)

// ReporterWorker periodically logs a snapshot of the hub state.
// Process figures (RSS, CPU) are added when the platform exposes them.
type ReporterWorker struct {
	log      *slog.Logger
	hub      *runtime.Hub
	interval time.Duration
	proc     *process.Process
}

func NewReporterWorker(log *slog.Logger, hub *runtime.Hub, interval time.Duration) *ReporterWorker {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process stats unavailable", "error", err)
		proc = nil
	}
	return &ReporterWorker{log: log, hub: hub, interval: interval, proc: proc}
}

// Run logs the stats every interval until the context is canceled
func (w *ReporterWorker) Run(ctx context.Context) error {
	startTime := time.Now()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report(startTime)
			w.log.Info("Reporter stopped")
			return ctx.Err()
		case <-ticker.C:
			w.report(startTime)
		}
	}
}

func (w *ReporterWorker) report(startTime time.Time) {
	stats := w.hub.Stats()
	attrs := []any{
		"uptime", time.Since(startTime).Round(time.Second).String(),
		"connections", stats.Connections,
		"online_users", stats.OnlineUsers,
		"scopes", stats.Scopes,
		"delivered", stats.Router.Delivered,
		"failed", stats.Router.Failed,
		"forwarded", stats.Router.Forwarded,
		"dropped", stats.Router.Dropped,
	}
	if rss, cpu, ok := w.processStats(); ok {
		attrs = append(attrs, "rss_bytes", rss, "cpu_percent", cpu)
	}
	w.log.Info("Hub stats", attrs...)
}

func (w *ReporterWorker) processStats() (uint64, float64, bool) {
	if w.proc == nil {
		return 0, 0, false
	}
	memInfo, err := w.proc.MemoryInfo()
	if err != nil {
		return 0, 0, false
	}
	cpuPercent, err := w.proc.CPUPercent()
	if err != nil {
		return 0, 0, false
	}
	return memInfo.RSS, cpuPercent, true
}
