package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-room/contract"
)

// TelemetryWorker periodically reports the session gauge and the server
// process health (CPU, RSS) through the structured log. It is advisory
// only; a failed probe skips one tick and never affects the chat room.
type TelemetryWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, registry contract.IRegistry, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, registry: registry, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Debug("Error while finding process cpu usage", "err", err)
				continue
			}
			mem, err := p.MemoryInfo()
			if err != nil {
				w.log.Debug("Error while finding process memory usage", "err", err)
				continue
			}
			w.log.Info("server health",
				"sessions", w.registry.Len(),
				"cpu_percent", cpu,
				"rss_bytes", mem.RSS)
		}
	}
}
