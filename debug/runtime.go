// Package debug logs runtime and session counters while the debug flag is on.
package debug

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// StatsFunc returns attributes describing the running session, logged next
// to the runtime counters.
type StatsFunc func() []slog.Attr

// StartRuntimeLogger logs goroutine count, heap, stack and resident memory
// every interval until ctx is done. Frames decoded by the capture backend live
// outside the Go heap, so rss is the number to watch for native growth.
func StartRuntimeLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, stats StatsFunc) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			rss, err := residentBytes()
			if err != nil && !rssErrLogged {
				logger.Warn("debug: resident memory query failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			attrs := []slog.Attr{
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("next_gc", ms.NextGC),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
				slog.Uint64("rss", rss),
			}
			if stats != nil {
				attrs = append(attrs, stats()...)
			}
			logger.LogAttrs(ctx, slog.LevelDebug, "runtime", attrs...)
		}
	}()
}
