package crawl

import (
	"log/slog"
)

// collector counts folded outcomes for the heartbeat. It is owned by the folding goroutine.
type collector struct {
	total   int
	success int
	failed  int
}

func newCollector(total int) *collector {
	return &collector{total: total}
}

func (c *collector) add(ok bool) {
	if ok {
		c.success++
	} else {
		c.failed++
	}
}

func (c *collector) log(logger *slog.Logger) {
	logger.Info("heartbeat", "done", c.success+c.failed, "total", c.total, "success", c.success, "failed", c.failed)
}
