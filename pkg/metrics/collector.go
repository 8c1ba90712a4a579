package metrics

import (
	"time"

	"github.com/MuhamedEssam/tinychain/pkg/cache"
)

// Collector periodically samples gauge-style state (cache size) that
// isn't naturally updated at the call site the way counters and
// histograms are.
type Collector struct {
	cache  *cache.Cache
	stopCh chan struct{}
}

// NewCollector creates a collector sampling c.
func NewCollector(c *cache.Cache) *Collector {
	return &Collector{
		cache:  c,
		stopCh: make(chan struct{}),
	}
}

// Start begins periodic collection on its own goroutine.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts periodic collection.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	CacheSizeBytes.Set(float64(c.cache.Size()))
}
