package wiki

import (
	"context"
	"fmt"
	"time"

	"github.com/olgasafonova/mediawiki-bot/metrics"
)

// throttleWrite blocks until the configured interval has elapsed since
// the start of the previous write, across every goroutine sharing the
// session. The lock is held through the wait so no two writes can start
// inside one interval. Uncoordinated bots editing faster than a fixed
// rate is abusive regardless of server lag, which is why this gate is
// independent of maxlag.
func (c *Client) throttleWrite(ctx context.Context) error {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()

	interval := c.Throttle()
	wait := interval - time.Since(c.lastWrite)
	if wait > 0 {
		c.logger.Debug("Throttling write",
			"wait", wait,
			"interval", interval)
		metrics.RecordThrottleWait(wait.Seconds())
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("interrupted while throttled: %w", ctx.Err())
		}
	}
	c.lastWrite = time.Now()
	return nil
}
