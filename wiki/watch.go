package wiki

import (
	"context"
	"fmt"
	"net/url"
)

// Watch adds pages to the logged-in user's watchlist and records them
// in the session's watchlist cache.
func (c *Client) Watch(ctx context.Context, titles ...string) error {
	return c.setWatched(ctx, titles, true)
}

// Unwatch removes pages from the watchlist.
func (c *Client) Unwatch(ctx context.Context, titles ...string) error {
	return c.setWatched(ctx, titles, false)
}

func (c *Client) setWatched(ctx context.Context, titles []string, watch bool) error {
	token, err := c.getToken(ctx, "watch")
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	for _, chunk := range c.titleBatches(titles) {
		post := map[string]any{
			"titles": chunk,
			"token":  token,
		}
		if !watch {
			post["unwatch"] = true
		}
		resp, err := c.apiRequest(ctx, url.Values{"action": {"watch"}}, post, "watch")
		if err != nil {
			return fmt.Errorf("watch request failed: %w", err)
		}
		if _, err := c.checkErrors(resp, "watch", nil); err != nil {
			return err
		}

		c.watchMu.Lock()
		if c.watchlist == nil {
			c.watchlist = make(map[string]bool)
		}
		for _, seg := range scanElements(resp, "w") {
			if title, ok := scanAttribute(seg, "title", 0); ok {
				c.watchlist[title] = hasAttribute(seg, " watched", 0)
			}
		}
		c.watchMu.Unlock()
	}
	return nil
}

// GetRawWatchlist returns the titles on the logged-in user's
// watchlist. With cached set, a watchlist fetched earlier in the
// session is reused; edits made to the watchlist through another
// client are then invisible until the next uncached call.
func (c *Client) GetRawWatchlist(ctx context.Context, cached bool) ([]string, error) {
	c.watchMu.Lock()
	if cached && c.watchlistLive {
		titles := make([]string, 0, len(c.watchlist))
		for title, watched := range c.watchlist {
			if watched {
				titles = append(titles, title)
			}
		}
		c.watchMu.Unlock()
		return titles, nil
	}
	c.watchMu.Unlock()

	get := url.Values{}
	get.Set("list", "watchlistraw")

	var titles []string
	err := c.listQuery(ctx, "wr", get, "getRawWatchlist", -1, func(resp string) (int, error) {
		found := 0
		for _, seg := range scanElements(resp, "wr") {
			if title, ok := scanAttribute(seg, "title", 0); ok {
				titles = append(titles, title)
				found++
			}
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	c.watchMu.Lock()
	c.watchlist = make(map[string]bool, len(titles))
	for _, title := range titles {
		c.watchlist[title] = true
	}
	c.watchlistLive = true
	c.watchMu.Unlock()
	return titles, nil
}

// IsWatched reports whether a page is on the watchlist, loading the
// watchlist on first use.
func (c *Client) IsWatched(ctx context.Context, title string) (bool, error) {
	c.watchMu.Lock()
	live := c.watchlistLive
	watched, known := c.watchlist[title]
	c.watchMu.Unlock()
	if live {
		return known && watched, nil
	}
	if _, err := c.GetRawWatchlist(ctx, false); err != nil {
		return false, err
	}
	c.watchMu.Lock()
	watched = c.watchlist[title]
	c.watchMu.Unlock()
	return watched, nil
}
