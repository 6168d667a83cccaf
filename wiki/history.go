package wiki

import (
	"context"
	"fmt"
	"net/url"
)

// RecentChanges lists recent edits, page creations and log actions
// across the wiki, newest first unless opts.Reverse is set.
func (c *Client) RecentChanges(ctx context.Context, opts *QueryOptions) ([]Revision, error) {
	get := url.Values{}
	get.Set("list", "recentchanges")
	get.Set("rcprop", "title|ids|sizes|flags|user|parsedcomment|comment|timestamp|sha1|tags")
	opts.apply(get, "rc")

	var changes []Revision
	err := c.listQuery(ctx, "rc", get, "recentChanges", opts.limit(), func(resp string) (int, error) {
		found := 0
		for _, seg := range scanElements(resp, "rc") {
			changes = append(changes, parseRevision(seg))
			found++
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent changes: %w", err)
	}
	return changes, nil
}

// GetPageHistory returns the revision history of one page, newest
// first unless opts.Reverse is set. Every returned revision carries
// the page's canonical title.
func (c *Client) GetPageHistory(ctx context.Context, title string, opts *QueryOptions) ([]Revision, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	get := url.Values{}
	get.Set("prop", "revisions")
	get.Set("titles", title)
	get.Set("rvprop", "ids|timestamp|user|size|sha1|parsedcomment|comment|flags|tags")
	opts.apply(get, "rv")

	var history []Revision
	var canonical *string
	err := c.listQuery(ctx, "rv", get, "getPageHistory", opts.limit(), func(resp string) (int, error) {
		if canonical == nil {
			for _, page := range scanElements(resp, "page") {
				if hasAttribute(page, "missing", 0) {
					return 0, fmt.Errorf("page %q does not exist", title)
				}
				if t, ok := scanAttribute(page, "title", 0); ok {
					canonical = &t
				}
				break
			}
		}
		found := 0
		for _, seg := range scanElements(resp, "rev") {
			rev := parseRevision(seg)
			rev.Title = canonical
			history = append(history, rev)
			found++
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get history of %s: %w", title, err)
	}
	return history, nil
}

// GetRevision fetches single revisions by ID, including their wikitext.
func (c *Client) GetRevision(ctx context.Context, ids ...int64) ([]Revision, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var revs []Revision
	for _, chunk := range c.idBatches(ids) {
		get := url.Values{}
		get.Set("action", "query")
		get.Set("prop", "revisions")
		get.Set("revids", chunk)
		get.Set("rvprop", "ids|timestamp|user|size|sha1|parsedcomment|comment|flags|tags")

		resp, err := c.apiRequest(ctx, get, nil, "getRevision")
		if err != nil {
			return nil, fmt.Errorf("failed to get revisions: %w", err)
		}
		if _, err := c.checkErrors(resp, "getRevision", nil); err != nil {
			return nil, err
		}
		for _, page := range scanElements(resp, "page") {
			title, _ := scanAttribute(page, "title", 0)
			for _, seg := range scanElements(page, "rev") {
				rev := parseRevision(seg)
				if title != "" {
					t := title
					rev.Title = &t
				}
				revs = append(revs, rev)
			}
		}
	}
	return revs, nil
}

// Contribs lists the edits made by one user, newest first unless
// opts.Reverse is set.
func (c *Client) Contribs(ctx context.Context, user string, opts *QueryOptions) ([]Revision, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required")
	}

	get := url.Values{}
	get.Set("list", "usercontribs")
	get.Set("ucuser", user)
	get.Set("ucprop", "ids|title|timestamp|parsedcomment|comment|size|sizediff|flags|tags")
	opts.apply(get, "uc")

	var contribs []Revision
	err := c.listQuery(ctx, "uc", get, "contribs", opts.limit(), func(resp string) (int, error) {
		found := 0
		for _, seg := range scanElements(resp, "item") {
			contribs = append(contribs, parseRevision(seg))
			found++
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions of %s: %w", user, err)
	}
	return contribs, nil
}

// GetLogEntries reads the server's action logs (deletions, moves,
// blocks, uploads, ...), newest first unless opts.Reverse is set.
// Pass an empty logType for all log types.
func (c *Client) GetLogEntries(ctx context.Context, logType string, opts *QueryOptions) ([]LogEntry, error) {
	get := url.Values{}
	get.Set("list", "logevents")
	get.Set("leprop", "ids|title|type|user|timestamp|parsedcomment|comment|details|tags")
	if logType != "" {
		get.Set("letype", logType)
	}
	opts.apply(get, "le")

	var entries []LogEntry
	err := c.listQuery(ctx, "le", get, "getLogEntries", opts.limit(), func(resp string) (int, error) {
		found := 0
		for _, seg := range scanElements(resp, "item") {
			entries = append(entries, parseLogEntry(seg))
			found++
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return entries, nil
}
