package wiki

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// htmlTagRegex strips markup from search snippets
var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// stripHTMLTags removes HTML tags and decodes entities from a snippet
func stripHTMLTags(s string) string {
	s = htmlTagRegex.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// Search runs a full-text search and returns the hits in relevance
// order. Snippets come back as plain text with the server's highlight
// markup stripped.
func (c *Client) Search(ctx context.Context, query string, opts *QueryOptions) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	get := url.Values{}
	get.Set("list", "search")
	get.Set("srsearch", query)
	get.Set("srprop", "snippet|size|wordcount|timestamp")
	if opts != nil && len(opts.Namespaces) > 0 {
		ns := make([]string, len(opts.Namespaces))
		for i, n := range opts.Namespaces {
			ns[i] = fmt.Sprint(n)
		}
		get.Set("srnamespace", strings.Join(ns, "|"))
	}

	var hits []SearchResult
	err := c.listQuery(ctx, "sr", get, "search", opts.limit(), func(resp string) (int, error) {
		found := 0
		for _, seg := range scanElements(resp, "p") {
			title, ok := scanAttribute(seg, "title", 0)
			if !ok {
				continue
			}
			hit := SearchResult{
				Title:     title,
				Size:      int(scanInt(seg, " size")),
				WordCount: int(scanInt(seg, "wordcount")),
			}
			if snippet, ok := scanAttribute(seg, "snippet", 0); ok {
				hit.Snippet = stripHTMLTags(snippet)
			}
			if ts, ok := scanAttribute(seg, "timestamp", 0); ok {
				hit.Timestamp, _ = time.Parse(apiTimestamp, ts)
			}
			hits = append(hits, hit)
			found++
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return hits, nil
}

// SearchTitles returns only the titles matching the query, in
// relevance order.
func (c *Client) SearchTitles(ctx context.Context, query string, opts *QueryOptions) ([]string, error) {
	hits, err := c.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(hits))
	for i, hit := range hits {
		titles[i] = hit.Title
	}
	return titles, nil
}
