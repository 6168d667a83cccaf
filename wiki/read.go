package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// GetPageText retrieves the current wikitext of each page. Results come
// back in the same order as the input titles; a missing page yields an
// entry with Exists false and an empty Text.
func (c *Client) GetPageText(ctx context.Context, titles ...string) ([]PageText, error) {
	get := url.Values{}
	get.Set("prop", "revisions")
	get.Set("rvprop", "content")
	get.Set("rvslots", "main")

	return vectorizedQuery(ctx, c, get, titles, "getPageText", func(resp string, acc map[string]PageText) {
		for _, seg := range scanElements(resp, "page") {
			title, ok := scanAttribute(seg, "title", 0)
			if !ok {
				continue
			}
			pt := PageText{Title: title}
			if !hasAttribute(seg, "missing", 0) && !hasAttribute(seg, "invalid", 0) {
				pt.Exists = true
				for _, slot := range scanElements(seg, "slot") {
					if role, _ := scanAttribute(slot, "role", 0); role == "main" {
						pt.Text, _ = elementText(slot)
						break
					}
				}
			}
			acc[title] = pt
		}
	})
}

// GetPageInfo retrieves metadata for each page in input order.
func (c *Client) GetPageInfo(ctx context.Context, titles ...string) ([]PageInfo, error) {
	get := url.Values{}
	get.Set("prop", "info")

	return vectorizedQuery(ctx, c, get, titles, "getPageInfo", func(resp string, acc map[string]PageInfo) {
		for _, seg := range scanElements(resp, "page") {
			title, ok := scanAttribute(seg, "title", 0)
			if !ok {
				continue
			}
			info := PageInfo{Title: title}
			if !hasAttribute(seg, "missing", 0) && !hasAttribute(seg, "invalid", 0) {
				info.Exists = true
				info.PageID = scanInt(seg, "pageid")
				info.Namespace = int(scanInt(seg, "ns"))
				info.Redirect = hasAttribute(seg, "redirect", 0)
				info.LastRevID = scanInt(seg, "lastrevid")
				info.Length = scanInt(seg, "length")
				if touched, ok := scanAttribute(seg, "touched", 0); ok {
					info.Touched, _ = time.Parse(apiTimestamp, touched)
				}
			}
			acc[title] = info
		}
	})
}

// PageExists reports whether the page is present on the wiki.
func (c *Client) PageExists(ctx context.Context, title string) (bool, error) {
	infos, err := c.GetPageInfo(ctx, title)
	if err != nil {
		return false, err
	}
	return infos[0].Exists, nil
}

// ResolveRedirects follows redirects server-side and returns the final
// target of each title, in input order. A title that is not a redirect
// resolves to itself (normalized).
func (c *Client) ResolveRedirects(ctx context.Context, titles ...string) ([]string, error) {
	work := append([]string(nil), titles...)
	for _, chunk := range c.titleBatches(work) {
		get := url.Values{}
		get.Set("action", "query")
		get.Set("titles", chunk)
		get.Set("redirects", "1")

		resp, err := c.apiRequest(ctx, get, nil, "resolveRedirects")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve redirects: %w", err)
		}
		if _, err := c.checkErrors(resp, "resolveRedirects", nil); err != nil {
			return nil, err
		}
		remapBlock(resp, "normalized", "n", work)
		remapBlock(resp, "redirects", "r", work)
	}
	return work, nil
}

// GetBacklinks lists pages linking to the given title.
func (c *Client) GetBacklinks(ctx context.Context, title string, opts *QueryOptions) ([]string, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	get := url.Values{}
	get.Set("list", "backlinks")
	get.Set("bltitle", title)
	if opts != nil && len(opts.Namespaces) > 0 {
		ns := make([]string, len(opts.Namespaces))
		for i, n := range opts.Namespaces {
			ns[i] = fmt.Sprint(n)
		}
		get.Set("blnamespace", strings.Join(ns, "|"))
	}

	var links []string
	err := c.listQuery(ctx, "bl", get, "getBacklinks", opts.limit(), func(resp string) (int, error) {
		found := 0
		for _, seg := range scanElements(resp, "bl") {
			if t, ok := scanAttribute(seg, "title", 0); ok {
				links = append(links, t)
				found++
			}
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// GetEmbeddedIn lists pages transcluding the given title.
func (c *Client) GetEmbeddedIn(ctx context.Context, title string, opts *QueryOptions) ([]string, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	get := url.Values{}
	get.Set("list", "embeddedin")
	get.Set("eititle", title)

	var pages []string
	err := c.listQuery(ctx, "ei", get, "getEmbeddedIn", opts.limit(), func(resp string) (int, error) {
		found := 0
		for _, seg := range scanElements(resp, "ei") {
			if t, ok := scanAttribute(seg, "title", 0); ok {
				pages = append(pages, t)
				found++
			}
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}
