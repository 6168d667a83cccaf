package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// LinkStatus is the outcome of probing one external URL.
type LinkStatus struct {
	URL        string
	StatusCode int
	OK         bool
	Err        error
}

// BrokenLink is a wiki link on Source pointing at a page that does not
// exist.
type BrokenLink struct {
	Source string
	Target string
}

// GetExternalLinks returns the external URLs referenced by a page. A
// missing page yields an empty slice.
func (c *Client) GetExternalLinks(ctx context.Context, title string) ([]string, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	get := url.Values{}
	get.Set("prop", "extlinks")
	get.Set("ellimit", "max")

	out, err := vectorizedQuery(ctx, c, get, []string{title}, "getExternalLinks", func(resp string, acc map[string][]string) {
		for _, seg := range scanElements(resp, "page") {
			pageTitle, ok := scanAttribute(seg, "title", 0)
			if !ok {
				continue
			}
			links := acc[pageTitle]
			for _, el := range scanElements(seg, "el") {
				if link, ok := elementText(el); ok && link != "" {
					links = append(links, link)
				}
			}
			acc[pageTitle] = links
		}
	})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

const probeConcurrency = 5

// CheckLinks probes each URL and reports whether it answers with a
// non-error status. Probes run concurrently, at most probeConcurrency
// at a time, each under its own timeout. URLs on private networks are
// refused without a request. Results come back in input order.
func (c *Client) CheckLinks(ctx context.Context, urls []string, timeout time.Duration) ([]LinkStatus, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one url is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	statuses := make([]LinkStatus, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)

	for i, link := range urls {
		g.Go(func() error {
			statuses[i] = c.probeLink(ctx, link, timeout)
			return nil
		})
	}
	_ = g.Wait()
	return statuses, nil
}

func (c *Client) probeLink(ctx context.Context, link string, timeout time.Duration) LinkStatus {
	status := LinkStatus{URL: link}

	parsed, err := url.Parse(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		status.Err = fmt.Errorf("not an http or https url")
		return status
	}
	if private, err := isPrivateHost(parsed.Hostname()); private {
		if err != nil {
			status.Err = err
		} else {
			status.Err = fmt.Errorf("%s points at a private network", parsed.Hostname())
		}
		return status
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.probeOnce(reqCtx, http.MethodHead, link)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		// Some servers refuse HEAD outright.
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = c.probeOnce(reqCtx, http.MethodGet, link)
	}
	if err != nil {
		status.Err = err
		return status
	}
	resp.Body.Close()

	status.StatusCode = resp.StatusCode
	status.OK = resp.StatusCode < 400
	return status
}

func (c *Client) probeOnce(ctx context.Context, method, link string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return externalClient.Do(req)
}

// wikiLinkRegex matches [[Target]], [[Target|Display]] and
// [[Target#Section]] links, capturing the bare target.
var wikiLinkRegex = regexp.MustCompile(`\[\[([^\]|#]+)(?:[|#][^\]]*)?]]`)

// FindBrokenLinks scans the wikitext of each page for internal links
// whose target does not exist. Category, file and interwiki links are
// skipped. Every distinct target is checked once regardless of how many
// pages carry it.
func (c *Client) FindBrokenLinks(ctx context.Context, titles ...string) ([]BrokenLink, error) {
	texts, err := c.GetPageText(ctx, titles...)
	if err != nil {
		return nil, err
	}

	type sourceLinks struct {
		source  string
		targets []string
	}
	var pages []sourceLinks
	var targetList []string
	seen := make(map[string]bool)

	for _, pt := range texts {
		if !pt.Exists {
			continue
		}
		page := sourceLinks{source: pt.Title}
		local := make(map[string]bool)
		for _, m := range wikiLinkRegex.FindAllStringSubmatch(pt.Text, -1) {
			target := strings.TrimSpace(m[1])
			if target == "" || local[target] || skipLinkTarget(target) {
				continue
			}
			local[target] = true
			page.targets = append(page.targets, target)
			if !seen[target] {
				seen[target] = true
				targetList = append(targetList, target)
			}
		}
		pages = append(pages, page)
	}
	if len(targetList) == 0 {
		return []BrokenLink{}, nil
	}

	infos, err := c.GetPageInfo(ctx, targetList...)
	if err != nil {
		return nil, fmt.Errorf("failed to check link targets: %w", err)
	}
	exists := make(map[string]bool, len(targetList))
	for i, target := range targetList {
		exists[target] = infos[i].Exists
	}

	broken := []BrokenLink{}
	for _, page := range pages {
		for _, target := range page.targets {
			if !exists[target] {
				broken = append(broken, BrokenLink{Source: page.source, Target: target})
			}
		}
	}
	return broken, nil
}

// skipLinkTarget filters link targets that name something other than a
// local article. Leading colons mark explicit interwiki or namespace
// escapes.
func skipLinkTarget(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "category:") ||
		strings.HasPrefix(lower, "file:") ||
		strings.HasPrefix(lower, "image:") ||
		strings.HasPrefix(lower, "special:") ||
		strings.HasPrefix(lower, ":") ||
		strings.HasPrefix(lower, "http")
}
