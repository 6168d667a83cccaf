package wiki

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/olgasafonova/mediawiki-bot/metrics"
)

// listQuery drives apiRequest until the result set is exhausted or
// limit records have accumulated. Each round asks for
// min(remaining, page size) records under prefix+"limit", hands the
// response to parse, then echoes the server's continuation pairs into
// the next round's parameters. Continuation keys from the previous
// round are dropped first so a stale cursor never leaks into a fresh
// page. parse returns how many records it consumed.
//
// A limit below zero falls back to the session's query cap.
func (c *Client) listQuery(ctx context.Context, prefix string, get url.Values, caller string, limit int, parse func(resp string) (int, error)) error {
	if limit < 0 {
		limit = c.QueryLimit()
	}
	if limit <= 0 {
		limit = math.MaxInt
	}
	pageSize := c.pageSize()
	get.Set("action", "query")

	count := 0
	var contKeys []string
	for count < limit {
		if prefix != "" {
			n := limit - count
			if n > pageSize {
				n = pageSize
			}
			get.Set(prefix+"limit", strconv.Itoa(n))
		}

		resp, err := c.apiRequest(ctx, get, nil, caller)
		if err != nil {
			return err
		}
		if found, err := c.checkErrors(resp, caller, nil); err != nil {
			return err
		} else if found {
			return nil
		}

		n, err := parse(resp)
		if err != nil {
			return err
		}
		count += n
		metrics.RecordContinuationPage(caller)

		for _, k := range contKeys {
			get.Del(k)
		}
		contKeys = contKeys[:0]
		cont, ok := continuation(resp)
		if !ok {
			break
		}
		for k, v := range cont {
			get.Set(k, v)
			contKeys = append(contKeys, k)
		}
	}
	return nil
}

// continuation extracts the opaque cursor pairs from a response.
// Absence means the result set is complete.
func continuation(resp string) (map[string]string, bool) {
	elems := scanElements(resp, "continue")
	if len(elems) == 0 {
		return nil, false
	}
	return scanPairs(elems[0]), true
}

// vectorizedQuery runs a per-title property query over any number of
// titles, re-associating the batched responses with the caller's
// original order. The input list is copied; after every response the
// copy is rewritten in place with the server's normalization (and,
// when enabled, redirect) mappings, so a title the server renamed
// still lines up with its original slot. parse accumulates records
// into acc keyed by the canonical title of each page element.
//
// Titles that normalize to the same string share one accumulator
// entry, and therefore one result.
func vectorizedQuery[T any](ctx context.Context, c *Client, get url.Values, titles []string, caller string, parse func(resp string, acc map[string]T)) ([]T, error) {
	work := append([]string(nil), titles...)
	acc := make(map[string]T, len(titles))
	get.Set("action", "query")

	for _, chunk := range c.titleBatches(work) {
		get.Set("titles", chunk)
		var contKeys []string
		for {
			resp, err := c.apiRequest(ctx, get, nil, caller)
			if err != nil {
				return nil, err
			}
			if found, err := c.checkErrors(resp, caller, nil); err != nil {
				return nil, err
			} else if found {
				break
			}

			remapTitles(resp, work, c.ResolvesRedirects())
			parse(resp, acc)

			for _, k := range contKeys {
				get.Del(k)
			}
			contKeys = contKeys[:0]
			cont, ok := continuation(resp)
			if !ok {
				break
			}
			for k, v := range cont {
				get.Set(k, v)
				contKeys = append(contKeys, k)
			}
		}
	}

	out := make([]T, len(titles))
	for i := range titles {
		out[i] = acc[work[i]]
	}
	return out, nil
}

// remapTitles rewrites entries of work that the server reported as
// normalized, and as redirected when resolve is set. Matching is by
// equality against the maintained copy, so every occurrence of a
// source title moves together.
func remapTitles(resp string, work []string, resolve bool) {
	remapBlock(resp, "normalized", "n", work)
	if resolve {
		remapBlock(resp, "redirects", "r", work)
	}
}

func remapBlock(resp, block, tag string, work []string) {
	open := "<" + block + ">"
	start := strings.Index(resp, open)
	if start < 0 {
		return
	}
	end := strings.Index(resp[start:], "</"+block+">")
	if end < 0 {
		return
	}
	seg := resp[start : start+end]
	for _, el := range scanElements(seg, tag) {
		from, ok := scanAttribute(el, "from", 0)
		if !ok {
			continue
		}
		to, ok := scanAttribute(el, "to", 0)
		if !ok {
			continue
		}
		for i, w := range work {
			if w == from {
				work[i] = to
			}
		}
	}
}
