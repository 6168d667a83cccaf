package wiki

import (
	"sort"
	"strconv"
	"strings"
)

// The server diffs submitted title lists against its own normalization
// response, which only works when the list is sorted and free of
// duplicates. Chunks therefore never preserve caller order; vectorized
// queries re-associate results by key afterwards.

// titleChunks splits titles into pipe-joined chunks of at most size
// distinct entries, sorted and deduplicated across the whole input.
func titleChunks(titles []string, size int) []string {
	if len(titles) == 0 {
		return nil
	}
	sorted := append([]string(nil), titles...)
	sort.Strings(sorted)
	distinct := sorted[:1]
	for _, t := range sorted[1:] {
		if t != distinct[len(distinct)-1] {
			distinct = append(distinct, t)
		}
	}

	chunks := make([]string, 0, (len(distinct)+size-1)/size)
	for start := 0; start < len(distinct); start += size {
		end := start + size
		if end > len(distinct) {
			end = len(distinct)
		}
		chunks = append(chunks, strings.Join(distinct[start:end], "|"))
	}
	return chunks
}

// idChunks is titleChunks for numeric ids. Negative ids are the "no id"
// sentinel and are dropped before chunking.
func idChunks(ids []int64, size int) []string {
	kept := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id >= 0 {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
	distinct := kept[:1]
	for _, id := range kept[1:] {
		if id != distinct[len(distinct)-1] {
			distinct = append(distinct, id)
		}
	}

	chunks := make([]string, 0, (len(distinct)+size-1)/size)
	for start := 0; start < len(distinct); start += size {
		end := start + size
		if end > len(distinct) {
			end = len(distinct)
		}
		parts := make([]string, 0, end-start)
		for _, id := range distinct[start:end] {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		chunks = append(chunks, strings.Join(parts, "|"))
	}
	return chunks
}

// titleBatches chunks titles at the session's current batch size, which
// rises after login when the account holds apihighlimits.
func (c *Client) titleBatches(titles []string) []string {
	c.mu.RLock()
	size := c.batchMax
	c.mu.RUnlock()
	return titleChunks(titles, size)
}

// idBatches chunks numeric ids at the session's current batch size.
func (c *Client) idBatches(ids []int64) []string {
	c.mu.RLock()
	size := c.batchMax
	c.mu.RUnlock()
	return idChunks(ids, size)
}
