package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GetCategories returns the categories of each page, in input order.
// Category titles come back with their namespace prefix intact. A
// missing page yields an empty slice.
func (c *Client) GetCategories(ctx context.Context, titles ...string) ([][]string, error) {
	get := url.Values{}
	get.Set("prop", "categories")
	get.Set("cllimit", "max")

	return vectorizedQuery(ctx, c, get, titles, "getCategories", func(resp string, acc map[string][]string) {
		for _, seg := range scanElements(resp, "page") {
			title, ok := scanAttribute(seg, "title", 0)
			if !ok {
				continue
			}
			cats := acc[title]
			for _, cl := range scanElements(seg, "cl") {
				if cat, ok := scanAttribute(cl, "title", 0); ok {
					cats = append(cats, cat)
				}
			}
			acc[title] = cats
		}
	})
}

// GetCategoryMembers lists the members of a category. The category may
// be given with or without its namespace prefix.
func (c *Client) GetCategoryMembers(ctx context.Context, category string, opts *QueryOptions) ([]string, error) {
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if !strings.Contains(category, ":") {
		category = "Category:" + category
	}

	get := url.Values{}
	get.Set("list", "categorymembers")
	get.Set("cmtitle", category)
	if opts != nil && len(opts.Namespaces) > 0 {
		ns := make([]string, len(opts.Namespaces))
		for i, n := range opts.Namespaces {
			ns[i] = fmt.Sprint(n)
		}
		get.Set("cmnamespace", strings.Join(ns, "|"))
	}

	var members []string
	err := c.listQuery(ctx, "cm", get, "getCategoryMembers", opts.limit(), func(resp string) (int, error) {
		found := 0
		for _, seg := range scanElements(resp, "cm") {
			if title, ok := scanAttribute(seg, "title", 0); ok {
				members = append(members, title)
				found++
			}
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s: %w", category, err)
	}
	return members, nil
}
