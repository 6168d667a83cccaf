package wiki

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// GetUsers retrieves account records in input order. Usernames are
// normalized by the server before lookup, so case and underscore
// variants still land in the right slot. An unregistered name yields
// an entry with a zero UserID.
func (c *Client) GetUsers(ctx context.Context, usernames ...string) ([]User, error) {
	work := append([]string(nil), usernames...)
	acc := make(map[string]User, len(usernames))

	for _, chunk := range c.titleBatches(work) {
		get := url.Values{}
		get.Set("action", "query")
		get.Set("list", "users")
		get.Set("ususers", chunk)
		get.Set("usprop", "editcount|groups|rights|registration|blockinfo")

		resp, err := c.apiRequest(ctx, get, nil, "getUsers")
		if err != nil {
			return nil, fmt.Errorf("failed to get users: %w", err)
		}
		if _, err := c.checkErrors(resp, "getUsers", nil); err != nil {
			return nil, err
		}
		remapBlock(resp, "normalized", "n", work)

		for _, seg := range scanElements(resp, "user") {
			name, ok := scanAttribute(seg, " name", 0)
			if !ok {
				continue
			}
			u := User{Username: name}
			if !hasAttribute(seg, "missing", 0) && !hasAttribute(seg, "invalid", 0) {
				u.UserID = scanInt(seg, "userid")
				u.EditCount = int(scanInt(seg, "editcount"))
				u.Blocked = hasAttribute(seg, "blockedby", 0)
				if reg, ok := scanAttribute(seg, "registration", 0); ok {
					u.Registration, _ = time.Parse(apiTimestamp, reg)
				}
				for _, g := range scanElements(seg, "g") {
					if group, ok := elementText(g); ok {
						u.Groups = append(u.Groups, group)
					}
				}
				for _, r := range scanElements(seg, "r") {
					if right, ok := elementText(r); ok {
						u.Rights = append(u.Rights, right)
					}
				}
			}
			acc[name] = u
		}
	}

	out := make([]User, len(usernames))
	for i, name := range work {
		out[i] = acc[name]
	}
	return out, nil
}

// ListUsers enumerates registered accounts, optionally restricted to
// one group.
func (c *Client) ListUsers(ctx context.Context, group string, opts *QueryOptions) ([]User, error) {
	get := url.Values{}
	get.Set("list", "allusers")
	get.Set("auprop", "editcount|groups|registration")
	if group != "" {
		get.Set("augroup", group)
	}

	var users []User
	err := c.listQuery(ctx, "au", get, "listUsers", opts.limit(), func(resp string) (int, error) {
		found := 0
		for _, seg := range scanElements(resp, "u") {
			name, ok := scanAttribute(seg, " name", 0)
			if !ok {
				continue
			}
			u := User{
				Username:  name,
				UserID:    scanInt(seg, "userid"),
				EditCount: int(scanInt(seg, "editcount")),
			}
			if reg, ok := scanAttribute(seg, "registration", 0); ok {
				u.Registration, _ = time.Parse(apiTimestamp, reg)
			}
			for _, g := range scanElements(seg, "g") {
				if gr, ok := elementText(g); ok {
					u.Groups = append(u.Groups, gr)
				}
			}
			users = append(users, u)
			found++
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetSiteStatistics reads the server's live counters. The numbers are
// fetched fresh on every call.
func (c *Client) GetSiteStatistics(ctx context.Context) (*SiteStatistics, error) {
	get := url.Values{}
	get.Set("action", "query")
	get.Set("meta", "siteinfo")
	get.Set("siprop", "statistics")

	resp, err := c.apiRequest(ctx, get, nil, "siteStatistics")
	if err != nil {
		return nil, fmt.Errorf("failed to get site statistics: %w", err)
	}
	if _, err := c.checkErrors(resp, "siteStatistics", nil); err != nil {
		return nil, err
	}

	stats := scanElements(resp, "statistics")
	if len(stats) == 0 {
		return nil, &ProtocolError{Info: "no statistics in response"}
	}
	seg := stats[0]
	return &SiteStatistics{
		Pages:       scanInt(seg, "pages"),
		Articles:    scanInt(seg, "articles"),
		Edits:       scanInt(seg, "edits"),
		Images:      scanInt(seg, "images"),
		Users:       scanInt(seg, " users"),
		ActiveUsers: scanInt(seg, "activeusers"),
		Admins:      scanInt(seg, "admins"),
	}, nil
}
