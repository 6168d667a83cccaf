package wiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MCP tool wrapper methods. Each wraps one client operation with
// Args/Result types for MCP integration, normalizing limits and
// flattening the engine's pointer-bearing records into plain DTOs.

const (
	defaultSearchLimit = 10
	defaultListLimit   = 25
	maxListLimit       = 500
	maxCheckURLs       = 20
	maxUploadFetch     = 50 << 20
)

// SearchPagesMCP is the MCP wrapper for Search
func (c *Client) SearchPagesMCP(ctx context.Context, args SearchPagesArgs) (SearchPagesResult, error) {
	if args.Query == "" {
		return SearchPagesResult{}, fmt.Errorf("query is required")
	}
	opts := &QueryOptions{
		Namespaces: args.Namespaces,
		Limit:      normalizeLimit(args.Limit, defaultSearchLimit, maxListLimit),
	}
	results, err := c.Search(ctx, args.Query, opts)
	if err != nil {
		return SearchPagesResult{}, err
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{
			Title:     r.Title,
			Snippet:   r.Snippet,
			Size:      r.Size,
			WordCount: r.WordCount,
			Timestamp: r.Timestamp,
		})
	}
	return SearchPagesResult{Hits: hits, Count: len(hits)}, nil
}

// GetPageTextMCP is the MCP wrapper for GetPageText
func (c *Client) GetPageTextMCP(ctx context.Context, args GetPageTextArgs) (GetPageTextResult, error) {
	if len(args.Titles) == 0 {
		return GetPageTextResult{}, fmt.Errorf("at least one title is required")
	}
	texts, err := c.GetPageText(ctx, args.Titles...)
	if err != nil {
		return GetPageTextResult{}, err
	}

	pages := make([]PageTextEntry, 0, len(texts))
	for _, p := range texts {
		pages = append(pages, PageTextEntry{Title: p.Title, Text: p.Text, Exists: p.Exists})
	}
	return GetPageTextResult{Pages: pages}, nil
}

// GetPageInfoMCP is the MCP wrapper for GetPageInfo
func (c *Client) GetPageInfoMCP(ctx context.Context, args GetPageInfoArgs) (GetPageInfoResult, error) {
	if len(args.Titles) == 0 {
		return GetPageInfoResult{}, fmt.Errorf("at least one title is required")
	}
	infos, err := c.GetPageInfo(ctx, args.Titles...)
	if err != nil {
		return GetPageInfoResult{}, err
	}

	pages := make([]PageInfoEntry, 0, len(infos))
	for _, p := range infos {
		pages = append(pages, PageInfoEntry{
			Title:     p.Title,
			PageID:    p.PageID,
			Namespace: p.Namespace,
			Exists:    p.Exists,
			Redirect:  p.Redirect,
			LastRevID: p.LastRevID,
			Length:    p.Length,
			Touched:   p.Touched,
		})
	}
	return GetPageInfoResult{Pages: pages}, nil
}

// ResolveRedirectsMCP is the MCP wrapper for ResolveRedirects
func (c *Client) ResolveRedirectsMCP(ctx context.Context, args ResolveRedirectsArgs) (ResolveRedirectsResult, error) {
	if len(args.Titles) == 0 {
		return ResolveRedirectsResult{}, fmt.Errorf("at least one title is required")
	}
	targets, err := c.ResolveRedirects(ctx, args.Titles...)
	if err != nil {
		return ResolveRedirectsResult{}, err
	}

	resolved := make([]TitleMapping, 0, len(targets))
	for i, to := range targets {
		resolved = append(resolved, TitleMapping{From: args.Titles[i], To: to})
	}
	return ResolveRedirectsResult{Resolved: resolved}, nil
}

// GetBacklinksMCP is the MCP wrapper for GetBacklinks and GetEmbeddedIn
func (c *Client) GetBacklinksMCP(ctx context.Context, args GetBacklinksArgs) (GetBacklinksResult, error) {
	if args.Title == "" {
		return GetBacklinksResult{}, fmt.Errorf("title is required")
	}
	opts := &QueryOptions{Limit: normalizeLimit(args.Limit, defaultListLimit, maxListLimit)}

	var links []string
	var err error
	if args.Transclusions {
		links, err = c.GetEmbeddedIn(ctx, args.Title, opts)
	} else {
		links, err = c.GetBacklinks(ctx, args.Title, opts)
	}
	if err != nil {
		return GetBacklinksResult{}, err
	}
	return GetBacklinksResult{Title: args.Title, Backlinks: links, Count: len(links)}, nil
}

// GetCategoriesMCP is the MCP wrapper for GetCategories
func (c *Client) GetCategoriesMCP(ctx context.Context, args GetCategoriesArgs) (GetCategoriesResult, error) {
	if len(args.Titles) == 0 {
		return GetCategoriesResult{}, fmt.Errorf("at least one title is required")
	}
	cats, err := c.GetCategories(ctx, args.Titles...)
	if err != nil {
		return GetCategoriesResult{}, err
	}

	pages := make([]PageCategories, 0, len(cats))
	for i, list := range cats {
		pages = append(pages, PageCategories{Title: args.Titles[i], Categories: list})
	}
	return GetCategoriesResult{Pages: pages}, nil
}

// GetCategoryMembersMCP is the MCP wrapper for GetCategoryMembers
func (c *Client) GetCategoryMembersMCP(ctx context.Context, args GetCategoryMembersArgs) (GetCategoryMembersResult, error) {
	if args.Category == "" {
		return GetCategoryMembersResult{}, fmt.Errorf("category is required")
	}
	opts := &QueryOptions{
		Namespaces: args.Namespaces,
		Limit:      normalizeLimit(args.Limit, defaultListLimit, maxListLimit),
	}
	members, err := c.GetCategoryMembers(ctx, args.Category, opts)
	if err != nil {
		return GetCategoryMembersResult{}, err
	}
	return GetCategoryMembersResult{Category: args.Category, Members: members, Count: len(members)}, nil
}

// GetRecentChangesMCP is the MCP wrapper for RecentChanges
func (c *Client) GetRecentChangesMCP(ctx context.Context, args GetRecentChangesArgs) (GetRecentChangesResult, error) {
	opts := &QueryOptions{
		Start:       args.Start,
		End:         args.End,
		User:        args.User,
		ExcludeUser: args.ExcludeUser,
		Tag:         args.Tag,
		Namespaces:  args.Namespaces,
		Limit:       normalizeLimit(args.Limit, defaultListLimit, maxListLimit),
	}
	revs, err := c.RecentChanges(ctx, opts)
	if err != nil {
		return GetRecentChangesResult{}, err
	}
	changes := revisionEntries(revs)
	return GetRecentChangesResult{Changes: changes, Count: len(changes)}, nil
}

// GetPageHistoryMCP is the MCP wrapper for GetPageHistory
func (c *Client) GetPageHistoryMCP(ctx context.Context, args GetPageHistoryArgs) (GetPageHistoryResult, error) {
	if args.Title == "" {
		return GetPageHistoryResult{}, fmt.Errorf("title is required")
	}
	opts := &QueryOptions{
		Start:   args.Start,
		End:     args.End,
		Reverse: args.OldestFirst,
		Limit:   normalizeLimit(args.Limit, defaultListLimit, maxListLimit),
	}
	revs, err := c.GetPageHistory(ctx, args.Title, opts)
	if err != nil {
		return GetPageHistoryResult{}, err
	}
	entries := revisionEntries(revs)
	return GetPageHistoryResult{Title: args.Title, Revisions: entries, Count: len(entries)}, nil
}

// GetUserContributionsMCP is the MCP wrapper for Contribs
func (c *Client) GetUserContributionsMCP(ctx context.Context, args GetUserContributionsArgs) (GetUserContributionsResult, error) {
	if args.User == "" {
		return GetUserContributionsResult{}, fmt.Errorf("user is required")
	}
	opts := &QueryOptions{
		Start:      args.Start,
		End:        args.End,
		Namespaces: args.Namespaces,
		Limit:      normalizeLimit(args.Limit, defaultListLimit, maxListLimit),
	}
	revs, err := c.Contribs(ctx, args.User, opts)
	if err != nil {
		return GetUserContributionsResult{}, err
	}
	entries := revisionEntries(revs)
	return GetUserContributionsResult{User: args.User, Contributions: entries, Count: len(entries)}, nil
}

// GetLogEventsMCP is the MCP wrapper for GetLogEntries
func (c *Client) GetLogEventsMCP(ctx context.Context, args GetLogEventsArgs) (GetLogEventsResult, error) {
	opts := &QueryOptions{
		Start: args.Start,
		End:   args.End,
		User:  args.User,
		Limit: normalizeLimit(args.Limit, defaultListLimit, maxListLimit),
	}
	entries, err := c.GetLogEntries(ctx, args.Type, opts)
	if err != nil {
		return GetLogEventsResult{}, err
	}

	events := make([]LogEventEntry, 0, len(entries))
	for _, e := range entries {
		events = append(events, LogEventEntry{
			LogID:      e.ID,
			Type:       e.Type,
			Action:     e.Action,
			Timestamp:  e.Timestamp,
			User:       strValue(e.User),
			UserHidden: e.UserDeleted,
			Title:      strValue(e.Title),
			Comment:    strValue(e.Comment),
			Suppressed: e.ContentDeleted,
			Params:     e.Details,
		})
	}
	return GetLogEventsResult{Events: events, Count: len(events)}, nil
}

// GetUsersMCP is the MCP wrapper for GetUsers
func (c *Client) GetUsersMCP(ctx context.Context, args GetUsersArgs) (GetUsersResult, error) {
	if len(args.Usernames) == 0 {
		return GetUsersResult{}, fmt.Errorf("at least one username is required")
	}
	users, err := c.GetUsers(ctx, args.Usernames...)
	if err != nil {
		return GetUsersResult{}, err
	}
	return GetUsersResult{Users: userEntries(users)}, nil
}

// ListUsersMCP is the MCP wrapper for ListUsers
func (c *Client) ListUsersMCP(ctx context.Context, args ListUsersArgs) (ListUsersResult, error) {
	opts := &QueryOptions{Limit: normalizeLimit(args.Limit, defaultListLimit, maxListLimit)}
	users, err := c.ListUsers(ctx, args.Group, opts)
	if err != nil {
		return ListUsersResult{}, err
	}
	entries := userEntries(users)
	return ListUsersResult{Users: entries, Count: len(entries)}, nil
}

// GetWikiInfoMCP is the MCP wrapper for the site metadata accessors and
// GetSiteStatistics
func (c *Client) GetWikiInfoMCP(ctx context.Context, args GetWikiInfoArgs) (GetWikiInfoResult, error) {
	version, err := c.Version(ctx)
	if err != nil {
		return GetWikiInfoResult{}, err
	}
	tz, err := c.Timezone(ctx)
	if err != nil {
		return GetWikiInfoResult{}, err
	}
	locale, err := c.Locale(ctx)
	if err != nil {
		return GetWikiInfoResult{}, err
	}
	stats, err := c.GetSiteStatistics(ctx)
	if err != nil {
		return GetWikiInfoResult{}, err
	}

	return GetWikiInfoResult{
		Version:  version,
		Timezone: tz,
		Locale:   locale,
		Statistics: SiteStats{
			Pages:       stats.Pages,
			Articles:    stats.Articles,
			Edits:       stats.Edits,
			Images:      stats.Images,
			Users:       stats.Users,
			ActiveUsers: stats.ActiveUsers,
			Admins:      stats.Admins,
		},
	}, nil
}

// GetExternalLinksMCP is the MCP wrapper for GetExternalLinks
func (c *Client) GetExternalLinksMCP(ctx context.Context, args GetExternalLinksArgs) (GetExternalLinksResult, error) {
	if args.Title == "" {
		return GetExternalLinksResult{}, fmt.Errorf("title is required")
	}
	links, err := c.GetExternalLinks(ctx, args.Title)
	if err != nil {
		return GetExternalLinksResult{}, err
	}
	return GetExternalLinksResult{Title: args.Title, Links: links, Count: len(links)}, nil
}

// CheckLinksMCP is the MCP wrapper for CheckLinks
func (c *Client) CheckLinksMCP(ctx context.Context, args CheckLinksArgs) (CheckLinksResult, error) {
	if len(args.URLs) == 0 {
		return CheckLinksResult{}, fmt.Errorf("at least one url is required")
	}
	if len(args.URLs) > maxCheckURLs {
		return CheckLinksResult{}, fmt.Errorf("at most %d urls per call", maxCheckURLs)
	}
	timeout := 10 * time.Second
	if args.TimeoutSeconds > 0 {
		timeout = time.Duration(args.TimeoutSeconds) * time.Second
	}

	statuses, err := c.CheckLinks(ctx, args.URLs, timeout)
	if err != nil {
		return CheckLinksResult{}, err
	}

	out := CheckLinksResult{Results: make([]LinkCheckEntry, 0, len(statuses))}
	for _, s := range statuses {
		entry := LinkCheckEntry{URL: s.URL, StatusCode: s.StatusCode, OK: s.OK}
		if s.Err != nil {
			entry.Error = s.Err.Error()
		}
		if s.OK {
			out.Valid++
		} else {
			out.Broken++
		}
		out.Results = append(out.Results, entry)
	}
	return out, nil
}

// FindBrokenInternalLinksMCP is the MCP wrapper for FindBrokenLinks
func (c *Client) FindBrokenInternalLinksMCP(ctx context.Context, args FindBrokenInternalLinksArgs) (FindBrokenInternalLinksResult, error) {
	titles := args.Titles
	if len(titles) == 0 && args.Category != "" {
		members, err := c.GetCategoryMembers(ctx, args.Category, &QueryOptions{Limit: maxListLimit})
		if err != nil {
			return FindBrokenInternalLinksResult{}, err
		}
		titles = members
	}
	if len(titles) == 0 {
		return FindBrokenInternalLinksResult{}, fmt.Errorf("titles or category is required")
	}

	broken, err := c.FindBrokenLinks(ctx, titles...)
	if err != nil {
		return FindBrokenInternalLinksResult{}, err
	}

	entries := make([]BrokenLinkEntry, 0, len(broken))
	for _, b := range broken {
		entries = append(entries, BrokenLinkEntry{Source: b.Source, Target: b.Target})
	}
	return FindBrokenInternalLinksResult{Broken: entries, PagesChecked: len(titles), Count: len(entries)}, nil
}

// EditPageMCP is the MCP wrapper for Edit
func (c *Client) EditPageMCP(ctx context.Context, args EditPageArgs) (EditPageResult, error) {
	opts := &EditOptions{
		Minor:         args.Minor,
		Bot:           args.Bot,
		CreateOnly:    args.CreateOnly,
		NoCreate:      args.NoCreate,
		BaseTimestamp: args.BaseTimestamp,
	}
	if err := c.Edit(ctx, args.Title, args.Text, args.Summary, opts); err != nil {
		return EditPageResult{}, err
	}
	return EditPageResult{Title: args.Title, Saved: true}, nil
}

// DeletePageMCP is the MCP wrapper for Delete
func (c *Client) DeletePageMCP(ctx context.Context, args DeletePageArgs) (DeletePageResult, error) {
	if err := c.Delete(ctx, args.Title, args.Reason); err != nil {
		return DeletePageResult{}, err
	}
	return DeletePageResult{Title: args.Title, Deleted: true}, nil
}

// MovePageMCP is the MCP wrapper for Move
func (c *Client) MovePageMCP(ctx context.Context, args MovePageArgs) (MovePageResult, error) {
	opts := &MoveOptions{
		MoveTalk:     args.MoveTalk,
		MoveSubpages: args.MoveSubpages,
		NoRedirect:   args.NoRedirect,
	}
	if err := c.Move(ctx, args.From, args.To, args.Reason, opts); err != nil {
		return MovePageResult{}, err
	}
	return MovePageResult{From: args.From, To: args.To, Moved: true}, nil
}

// PurgePagesMCP is the MCP wrapper for Purge
func (c *Client) PurgePagesMCP(ctx context.Context, args PurgePagesArgs) (PurgePagesResult, error) {
	if len(args.Titles) == 0 {
		return PurgePagesResult{}, fmt.Errorf("at least one title is required")
	}
	if err := c.Purge(ctx, args.Titles...); err != nil {
		return PurgePagesResult{}, err
	}
	return PurgePagesResult{Purged: len(args.Titles)}, nil
}

// WatchPagesMCP is the MCP wrapper for Watch and Unwatch
func (c *Client) WatchPagesMCP(ctx context.Context, args WatchPagesArgs) (WatchPagesResult, error) {
	if len(args.Titles) == 0 {
		return WatchPagesResult{}, fmt.Errorf("at least one title is required")
	}
	var err error
	if args.Unwatch {
		err = c.Unwatch(ctx, args.Titles...)
	} else {
		err = c.Watch(ctx, args.Titles...)
	}
	if err != nil {
		return WatchPagesResult{}, err
	}
	return WatchPagesResult{Titles: args.Titles, Watched: !args.Unwatch}, nil
}

// GetWatchlistMCP is the MCP wrapper for GetRawWatchlist
func (c *Client) GetWatchlistMCP(ctx context.Context, args GetWatchlistArgs) (GetWatchlistResult, error) {
	titles, err := c.GetRawWatchlist(ctx, args.Cached)
	if err != nil {
		return GetWatchlistResult{}, err
	}
	return GetWatchlistResult{Titles: titles, Count: len(titles)}, nil
}

// UploadFileMCP fetches a file from a public URL and uploads it. The
// fetch goes through the same guarded HTTP client as the link probe, so
// internal addresses cannot be reached through the wiki.
func (c *Client) UploadFileMCP(ctx context.Context, args UploadFileArgs) (UploadFileResult, error) {
	if args.Filename == "" {
		return UploadFileResult{}, fmt.Errorf("filename is required")
	}
	if args.FileURL == "" {
		return UploadFileResult{}, fmt.Errorf("file_url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, args.FileURL, nil)
	if err != nil {
		return UploadFileResult{}, fmt.Errorf("invalid file_url: %w", err)
	}
	resp, err := externalClient.Do(req)
	if err != nil {
		return UploadFileResult{}, fmt.Errorf("fetching %s: %w", args.FileURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return UploadFileResult{}, fmt.Errorf("fetching %s: status %d", args.FileURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadFetch+1))
	if err != nil {
		return UploadFileResult{}, fmt.Errorf("reading %s: %w", args.FileURL, err)
	}
	if len(data) > maxUploadFetch {
		return UploadFileResult{}, fmt.Errorf("file exceeds %d bytes", maxUploadFetch)
	}

	if err := c.Upload(ctx, data, args.Filename, args.Description, args.Comment); err != nil {
		return UploadFileResult{}, err
	}
	return UploadFileResult{Filename: args.Filename, Uploaded: true, Size: int64(len(data))}, nil
}

func revisionEntries(revs []Revision) []RevisionEntry {
	out := make([]RevisionEntry, 0, len(revs))
	for _, r := range revs {
		out = append(out, RevisionEntry{
			RevID:         r.ID,
			Title:         strValue(r.Title),
			Timestamp:     r.Timestamp,
			User:          strValue(r.User),
			UserHidden:    r.UserDeleted,
			Comment:       strValue(r.Comment),
			CommentHidden: r.CommentDeleted,
			Minor:         r.Minor,
			Bot:           r.Bot,
			New:           r.New,
			Size:          r.Size,
			SizeDiff:      r.SizeDiff,
			Tags:          r.Tags,
		})
	}
	return out
}

func userEntries(users []User) []UserEntry {
	out := make([]UserEntry, 0, len(users))
	for _, u := range users {
		entry := UserEntry{
			Username:  u.Username,
			UserID:    u.UserID,
			EditCount: u.EditCount,
			Groups:    u.Groups,
			Rights:    u.Rights,
			Blocked:   u.Blocked,
			Missing:   u.UserID == 0,
		}
		if !u.Registration.IsZero() {
			entry.Registration = u.Registration.Format(apiTimestamp)
		}
		out = append(out, entry)
	}
	return out
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
