package wiki

import "time"

// Argument and result types for the MCP tool surface. Each pair wraps
// one client operation; the wrappers live in mcp.go. Result types carry
// json tags because they are serialized into tool responses.

// SearchPagesArgs contains parameters for full-text search
type SearchPagesArgs struct {
	Query      string `json:"query" jsonschema:"required" jsonschema_description:"Text to search for"`
	Limit      int    `json:"limit,omitempty" jsonschema_description:"Max results (default 10, max 500)"`
	Namespaces []int  `json:"namespaces,omitempty" jsonschema_description:"Restrict to these namespace IDs"`
}

// SearchPagesResult is the result of a full-text search
type SearchPagesResult struct {
	Hits  []SearchHit `json:"hits"`
	Count int         `json:"count"`
}

// SearchHit is one search match
type SearchHit struct {
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet,omitempty"`
	Size      int       `json:"size,omitempty"`
	WordCount int       `json:"word_count,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// GetPageTextArgs contains parameters for fetching page wikitext
type GetPageTextArgs struct {
	Titles []string `json:"titles" jsonschema:"required" jsonschema_description:"Page titles to fetch"`
}

// GetPageTextResult is the result of fetching page wikitext
type GetPageTextResult struct {
	Pages []PageTextEntry `json:"pages"`
}

// PageTextEntry is the wikitext of one requested page
type PageTextEntry struct {
	Title  string `json:"title"`
	Text   string `json:"text,omitempty"`
	Exists bool   `json:"exists"`
}

// GetPageInfoArgs contains parameters for fetching page metadata
type GetPageInfoArgs struct {
	Titles []string `json:"titles" jsonschema:"required" jsonschema_description:"Page titles to inspect"`
}

// GetPageInfoResult is the result of fetching page metadata
type GetPageInfoResult struct {
	Pages []PageInfoEntry `json:"pages"`
}

// PageInfoEntry is the metadata of one requested page
type PageInfoEntry struct {
	Title     string    `json:"title"`
	PageID    int64     `json:"page_id,omitempty"`
	Namespace int       `json:"namespace"`
	Exists    bool      `json:"exists"`
	Redirect  bool      `json:"redirect,omitempty"`
	LastRevID int64     `json:"last_rev_id,omitempty"`
	Length    int64     `json:"length,omitempty"`
	Touched   time.Time `json:"touched,omitempty"`
}

// ResolveRedirectsArgs contains parameters for redirect resolution
type ResolveRedirectsArgs struct {
	Titles []string `json:"titles" jsonschema:"required" jsonschema_description:"Titles to resolve"`
}

// ResolveRedirectsResult maps each input title to its final target
type ResolveRedirectsResult struct {
	Resolved []TitleMapping `json:"resolved"`
}

// TitleMapping is one input title and where it leads
type TitleMapping struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GetBacklinksArgs contains parameters for the backlink listing
type GetBacklinksArgs struct {
	Title         string `json:"title" jsonschema:"required" jsonschema_description:"Target page"`
	Transclusions bool   `json:"transclusions,omitempty" jsonschema_description:"List pages transcluding the target instead of linking to it"`
	Limit         int    `json:"limit,omitempty" jsonschema_description:"Max results (default 25, max 500)"`
}

// GetBacklinksResult is the result of the backlink listing
type GetBacklinksResult struct {
	Title     string   `json:"title"`
	Backlinks []string `json:"backlinks"`
	Count     int      `json:"count"`
}

// GetCategoriesArgs contains parameters for listing page categories
type GetCategoriesArgs struct {
	Titles []string `json:"titles" jsonschema:"required" jsonschema_description:"Pages whose categories to list"`
}

// GetCategoriesResult is the result of listing page categories
type GetCategoriesResult struct {
	Pages []PageCategories `json:"pages"`
}

// PageCategories is the category list of one page
type PageCategories struct {
	Title      string   `json:"title"`
	Categories []string `json:"categories"`
}

// GetCategoryMembersArgs contains parameters for listing category members
type GetCategoryMembersArgs struct {
	Category   string `json:"category" jsonschema:"required" jsonschema_description:"Category name, with or without the Category: prefix"`
	Namespaces []int  `json:"namespaces,omitempty" jsonschema_description:"Restrict members to these namespace IDs"`
	Limit      int    `json:"limit,omitempty" jsonschema_description:"Max results (default 25, max 500)"`
}

// GetCategoryMembersResult is the result of listing category members
type GetCategoryMembersResult struct {
	Category string   `json:"category"`
	Members  []string `json:"members"`
	Count    int      `json:"count"`
}

// GetRecentChangesArgs contains parameters for the recent changes feed
type GetRecentChangesArgs struct {
	Limit       int       `json:"limit,omitempty" jsonschema_description:"Max results (default 25, max 500)"`
	Start       time.Time `json:"start,omitempty" jsonschema_description:"Window start (RFC 3339)"`
	End         time.Time `json:"end,omitempty" jsonschema_description:"Window end (RFC 3339)"`
	User        string    `json:"user,omitempty" jsonschema_description:"Only changes by this user"`
	ExcludeUser string    `json:"exclude_user,omitempty" jsonschema_description:"Skip changes by this user"`
	Tag         string    `json:"tag,omitempty" jsonschema_description:"Only changes carrying this tag"`
	Namespaces  []int     `json:"namespaces,omitempty" jsonschema_description:"Restrict to these namespace IDs"`
}

// GetRecentChangesResult is the result of the recent changes feed
type GetRecentChangesResult struct {
	Changes []RevisionEntry `json:"changes"`
	Count   int             `json:"count"`
}

// RevisionEntry is one revision or change record
type RevisionEntry struct {
	RevID         int64     `json:"rev_id"`
	Title         string    `json:"title,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	User          string    `json:"user,omitempty"`
	UserHidden    bool      `json:"user_hidden,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	CommentHidden bool      `json:"comment_hidden,omitempty"`
	Minor         bool      `json:"minor,omitempty"`
	Bot           bool      `json:"bot,omitempty"`
	New           bool      `json:"new,omitempty"`
	Size          int64     `json:"size,omitempty"`
	SizeDiff      int64     `json:"size_diff,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
}

// GetPageHistoryArgs contains parameters for the revision history walk
type GetPageHistoryArgs struct {
	Title       string    `json:"title" jsonschema:"required" jsonschema_description:"Page whose history to walk"`
	Limit       int       `json:"limit,omitempty" jsonschema_description:"Max revisions (default 25, max 500)"`
	Start       time.Time `json:"start,omitempty" jsonschema_description:"Window start (RFC 3339)"`
	End         time.Time `json:"end,omitempty" jsonschema_description:"Window end (RFC 3339)"`
	OldestFirst bool      `json:"oldest_first,omitempty" jsonschema_description:"Walk from the oldest revision instead of the newest"`
}

// GetPageHistoryResult is the result of the revision history walk
type GetPageHistoryResult struct {
	Title     string          `json:"title"`
	Revisions []RevisionEntry `json:"revisions"`
	Count     int             `json:"count"`
}

// GetUserContributionsArgs contains parameters for a user's edit listing
type GetUserContributionsArgs struct {
	User       string    `json:"user" jsonschema:"required" jsonschema_description:"Username whose edits to list"`
	Limit      int       `json:"limit,omitempty" jsonschema_description:"Max results (default 25, max 500)"`
	Start      time.Time `json:"start,omitempty" jsonschema_description:"Window start (RFC 3339)"`
	End        time.Time `json:"end,omitempty" jsonschema_description:"Window end (RFC 3339)"`
	Namespaces []int     `json:"namespaces,omitempty" jsonschema_description:"Restrict to these namespace IDs"`
}

// GetUserContributionsResult is the result of a user's edit listing
type GetUserContributionsResult struct {
	User          string          `json:"user"`
	Contributions []RevisionEntry `json:"contributions"`
	Count         int             `json:"count"`
}

// GetLogEventsArgs contains parameters for the action log listing
type GetLogEventsArgs struct {
	Type  string    `json:"type,omitempty" jsonschema_description:"Log type to filter by (move, delete, block, ...); empty for all"`
	User  string    `json:"user,omitempty" jsonschema_description:"Only entries by this user"`
	Limit int       `json:"limit,omitempty" jsonschema_description:"Max results (default 25, max 500)"`
	Start time.Time `json:"start,omitempty" jsonschema_description:"Window start (RFC 3339)"`
	End   time.Time `json:"end,omitempty" jsonschema_description:"Window end (RFC 3339)"`
}

// GetLogEventsResult is the result of the action log listing
type GetLogEventsResult struct {
	Events []LogEventEntry `json:"events"`
	Count  int             `json:"count"`
}

// LogEventEntry is one action log record
type LogEventEntry struct {
	LogID      int64             `json:"log_id"`
	Type       string            `json:"type"`
	Action     string            `json:"action"`
	Timestamp  time.Time         `json:"timestamp"`
	User       string            `json:"user,omitempty"`
	UserHidden bool              `json:"user_hidden,omitempty"`
	Title      string            `json:"title,omitempty"`
	Comment    string            `json:"comment,omitempty"`
	Suppressed bool              `json:"suppressed,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// GetUsersArgs contains parameters for the user lookup
type GetUsersArgs struct {
	Usernames []string `json:"usernames" jsonschema:"required" jsonschema_description:"Usernames to look up"`
}

// GetUsersResult is the result of the user lookup
type GetUsersResult struct {
	Users []UserEntry `json:"users"`
}

// UserEntry is one user record
type UserEntry struct {
	Username     string   `json:"username"`
	UserID       int64    `json:"user_id,omitempty"`
	EditCount    int      `json:"edit_count,omitempty"`
	Registration string   `json:"registration,omitempty"`
	Groups       []string `json:"groups,omitempty"`
	Rights       []string `json:"rights,omitempty"`
	Blocked      bool     `json:"blocked,omitempty"`
	Missing      bool     `json:"missing,omitempty"`
}

// ListUsersArgs contains parameters for enumerating registered users
type ListUsersArgs struct {
	Group string `json:"group,omitempty" jsonschema_description:"Only users in this group (bot, sysop, ...)"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Max results (default 25, max 500)"`
}

// ListUsersResult is the result of enumerating registered users
type ListUsersResult struct {
	Users []UserEntry `json:"users"`
	Count int         `json:"count"`
}

// GetWikiInfoArgs contains parameters for the wiki description
type GetWikiInfoArgs struct {
	// No parameters needed
}

// GetWikiInfoResult describes the wiki and its content counters
type GetWikiInfoResult struct {
	Version    string    `json:"version"`
	Timezone   string    `json:"timezone,omitempty"`
	Locale     string    `json:"locale,omitempty"`
	Statistics SiteStats `json:"statistics"`
}

// SiteStats is the wiki's content counters
type SiteStats struct {
	Pages       int64 `json:"pages"`
	Articles    int64 `json:"articles"`
	Edits       int64 `json:"edits"`
	Images      int64 `json:"images"`
	Users       int64 `json:"users"`
	ActiveUsers int64 `json:"active_users"`
	Admins      int64 `json:"admins"`
}

// GetExternalLinksArgs contains parameters for the external link listing
type GetExternalLinksArgs struct {
	Title string `json:"title" jsonschema:"required" jsonschema_description:"Page whose external links to list"`
}

// GetExternalLinksResult is the result of the external link listing
type GetExternalLinksResult struct {
	Title string   `json:"title"`
	Links []string `json:"links"`
	Count int      `json:"count"`
}

// CheckLinksArgs contains parameters for the URL probe
type CheckLinksArgs struct {
	URLs           []string `json:"urls" jsonschema:"required" jsonschema_description:"URLs to probe (max 20)"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" jsonschema_description:"Per-URL timeout (default 10)"`
}

// CheckLinksResult is the result of the URL probe
type CheckLinksResult struct {
	Results []LinkCheckEntry `json:"results"`
	Valid   int              `json:"valid"`
	Broken  int              `json:"broken"`
}

// LinkCheckEntry is the probe outcome for one URL
type LinkCheckEntry struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// FindBrokenInternalLinksArgs contains parameters for the wiki link audit
type FindBrokenInternalLinksArgs struct {
	Titles   []string `json:"titles,omitempty" jsonschema_description:"Pages to audit"`
	Category string   `json:"category,omitempty" jsonschema_description:"Audit every page in this category instead of naming titles"`
}

// FindBrokenInternalLinksResult is the result of the wiki link audit
type FindBrokenInternalLinksResult struct {
	Broken       []BrokenLinkEntry `json:"broken"`
	PagesChecked int               `json:"pages_checked"`
	Count        int               `json:"count"`
}

// BrokenLinkEntry is one wiki link pointing at a missing page
type BrokenLinkEntry struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// EditPageArgs contains parameters for creating or replacing a page
type EditPageArgs struct {
	Title         string    `json:"title" jsonschema:"required" jsonschema_description:"Page to create or replace"`
	Text          string    `json:"text" jsonschema:"required" jsonschema_description:"Full replacement wikitext"`
	Summary       string    `json:"summary,omitempty" jsonschema_description:"Edit summary"`
	Minor         bool      `json:"minor,omitempty" jsonschema_description:"Mark as a minor edit"`
	Bot           bool      `json:"bot,omitempty" jsonschema_description:"Mark as a bot edit"`
	CreateOnly    bool      `json:"create_only,omitempty" jsonschema_description:"Fail if the page already exists"`
	NoCreate      bool      `json:"no_create,omitempty" jsonschema_description:"Fail if the page does not exist"`
	BaseTimestamp time.Time `json:"base_timestamp,omitempty" jsonschema_description:"Revision timestamp the text was based on; stale saves fail with an edit conflict"`
}

// EditPageResult is the result of creating or replacing a page
type EditPageResult struct {
	Title string `json:"title"`
	Saved bool   `json:"saved"`
}

// DeletePageArgs contains parameters for deleting a page
type DeletePageArgs struct {
	Title  string `json:"title" jsonschema:"required" jsonschema_description:"Page to delete"`
	Reason string `json:"reason,omitempty" jsonschema_description:"Deletion reason for the log"`
}

// DeletePageResult is the result of deleting a page
type DeletePageResult struct {
	Title   string `json:"title"`
	Deleted bool   `json:"deleted"`
}

// MovePageArgs contains parameters for renaming a page
type MovePageArgs struct {
	From         string `json:"from" jsonschema:"required" jsonschema_description:"Current page title"`
	To           string `json:"to" jsonschema:"required" jsonschema_description:"New page title"`
	Reason       string `json:"reason,omitempty" jsonschema_description:"Move reason for the log"`
	MoveTalk     bool   `json:"move_talk,omitempty" jsonschema_description:"Move the talk page along"`
	MoveSubpages bool   `json:"move_subpages,omitempty" jsonschema_description:"Move subpages along"`
	NoRedirect   bool   `json:"no_redirect,omitempty" jsonschema_description:"Do not leave a redirect behind"`
}

// MovePageResult is the result of renaming a page
type MovePageResult struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Moved bool   `json:"moved"`
}

// PurgePagesArgs contains parameters for purging rendered page caches
type PurgePagesArgs struct {
	Titles []string `json:"titles" jsonschema:"required" jsonschema_description:"Pages whose caches to purge"`
}

// PurgePagesResult is the result of purging rendered page caches
type PurgePagesResult struct {
	Purged int `json:"purged"`
}

// WatchPagesArgs contains parameters for watchlist changes
type WatchPagesArgs struct {
	Titles  []string `json:"titles" jsonschema:"required" jsonschema_description:"Pages to add or remove"`
	Unwatch bool     `json:"unwatch,omitempty" jsonschema_description:"Remove instead of add"`
}

// WatchPagesResult is the result of watchlist changes
type WatchPagesResult struct {
	Titles  []string `json:"titles"`
	Watched bool     `json:"watched"`
}

// GetWatchlistArgs contains parameters for reading the watchlist
type GetWatchlistArgs struct {
	Cached bool `json:"cached,omitempty" jsonschema_description:"Serve from the session cache when warm"`
}

// GetWatchlistResult is the result of reading the watchlist
type GetWatchlistResult struct {
	Titles []string `json:"titles"`
	Count  int      `json:"count"`
}

// UploadFileArgs contains parameters for uploading a file by URL
type UploadFileArgs struct {
	Filename    string `json:"filename" jsonschema:"required" jsonschema_description:"Target filename on the wiki"`
	FileURL     string `json:"file_url" jsonschema:"required" jsonschema_description:"Publicly reachable URL to fetch the file from"`
	Description string `json:"description,omitempty" jsonschema_description:"File description page content"`
	Comment     string `json:"comment,omitempty" jsonschema_description:"Upload log comment"`
}

// UploadFileResult is the result of uploading a file
type UploadFileResult struct {
	Filename string `json:"filename"`
	Uploaded bool   `json:"uploaded"`
	Size     int64  `json:"size"`
}
