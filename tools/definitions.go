package tools

// AllTools contains all tool specifications for the MediaWiki MCP server.
// Tools are organized by category for easier maintenance.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// SEARCH TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_search_pages",
		Method:   "SearchPages",
		Title:    "Search Wiki",
		Category: "search",
		Description: `Search ACROSS the entire wiki for pages containing specific text.

USE WHEN: User asks "find pages about X", "where is X documented", "search for X", or doesn't know which page contains information.

NOT FOR: Fetching a known page's content (use mediawiki_get_page_text instead).

PARAMETERS:
- query: Search text (required)
- limit: Max results (default 10)
- namespaces: Restrict to namespace IDs (optional)

RETURNS: Page titles, plain-text snippets, sizes, word counts and last-edit timestamps in relevance order.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// READ TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_get_page_text",
		Method:   "GetPageText",
		Title:    "Get Page Text",
		Category: "read",
		Description: `Fetch the current wikitext of one or more pages in a single call.

USE WHEN: User says "show me page X", "read X", "what does page X say", or several pages need reading at once.

NOT FOR: Finding which page covers a topic (use mediawiki_search_pages instead).

PARAMETERS:
- titles: Page names (required, batched server-side)

RETURNS: One entry per title in input order, with the wikitext and whether the page exists.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_get_page_info",
		Method:   "GetPageInfo",
		Title:    "Get Page Info",
		Category: "read",
		Description: `Fetch metadata about pages WITHOUT their content.

USE WHEN: User asks "does page X exist", "when was X last touched", "how big is X", "is X a redirect".

NOT FOR: Reading page content (use mediawiki_get_page_text instead).

PARAMETERS:
- titles: Page names (required)

RETURNS: Page ID, namespace, existence, redirect flag, latest revision ID, byte length and touch timestamp per title.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_resolve_redirects",
		Method:   "ResolveRedirects",
		Title:    "Resolve Redirects",
		Category: "read",
		Description: `Follow redirects server-side and return each title's final target.

USE WHEN: User asks "where does X redirect to", or canonical titles are needed before editing or linking.

NOT FOR: Checking existence (use mediawiki_get_page_info instead).

PARAMETERS:
- titles: Page names (required)

RETURNS: From/to pairs in input order. A non-redirect maps to its own normalized title.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_get_categories",
		Method:   "GetCategories",
		Title:    "Get Page Categories",
		Category: "read",
		Description: `List the categories each given page belongs to.

USE WHEN: User asks "what categories is X in", "how is X classified".

NOT FOR: Listing the pages inside a category (use mediawiki_get_category_members instead).

PARAMETERS:
- titles: Page names (required)

RETURNS: Category titles per page, namespace prefix included.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_get_category_members",
		Method:   "GetCategoryMembers",
		Title:    "Get Category Members",
		Category: "read",
		Description: `List the pages inside a category.

USE WHEN: User says "what's in category X", "list all X pages", "show everything tagged X".

NOT FOR: Finding which categories a page has (use mediawiki_get_categories instead).

PARAMETERS:
- category: Category name, with or without the "Category:" prefix (required)
- namespaces: Restrict to namespace IDs (optional)
- limit: Max members (default 25)

RETURNS: Member page titles.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// LINK TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_get_backlinks",
		Method:   "GetBacklinks",
		Title:    "Get Backlinks",
		Category: "links",
		Description: `Find pages that link to a given page ("What links here").

USE WHEN: User asks "what links to X", "which pages reference X", "is X transcluded anywhere", or before renaming or deleting a page.

NOT FOR: Links FROM a page to external sites (use mediawiki_get_external_links instead).

PARAMETERS:
- title: Target page (required)
- transclusions: List transcluding pages instead of linking pages (default false)
- limit: Max results (default 25)

RETURNS: Titles of linking (or transcluding) pages.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_get_external_links",
		Method:   "GetExternalLinks",
		Title:    "Get External Links",
		Category: "links",
		Description: `List the external URLs referenced by a page.

USE WHEN: User asks "what external sites does X link to", "list the URLs on page X", or as the first step of a broken-link audit.

NOT FOR: Internal wiki links (use mediawiki_get_backlinks) or probing URL health (use mediawiki_check_links).

PARAMETERS:
- title: Page name (required)

RETURNS: Every external URL on the page.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_check_links",
		Method:   "CheckLinks",
		Title:    "Check Links",
		Category: "links",
		Description: `Probe external URLs and report which ones are broken.

USE WHEN: User says "are these links still alive", "check the links on page X" (after mediawiki_get_external_links), "find dead links".

NOT FOR: Internal wiki links (use mediawiki_find_broken_internal_links instead).

PARAMETERS:
- urls: URLs to probe (required, max 20 per call)
- timeout_seconds: Per-URL timeout (default 10)

RETURNS: Status code and verdict per URL, plus valid/broken totals.

NOTE: URLs resolving to private networks are refused, not probed.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_find_broken_internal_links",
		Method:   "FindBrokenInternalLinks",
		Title:    "Find Broken Internal Links",
		Category: "links",
		Description: `Scan pages for internal wiki links pointing at pages that do not exist.

USE WHEN: User says "find red links", "which links on X are broken", "audit category Y for dead links".

NOT FOR: External URLs (use mediawiki_check_links instead).

PARAMETERS:
- titles: Pages to scan (optional)
- category: Scan every page in this category instead (optional; one of the two is required)

RETURNS: Source page and missing target per broken link, and how many pages were scanned.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// HISTORY TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_get_recent_changes",
		Method:   "GetRecentChanges",
		Title:    "Get Recent Changes",
		Category: "history",
		Description: `List recent edits and page creations across the whole wiki.

USE WHEN: User asks "what changed recently", "show today's edits", "what did user X change this week".

NOT FOR: The history of one page (use mediawiki_get_page_history instead).

PARAMETERS:
- limit: Max entries (default 25)
- start, end: Time window (optional)
- user / exclude_user: Filter by author (optional)
- tag: Filter by edit tag (optional)
- namespaces: Restrict to namespace IDs (optional)

RETURNS: Revision ID, page, author, comment, flags and size change per entry, newest first.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_get_page_history",
		Method:   "GetPageHistory",
		Title:    "Get Page History",
		Category: "history",
		Description: `List the revision history of ONE page.

USE WHEN: User asks "who edited X", "when was X changed", "show the history of X".

NOT FOR: Wiki-wide activity (use mediawiki_get_recent_changes instead).

PARAMETERS:
- title: Page name (required)
- limit: Max revisions (default 25)
- start, end: Time window (optional)
- oldest_first: Reverse the order (default false)

RETURNS: Revision ID, author, timestamp, comment, flags and size per revision.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_get_user_contributions",
		Method:   "GetUserContributions",
		Title:    "Get User Contributions",
		Category: "history",
		Description: `List the edits made by ONE user.

USE WHEN: User asks "what has X been editing", "show X's contributions", "is X active".

NOT FOR: All users' activity (use mediawiki_get_recent_changes instead).

PARAMETERS:
- user: Username (required)
- limit: Max edits (default 25)
- start, end: Time window (optional)
- namespaces: Restrict to namespace IDs (optional)

RETURNS: The user's edits with page, timestamp, comment and size change, newest first.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_get_log_events",
		Method:   "GetLogEvents",
		Title:    "Get Log Events",
		Category: "history",
		Description: `Read the wiki's action logs: deletions, moves, blocks, uploads, user creations.

USE WHEN: User asks "who deleted X", "when was X moved", "show recent blocks", "what was uploaded lately".

NOT FOR: Content edits (use mediawiki_get_recent_changes instead).

PARAMETERS:
- type: Log type such as "delete", "move", "block", "upload" (optional, all types when empty)
- user: Filter by acting user (optional)
- limit: Max entries (default 25)
- start, end: Time window (optional)

RETURNS: Log entries with type, action, actor, target, comment and action-specific parameters.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// USER TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_get_users",
		Method:   "GetUsers",
		Title:    "Get Users",
		Category: "users",
		Description: `Look up account details for specific usernames.

USE WHEN: User asks "who is X", "what groups is X in", "is X blocked", "when did X register".

NOT FOR: Enumerating accounts (use mediawiki_list_users instead).

PARAMETERS:
- usernames: Accounts to look up (required)

RETURNS: User ID, edit count, registration date, groups, rights and block status per account. Unknown names come back flagged missing.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_list_users",
		Method:   "ListUsers",
		Title:    "List Users",
		Category: "users",
		Description: `Enumerate registered accounts, optionally restricted to one group.

USE WHEN: User asks "list the admins", "who are the bots", "show registered users".

NOT FOR: Details of known accounts (use mediawiki_get_users instead).

PARAMETERS:
- group: Group filter such as "sysop" or "bot" (optional)
- limit: Max accounts (default 25)

RETURNS: Usernames with edit counts, registration dates and groups.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// SITE TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_get_wiki_info",
		Method:   "GetWikiInfo",
		Title:    "Get Wiki Info",
		Category: "site",
		Description: `Report what this wiki is: software version, timezone, language and live statistics.

USE WHEN: User asks "what wiki is this", "how many pages are there", "what MediaWiki version", "how many active users".

PARAMETERS: none.

RETURNS: MediaWiki version, timezone, content language, and page/article/edit/file/user counters.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// WRITE TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_edit_page",
		Method:   "EditPage",
		Title:    "Edit Page",
		Category: "write",
		Description: `Create a page or replace its wikitext.

USE WHEN: User says "update page X", "create a page about X", "save this text to X".

NOT FOR: Renaming (use mediawiki_move_page) or removing pages (use mediawiki_delete_page).

PARAMETERS:
- title: Page name (required)
- text: Full new wikitext (required)
- summary: Edit summary (recommended)
- minor: Mark as minor (default false)
- bot: Mark as bot edit (default false)
- create_only / no_create: Restrict to creation or to existing pages (optional)
- base_timestamp: Revision the text was based on; a newer intervening edit then fails as a conflict (optional)

RETURNS: Confirmation that the edit was saved.

WARNING: Replaces the ENTIRE page content. Read the page first and submit the complete text.`,
		ReadOnly:    false,
		Destructive: true,
		Idempotent:  false,
		OpenWorld:   true,
	},
	{
		Name:     "mediawiki_delete_page",
		Method:   "DeletePage",
		Title:    "Delete Page",
		Category: "write",
		Description: `Delete a page from the wiki.

USE WHEN: User explicitly says "delete page X", "remove X from the wiki".

NOT FOR: Blanking content (use mediawiki_edit_page) or renaming (use mediawiki_move_page).

PARAMETERS:
- title: Page to delete (required)
- reason: Deletion reason for the log (recommended)

RETURNS: Confirmation. Deleting an already-absent page succeeds quietly.

NOTE: Requires delete rights on the wiki.`,
		ReadOnly:    false,
		Destructive: true,
		Idempotent:  true,
		OpenWorld:   true,
	},
	{
		Name:     "mediawiki_move_page",
		Method:   "MovePage",
		Title:    "Move Page",
		Category: "write",
		Description: `Rename a page, leaving a redirect behind by default.

USE WHEN: User says "rename X to Y", "move X to Y".

NOT FOR: Copying content (use mediawiki_get_page_text plus mediawiki_edit_page).

PARAMETERS:
- from: Current name (required)
- to: New name (required)
- reason: Move reason for the log (recommended)
- move_talk: Move the talk page along (default false)
- move_subpages: Move subpages along (default false)
- no_redirect: Suppress the redirect from the old name (default false)

RETURNS: Confirmation of the rename.`,
		ReadOnly:    false,
		Destructive: true,
		Idempotent:  false,
		OpenWorld:   true,
	},
	{
		Name:     "mediawiki_purge_pages",
		Method:   "PurgePages",
		Title:    "Purge Pages",
		Category: "write",
		Description: `Invalidate the server-side render cache of pages.

USE WHEN: User says "the page shows stale content", "refresh X", after template changes that should propagate.

NOT FOR: Changing content (use mediawiki_edit_page instead).

PARAMETERS:
- titles: Pages to purge (required)

RETURNS: How many pages were purged. Content is never modified.`,
		ReadOnly:    false,
		Destructive: false,
		Idempotent:  true,
		OpenWorld:   true,
	},
	{
		Name:     "mediawiki_upload_file",
		Method:   "UploadFile",
		Title:    "Upload File",
		Category: "write",
		Description: `Upload a file to the wiki from a URL.

USE WHEN: User says "upload this image", "add file to wiki", "import document".

PARAMETERS:
- filename: Target filename on wiki (required)
- file_url: Source URL to fetch file from (required)
- description: File page content (optional)
- comment: Upload comment (optional)

RETURNS: Upload confirmation and the fetched size.

NOTE: Requires authentication. URL must be publicly accessible; internal addresses are refused.`,
		ReadOnly:    false,
		Destructive: false,
		Idempotent:  false,
		OpenWorld:   true,
	},

	// ==========================================================================
	// WATCHLIST TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_watch_pages",
		Method:   "WatchPages",
		Title:    "Watch Pages",
		Category: "watch",
		Description: `Add pages to, or remove them from, the logged-in account's watchlist.

USE WHEN: User says "watch page X", "stop watching X", "keep an eye on these pages".

PARAMETERS:
- titles: Pages to change (required)
- unwatch: Remove instead of add (default false)

RETURNS: The affected titles and the resulting watch state.`,
		ReadOnly:    false,
		Destructive: false,
		Idempotent:  true,
		OpenWorld:   true,
	},
	{
		Name:     "mediawiki_get_watchlist",
		Method:   "GetWatchlist",
		Title:    "Get Watchlist",
		Category: "watch",
		Description: `List the pages on the logged-in account's watchlist.

USE WHEN: User asks "what am I watching", "show my watchlist".

PARAMETERS:
- cached: Reuse the watchlist fetched earlier this session (default false)

RETURNS: Watched page titles.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}
