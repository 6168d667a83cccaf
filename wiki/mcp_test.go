package wiki

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		defaultVal int
		maxVal     int
		expected   int
	}{
		{"Zero limit returns default", 0, 50, 500, 50},
		{"Negative limit returns default", -10, 50, 500, 50},
		{"Within bounds returns as-is", 100, 50, 500, 100},
		{"Exceeds max returns max", 1000, 50, 500, 500},
		{"Exactly max returns max", 500, 50, 500, 500},
		{"Exactly default returns default", 50, 50, 500, 50},
		{"One returns one", 1, 50, 500, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeLimit(tt.limit, tt.defaultVal, tt.maxVal)
			if result != tt.expected {
				t.Errorf("normalizeLimit(%d, %d, %d) = %d, expected %d",
					tt.limit, tt.defaultVal, tt.maxVal, result, tt.expected)
			}
		})
	}
}

// Every wrapper that requires an argument must refuse an empty one
// before any request goes out.
func TestMCPRequiredArguments(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %v", r.Form)
	})
	defer server.Close()
	client := newMockClient(t, server)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"search_pages", func() error { _, err := client.SearchPagesMCP(ctx, SearchPagesArgs{}); return err }},
		{"get_page_text", func() error { _, err := client.GetPageTextMCP(ctx, GetPageTextArgs{}); return err }},
		{"get_page_info", func() error { _, err := client.GetPageInfoMCP(ctx, GetPageInfoArgs{}); return err }},
		{"resolve_redirects", func() error { _, err := client.ResolveRedirectsMCP(ctx, ResolveRedirectsArgs{}); return err }},
		{"get_backlinks", func() error { _, err := client.GetBacklinksMCP(ctx, GetBacklinksArgs{}); return err }},
		{"get_categories", func() error { _, err := client.GetCategoriesMCP(ctx, GetCategoriesArgs{}); return err }},
		{"get_category_members", func() error { _, err := client.GetCategoryMembersMCP(ctx, GetCategoryMembersArgs{}); return err }},
		{"get_page_history", func() error { _, err := client.GetPageHistoryMCP(ctx, GetPageHistoryArgs{}); return err }},
		{"get_user_contributions", func() error { _, err := client.GetUserContributionsMCP(ctx, GetUserContributionsArgs{}); return err }},
		{"get_users", func() error { _, err := client.GetUsersMCP(ctx, GetUsersArgs{}); return err }},
		{"get_external_links", func() error { _, err := client.GetExternalLinksMCP(ctx, GetExternalLinksArgs{}); return err }},
		{"check_links", func() error { _, err := client.CheckLinksMCP(ctx, CheckLinksArgs{}); return err }},
		{"find_broken_internal_links", func() error { _, err := client.FindBrokenInternalLinksMCP(ctx, FindBrokenInternalLinksArgs{}); return err }},
		{"purge_pages", func() error { _, err := client.PurgePagesMCP(ctx, PurgePagesArgs{}); return err }},
		{"watch_pages", func() error { _, err := client.WatchPagesMCP(ctx, WatchPagesArgs{}); return err }},
		{"upload_file", func() error { _, err := client.UploadFileMCP(ctx, UploadFileArgs{}); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Errorf("%s accepted empty arguments", tt.name)
			}
		})
	}
}

func TestSearchPagesMCP(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Form.Get("list"); got != "search" {
			t.Errorf("list = %q, want search", got)
		}
		// Unset limit falls back to the tool default, not the session cap.
		if got := r.Form.Get("srlimit"); got != "10" {
			t.Errorf("srlimit = %q, want 10", got)
		}
		fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query><search>`+
			`<p ns="0" title="Widget" snippet="A &lt;span class=&quot;searchmatch&quot;&gt;widget&lt;/span&gt; is a thing" size="2048" wordcount="300" timestamp="2024-03-01T12:00:00Z"/>`+
			`<p ns="0" title="Widget factory" snippet="stub" size="64" wordcount="9" timestamp="2024-02-01T08:30:00Z"/>`+
			`</search></query></api>`)
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.SearchPagesMCP(context.Background(), SearchPagesArgs{Query: "widget"})
	if err != nil {
		t.Fatalf("SearchPagesMCP failed: %v", err)
	}
	if result.Count != 2 || len(result.Hits) != 2 {
		t.Fatalf("Count = %d, Hits = %d, want 2", result.Count, len(result.Hits))
	}
	hit := result.Hits[0]
	if hit.Title != "Widget" {
		t.Errorf("Title = %q", hit.Title)
	}
	if hit.Snippet != "A widget is a thing" {
		t.Errorf("Snippet = %q, want highlight markup stripped", hit.Snippet)
	}
	if hit.Size != 2048 || hit.WordCount != 300 {
		t.Errorf("Size = %d, WordCount = %d", hit.Size, hit.WordCount)
	}
	if hit.Timestamp.Year() != 2024 {
		t.Errorf("Timestamp = %v", hit.Timestamp)
	}
}

func TestGetPageTextMCP(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query><pages>`+
			`<page pageid="1" ns="0" title="Main Page"><revisions><rev revid="10"><slots><slot role="main" xml:space="preserve">Hello world</slot></slots></rev></revisions></page>`+
			`<page ns="0" title="Nope" missing=""/>`+
			`</pages></query></api>`)
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.GetPageTextMCP(context.Background(), GetPageTextArgs{Titles: []string{"Main Page", "Nope"}})
	if err != nil {
		t.Fatalf("GetPageTextMCP failed: %v", err)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("Pages = %d, want 2", len(result.Pages))
	}
	if p := result.Pages[0]; !p.Exists || p.Text != "Hello world" {
		t.Errorf("Pages[0] = %+v", p)
	}
	if p := result.Pages[1]; p.Exists || p.Text != "" {
		t.Errorf("Pages[1] = %+v, want missing", p)
	}
}

func TestResolveRedirectsMCP(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query>`+
			`<normalized><n from="old page" to="Old page"/></normalized>`+
			`<redirects><r from="Old page" to="New page"/></redirects>`+
			`<pages><page pageid="2" ns="0" title="New page"/><page pageid="3" ns="0" title="Stable"/></pages>`+
			`</query></api>`)
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.ResolveRedirectsMCP(context.Background(), ResolveRedirectsArgs{Titles: []string{"old page", "Stable"}})
	if err != nil {
		t.Fatalf("ResolveRedirectsMCP failed: %v", err)
	}
	if len(result.Resolved) != 2 {
		t.Fatalf("Resolved = %d, want 2", len(result.Resolved))
	}
	if m := result.Resolved[0]; m.From != "old page" || m.To != "New page" {
		t.Errorf("Resolved[0] = %+v", m)
	}
	if m := result.Resolved[1]; m.From != "Stable" || m.To != "Stable" {
		t.Errorf("Resolved[1] = %+v, want identity mapping", m)
	}
}

func TestGetBacklinksMCP_Transclusions(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Form.Get("list"); got != "embeddedin" {
			t.Errorf("list = %q, want embeddedin when Transclusions is set", got)
		}
		if got := r.Form.Get("eititle"); got != "Template:Infobox" {
			t.Errorf("eititle = %q", got)
		}
		fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query><embeddedin>`+
			`<ei pageid="4" ns="0" title="Alpha"/><ei pageid="5" ns="0" title="Beta"/>`+
			`</embeddedin></query></api>`)
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.GetBacklinksMCP(context.Background(), GetBacklinksArgs{Title: "Template:Infobox", Transclusions: true})
	if err != nil {
		t.Fatalf("GetBacklinksMCP failed: %v", err)
	}
	if result.Count != 2 || len(result.Backlinks) != 2 {
		t.Fatalf("Count = %d, Backlinks = %v", result.Count, result.Backlinks)
	}
	if result.Backlinks[0] != "Alpha" || result.Backlinks[1] != "Beta" {
		t.Errorf("Backlinks = %v", result.Backlinks)
	}
}

func TestGetRecentChangesMCP(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Form.Get("list"); got != "recentchanges" {
			t.Errorf("list = %q, want recentchanges", got)
		}
		fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query><recentchanges>`+
			`<rc type="edit" ns="0" title="Page A" rcid="7" pageid="3" revid="100" old_revid="99" oldlen="100" newlen="150" user="Alice" comment="fix typo" timestamp="2024-05-01T10:00:00Z"/>`+
			`<rc type="new" ns="0" title="Page B" rcid="8" pageid="4" revid="101" old_revid="0" oldlen="0" newlen="42" new="" bot="" userhidden="" timestamp="2024-05-01T11:00:00Z"/>`+
			`</recentchanges></query></api>`)
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.GetRecentChangesMCP(context.Background(), GetRecentChangesArgs{})
	if err != nil {
		t.Fatalf("GetRecentChangesMCP failed: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("Count = %d, want 2", result.Count)
	}

	edit := result.Changes[0]
	if edit.RevID != 100 || edit.Title != "Page A" {
		t.Errorf("Changes[0] = %+v", edit)
	}
	if edit.User != "Alice" || edit.UserHidden {
		t.Errorf("User = %q, UserHidden = %v", edit.User, edit.UserHidden)
	}
	if edit.Comment != "fix typo" || edit.Size != 150 || edit.SizeDiff != 50 {
		t.Errorf("Comment = %q, Size = %d, SizeDiff = %d", edit.Comment, edit.Size, edit.SizeDiff)
	}

	created := result.Changes[1]
	if !created.New || !created.Bot {
		t.Errorf("Changes[1] flags = %+v", created)
	}
	if !created.UserHidden || created.User != "" {
		t.Errorf("redacted user surfaced as %q, UserHidden = %v", created.User, created.UserHidden)
	}
}

func TestGetUsersMCP(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query><users>`+
			`<user userid="5" name="Alice" editcount="1234" registration="2020-01-15T00:00:00Z">`+
			`<groups><g>bot</g><g>sysop</g></groups><rights><r>edit</r></rights></user>`+
			`<user name="Ghost" missing=""/>`+
			`</users></query></api>`)
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.GetUsersMCP(context.Background(), GetUsersArgs{Usernames: []string{"Alice", "Ghost"}})
	if err != nil {
		t.Fatalf("GetUsersMCP failed: %v", err)
	}
	if len(result.Users) != 2 {
		t.Fatalf("Users = %d, want 2", len(result.Users))
	}

	alice := result.Users[0]
	if alice.Missing {
		t.Error("Alice marked missing")
	}
	if alice.UserID != 5 || alice.EditCount != 1234 {
		t.Errorf("Alice = %+v", alice)
	}
	if alice.Registration != "2020-01-15T00:00:00Z" {
		t.Errorf("Registration = %q", alice.Registration)
	}
	if len(alice.Groups) != 2 || alice.Groups[0] != "bot" {
		t.Errorf("Groups = %v", alice.Groups)
	}

	ghost := result.Users[1]
	if !ghost.Missing {
		t.Error("Ghost not marked missing")
	}
	if ghost.Registration != "" {
		t.Errorf("missing user Registration = %q, want empty", ghost.Registration)
	}
}

func TestGetWikiInfoMCP(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		siprop := r.Form.Get("siprop")
		switch {
		case strings.Contains(siprop, "general"):
			fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query>`+
				`<general generator="MediaWiki 1.43.0" timezone="Europe/Oslo" lang="nb" case="first-letter"/>`+
				`<namespaces><ns id="0"></ns><ns id="14" canonical="Category">Kategori</ns></namespaces>`+
				`</query></api>`)
		case strings.Contains(siprop, "statistics"):
			fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query>`+
				`<statistics pages="1000" articles="400" edits="9000" images="12" users="300" activeusers="25" admins="3"/>`+
				`</query></api>`)
		default:
			t.Errorf("unexpected siprop %q", siprop)
		}
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.GetWikiInfoMCP(context.Background(), GetWikiInfoArgs{})
	if err != nil {
		t.Fatalf("GetWikiInfoMCP failed: %v", err)
	}
	if result.Version != "1.43.0" {
		t.Errorf("Version = %q", result.Version)
	}
	if result.Timezone != "Europe/Oslo" || result.Locale != "nb" {
		t.Errorf("Timezone = %q, Locale = %q", result.Timezone, result.Locale)
	}
	if result.Statistics.Pages != 1000 || result.Statistics.ActiveUsers != 25 {
		t.Errorf("Statistics = %+v", result.Statistics)
	}
}

func TestEditPageMCP(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Form.Get("action"); got != "edit" {
			t.Errorf("action = %q", got)
			return
		}
		if got := r.Form.Get("summary"); got != "testing" {
			t.Errorf("summary = %q", got)
		}
		if got := r.Form.Get("minor"); got != "1" {
			t.Errorf("minor = %q, want 1", got)
		}
		fmt.Fprint(w, `<?xml version="1.0"?><api><edit result="Success" pageid="1" title="Sandbox" newrevid="11"/></api>`)
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.EditPageMCP(context.Background(), EditPageArgs{
		Title:   "Sandbox",
		Text:    "new text",
		Summary: "testing",
		Minor:   true,
	})
	if err != nil {
		t.Fatalf("EditPageMCP failed: %v", err)
	}
	if !result.Saved || result.Title != "Sandbox" {
		t.Errorf("result = %+v", result)
	}
}

func TestWatchPagesMCP(t *testing.T) {
	var sawUnwatch bool
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Form.Get("action"); got != "watch" {
			t.Errorf("action = %q", got)
			return
		}
		sawUnwatch = r.Form.Get("unwatch") != ""
		if sawUnwatch {
			fmt.Fprint(w, `<?xml version="1.0"?><api><watch><w title="Sandbox" unwatched=""/></watch></api>`)
		} else {
			fmt.Fprint(w, `<?xml version="1.0"?><api><watch><w title="Sandbox" watched=""/></watch></api>`)
		}
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.WatchPagesMCP(context.Background(), WatchPagesArgs{Titles: []string{"Sandbox"}})
	if err != nil {
		t.Fatalf("WatchPagesMCP failed: %v", err)
	}
	if !result.Watched || sawUnwatch {
		t.Errorf("watch call: Watched = %v, unwatch param sent = %v", result.Watched, sawUnwatch)
	}

	result, err = client.WatchPagesMCP(context.Background(), WatchPagesArgs{Titles: []string{"Sandbox"}, Unwatch: true})
	if err != nil {
		t.Fatalf("WatchPagesMCP unwatch failed: %v", err)
	}
	if result.Watched || !sawUnwatch {
		t.Errorf("unwatch call: Watched = %v, unwatch param sent = %v", result.Watched, sawUnwatch)
	}
}

func TestCheckLinksMCP_URLCap(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %v", r.Form)
	})
	defer server.Close()
	client := newMockClient(t, server)

	urls := make([]string, maxCheckURLs+1)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/%d", i)
	}
	if _, err := client.CheckLinksMCP(context.Background(), CheckLinksArgs{URLs: urls}); err == nil {
		t.Errorf("accepted %d urls, cap is %d", len(urls), maxCheckURLs)
	}
}

func TestFindBrokenInternalLinksMCP(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Form.Get("prop") {
		case "revisions":
			fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query><pages>`+
				`<page pageid="1" ns="0" title="Hub"><revisions><rev revid="10"><slots><slot role="main" xml:space="preserve">See [[Spoke]] and [[Missing page]] and [[Category:Stuff]].</slot></slots></rev></revisions></page>`+
				`</pages></query></api>`)
		case "info":
			fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query><pages>`+
				`<page pageid="2" ns="0" title="Spoke" lastrevid="20" length="100" touched="2024-01-01T00:00:00Z"/>`+
				`<page ns="0" title="Missing page" missing=""/>`+
				`</pages></query></api>`)
		default:
			t.Errorf("unexpected request: %v", r.Form)
		}
	})
	defer server.Close()
	client := newMockClient(t, server)

	result, err := client.FindBrokenInternalLinksMCP(context.Background(), FindBrokenInternalLinksArgs{Titles: []string{"Hub"}})
	if err != nil {
		t.Fatalf("FindBrokenInternalLinksMCP failed: %v", err)
	}
	if result.PagesChecked != 1 {
		t.Errorf("PagesChecked = %d, want 1", result.PagesChecked)
	}
	if result.Count != 1 || len(result.Broken) != 1 {
		t.Fatalf("Count = %d, Broken = %v", result.Count, result.Broken)
	}
	if b := result.Broken[0]; b.Source != "Hub" || b.Target != "Missing page" {
		t.Errorf("Broken[0] = %+v", b)
	}
}

func TestUploadFileMCP_RejectsOversizeAndBadArgs(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %v", r.Form)
	})
	defer server.Close()
	client := newMockClient(t, server)
	ctx := context.Background()

	if _, err := client.UploadFileMCP(ctx, UploadFileArgs{FileURL: "https://example.com/a.png"}); err == nil {
		t.Error("accepted upload without filename")
	}
	if _, err := client.UploadFileMCP(ctx, UploadFileArgs{Filename: "A.png"}); err == nil {
		t.Error("accepted upload without file_url")
	}
	if _, err := client.UploadFileMCP(ctx, UploadFileArgs{Filename: "A.png", FileURL: "::bad::"}); err == nil {
		t.Error("accepted malformed file_url")
	}
}
