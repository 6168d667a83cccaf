package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const siteInfoXML = `<?xml version="1.0"?><api batchcomplete=""><query>` +
	`<general mainpage="Main Page" sitename="TestWiki" generator="MediaWiki 1.43.0" case="first-letter" lang="en" timezone="UTC" timeoffset="0"/>` +
	`<namespaces>` +
	`<ns id="0" case="first-letter" content=""/>` +
	`<ns id="1" case="first-letter" subpages="" canonical="Talk">Talk</ns>` +
	`<ns id="4" case="first-letter" subpages="" canonical="Project">TestWiki</ns>` +
	`<ns id="14" case="first-letter" canonical="Category">Category</ns>` +
	`</namespaces>` +
	`<namespacealiases>` +
	`<ns id="1">Discussion</ns>` +
	`<ns id="4">WP</ns>` +
	`</namespacealiases>` +
	`<extensions>` +
	`<ext type="other" name="CirrusSearch" version="2.0"/>` +
	`<ext type="parserhook" name="ParserFunctions"/>` +
	`</extensions>` +
	`</query></api>`

func siteInfoClient(t *testing.T) *Client {
	t.Helper()
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, siteInfoXML)
	})
	t.Cleanup(server.Close)
	return newMockClient(t, server)
}

func TestSiteInfo_FetchedOnce(t *testing.T) {
	var hits atomic.Int32
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(20 * time.Millisecond)
		fmt.Fprint(w, siteInfoXML)
	})
	defer server.Close()
	client := newMockClient(t, server)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			version, err := client.Version(context.Background())
			if err != nil {
				t.Errorf("Version failed: %v", err)
			}
			if version != "1.43.0" {
				t.Errorf("Version = %q, want 1.43.0", version)
			}
		}()
	}
	wg.Wait()

	if got := hits.Load(); got != 1 {
		t.Errorf("metadata fetched %d times by 6 concurrent callers, want 1", got)
	}
}

func TestSiteInfo_General(t *testing.T) {
	client := siteInfoClient(t)
	ctx := context.Background()

	if tz, err := client.Timezone(ctx); err != nil || tz != "UTC" {
		t.Errorf("Timezone = %q, %v, want UTC", tz, err)
	}
	if locale, err := client.Locale(ctx); err != nil || locale != "en" {
		t.Errorf("Locale = %q, %v, want en", locale, err)
	}
}

func TestNamespaceID(t *testing.T) {
	client := siteInfoClient(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   int
		ok   bool
	}{
		{"Talk", 1, true},
		{"talk", 1, true},
		{"TALK", 1, true},
		{"Discussion", 1, true},
		{"WP", 4, true},
		{"TestWiki", 4, true},
		{"Category", 14, true},
		{"Bogus", 0, false},
	}
	for _, tt := range tests {
		id, ok, err := client.NamespaceID(ctx, tt.name)
		if err != nil {
			t.Fatalf("NamespaceID(%q) failed: %v", tt.name, err)
		}
		if ok != tt.ok || (ok && id != tt.id) {
			t.Errorf("NamespaceID(%q) = %d, %v, want %d, %v", tt.name, id, ok, tt.id, tt.ok)
		}
	}
}

func TestNamespaceName(t *testing.T) {
	client := siteInfoClient(t)
	ctx := context.Background()

	name, ok, err := client.NamespaceName(ctx, 1)
	if err != nil || !ok || name != "Talk" {
		t.Errorf("NamespaceName(1) = %q, %v, %v, want Talk", name, ok, err)
	}
	// The main namespace has the empty string for a name.
	name, ok, err = client.NamespaceName(ctx, 0)
	if err != nil || !ok || name != "" {
		t.Errorf("NamespaceName(0) = %q, %v, %v, want empty", name, ok, err)
	}
	if _, ok, _ := client.NamespaceName(ctx, 99); ok {
		t.Error("NamespaceName(99) reported a namespace that does not exist")
	}
}

func TestNamespaceOfTitle(t *testing.T) {
	client := siteInfoClient(t)
	ctx := context.Background()

	tests := []struct {
		title string
		want  int
	}{
		{"Talk:Main Page", 1},
		{"talk:main page", 1},
		{"WP:Manual of Style", 4},
		{"Category:Rivers", 14},
		{"Plain article", 0},
		{"Unknown prefix:Thing", 0},
		{":Leading colon", 0},
	}
	for _, tt := range tests {
		ns, err := client.Namespace(ctx, tt.title)
		if err != nil {
			t.Fatalf("Namespace(%q) failed: %v", tt.title, err)
		}
		if ns != tt.want {
			t.Errorf("Namespace(%q) = %d, want %d", tt.title, ns, tt.want)
		}
	}
}

func TestSupportsSubpages(t *testing.T) {
	client := siteInfoClient(t)
	ctx := context.Background()

	if got, err := client.SupportsSubpages(ctx, 1); err != nil || !got {
		t.Errorf("SupportsSubpages(1) = %v, %v, want true", got, err)
	}
	if got, err := client.SupportsSubpages(ctx, 0); err != nil || got {
		t.Errorf("SupportsSubpages(0) = %v, %v, want false", got, err)
	}
}

func TestHasExtension(t *testing.T) {
	client := siteInfoClient(t)
	ctx := context.Background()

	if got, err := client.HasExtension(ctx, "CirrusSearch"); err != nil || !got {
		t.Errorf("HasExtension(CirrusSearch) = %v, %v, want true", got, err)
	}
	if got, err := client.HasExtension(ctx, "VisualEditor"); err != nil || got {
		t.Errorf("HasExtension(VisualEditor) = %v, %v, want false", got, err)
	}
}

func TestRequireExtension(t *testing.T) {
	client := siteInfoClient(t)
	ctx := context.Background()

	if err := client.RequireExtension(ctx, "ParserFunctions"); err != nil {
		t.Errorf("RequireExtension(ParserFunctions) = %v, want nil", err)
	}

	err := client.RequireExtension(ctx, "VisualEditor")
	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("RequireExtension(VisualEditor) = %v, want UnsupportedError", err)
	}
	if unsupported.Extension != "VisualEditor" {
		t.Errorf("UnsupportedError names %q, want VisualEditor", unsupported.Extension)
	}
}

func TestNormalizeTitle(t *testing.T) {
	client := siteInfoClient(t)
	ctx := context.Background()

	tests := []struct {
		in   string
		want string
	}{
		{"main page", "Main page"},
		{"  sandbox__page  ", "Sandbox page"},
		{"talk:colorado river", "Talk:Colorado river"},
		{"discussion:archive 1", "Talk:Archive 1"},
		{"wp:manual of style", "TestWiki:Manual of style"},
		{"Already Fine", "Already Fine"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := client.NormalizeTitle(ctx, tt.in)
		if err != nil {
			t.Fatalf("NormalizeTitle(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTitle_CaseSensitiveWiki(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query>`+
			`<general generator="MediaWiki 1.43.0" case="case-sensitive" lang="en" timezone="UTC"/>`+
			`<namespaces><ns id="0" content=""/></namespaces>`+
			`</query></api>`)
	})
	defer server.Close()
	client := newMockClient(t, server)

	got, err := client.NormalizeTitle(context.Background(), "wiktionary style")
	if err != nil {
		t.Fatalf("NormalizeTitle failed: %v", err)
	}
	if got != "wiktionary style" {
		t.Errorf("NormalizeTitle = %q, want the lowercase title kept", got)
	}
}

func TestParseSiteInfo_MissingGeneral(t *testing.T) {
	_, err := parseSiteInfo(`<api batchcomplete=""><query/></api>`)
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Errorf("parseSiteInfo without a general block = %v, want ProtocolError", err)
	}
}
