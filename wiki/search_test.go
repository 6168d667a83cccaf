package wiki

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestSearch_Success(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("list"); got != "search" {
			t.Errorf("list = %q, want search", got)
		}
		if got := q.Get("srsearch"); got != "river delta" {
			t.Errorf("srsearch = %q", got)
		}
		fmt.Fprint(w, `<?xml version="1.0"?><api batchcomplete=""><query>`+
			`<searchinfo totalhits="2"/>`+
			`<search>`+
			`<p ns="0" title="River Delta" size="8043" wordcount="1204" `+
			`snippet="A &lt;span class=&quot;searchmatch&quot;&gt;river delta&lt;/span&gt; forms at the mouth" `+
			`timestamp="2024-04-10T12:00:00Z"/>`+
			`<p ns="0" title="Estuary" size="5100" wordcount="800" `+
			`snippet="often confused with a &lt;span class=&quot;searchmatch&quot;&gt;delta&lt;/span&gt;" `+
			`timestamp="2024-03-01T08:30:00Z"/>`+
			`</search></query></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	hits, err := client.Search(context.Background(), "river delta", nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}

	first := hits[0]
	if first.Title != "River Delta" {
		t.Errorf("Title = %q", first.Title)
	}
	if want := "A river delta forms at the mouth"; first.Snippet != want {
		t.Errorf("Snippet = %q, want the highlight markup stripped: %q", first.Snippet, want)
	}
	if first.Size != 8043 || first.WordCount != 1204 {
		t.Errorf("Size/WordCount = %d/%d", first.Size, first.WordCount)
	}
	if want := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC); !first.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", first.Timestamp, want)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := newTestClient(t, "https://wiki.example.com/w/api.php")
	if _, err := client.Search(context.Background(), "", nil); err == nil {
		t.Error("Search accepted an empty query")
	}
}

func TestSearch_NamespaceFilter(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("srnamespace"); got != "0|4" {
			t.Errorf("srnamespace = %q, want 0|4", got)
		}
		fmt.Fprint(w, `<api batchcomplete=""><query><search/></query></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	hits, err := client.Search(context.Background(), "anything", &QueryOptions{Namespaces: []int{0, 4}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Expected no hits, got %d", len(hits))
	}
}

func TestSearchTitles(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<api batchcomplete=""><query><search>`+
			`<p ns="0" title="First Hit" size="10" wordcount="2" snippet="" timestamp="2024-01-01T00:00:00Z"/>`+
			`<p ns="0" title="Second Hit" size="10" wordcount="2" snippet="" timestamp="2024-01-01T00:00:00Z"/>`+
			`</search></query></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	titles, err := client.SearchTitles(context.Background(), "hit", nil)
	if err != nil {
		t.Fatalf("SearchTitles failed: %v", err)
	}
	if len(titles) != 2 || titles[0] != "First Hit" || titles[1] != "Second Hit" {
		t.Errorf("titles = %v", titles)
	}
}

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "highlight spans",
			input: `A <span class="searchmatch">match</span> here`,
			want:  "A match here",
		},
		{
			name:  "nested tags",
			input: "<b><i>styled</i></b> text",
			want:  "styled text",
		},
		{
			name:  "entities after tags",
			input: "Fish &amp; chips",
			want:  "Fish & chips",
		},
		{
			name:  "surrounding whitespace",
			input: "  padded  ",
			want:  "padded",
		},
		{
			name:  "plain text untouched",
			input: "no markup at all",
			want:  "no markup at all",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTMLTags(tt.input); got != tt.want {
				t.Errorf("stripHTMLTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
