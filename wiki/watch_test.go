package wiki

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"sync/atomic"
	"testing"
)

func TestWatch(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "watch" {
			t.Errorf("action = %q", got)
		}
		if got := r.PostForm.Get("titles"); got != "Sandbox" {
			t.Errorf("titles = %q", got)
		}
		if got := r.PostForm.Get("token"); got != testToken {
			t.Errorf("token = %q", got)
		}
		if _, ok := r.PostForm["unwatch"]; ok {
			t.Error("unwatch sent on a watch call")
		}
		fmt.Fprint(w, `<api><watch><w title="Sandbox" watched=""/></watch></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	if err := client.Watch(context.Background(), "Sandbox"); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	client.watchMu.Lock()
	watched := client.watchlist["Sandbox"]
	client.watchMu.Unlock()
	if !watched {
		t.Error("watched page not recorded in the session cache")
	}
}

func TestUnwatch(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.PostForm.Get("unwatch"); got != "1" {
			t.Errorf("unwatch = %q, want 1", got)
		}
		fmt.Fprint(w, `<api><watch><w title="Sandbox" unwatched=""/></watch></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	if err := client.Unwatch(context.Background(), "Sandbox"); err != nil {
		t.Fatalf("Unwatch failed: %v", err)
	}

	client.watchMu.Lock()
	watched, known := client.watchlist["Sandbox"]
	client.watchMu.Unlock()
	if !known || watched {
		t.Error("unwatched page still watched in the session cache")
	}
}

func TestGetRawWatchlist(t *testing.T) {
	var fetches int32
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("list"); got != "watchlistraw" {
			t.Errorf("list = %q", got)
		}
		atomic.AddInt32(&fetches, 1)
		fmt.Fprint(w, `<api batchcomplete=""><watchlistraw>`+
			`<wr ns="0" title="Alpha"/>`+
			`<wr ns="4" title="TestWiki:Beta"/>`+
			`</watchlistraw></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	titles, err := client.GetRawWatchlist(context.Background(), false)
	if err != nil {
		t.Fatalf("GetRawWatchlist failed: %v", err)
	}
	sort.Strings(titles)
	if want := []string{"Alpha", "TestWiki:Beta"}; !reflect.DeepEqual(titles, want) {
		t.Errorf("GetRawWatchlist() = %v, want %v", titles, want)
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("Expected 1 fetch, got %d", n)
	}
}

func TestGetRawWatchlist_Cached(t *testing.T) {
	var fetches int32
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Form.Get("action") == "watch" {
			fmt.Fprint(w, `<api><watch><w title="Beta" unwatched=""/></watch></api>`)
			return
		}
		atomic.AddInt32(&fetches, 1)
		fmt.Fprint(w, `<api batchcomplete=""><watchlistraw>`+
			`<wr ns="0" title="Alpha"/>`+
			`<wr ns="0" title="Beta"/>`+
			`</watchlistraw></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	if _, err := client.GetRawWatchlist(context.Background(), false); err != nil {
		t.Fatalf("GetRawWatchlist failed: %v", err)
	}
	if err := client.Unwatch(context.Background(), "Beta"); err != nil {
		t.Fatalf("Unwatch failed: %v", err)
	}

	titles, err := client.GetRawWatchlist(context.Background(), true)
	if err != nil {
		t.Fatalf("cached GetRawWatchlist failed: %v", err)
	}
	if !reflect.DeepEqual(titles, []string{"Alpha"}) {
		t.Errorf("cached watchlist = %v, want the unwatched page dropped", titles)
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("Expected the cached call to reuse the first fetch, got %d fetches", n)
	}

	if _, err := client.GetRawWatchlist(context.Background(), false); err != nil {
		t.Fatalf("uncached GetRawWatchlist failed: %v", err)
	}
	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Errorf("Expected the uncached call to refetch, got %d fetches", n)
	}
}

func TestIsWatched(t *testing.T) {
	var fetches int32
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		fmt.Fprint(w, `<api batchcomplete=""><watchlistraw>`+
			`<wr ns="0" title="Alpha"/>`+
			`</watchlistraw></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	watched, err := client.IsWatched(context.Background(), "Alpha")
	if err != nil {
		t.Fatalf("IsWatched failed: %v", err)
	}
	if !watched {
		t.Error("IsWatched(Alpha) = false, want true")
	}

	watched, err = client.IsWatched(context.Background(), "Gamma")
	if err != nil {
		t.Fatalf("IsWatched failed: %v", err)
	}
	if watched {
		t.Error("IsWatched(Gamma) = true, want false")
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("Expected 1 watchlist fetch for both lookups, got %d", n)
	}
}
