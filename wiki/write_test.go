package wiki

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestEdit(t *testing.T) {
	const text = "== Heading ==\nNew content with an & ampersand."

	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "edit" {
			t.Errorf("action = %q", got)
		}
		if got := r.PostForm.Get("title"); got != "Sandbox" {
			t.Errorf("title = %q", got)
		}
		if got := r.PostForm.Get("text"); got != text {
			t.Errorf("text = %q", got)
		}
		if got := r.PostForm.Get("summary"); got != "update" {
			t.Errorf("summary = %q", got)
		}
		if got := r.PostForm.Get("token"); got != testToken {
			t.Errorf("token = %q", got)
		}
		sum := md5.Sum([]byte(text))
		if got := r.PostForm.Get("md5"); got != hex.EncodeToString(sum[:]) {
			t.Errorf("md5 = %q, want the text fingerprint", got)
		}
		fmt.Fprint(w, `<api><edit result="Success" pageid="7" title="Sandbox" oldrevid="300" newrevid="301"/></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	if err := client.Edit(context.Background(), "Sandbox", text, "update", nil); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
}

func TestEdit_Options(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.PostForm.Get("minor"); got != "1" {
			t.Errorf("minor = %q, want 1", got)
		}
		if got := r.PostForm.Get("nocreate"); got != "1" {
			t.Errorf("nocreate = %q, want 1", got)
		}
		if got := r.PostForm.Get("basetimestamp"); got != "2024-01-05T10:00:00Z" {
			t.Errorf("basetimestamp = %q", got)
		}
		if _, ok := r.PostForm["bot"]; ok {
			t.Error("bot flag sent when not requested")
		}
		if _, ok := r.PostForm["createonly"]; ok {
			t.Error("createonly sent when not requested")
		}
		fmt.Fprint(w, `<api><edit result="Success" pageid="7" title="Sandbox" newrevid="302"/></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	opts := &EditOptions{
		Minor:         true,
		NoCreate:      true,
		BaseTimestamp: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
	}
	if err := client.Edit(context.Background(), "Sandbox", "text", "update", opts); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
}

func TestEdit_Conflict(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<api><error code="editconflict" info="Edit conflict: someone saved first."/></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	err := client.Edit(context.Background(), "Sandbox", "text", "update", nil)
	if !IsConflict(err) {
		t.Fatalf("Expected an edit conflict, got %v", err)
	}
	var ce *ConflictError
	if errors.As(err, &ce) && ce.Title != "Sandbox" {
		t.Errorf("ConflictError.Title = %q, want Sandbox", ce.Title)
	}
}

func TestEdit_NoChange(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<api><edit result="Success" pageid="7" title="Sandbox" nochange=""/></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	if err := client.Edit(context.Background(), "Sandbox", "same text", "update", nil); err != nil {
		t.Fatalf("Edit of unchanged content failed: %v", err)
	}
}

func TestEdit_UnexpectedResult(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<api><edit result="Failure"/></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	err := client.Edit(context.Background(), "Sandbox", "text", "update", nil)
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ProtocolError, got %v", err)
	}
}

func TestEdit_EmptyTitle(t *testing.T) {
	client := newTestClient(t, "https://wiki.example.com/w/api.php")
	if err := client.Edit(context.Background(), "", "text", "", nil); err == nil {
		t.Error("Edit accepted an empty title")
	}
}

func TestDelete(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "delete" {
			t.Errorf("action = %q", got)
		}
		if got := r.PostForm.Get("title"); got != "Old Draft" {
			t.Errorf("title = %q", got)
		}
		if got := r.PostForm.Get("reason"); got != "cleanup" {
			t.Errorf("reason = %q", got)
		}
		if got := r.PostForm.Get("token"); got != testToken {
			t.Errorf("token = %q", got)
		}
		fmt.Fprint(w, `<api><delete title="Old Draft" reason="cleanup" logid="90"/></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	if err := client.Delete(context.Background(), "Old Draft", "cleanup"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}

func TestDelete_AlreadyGone(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<api><error code="missingtitle" info="The page you specified doesn't exist."/></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	if err := client.Delete(context.Background(), "Old Draft", "cleanup"); err != nil {
		t.Errorf("Delete of a missing page failed: %v", err)
	}
}

func TestDelete_Protected(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<api><error code="protectedpage" info="This page has been protected."/></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	err := client.Delete(context.Background(), "Main Page", "oops")
	var ce *CredentialError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected CredentialError, got %v", err)
	}
}

func TestMove(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "move" {
			t.Errorf("action = %q", got)
		}
		if got := r.PostForm.Get("from"); got != "Old Name" {
			t.Errorf("from = %q", got)
		}
		if got := r.PostForm.Get("to"); got != "New Name" {
			t.Errorf("to = %q", got)
		}
		if got := r.PostForm.Get("movetalk"); got != "1" {
			t.Errorf("movetalk = %q, want 1", got)
		}
		if got := r.PostForm.Get("noredirect"); got != "1" {
			t.Errorf("noredirect = %q, want 1", got)
		}
		if _, ok := r.PostForm["movesubpages"]; ok {
			t.Error("movesubpages sent when not requested")
		}
		fmt.Fprint(w, `<api><move from="Old Name" to="New Name" reason="rename"/></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)
	opts := &MoveOptions{MoveTalk: true, NoRedirect: true}
	if err := client.Move(context.Background(), "Old Name", "New Name", "rename", opts); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
}

func TestMove_MissingTitles(t *testing.T) {
	client := newTestClient(t, "https://wiki.example.com/w/api.php")
	if err := client.Move(context.Background(), "", "New Name", "", nil); err == nil {
		t.Error("Move accepted an empty source title")
	}
	if err := client.Move(context.Background(), "Old Name", "", "", nil); err == nil {
		t.Error("Move accepted an empty destination title")
	}
}

func TestPurge(t *testing.T) {
	server := mockWikiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "purge" {
			t.Errorf("action = %q", got)
		}
		if got := r.PostForm.Get("titles"); got != "Alpha|Beta" {
			t.Errorf("titles = %q, want Alpha|Beta", got)
		}
		if _, ok := r.PostForm["token"]; ok {
			t.Error("purge sent a token")
		}
		fmt.Fprint(w, `<api><purge><page ns="0" title="Alpha" purged=""/><page ns="0" title="Beta" purged=""/></purge></api>`)
	})
	defer server.Close()

	client := newMockClient(t, server)

	// A cache purge must not be held back by the write throttle.
	client.SetThrottle(time.Hour)
	client.throttleMu.Lock()
	client.lastWrite = time.Now()
	client.throttleMu.Unlock()

	start := time.Now()
	if err := client.Purge(context.Background(), "Beta", "Alpha"); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Purge took %v, write throttle should not apply", elapsed)
	}
}
