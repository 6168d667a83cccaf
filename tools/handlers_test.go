package tools

import (
	"log/slog"
	"os"
	"testing"

	"github.com/olgasafonova/mediawiki-bot/wiki"
)

func newTestRegistry(t *testing.T) *HandlerRegistry {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := wiki.NewClient(&wiki.Config{BaseURL: "https://wiki.example.com/w/api.php"}, logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return NewHandlerRegistry(client, logger)
}

func TestNewHandlerRegistry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := wiki.NewClient(&wiki.Config{BaseURL: "https://wiki.example.com/w/api.php"}, logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	registry := NewHandlerRegistry(client, logger)

	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}
	if registry.client != client {
		t.Error("Registry should hold the client reference")
	}
	if registry.logger != logger {
		t.Error("Registry should hold the logger reference")
	}
}

func TestBuildTool(t *testing.T) {
	registry := newTestRegistry(t)

	tests := []struct {
		name      string
		spec      ToolSpec
		wantName  string
		wantDesc  string
		wantRO    bool
		wantIdem  bool
		wantDestr bool
		wantOpen  bool
	}{
		{
			name: "read-only tool",
			spec: ToolSpec{
				Name:        "mediawiki_search_pages",
				Title:       "Search Wiki",
				Description: "Search pages by text",
				Method:      "SearchPages",
				Category:    "search",
				ReadOnly:    true,
				Idempotent:  true,
				OpenWorld:   true,
			},
			wantName: "mediawiki_search_pages",
			wantDesc: "Search pages by text",
			wantRO:   true,
			wantIdem: true,
			wantOpen: true,
		},
		{
			name: "destructive tool",
			spec: ToolSpec{
				Name:        "mediawiki_edit_page",
				Title:       "Edit Page",
				Description: "Replace page content",
				Method:      "EditPage",
				Category:    "write",
				Destructive: true,
				OpenWorld:   true,
			},
			wantName:  "mediawiki_edit_page",
			wantDesc:  "Replace page content",
			wantDestr: true,
			wantOpen:  true,
		},
		{
			name: "closed world tool",
			spec: ToolSpec{
				Name:        "mediawiki_example",
				Title:       "Example",
				Description: "Example tool",
				Method:      "Example",
				Category:    "site",
				ReadOnly:    true,
			},
			wantName: "mediawiki_example",
			wantDesc: "Example tool",
			wantRO:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := registry.buildTool(tt.spec)

			if tool.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tool.Name, tt.wantName)
			}
			if tool.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", tool.Description, tt.wantDesc)
			}
			if tool.Annotations == nil {
				t.Fatal("Expected annotations")
			}
			if tool.Annotations.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", tool.Annotations.ReadOnlyHint, tt.wantRO)
			}
			if tool.Annotations.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", tool.Annotations.IdempotentHint, tt.wantIdem)
			}
			if tt.wantDestr && (tool.Annotations.DestructiveHint == nil || !*tool.Annotations.DestructiveHint) {
				t.Error("Expected DestructiveHint to be true")
			}
			if !tt.wantDestr && tool.Annotations.DestructiveHint != nil {
				t.Error("Expected DestructiveHint to be unset")
			}
			if tt.wantOpen && (tool.Annotations.OpenWorldHint == nil || !*tool.Annotations.OpenWorldHint) {
				t.Error("Expected OpenWorldHint to be true")
			}
			if !tt.wantOpen && tool.Annotations.OpenWorldHint != nil {
				t.Error("Expected OpenWorldHint to be unset")
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	registry := newTestRegistry(t)

	// Test that recoverPanic doesn't panic itself
	func() {
		defer registry.recoverPanic("test_tool")
		panic("test panic")
	}()

	// If we get here, panic was recovered successfully
}

func TestLogExecution(t *testing.T) {
	registry := newTestRegistry(t)
	spec := ToolSpec{Name: "test_tool", Category: "search"}

	// Test with SearchPagesArgs
	registry.logExecution(spec,
		wiki.SearchPagesArgs{Query: "test"},
		wiki.SearchPagesResult{
			Hits:  []wiki.SearchHit{{Title: "Test page"}},
			Count: 1,
		})

	// Test with GetPageTextArgs
	registry.logExecution(spec,
		wiki.GetPageTextArgs{Titles: []string{"Main Page"}},
		wiki.GetPageTextResult{Pages: []wiki.PageTextEntry{{Title: "Main Page", Exists: true}}})

	// Test with EditPageArgs
	registry.logExecution(spec,
		wiki.EditPageArgs{Title: "Sandbox", Text: "content"},
		wiki.EditPageResult{Title: "Sandbox", Saved: true})

	// Test with CheckLinksArgs
	registry.logExecution(spec,
		wiki.CheckLinksArgs{URLs: []string{"https://example.org"}},
		wiki.CheckLinksResult{Valid: 1})
}

func TestAllToolsNotEmpty(t *testing.T) {
	if len(AllTools) == 0 {
		t.Error("AllTools should not be empty")
	}

	// Verify each tool has required fields
	for i, spec := range AllTools {
		if spec.Name == "" {
			t.Errorf("Tool %d has empty Name", i)
		}
		if spec.Method == "" {
			t.Errorf("Tool %s has empty Method", spec.Name)
		}
		if spec.Description == "" {
			t.Errorf("Tool %s has empty Description", spec.Name)
		}
		if spec.Category == "" {
			t.Errorf("Tool %s has empty Category", spec.Name)
		}
	}
}

func TestToolNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, spec := range AllTools {
		if seen[spec.Name] {
			t.Errorf("Duplicate tool name: %s", spec.Name)
		}
		seen[spec.Name] = true
	}
}

func TestToolSpecMethods(t *testing.T) {
	knownMethods := map[string]bool{
		// Search tools
		"SearchPages": true,
		// Read tools
		"GetPageText":        true,
		"GetPageInfo":        true,
		"ResolveRedirects":   true,
		"GetCategories":      true,
		"GetCategoryMembers": true,
		// Link tools
		"GetBacklinks":            true,
		"GetExternalLinks":        true,
		"CheckLinks":              true,
		"FindBrokenInternalLinks": true,
		// History tools
		"GetRecentChanges":     true,
		"GetPageHistory":       true,
		"GetUserContributions": true,
		"GetLogEvents":         true,
		// User tools
		"GetUsers":  true,
		"ListUsers": true,
		// Site tools
		"GetWikiInfo": true,
		// Write tools
		"EditPage":   true,
		"DeletePage": true,
		"MovePage":   true,
		"PurgePages": true,
		"UploadFile": true,
		// Watchlist tools
		"WatchPages":   true,
		"GetWatchlist": true,
	}

	for _, spec := range AllTools {
		if !knownMethods[spec.Method] {
			t.Errorf("Tool %s has unknown method: %s", spec.Name, spec.Method)
		}
	}
}

func TestToolsByCategory(t *testing.T) {
	for _, category := range []string{"search", "read", "links", "history", "users", "site", "write", "watch"} {
		tools := ToolsByCategory(category)
		if len(tools) == 0 {
			t.Errorf("Expected tools in category %s", category)
		}
		for _, tool := range tools {
			if tool.Category != category {
				t.Errorf("Tool %s has category %s, expected %s", tool.Name, tool.Category, category)
			}
		}
	}

	// Non-existent category should return empty
	unknownTools := ToolsByCategory("unknown")
	if len(unknownTools) != 0 {
		t.Errorf("Expected 0 tools for unknown category, got %d", len(unknownTools))
	}
}

func TestWriteToolsNotReadOnly(t *testing.T) {
	for _, spec := range ToolsByCategory("write") {
		if spec.ReadOnly {
			t.Errorf("Write tool %s must not be marked read-only", spec.Name)
		}
	}
}
