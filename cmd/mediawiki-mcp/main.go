// MediaWiki MCP Server - A Model Context Protocol server for MediaWiki wikis
// Provides tools for searching, reading, auditing, and editing MediaWiki content
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/mediawiki-bot/tools"
	"github.com/olgasafonova/mediawiki-bot/tracing"
	"github.com/olgasafonova/mediawiki-bot/wiki"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ServerName    = "mediawiki-bot"
	ServerVersion = "2.0.0" // Rebuilt on the continuation engine with vectorized reads
)

const serverInstructions = `MediaWiki MCP Server provides tools for interacting with MediaWiki wikis.

Available tools:
- mediawiki_search_pages: Full-text search across the wiki
- mediawiki_get_page_text: Get wikitext of one or more pages
- mediawiki_get_page_info: Get page metadata without content
- mediawiki_resolve_redirects: Follow redirects to their targets
- mediawiki_get_categories: List the categories of pages
- mediawiki_get_category_members: List pages in a category
- mediawiki_get_backlinks: Pages linking to a page ("What links here")
- mediawiki_get_external_links: External URLs on a page
- mediawiki_check_links: Probe external URLs for broken links
- mediawiki_find_broken_internal_links: Wiki links pointing at missing pages
- mediawiki_get_recent_changes: Recent edits across the wiki
- mediawiki_get_page_history: Revision history of one page
- mediawiki_get_user_contributions: Edits by one user
- mediawiki_get_log_events: Action logs (deletions, moves, blocks, uploads)
- mediawiki_get_users: Account details for usernames
- mediawiki_list_users: Enumerate registered accounts
- mediawiki_get_wiki_info: Wiki version, language and statistics
- mediawiki_edit_page: Create or replace a page (requires authentication)
- mediawiki_delete_page: Delete a page (requires authentication)
- mediawiki_move_page: Rename a page (requires authentication)
- mediawiki_purge_pages: Invalidate render caches
- mediawiki_upload_file: Upload a file from a URL (requires authentication)
- mediawiki_watch_pages: Add or remove watchlist entries (requires authentication)
- mediawiki_get_watchlist: List the account's watchlist (requires authentication)

Configure via environment variables:
- MEDIAWIKI_URL: Wiki API URL (e.g., https://wiki.example.com/w/api.php)
- MEDIAWIKI_USERNAME: Bot username (for editing)
- MEDIAWIKI_PASSWORD: Bot password (for editing)
- MEDIAWIKI_CONFIG: Optional YAML file consulted for unset values`

func main() {
	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Load configuration from environment
	config, err := wiki.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Tracing stays a no-op unless OTEL_ENABLED is set
	shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		logger.Warn("Tracing setup failed, continuing without traces", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	// Stdio carries the MCP protocol, so Prometheus metrics get their
	// own listener when one is configured.
	if addr := os.Getenv("MEDIAWIKI_METRICS_ADDR"); addr != "" {
		go func() {
			logger.Info("Serving metrics", "addr", addr)
			if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
				logger.Error("Metrics listener failed", "error", err)
			}
		}()
	}

	// Create MediaWiki client
	client, err := wiki.NewClient(config, logger)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	// Log in up front when credentials are configured so write tools
	// fail fast on bad credentials rather than mid-session.
	if config.HasCredentials() {
		if err := client.EnsureLoggedIn(ctx); err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		logger.Info("Authenticated", "username", config.Username)
	}

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	// Register all tools
	registry := tools.NewHandlerRegistry(client, logger)
	registry.RegisterAll(server)

	// Run server on stdio transport
	logger.Info("Starting MediaWiki MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"wiki_url", config.BaseURL,
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
