package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/mediawiki-bot/metrics"
	"github.com/olgasafonova/mediawiki-bot/tracing"
	"github.com/olgasafonova/mediawiki-bot/wiki"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *wiki.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *wiki.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	// Search tools
	case "SearchPages":
		h.register(server, tool, spec, h.client.SearchPagesMCP)

	// Read tools
	case "GetPageText":
		h.register(server, tool, spec, h.client.GetPageTextMCP)
	case "GetPageInfo":
		h.register(server, tool, spec, h.client.GetPageInfoMCP)
	case "ResolveRedirects":
		h.register(server, tool, spec, h.client.ResolveRedirectsMCP)
	case "GetCategories":
		h.register(server, tool, spec, h.client.GetCategoriesMCP)
	case "GetCategoryMembers":
		h.register(server, tool, spec, h.client.GetCategoryMembersMCP)

	// Link tools
	case "GetBacklinks":
		h.register(server, tool, spec, h.client.GetBacklinksMCP)
	case "GetExternalLinks":
		h.register(server, tool, spec, h.client.GetExternalLinksMCP)
	case "CheckLinks":
		h.register(server, tool, spec, h.client.CheckLinksMCP)
	case "FindBrokenInternalLinks":
		h.register(server, tool, spec, h.client.FindBrokenInternalLinksMCP)

	// History tools
	case "GetRecentChanges":
		h.register(server, tool, spec, h.client.GetRecentChangesMCP)
	case "GetPageHistory":
		h.register(server, tool, spec, h.client.GetPageHistoryMCP)
	case "GetUserContributions":
		h.register(server, tool, spec, h.client.GetUserContributionsMCP)
	case "GetLogEvents":
		h.register(server, tool, spec, h.client.GetLogEventsMCP)

	// User tools
	case "GetUsers":
		h.register(server, tool, spec, h.client.GetUsersMCP)
	case "ListUsers":
		h.register(server, tool, spec, h.client.ListUsersMCP)

	// Site tools
	case "GetWikiInfo":
		h.register(server, tool, spec, h.client.GetWikiInfoMCP)

	// Write tools
	case "EditPage":
		h.register(server, tool, spec, h.client.EditPageMCP)
	case "DeletePage":
		h.register(server, tool, spec, h.client.DeletePageMCP)
	case "MovePage":
		h.register(server, tool, spec, h.client.MovePageMCP)
	case "PurgePages":
		h.register(server, tool, spec, h.client.PurgePagesMCP)
	case "UploadFile":
		h.register(server, tool, spec, h.client.UploadFileMCP)

	// Watchlist tools
	case "WatchPages":
		h.register(server, tool, spec, h.client.WatchPagesMCP)
	case "GetWatchlist":
		h.register(server, tool, spec, h.client.GetWatchlistMCP)

	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the client method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (*mcp.CallToolResult, Result, error) {
		defer h.recoverPanic(spec.Name)

		// Start trace span
		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		// Track in-flight requests
		metrics.ToolRequestsInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.ToolRequestsInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordToolRequest(spec.Name, duration, false)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordToolRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

// recoverPanic recovers from panics in tool handlers.
func (h *HandlerRegistry) recoverPanic(toolName string) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case wiki.SearchPagesArgs:
		attrs = append(attrs, "query", a.Query)
	case wiki.GetPageTextArgs:
		attrs = append(attrs, "titles", len(a.Titles))
	case wiki.GetPageInfoArgs:
		attrs = append(attrs, "titles", len(a.Titles))
	case wiki.ResolveRedirectsArgs:
		attrs = append(attrs, "titles", len(a.Titles))
	case wiki.GetCategoriesArgs:
		attrs = append(attrs, "titles", len(a.Titles))
	case wiki.GetCategoryMembersArgs:
		attrs = append(attrs, "category", a.Category)
	case wiki.GetBacklinksArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.GetExternalLinksArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.CheckLinksArgs:
		attrs = append(attrs, "urls", len(a.URLs))
	case wiki.FindBrokenInternalLinksArgs:
		attrs = append(attrs, "titles", len(a.Titles), "source_category", a.Category)
	case wiki.GetRecentChangesArgs:
		// No args to log
	case wiki.GetPageHistoryArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.GetUserContributionsArgs:
		attrs = append(attrs, "user", a.User)
	case wiki.GetLogEventsArgs:
		attrs = append(attrs, "type", a.Type)
	case wiki.GetUsersArgs:
		attrs = append(attrs, "usernames", len(a.Usernames))
	case wiki.ListUsersArgs:
		attrs = append(attrs, "group", a.Group)
	case wiki.GetWikiInfoArgs:
		// No args to log
	case wiki.EditPageArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.DeletePageArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.MovePageArgs:
		attrs = append(attrs, "from", a.From, "to", a.To)
	case wiki.PurgePagesArgs:
		attrs = append(attrs, "titles", len(a.Titles))
	case wiki.UploadFileArgs:
		attrs = append(attrs, "filename", a.Filename)
	case wiki.WatchPagesArgs:
		attrs = append(attrs, "titles", len(a.Titles), "unwatch", a.Unwatch)
	case wiki.GetWatchlistArgs:
		// No args to log
	}

	// Add extractable fields from result
	switch r := result.(type) {
	case wiki.SearchPagesResult:
		attrs = append(attrs, "hits", r.Count)
	case wiki.GetPageTextResult:
		attrs = append(attrs, "pages", len(r.Pages))
	case wiki.GetPageInfoResult:
		attrs = append(attrs, "pages", len(r.Pages))
	case wiki.ResolveRedirectsResult:
		attrs = append(attrs, "resolved", len(r.Resolved))
	case wiki.GetCategoriesResult:
		attrs = append(attrs, "pages", len(r.Pages))
	case wiki.GetCategoryMembersResult:
		attrs = append(attrs, "members", r.Count)
	case wiki.GetBacklinksResult:
		attrs = append(attrs, "backlinks", r.Count)
	case wiki.GetExternalLinksResult:
		attrs = append(attrs, "links", r.Count)
	case wiki.CheckLinksResult:
		attrs = append(attrs, "valid", r.Valid, "broken", r.Broken)
	case wiki.FindBrokenInternalLinksResult:
		attrs = append(attrs, "broken", r.Count, "pages_checked", r.PagesChecked)
	case wiki.GetRecentChangesResult:
		attrs = append(attrs, "changes", r.Count)
	case wiki.GetPageHistoryResult:
		attrs = append(attrs, "revisions", r.Count)
	case wiki.GetUserContributionsResult:
		attrs = append(attrs, "contributions", r.Count)
	case wiki.GetLogEventsResult:
		attrs = append(attrs, "events", r.Count)
	case wiki.GetUsersResult:
		attrs = append(attrs, "users", len(r.Users))
	case wiki.ListUsersResult:
		attrs = append(attrs, "users", r.Count)
	case wiki.PurgePagesResult:
		attrs = append(attrs, "purged", r.Purged)
	case wiki.UploadFileResult:
		attrs = append(attrs, "size_bytes", r.Size)
	case wiki.GetWatchlistResult:
		attrs = append(attrs, "titles", r.Count)
	}

	h.logger.Info("Tool executed", attrs...)
}

// Convenience function to call the generic register with method receiver
func (h *HandlerRegistry) register(server *mcp.Server, tool *mcp.Tool, spec ToolSpec, method any) {
	switch m := method.(type) {
	case func(context.Context, wiki.SearchPagesArgs) (wiki.SearchPagesResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetPageTextArgs) (wiki.GetPageTextResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetPageInfoArgs) (wiki.GetPageInfoResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.ResolveRedirectsArgs) (wiki.ResolveRedirectsResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetCategoriesArgs) (wiki.GetCategoriesResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetCategoryMembersArgs) (wiki.GetCategoryMembersResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetBacklinksArgs) (wiki.GetBacklinksResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetExternalLinksArgs) (wiki.GetExternalLinksResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.CheckLinksArgs) (wiki.CheckLinksResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.FindBrokenInternalLinksArgs) (wiki.FindBrokenInternalLinksResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetRecentChangesArgs) (wiki.GetRecentChangesResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetPageHistoryArgs) (wiki.GetPageHistoryResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetUserContributionsArgs) (wiki.GetUserContributionsResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetLogEventsArgs) (wiki.GetLogEventsResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetUsersArgs) (wiki.GetUsersResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.ListUsersArgs) (wiki.ListUsersResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetWikiInfoArgs) (wiki.GetWikiInfoResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.EditPageArgs) (wiki.EditPageResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.DeletePageArgs) (wiki.DeletePageResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.MovePageArgs) (wiki.MovePageResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.PurgePagesArgs) (wiki.PurgePagesResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.UploadFileArgs) (wiki.UploadFileResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.WatchPagesArgs) (wiki.WatchPagesResult, error):
		register(h, server, tool, spec, m)
	case func(context.Context, wiki.GetWatchlistArgs) (wiki.GetWatchlistResult, error):
		register(h, server, tool, spec, m)
	default:
		h.logger.Error("Unknown method type, tool not registered", "tool", spec.Name)
	}
}
