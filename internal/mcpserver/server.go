// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes docdesk tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docdesk/internal/calendar"
	"github.com/starford/docdesk/internal/docservice"
	"github.com/starford/docdesk/internal/filter"
	"github.com/starford/docdesk/internal/models"
	"github.com/starford/docdesk/internal/status"
)

const sidecarURI = "docdesk://sidecar-format"

// Server wraps the MCP server with docdesk tools. Every tool acts as a
// single configured user.
type Server struct {
	mcp    *server.MCPServer
	svc    *docservice.Service
	userID int64
	now    func() time.Time
}

// New creates a new MCP server with all docdesk tools registered.
func New(svc *docservice.Service, userID int64) *Server {
	s := &Server{svc: svc, userID: userID, now: time.Now}

	s.mcp = server.NewMCPServer(
		"docdesk",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("filter_documents",
		mcp.WithDescription("List the user's documents with the tag/type/date filters applied. "+
			"Every document is returned with a visible flag, plus a summary line."),
		mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Any-of tag filter")),
		mcp.WithString("type", mcp.Description("Lower-case file extension, e.g. pdf")),
		mcp.WithString("since", mcp.Description("YYYY-MM-DD; only documents created on or after")),
	), s.filterDocuments)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search over the title and text of documents the user can view."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text, at least two characters")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("task_calendar",
		mcp.WithDescription("Open workflow tasks of the user, grouped by due day for one month."),
		mcp.WithNumber("year", mcp.Description("Year; defaults to the current year")),
		mcp.WithNumber("month", mcp.Description("Month 1-12; defaults to the current month")),
	), s.taskCalendar)

	s.mcp.AddTool(mcp.NewTool("status_color",
		mcp.WithDescription("Colour token, hex stroke and badge class used to display a workflow or task status."),
		mcp.WithString("status", mcp.Required(), mcp.Description("Status label, e.g. in_progress")),
	), s.statusColor)

	s.mcp.AddTool(mcp.NewTool("search_users",
		mcp.WithDescription("Find users by username, e-mail or name. Needs at least two characters."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
	), s.searchUsers)

	s.mcp.AddTool(mcp.NewTool("unread_notifications",
		mcp.WithDescription("Unread notification count and the newest unread notifications."),
	), s.unreadNotifications)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Metadata and extracted text of a document."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Document id")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("upload_document",
		mcp.WithDescription("Store a document from an http(s) URL or a base64 data URI. "+
			"Read the sidecar format resource for the accepted file types."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data: URI")),
		mcp.WithString("filename", mcp.Description("File name; derived from the URL when empty")),
		mcp.WithString("title", mcp.Description("Document title")),
		mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Tags")),
	), s.uploadDocument)

	s.mcp.AddResource(
		mcp.NewResource(sidecarURI, "Inbox Sidecar Format",
			mcp.WithResourceDescription("Metadata accepted next to inbox files, and the document filter criteria."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSidecarFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) filterDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c := filter.Criteria{
		Tags:  req.GetStringSlice("tags", nil),
		Type:  req.GetString("type", ""),
		Since: req.GetString("since", ""),
	}
	listing, err := s.svc.List(ctx, s.userID, c)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(listing)
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.SearchDocuments(ctx, q, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	return jsonResult(hits)
}

type calendarDay struct {
	Date  string          `json:"date"`
	Tasks []calendar.Task `json:"tasks"`
}

type calendarResult struct {
	Title string        `json:"title"`
	Days  []calendarDay `json:"days"`
}

func (s *Server) taskCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := s.now()
	year := req.GetInt("year", now.Year())
	month := req.GetInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return mcp.NewToolResultError(fmt.Sprintf("month must be 1-12, got %d", month)), nil
	}
	grid, err := s.svc.Calendar(ctx, s.userID, year, time.Month(month))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := calendarResult{Title: grid.Title(), Days: []calendarDay{}}
	for _, c := range grid.Days() {
		if len(c.Tasks) == 0 {
			continue
		}
		res.Days = append(res.Days, calendarDay{
			Date:  fmt.Sprintf("%04d-%02d-%02d", grid.Year, int(grid.Month), c.Day),
			Tasks: c.Tasks,
		})
	}
	return jsonResult(res)
}

func (s *Server) statusColor(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tok := status.ColorFor(label)
	return jsonResult(map[string]string{
		"status": label,
		"token":  string(tok),
		"hex":    tok.Hex(),
		"badge":  tok.BadgeClass(),
	})
}

func (s *Server) searchUsers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.SearchUsers(ctx, q, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no users found"), nil
	}
	return jsonResult(hits)
}

func (s *Server) unreadNotifications(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := s.svc.UnreadCount(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recent, err := s.svc.RecentNotifications(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"count": count, "notifications": recent})
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("id is required"), nil
	}
	doc, err := s.svc.Document(ctx, int64(id), s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("document %d: %v", id, err)), nil
	}
	return jsonResult(struct {
		models.Document
		Text string `json:"text,omitempty"`
	}{*doc, doc.ContentText})
}

func (s *Server) readSidecarFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      sidecarURI,
			MIMEType: "text/markdown",
			Text:     SidecarFormat,
		},
	}, nil
}
