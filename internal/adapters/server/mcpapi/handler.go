// Package mcpapi exposes the chat bot as a stateless MCP streamable-HTTP server.
package mcpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/evanschultz/koni/internal/bot"
	"github.com/evanschultz/koni/internal/domain"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// notesPayload is the structured result of koni.list_notes.
type notesPayload struct {
	Notes []domain.Note `json:"notes"`
}

// repliesPayload is the structured result of koni.message.
type repliesPayload struct {
	Replies []string `json:"replies"`
}

// NewHandler builds the MCP adapter. A nil responder is built over notes.
func NewHandler(cfg Config, notes bot.NoteLister, responder *bot.Responder) (*Handler, error) {
	if notes == nil {
		return nil, fmt.Errorf("notes service is required")
	}
	if responder == nil {
		responder = bot.NewResponder(notes)
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerPingTool(mcpSrv, responder)
	registerListNotesTool(mcpSrv, notes)
	registerMessageTool(mcpSrv, responder)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "koni"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerPingTool registers `koni.ping`.
func registerPingTool(srv *mcpserver.MCPServer, responder *bot.Responder) {
	srv.AddTool(
		mcp.NewTool(
			"koni.ping",
			mcp.WithDescription("Check that the koni bot is alive."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			replies, err := responder.Respond(ctx, bot.CommandPing)
			if err != nil {
				return mcp.NewToolResultError("internal_error: " + err.Error()), nil
			}
			return mcp.NewToolResultText(strings.Join(replies, "\n")), nil
		},
	)
}

// registerListNotesTool registers `koni.list_notes`.
func registerListNotesTool(srv *mcpserver.MCPServer, notes bot.NoteLister) {
	srv.AddTool(
		mcp.NewTool(
			"koni.list_notes",
			mcp.WithDescription("List every stored note in creation order."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := notes.ListNotes(ctx)
			if err != nil {
				return mcp.NewToolResultError("internal_error: " + err.Error()), nil
			}
			if rows == nil {
				rows = []domain.Note{}
			}
			result, err := mcp.NewToolResultJSON(notesPayload{Notes: rows})
			if err != nil {
				return nil, fmt.Errorf("encode list_notes result: %w", err)
			}
			return result, nil
		},
	)
}

// registerMessageTool registers `koni.message`, which answers one chat message.
func registerMessageTool(srv *mcpserver.MCPServer, responder *bot.Responder) {
	srv.AddTool(
		mcp.NewTool(
			"koni.message",
			mcp.WithDescription("Send one chat message to the bot and return its replies. Try !help."),
			mcp.WithString("content", mcp.Required(), mcp.Description("Message text, e.g. !notes")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			content, err := req.RequireString("content")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if strings.TrimSpace(content) == "" {
				return mcp.NewToolResultError("invalid_request: content is required"), nil
			}
			replies, err := responder.Respond(ctx, content)
			if err != nil {
				return mcp.NewToolResultError("internal_error: " + err.Error()), nil
			}
			if replies == nil {
				replies = []string{}
			}
			result, err := mcp.NewToolResultJSON(repliesPayload{Replies: replies})
			if err != nil {
				return nil, fmt.Errorf("encode message result: %w", err)
			}
			return result, nil
		},
	)
}
