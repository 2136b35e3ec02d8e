// Package mcpserver exposes the concierge over the Model Context Protocol.
package mcpserver

import (
	"context"

	"github.com/dwizi/concierge/internal/knowledge"
	"github.com/dwizi/concierge/internal/resolver"
	"github.com/dwizi/concierge/internal/sanitize"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type ChatSessions interface {
	Submit(ctx context.Context, sessionID, text string) (string, resolver.Outcome)
}

type Server struct {
	server    *gomcp.Server
	sessions  ChatSessions
	knowledge *knowledge.Base
}

func New(sessions ChatSessions, base *knowledge.Base, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if base == nil {
		base = knowledge.Default()
	}
	s := &Server{
		sessions:  sessions,
		knowledge: base,
	}
	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "concierge", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

type askInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation to continue; a new one is started when empty"`
	Text      string `json:"text" jsonschema:"the visitor question"`
}

type askOutput struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Source    string `json:"source"`
}

type listKnowledgeInput struct{}

type knowledgeEntry struct {
	Keywords []string `json:"keywords"`
	Response string   `json:"response"`
}

type listKnowledgeOutput struct {
	Entries []knowledgeEntry `json:"entries"`
	Count   int              `json:"count"`
}

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "ask",
		Description: "Ask the website concierge a question. Answers come from the keyword knowledge base, the language model, or the contact fallback.",
	}, s.handleAsk)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_knowledge",
		Description: "List the canned knowledge base entries and their trigger keywords.",
	}, s.handleListKnowledge)
}

func (s *Server) handleAsk(ctx context.Context, _ *gomcp.CallToolRequest, input askInput) (*gomcp.CallToolResult, askOutput, error) {
	text := sanitize.Text(input.Text)
	if text == "" {
		return errorResult("text is required"), askOutput{}, nil
	}
	if s.sessions == nil {
		return errorResult("chat is unavailable"), askOutput{}, nil
	}
	sessionID, outcome := s.sessions.Submit(ctx, input.SessionID, text)
	return nil, askOutput{
		SessionID: sessionID,
		Reply:     outcome.Reply,
		Source:    string(outcome.Source),
	}, nil
}

func (s *Server) handleListKnowledge(_ context.Context, _ *gomcp.CallToolRequest, _ listKnowledgeInput) (*gomcp.CallToolResult, listKnowledgeOutput, error) {
	entries := s.knowledge.Entries()
	out := listKnowledgeOutput{
		Entries: make([]knowledgeEntry, len(entries)),
		Count:   len(entries),
	}
	for i, entry := range entries {
		out.Entries[i] = knowledgeEntry{Keywords: entry.Keywords, Response: entry.Response}
	}
	return nil, out, nil
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
