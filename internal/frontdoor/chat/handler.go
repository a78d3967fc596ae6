// Package chat is the JSON endpoint clients post their conversation to.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tjfontaine/toolchat/internal/dialogue"
	"github.com/tjfontaine/toolchat/internal/domain"
	"github.com/tjfontaine/toolchat/internal/frontdoor"
	"github.com/tjfontaine/toolchat/internal/server"
)

// maxBodyBytes caps the inbound history payload.
const maxBodyBytes = 1 << 20

// Responder produces the assistant's answer for a conversation.
type Responder interface {
	Respond(ctx context.Context, conv domain.Conversation) (*dialogue.Reply, error)
}

// ToolLister exposes the declared tools.
type ToolLister interface {
	Declarations() []domain.ToolDeclaration
}

type Handler struct {
	responder Responder
	tools     ToolLister
	logger    *slog.Logger
}

func NewHandler(responder Responder, tools ToolLister, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{responder: responder, tools: tools, logger: logger}
}

// Request is the inbound payload.
type Request struct {
	History domain.Conversation `json:"history"`
}

// Response is the envelope for both answers and errors.
type Response struct {
	Response string `json:"response"`
}

// ToolInfo describes one tool in the GET /tools listing.
type ToolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  []domain.Parameter `json:"parameters"`
}

// Registrations returns the routes served by this handler.
func (h *Handler) Registrations() []frontdoor.HandlerRegistration {
	return []frontdoor.HandlerRegistration{
		{Path: "/chat", Method: http.MethodPost, Handler: h.HandleChat},
		{Path: "/api/chat", Method: http.MethodPost, Handler: h.HandleChat},
		{Path: "/tools", Method: http.MethodGet, Handler: h.HandleTools},
		{Path: "/healthz", Method: http.MethodGet, Handler: HandleHealth},
	}
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := server.GetRequestID(ctx)
	server.AddLogField(ctx, "frontdoor", "chat")

	req, err := decodeRequest(w, r)
	if err != nil {
		h.logger.Error("failed to decode chat request",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		h.writeError(w, r, err)
		return
	}
	server.AddLogField(ctx, "history_length", fmt.Sprint(len(req.History)))

	reply, err := h.responder.Respond(ctx, req.History)
	if err != nil {
		h.logger.Error("chat request failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		h.writeError(w, r, err)
		return
	}

	if len(reply.Tools) > 0 {
		names := make([]string, 0, len(reply.Tools))
		for _, t := range reply.Tools {
			names = append(names, t.Call.Name)
		}
		server.AddLogField(ctx, "tools", strings.Join(names, ","))
	}
	server.AddLogField(ctx, "model_calls", fmt.Sprint(reply.ModelCalls))

	writeJSON(w, http.StatusOK, Response{Response: reply.Text})
}

func (h *Handler) HandleTools(w http.ResponseWriter, r *http.Request) {
	decls := h.tools.Declarations()
	out := make([]ToolInfo, 0, len(decls))
	for _, d := range decls {
		params := d.Parameters
		if params == nil {
			params = []domain.Parameter{}
		}
		out = append(out, ToolInfo{Name: d.Name, Description: d.Description, Parameters: params})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.ErrBadRequest("Request body is too large.").
				WithStatusCode(http.StatusRequestEntityTooLarge).
				WithCause(err)
		}
		return nil, domain.ErrBadRequest("Request body must be JSON of the form {\"history\": [...]}.").WithCause(err)
	}
	if err := req.History.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// writeError maps err onto the {response} envelope. Unknown tools keep the
// generic message; their details only reach the logs.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	server.AddError(r.Context(), err)

	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		apiErr = domain.ErrServer("An error occurred.").WithCause(err)
	}
	if apiErr.Type == domain.ErrorTypeUnknownTool {
		server.AddLogField(r.Context(), "unknown_tool", apiErr.Param)
	}

	msg := apiErr.Message
	if apiErr.Type == domain.ErrorTypeServer {
		msg = "An error occurred."
	}
	writeJSON(w, apiErr.HTTPStatusCode(), Response{Response: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
