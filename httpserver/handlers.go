package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/go-chi/chi/v5"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/internal/domain/patients"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/triage"
)

// ChatMessageRequest is the triage chat request body.
type ChatMessageRequest struct {
	Input     string `json:"input" validate:"required,max=8192"`
	PatientID string `json:"patientID,omitempty" validate:"omitempty,max=64"`
	Mode      string `json:"mode,omitempty" validate:"omitempty,oneof=scripted agentic auto"`
}

// ChatMessageResponse is the triage chat response body.
type ChatMessageResponse struct {
	ChatID string                  `json:"chatID"`
	Result *chatmodel.AdviceResult `json:"result"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	if s.triage == nil {
		writeError(w, http.StatusNotFound, "not_configured", "triage is not configured")
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "failed to decode request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	mode, err := triage.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	chatCtx := chatmodel.NewChatContext(
		requestTenantID(r.Context()),
		chi.URLParam(r, "chatID"),
		req.PatientID,
		nil,
	)
	ctx := chatmodel.WithChatContext(r.Context(), chatCtx)

	logger.ContextKV(ctx, xlog.DEBUG,
		"handler", "post_message",
		"chat_id", chatCtx.GetChatID(),
		"mode", mode,
		"request", llmutils.RedactPHI(llmutils.ToJSON(req)),
	)

	res, err := s.triage.Respond(ctx, mode, req.Input)
	if err != nil {
		writeError(w, http.StatusBadGateway, "triage_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatMessageResponse{
		ChatID: chatCtx.GetChatID(),
		Result: res,
	})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "not_configured", "chat store is not configured")
		return
	}

	chatID := chi.URLParam(r, "chatID")
	chatCtx := chatmodel.NewChatContext(requestTenantID(r.Context()), chatID, "", nil)
	ctx := chatmodel.WithChatContext(r.Context(), chatCtx)

	info, err := s.store.GetChatInfo(ctx, chatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "not_configured", "chat store is not configured")
		return
	}

	chatCtx := chatmodel.NewChatContext(requestTenantID(r.Context()), "-", "", nil)
	ctx := chatmodel.WithChatContext(r.Context(), chatCtx)

	ids, err := s.store.ListChats(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": ids})
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		writeError(w, http.StatusNotFound, "not_configured", "patient records are not configured")
		return
	}

	list, err := s.records.ListPatients(r.Context(), requestTenantID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "records_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patients": list})
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		writeError(w, http.StatusNotFound, "not_configured", "patient records are not configured")
		return
	}

	p, err := s.records.GetPatient(r.Context(), requestTenantID(r.Context()), chi.URLParam(r, "patientID"))
	if err != nil {
		writePatientsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetPatientHistory(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		writeError(w, http.StatusNotFound, "not_configured", "patient records are not configured")
		return
	}

	h, err := s.records.GetHistory(r.Context(), requestTenantID(r.Context()), chi.URLParam(r, "patientID"))
	if err != nil {
		writePatientsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func writePatientsError(w http.ResponseWriter, err error) {
	if errors.Is(err, patients.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "patient not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "records_failed", err.Error())
}
