package web

import (
	"encoding/json"
	"net/http"

	"github.com/NegoBotEngine/NegoBot/internal/archive"
	"github.com/NegoBotEngine/NegoBot/internal/bot"
	"github.com/NegoBotEngine/NegoBot/internal/language"
	"github.com/NegoBotEngine/NegoBot/internal/llm"
	"github.com/NegoBotEngine/NegoBot/internal/nlog"
	"github.com/NegoBotEngine/NegoBot/internal/session"
	"github.com/pkg/errors"
)

// Server exposes the negotiation session API. The archive repository is
// optional; when present, deleted sessions get their transcript archived
// first.
type Server struct {
	mux      *http.ServeMux
	store    *session.Store
	bot      *bot.Bot
	archiver *archive.Repository
}

func NewServer(store *session.Store, negotiator *bot.Bot, archiver *archive.Repository) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		store:    store,
		bot:      negotiator,
		archiver: archiver,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /{$}", s.createNegotiation)
	s.mux.HandleFunc("GET /{id}", s.getNegotiation)
	s.mux.HandleFunc("POST /{id}/messages", s.addMessage)
	s.mux.HandleFunc("PUT /{id}/parameters", s.updateParameters)
	s.mux.HandleFunc("DELETE /{id}", s.deleteNegotiation)
	s.mux.HandleFunc("POST /{id}/chat", s.chat)
	s.mux.HandleFunc("GET /{id}/ws", s.chatSocket)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	nlog.Info("Web", "info", "listening", "addr", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) createNegotiation(w http.ResponseWriter, r *http.Request) {
	var params session.Parameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid parameters payload")
		return
	}

	sess, err := s.store.Create(params)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) getNegotiation(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) addMessage(w http.ResponseWriter, r *http.Request) {
	var msg session.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid message payload")
		return
	}

	if err := s.store.AppendMessage(r.PathValue("id"), msg); err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": language.T(language.MsgMessageAdded)})
}

func (s *Server) updateParameters(w http.ResponseWriter, r *http.Request) {
	var params session.Parameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid parameters payload")
		return
	}

	if err := s.store.ReplaceParameters(r.PathValue("id"), params); err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": language.T(language.MsgParametersUpdated)})
}

func (s *Server) deleteNegotiation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if s.archiver != nil {
		if sess, err := s.store.Get(id); err == nil {
			if err := s.archiver.Save(r.Context(), sess); err != nil {
				nlog.Warn("Web", "error", "failed to archive session before delete", "sessionId", id, "err", err)
			}
		}
	}

	if err := s.store.Delete(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	llm.ClearTokenUsage(id)

	writeJSON(w, http.StatusOK, map[string]string{"message": language.T(language.MsgSessionDeleted)})
}

type chatRequest struct {
	Content string `json:"content"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid chat payload")
		return
	}

	reply, err := s.bot.SendMessage(r.Context(), r.PathValue("id"), req.Content)
	if err != nil {
		if errors.Is(err, bot.ErrNoActiveSession) {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, language.T(language.MsgSessionNotFound))
		return
	}
	writeDetail(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		nlog.Error("Web", "error", "failed to encode response", "err", err)
	}
}

// writeDetail mirrors the {"detail": ...} error shape clients already parse.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
