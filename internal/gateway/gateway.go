// Package gateway exposes the court over HTTP: a read-only JSON surface for
// boards, games and archived matches, and a websocket the host bridge speaks
// frames over.
package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/quietbay/chesscourt/internal/boardimage"
	"github.com/quietbay/chesscourt/internal/command"
	"github.com/quietbay/chesscourt/internal/logging"
	"github.com/quietbay/chesscourt/pkg/courtdto"
)

const restTimeout = 15 * time.Second

type Server struct {
	svc     *command.Service
	disp    *command.Dispatcher
	hub     *Hub
	painter *boardimage.Painter
	token   string
	r       *chi.Mux
}

// NewServer wires the HTTP surface. token guards the websocket when set;
// the read-only endpoints stay open.
func NewServer(svc *command.Service, hub *Hub, painter *boardimage.Painter, token string) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("command service is required")
	}
	if hub == nil {
		return nil, fmt.Errorf("session hub is required")
	}
	if painter == nil {
		painter = boardimage.NewPainter()
	}
	srv := &Server{
		svc:     svc,
		disp:    command.NewDispatcher(svc),
		hub:     hub,
		painter: painter,
		token:   strings.TrimSpace(token),
		r:       chi.NewRouter(),
	}
	srv.routes()
	return srv, nil
}

func (srv *Server) routes() {
	srv.r.Use(chimw.RequestID)
	srv.r.Use(chimw.RealIP)
	srv.r.Use(chimw.Recoverer)

	srv.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(restTimeout))
		r.Get("/healthz", srv.handleHealth)
		r.Get("/boards", srv.handleBoards)
		r.Get("/boards/{name}", srv.handleBoardState)
		r.Get("/boards/{name}/preview.png", srv.handleBoardPreview)
		r.Get("/matches", srv.handleMatches)
	})

	// The websocket outlives any per-request timeout.
	srv.r.Get("/ws", srv.handleWS)
}

// Router exposes the handler for the HTTP server and for tests.
func (srv *Server) Router() http.Handler { return srv.r }

func (srv *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "online": srv.hub.online()})
}

func (srv *Server) handleBoards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, srv.svc.BoardSummaries())
}

func (srv *Server) handleBoardState(w http.ResponseWriter, r *http.Request) {
	st, err := srv.svc.GameStateFor(chi.URLParam(r, "name"))
	if err != nil {
		srv.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (srv *Server) handleBoardPreview(w http.ResponseWriter, r *http.Request) {
	def, fen, err := srv.svc.PreviewInput(chi.URLParam(r, "name"))
	if err != nil {
		srv.writeErr(w, err)
		return
	}
	img, err := srv.painter.Render(r.Context(), def, fen)
	if err != nil {
		logging.L().Error("board preview failed",
			zap.String("board", def.Name), zap.Error(err))
		srv.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img)
}

func (srv *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	games, err := srv.svc.RecentMatches(r.Context(), limit)
	if err != nil {
		srv.writeErr(w, err)
		return
	}
	if games == nil {
		games = []courtdto.ArchivedGame{}
	}
	writeJSON(w, http.StatusOK, games)
}

func (srv *Server) writeErr(w http.ResponseWriter, err error) {
	code := command.CodeOf(err)
	writeJSON(w, statusOf(code), courtdto.DomainError{Code: code, Message: err.Error()})
}

func statusOf(code string) int {
	switch code {
	case courtdto.CodeNoSuchBoard, courtdto.CodeNoActiveGame:
		return http.StatusNotFound
	case courtdto.CodeBadRequest, courtdto.CodeIllegalPromotion, courtdto.CodeSelfChallenge:
		return http.StatusBadRequest
	case courtdto.CodeDuplicateBoard, courtdto.CodeBoardOccupied, courtdto.CodeBoardChallenged,
		courtdto.CodeGameOver, courtdto.CodeNotYourTurn, courtdto.CodePlayerNotInGame,
		courtdto.CodeChallengeExpired:
		return http.StatusConflict
	case courtdto.CodeNoMoveProvider:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.L().Debug("response encode failed", zap.Error(err))
	}
}
