package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/quietbay/chesscourt/internal/command"
	"github.com/quietbay/chesscourt/internal/domain"
	"github.com/quietbay/chesscourt/internal/logging"
	"github.com/quietbay/chesscourt/pkg/courtdto"
)

const (
	helloTimeout = 10 * time.Second
	// frameTimeout bounds one frame's work; cpu_move waits on the engine.
	frameTimeout = 60 * time.Second
)

func (srv *Server) authorized(r *http.Request) bool {
	if srv.token == "" {
		return true
	}
	if r.URL.Query().Get("token") == srv.token {
		return true
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") == srv.token
}

func (srv *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !srv.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		logging.L().Debug("websocket accept failed", zap.Error(err))
		return
	}
	srv.serveSession(r.Context(), conn)
}

func (srv *Server) serveSession(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close(websocket.StatusInternalError, "session closed")

	player, err := readHello(ctx, conn)
	if err != nil {
		_ = wsjson.Write(ctx, conn, courtdto.ServerFrame{
			Type:  courtdto.FrameError,
			Error: &courtdto.DomainError{Code: courtdto.CodeBadRequest, Message: err.Error()},
		})
		conn.Close(websocket.StatusPolicyViolation, "hello required")
		return
	}

	sess := &session{conn: conn, player: player}
	if old := srv.hub.add(sess); old != nil {
		old.conn.Close(websocket.StatusPolicyViolation, "session replaced")
	}
	defer srv.hub.remove(sess)

	logging.L().Info("player connected",
		zap.String("player", player.ID), zap.String("name", player.Name),
		zap.Int("online", srv.hub.online()))
	defer logging.L().Info("player disconnected", zap.String("player", player.ID))

	// Greet with the version so bridges can log what they talk to.
	srv.deliver(sess, frameOf(courtdto.FrameReply, srv.svc.Version()))

	for {
		var frame courtdto.ClientFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return
		}
		// Frames run off the read loop: a command may wait on the engine,
		// and the client must stay able to talk meanwhile.
		go srv.handleFrame(ctx, sess, frame)
	}
}

func readHello(ctx context.Context, conn *websocket.Conn) (domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, helloTimeout)
	defer cancel()
	var frame courtdto.ClientFrame
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		return domain.Player{}, err
	}
	if frame.Type != courtdto.FrameHello {
		return domain.Player{}, fmt.Errorf("expected hello frame, got %q", frame.Type)
	}
	id := strings.TrimSpace(frame.PlayerID)
	if id == "" {
		return domain.Player{}, fmt.Errorf("hello frame missing player_id")
	}
	name := strings.TrimSpace(frame.PlayerName)
	if name == "" {
		name = id
	}
	return domain.HumanPlayer(id, name), nil
}

func (srv *Server) handleFrame(ctx context.Context, sess *session, frame courtdto.ClientFrame) {
	ctx, cancel := context.WithTimeout(ctx, frameTimeout)
	defer cancel()

	switch frame.Type {
	case courtdto.FrameCommand:
		reply := srv.disp.Dispatch(ctx, sess.player, frame.Text)
		srv.deliver(sess, frameOf(courtdto.FrameReply, reply))

	case courtdto.FrameMove:
		reply, err := srv.svc.Move(ctx, sess.player, frame.Board, frame.Move)
		if err != nil {
			srv.deliver(sess, srv.errorFrame(err, frame.Board))
			return
		}
		srv.deliver(sess, frameOf(courtdto.FrameReply, reply))

	default:
		srv.deliver(sess, courtdto.ServerFrame{
			Type: courtdto.FrameError,
			Error: &courtdto.DomainError{
				Code:    courtdto.CodeBadRequest,
				Message: fmt.Sprintf("unsupported frame type %q", frame.Type),
			},
		})
	}
}

func (srv *Server) deliver(sess *session, frame courtdto.ServerFrame) {
	if err := sess.send(frame); err != nil {
		logging.L().Debug("reply delivery failed",
			zap.String("player", sess.player.ID), zap.Error(err))
	}
}

func (srv *Server) errorFrame(err error, board string) courtdto.ServerFrame {
	return courtdto.ServerFrame{
		Type:  courtdto.FrameError,
		Lines: srv.svc.FailureLines(err, board),
		Error: &courtdto.DomainError{Code: command.CodeOf(err), Message: err.Error()},
	}
}

func frameOf(kind string, r command.Reply) courtdto.ServerFrame {
	return courtdto.ServerFrame{Type: kind, Lines: r.Lines, Move: r.Move, State: r.State}
}
