// Package command executes the chess command surface. It drives the court,
// persists what must outlive the process, and pushes frames at the players a
// mutation concerns.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quietbay/chesscourt/internal/archive"
	"github.com/quietbay/chesscourt/internal/court"
	"github.com/quietbay/chesscourt/internal/domain"
	"github.com/quietbay/chesscourt/internal/livestate"
	"github.com/quietbay/chesscourt/internal/logging"
	"github.com/quietbay/chesscourt/internal/messages"
	"github.com/quietbay/chesscourt/internal/render"
	"github.com/quietbay/chesscourt/pkg/courtdto"
)

// ErrBadMove rejects move text that is not coordinate notation.
var ErrBadMove = errors.New("malformed move text")

const (
	cpuReplyTimeout  = 30 * time.Second
	recentMatchLimit = 20
)

// Roster resolves online player names to identities. The gateway keeps it
// current from its connected sessions.
type Roster interface {
	Lookup(name string) (domain.Player, bool)
}

// Presenter pushes one frame at one connected player. Implementations must be
// safe for concurrent use and must not block on slow clients.
type Presenter interface {
	Tell(playerID string, frame courtdto.ServerFrame)
}

// BoardsSaver persists the full board list after a registry mutation.
type BoardsSaver interface {
	SaveDefinitions(defs []domain.BoardDefinition) error
}

// Deps carries the service's collaborators. Court and Catalog are required;
// everything else degrades to a no-op when absent.
type Deps struct {
	Court     *court.Manager
	Catalog   *messages.Catalog
	Archive   archive.Store
	Live      *livestate.Store
	Renderer  render.Renderer
	Boards    BoardsSaver
	Roster    Roster
	Presenter Presenter
	Version   string
	// CPUDelay postpones the automatic CPU reply so the human's own move
	// lands on clients first.
	CPUDelay time.Duration
}

// Service owns every player-visible operation. One instance serves all
// transports concurrently; the court does the locking.
type Service struct {
	d Deps
}

func NewService(d Deps) (*Service, error) {
	if d.Court == nil {
		return nil, fmt.Errorf("court manager is required")
	}
	if d.Catalog == nil {
		return nil, fmt.Errorf("message catalog is required")
	}
	if d.Renderer == nil {
		d.Renderer = render.Nop{}
	}
	if strings.TrimSpace(d.Version) == "" {
		d.Version = "dev"
	}
	return &Service{d: d}, nil
}

// Reply is what an operation hands back to the transport that carried it.
type Reply struct {
	Lines []string
	State *courtdto.GameState
	Move  *courtdto.MoveReport
}

func (s *Service) msg(key string, data any) string {
	return s.d.Catalog.Get(key, data)
}

func (s *Service) usage(key string) Reply {
	return Reply{Lines: []string{s.msg(key, nil)}}
}

func (s *Service) tell(p domain.Player, frame courtdto.ServerFrame) {
	if s.d.Presenter == nil || !p.IsHuman() {
		return
	}
	s.d.Presenter.Tell(p.ID, frame)
}

// tellSeats pushes the frame at both seats, skipping exceptID: that player's
// reply already carries the same content.
func (s *Service) tellSeats(st court.GameState, exceptID string, frame courtdto.ServerFrame) {
	if st.White.ID != exceptID {
		s.tell(st.White, frame)
	}
	if st.Black.ID != exceptID {
		s.tell(st.Black, frame)
	}
}

func (s *Service) Version() Reply {
	return Reply{Lines: []string{s.msg("version.line", map[string]any{"Version": s.d.Version})}}
}

func (s *Service) ListBoards() Reply {
	boards := s.d.Court.Boards()
	if len(boards) == 0 {
		return Reply{Lines: []string{s.msg("board.list_empty", nil)}}
	}
	lines := []string{s.msg("board.list_header", map[string]any{"Count": len(boards)})}
	for _, b := range boards {
		def := b.Definition()
		lines = append(lines, s.msg("board.list_entry", map[string]any{
			"Name":   def.Name,
			"World":  def.World,
			"X":      def.Anchor.X,
			"Y":      def.Anchor.Y,
			"Z":      def.Anchor.Z,
			"InGame": b.HasGame(),
		}))
	}
	return Reply{Lines: lines}
}

func (s *Service) CreateBoard(ctx context.Context, name, world string, anchor domain.Vec3) (Reply, error) {
	b, err := s.d.Court.CreateBoard(name, world, anchor)
	if err != nil {
		return Reply{}, err
	}
	s.persistBoards()
	m := b.Materials()
	if err := b.ApplyCheckerboard(ctx, m.Black, m.White, m.Border); err != nil {
		logging.L().Warn("initial checkerboard render failed",
			zap.String("board", name), zap.Error(err))
	}
	return Reply{Lines: []string{s.msg("board.created", map[string]any{"Name": name})}}, nil
}

func (s *Service) DeleteBoard(ctx context.Context, name string) (Reply, error) {
	aborted, err := s.d.Court.DeleteBoard(name)
	if err != nil {
		return Reply{}, err
	}
	s.persistBoards()
	s.dropSnapshot(ctx, name)
	if aborted != nil {
		st := aborted.State()
		s.tellSeats(st, "", courtdto.ServerFrame{
			Type:  courtdto.FrameEvent,
			Lines: []string{s.msg("game.aborted", map[string]any{"Board": name})},
			State: toDTOState(st),
		})
	}
	return Reply{Lines: []string{s.msg("board.deleted", map[string]any{"Name": name})}}, nil
}

// SetCheckerboard restyles a board. Omitted materials keep their current
// value.
func (s *Service) SetCheckerboard(ctx context.Context, name, black, white, border string) (Reply, error) {
	b, err := s.d.Court.Board(name)
	if err != nil {
		return Reply{}, err
	}
	cur := b.Materials()
	if black == "" {
		black = cur.Black
	}
	if white == "" {
		white = cur.White
	}
	if border == "" {
		border = cur.Border
	}
	if err := b.ApplyCheckerboard(ctx, black, white, border); err != nil {
		return Reply{}, err
	}
	s.persistBoards()
	return Reply{Lines: []string{s.msg("checkerboard.applied", map[string]any{"Name": name})}}, nil
}

// Reload re-reads the board definitions and prunes snapshots that no longer
// have a live game behind them.
func (s *Service) Reload(ctx context.Context) Reply {
	if err := s.d.Court.Reload(); err != nil {
		return Reply{Lines: []string{s.msg("reload.failed", map[string]any{"Reason": err.Error()})}}
	}
	s.reconcileSnapshots(ctx)
	return Reply{Lines: []string{s.msg("reload.ok", nil)}}
}

// ChallengeCPU seats the caller against the machine at once: the CPU accepts
// unconditionally, so no pending challenge is created.
func (s *Service) ChallengeCPU(ctx context.Context, caller domain.Player, boardName string, color domain.Color) (Reply, error) {
	b, err := s.d.Court.Board(boardName)
	if err != nil {
		return Reply{}, err
	}
	for _, ch := range s.d.Court.Challenges().Pending() {
		if ch.Board == b {
			return Reply{}, court.ErrBoardChallenged
		}
	}
	white, black := caller, domain.CPUPlayer()
	if color == domain.Black {
		white, black = domain.CPUPlayer(), caller
	}
	g, err := b.StartGame(white, black)
	if err != nil {
		return Reply{}, err
	}
	return s.announceStart(ctx, b, g, caller.ID), nil
}

func (s *Service) ChallengePlayer(ctx context.Context, caller domain.Player, boardName, inviteeName string, color domain.Color) (Reply, error) {
	invitee, ok := s.lookup(inviteeName)
	if !ok {
		return Reply{Lines: []string{s.msg("player.unknown", map[string]any{"Name": inviteeName})}}, nil
	}
	ch, err := s.d.Court.CreateChallenge(boardName, caller, invitee, color)
	if err != nil {
		return Reply{}, err
	}
	ttl := int(court.ChallengeTTL / time.Second)
	s.tell(invitee, courtdto.ServerFrame{
		Type: courtdto.FrameEvent,
		Lines: []string{s.msg("challenge.received", map[string]any{
			"Challenger": caller.DisplayName(),
			"Board":      boardName,
			"Color":      string(ch.ChallengerColor),
			"TTLSeconds": ttl,
		})},
	})
	return Reply{Lines: []string{s.msg("challenge.sent", map[string]any{
		"Invitee":    invitee.DisplayName(),
		"TTLSeconds": ttl,
	})}}, nil
}

func (s *Service) lookup(name string) (domain.Player, bool) {
	if s.d.Roster == nil {
		return domain.Player{}, false
	}
	return s.d.Roster.Lookup(name)
}

// Accept consumes the caller's pending challenge and starts the game.
func (s *Service) Accept(ctx context.Context, caller domain.Player) (Reply, error) {
	g, _, err := s.d.Court.AcceptChallenge(caller.ID)
	if err != nil {
		return Reply{}, err
	}
	return s.announceStart(ctx, g.Board(), g, caller.ID), nil
}

// Move plays one human move given in coordinate notation. A promotion suffix
// ("e7e8q") updates the player's standing promotion choice first, so it also
// sticks for later promotions.
func (s *Service) Move(ctx context.Context, caller domain.Player, boardName, moveText string) (Reply, error) {
	b, err := s.d.Court.Board(boardName)
	if err != nil {
		return Reply{}, err
	}
	g, err := b.Game()
	if err != nil {
		return Reply{}, err
	}
	from, to, promo, err := parseMove(moveText)
	if err != nil {
		return Reply{}, err
	}
	if promo != "" {
		if err := g.NextPromotion(caller.ID, promo); err != nil {
			return Reply{}, err
		}
	}
	res, err := g.Move(caller.ID, from, to)
	if err != nil {
		return Reply{}, err
	}
	if !res.Legal {
		return Reply{
			Lines: []string{s.msg("game.illegal", nil)},
			Move:  toDTOMove(res, nil),
		}, nil
	}
	return s.settleMove(ctx, b, g, res, caller.DisplayName(), caller.ID), nil
}

// parseMove splits coordinate notation into from, to and an optional
// promotion piece. Spaces are tolerated ("e2 e4").
func parseMove(text string) (from, to string, promo domain.PieceType, err error) {
	cleaned := strings.ToLower(strings.Join(strings.Fields(text), ""))
	if len(cleaned) != 4 && len(cleaned) != 5 {
		return "", "", "", fmt.Errorf("%w: %q", ErrBadMove, text)
	}
	if len(cleaned) == 5 {
		p, ok := domain.ParsePieceType(cleaned[4:])
		if !ok {
			return "", "", "", fmt.Errorf("%w: %q", ErrBadMove, text)
		}
		promo = p
	}
	return cleaned[:2], cleaned[2:4], promo, nil
}

// NextPromotion records the caller's standing promotion choice.
func (s *Service) NextPromotion(caller domain.Player, boardName, pieceName string) (Reply, error) {
	b, err := s.d.Court.Board(boardName)
	if err != nil {
		return Reply{}, err
	}
	g, err := b.Game()
	if err != nil {
		return Reply{}, err
	}
	piece, ok := domain.ParsePieceType(pieceName)
	if !ok {
		return Reply{Lines: []string{s.msg("game.promotion_invalid", map[string]any{"Piece": pieceName})}}, nil
	}
	if err := g.NextPromotion(caller.ID, piece); err != nil {
		if errors.Is(err, court.ErrIllegalPromotion) {
			return Reply{Lines: []string{s.msg("game.promotion_invalid", map[string]any{"Piece": pieceName})}}, nil
		}
		return Reply{}, err
	}
	return Reply{Lines: []string{s.msg("game.promotion_set", map[string]any{
		"Board": boardName,
		"Piece": string(piece),
	})}}, nil
}

// CPUReply plays one CPU move when it is the machine's turn. Anyone may poll
// it; off-turn polls reply nothing and change nothing.
func (s *Service) CPUReply(ctx context.Context, boardName string) (Reply, error) {
	b, err := s.d.Court.Board(boardName)
	if err != nil {
		return Reply{}, err
	}
	g, err := b.Game()
	if err != nil {
		return Reply{}, err
	}
	res, err := g.CPUMove(ctx)
	if err != nil {
		return Reply{}, err
	}
	if !res.Legal {
		return Reply{}, nil
	}
	mover := g.PlayerFor(res.Mover)
	return s.settleMove(ctx, b, g, res, mover.DisplayName(), ""), nil
}

// Reset restarts the caller's game in place: same seats, fresh position.
func (s *Service) Reset(ctx context.Context, caller domain.Player, boardName string) (Reply, error) {
	b, err := s.d.Court.Board(boardName)
	if err != nil {
		return Reply{}, err
	}
	g, err := b.Game()
	if err != nil {
		return Reply{}, err
	}
	if !g.HasPlayer(caller.ID) {
		return Reply{}, court.ErrPlayerNotInGame
	}
	if err := g.Reset(); err != nil {
		return Reply{}, err
	}
	st := g.State()
	s.saveSnapshot(ctx, st)
	s.renderPosition(ctx, b, st.FEN)
	line := s.msg("game.reset", map[string]any{"Board": boardName})
	dto := toDTOState(st)
	s.tellSeats(st, caller.ID, courtdto.ServerFrame{
		Type:  courtdto.FrameEvent,
		Lines: []string{line},
		State: dto,
	})
	if st.White.IsCPU() {
		s.scheduleCPUReply(boardName)
	}
	return Reply{Lines: []string{line}, State: dto}, nil
}

// Forfeit resigns the caller's seat; the other side wins.
func (s *Service) Forfeit(ctx context.Context, caller domain.Player, boardName string) (Reply, error) {
	b, err := s.d.Court.Board(boardName)
	if err != nil {
		return Reply{}, err
	}
	g, err := b.Game()
	if err != nil {
		return Reply{}, err
	}
	color, err := g.Color(caller.ID)
	if err != nil {
		return Reply{}, err
	}
	if err := g.Forfeit(color); err != nil {
		return Reply{}, err
	}
	st := g.State()
	s.dropSnapshot(ctx, boardName)
	s.archiveMatch(ctx, st)
	lines := s.outcomeLines(st)
	dto := toDTOState(st)
	s.tellSeats(st, caller.ID, courtdto.ServerFrame{
		Type:  courtdto.FrameEvent,
		Lines: lines,
		State: dto,
	})
	return Reply{Lines: lines, State: dto}, nil
}

// announceStart runs the new-game side effects and builds the starter's
// reply.
func (s *Service) announceStart(ctx context.Context, b *court.Board, g *court.Game, exceptID string) Reply {
	st := g.State()
	s.saveSnapshot(ctx, st)
	s.renderPosition(ctx, b, st.FEN)

	line := s.msg("game.started", map[string]any{
		"Board": st.Board,
		"White": st.White.DisplayName(),
		"Black": st.Black.DisplayName(),
	})
	dto := toDTOState(st)
	s.tellSeats(st, exceptID, courtdto.ServerFrame{
		Type:  courtdto.FrameEvent,
		Lines: []string{line},
		State: dto,
	})
	if st.White.IsCPU() {
		s.scheduleCPUReply(st.Board)
	}
	return Reply{Lines: []string{line}, State: dto}
}

// settleMove runs the after-move side effects shared by human and CPU moves
// and builds the reply.
func (s *Service) settleMove(ctx context.Context, b *court.Board, g *court.Game, res court.MoveResult, moverName, exceptID string) Reply {
	st := g.State()
	dto := toDTOState(st)

	lines := []string{s.msg("game.moved", map[string]any{"Player": moverName, "SAN": res.SAN})}
	if res.Check && !res.Outcome.Terminal() {
		lines = append(lines, s.msg("game.check", nil))
	}
	lines = append(lines, s.outcomeLines(st)...)

	s.renderPosition(ctx, b, st.FEN)
	if st.Outcome.Terminal() {
		s.dropSnapshot(ctx, st.Board)
		s.archiveMatch(ctx, st)
	} else {
		s.saveSnapshot(ctx, st)
	}

	report := toDTOMove(res, dto)
	s.tellSeats(st, exceptID, courtdto.ServerFrame{
		Type:  courtdto.FrameEvent,
		Lines: lines,
		Move:  report,
		State: dto,
	})

	if !st.Outcome.Terminal() && g.PlayerFor(st.Turn).IsCPU() {
		s.scheduleCPUReply(st.Board)
	}
	return Reply{Lines: lines, State: dto, Move: report}
}

func (s *Service) outcomeLines(st court.GameState) []string {
	o := st.Outcome
	if !o.Terminal() {
		return nil
	}
	switch o.Method {
	case domain.MethodCheckmate:
		return []string{s.msg("game.checkmate", map[string]any{
			"Winner": seatName(st, o.Winner),
			"Board":  st.Board,
		})}
	case domain.MethodStalemate:
		return []string{s.msg("game.stalemate", map[string]any{"Board": st.Board})}
	case domain.MethodDraw:
		return []string{s.msg("game.draw", map[string]any{"Board": st.Board})}
	case domain.MethodForfeit:
		return []string{s.msg("game.forfeit", map[string]any{
			"Loser":  seatName(st, o.Winner.Other()),
			"Winner": seatName(st, o.Winner),
			"Board":  st.Board,
		})}
	}
	return []string{s.msg("game.aborted", map[string]any{"Board": st.Board})}
}

func seatName(st court.GameState, c domain.Color) string {
	if c == domain.Black {
		return st.Black.DisplayName()
	}
	return st.White.DisplayName()
}

// scheduleCPUReply fires the machine's answer without blocking the caller.
func (s *Service) scheduleCPUReply(board string) {
	go func() {
		if s.d.CPUDelay > 0 {
			time.Sleep(s.d.CPUDelay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), cpuReplyTimeout)
		defer cancel()
		if _, err := s.CPUReply(ctx, board); err != nil {
			logging.L().Warn("cpu auto reply failed",
				zap.String("board", board), zap.Error(err))
		}
	}()
}

func (s *Service) renderPosition(ctx context.Context, b *court.Board, fen string) {
	if err := s.d.Renderer.Position(ctx, b.Definition(), fen); err != nil {
		logging.L().Warn("position render failed",
			zap.String("board", b.Name()), zap.Error(err))
	}
}

func (s *Service) persistBoards() {
	if s.d.Boards == nil {
		return
	}
	if err := s.d.Boards.SaveDefinitions(s.d.Court.Definitions()); err != nil {
		logging.L().Error("boards file save failed", zap.Error(err))
	}
}

func (s *Service) saveSnapshot(ctx context.Context, st court.GameState) {
	if s.d.Live == nil {
		return
	}
	snap := livestate.Snapshot{
		GameID:     st.ID,
		Board:      st.Board,
		White:      st.White,
		Black:      st.Black,
		MovesUCI:   st.MovesUCI,
		Promotions: st.Promotions,
		StartedAt:  st.StartedAt,
		SavedAt:    time.Now(),
	}
	if err := s.d.Live.Save(ctx, snap); err != nil {
		logging.L().Warn("live snapshot save failed",
			zap.String("board", st.Board), zap.Error(err))
	}
}

func (s *Service) dropSnapshot(ctx context.Context, board string) {
	if s.d.Live == nil {
		return
	}
	if err := s.d.Live.Delete(ctx, board); err != nil {
		logging.L().Warn("live snapshot delete failed",
			zap.String("board", board), zap.Error(err))
	}
}

// reconcileSnapshots deletes snapshots whose board no longer hosts a live
// game, typically after a reload dropped or replaced boards.
func (s *Service) reconcileSnapshots(ctx context.Context) {
	if s.d.Live == nil {
		return
	}
	snaps, err := s.d.Live.LoadAll(ctx)
	if err != nil {
		logging.L().Warn("live snapshot scan failed", zap.Error(err))
		return
	}
	for _, snap := range snaps {
		b, err := s.d.Court.Board(snap.Board)
		if err == nil && b.HasGame() {
			continue
		}
		s.dropSnapshot(ctx, snap.Board)
	}
}

func (s *Service) archiveMatch(ctx context.Context, st court.GameState) {
	if s.d.Archive == nil {
		return
	}
	result, method, ok := archive.ResultOf(st.Outcome)
	if !ok {
		return
	}
	rec := archive.Record{
		GameID:    st.ID,
		Board:     st.Board,
		WhiteID:   st.White.ID,
		WhiteName: st.White.DisplayName(),
		BlackID:   st.Black.ID,
		BlackName: st.Black.DisplayName(),
		Result:    result,
		Method:    method,
		MovesUCI:  st.MovesUCI,
		MovesSAN:  st.MovesSAN,
		StartedAt: st.StartedAt,
		EndedAt:   time.Now(),
	}
	rec.PGN = archive.BuildPGN(rec)
	if err := s.d.Archive.Save(ctx, rec); err != nil {
		logging.L().Error("match archive save failed",
			zap.String("game_id", st.ID), zap.Error(err))
	}
}

// RestoreAll reseats snapshotted games onto their boards at startup.
// Snapshots that no longer fit (missing board, occupied, replay finished) are
// dropped.
func (s *Service) RestoreAll(ctx context.Context) error {
	if s.d.Live == nil {
		return nil
	}
	snaps, err := s.d.Live.LoadAll(ctx)
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		_, err := s.d.Court.RestoreGame(court.Restore{
			Board:      snap.Board,
			White:      snap.White,
			Black:      snap.Black,
			MovesUCI:   snap.MovesUCI,
			Promotions: snap.Promotions,
			GameID:     snap.GameID,
			StartedAt:  snap.StartedAt,
		})
		if err != nil {
			logging.L().Warn("live snapshot restore failed",
				zap.String("board", snap.Board), zap.Error(err))
			s.dropSnapshot(ctx, snap.Board)
			continue
		}
		logging.L().Info("live game restored",
			zap.String("board", snap.Board), zap.Int("moves", len(snap.MovesUCI)))
	}
	return nil
}

// BoardSummaries is the transport view of the registry.
func (s *Service) BoardSummaries() []courtdto.BoardSummary {
	challenged := make(map[string]bool)
	for _, ch := range s.d.Court.Challenges().Pending() {
		challenged[ch.Board.Name()] = true
	}
	boards := s.d.Court.Boards()
	out := make([]courtdto.BoardSummary, 0, len(boards))
	for _, b := range boards {
		out = append(out, toDTOBoard(b, challenged[b.Name()]))
	}
	return out
}

// GameStateFor exposes a board's live game.
func (s *Service) GameStateFor(boardName string) (*courtdto.GameState, error) {
	b, err := s.d.Court.Board(boardName)
	if err != nil {
		return nil, err
	}
	g, err := b.Game()
	if err != nil {
		return nil, err
	}
	return toDTOState(g.State()), nil
}

// PreviewInput returns what a board preview needs: the definition and the
// live FEN, empty when the board is idle.
func (s *Service) PreviewInput(boardName string) (domain.BoardDefinition, string, error) {
	b, err := s.d.Court.Board(boardName)
	if err != nil {
		return domain.BoardDefinition{}, "", err
	}
	fen := ""
	if g, gerr := b.Game(); gerr == nil {
		fen = g.FEN()
	}
	return b.Definition(), fen, nil
}

// RecentMatches lists the latest archived games, newest first.
func (s *Service) RecentMatches(ctx context.Context, limit int) ([]courtdto.ArchivedGame, error) {
	if s.d.Archive == nil {
		return nil, nil
	}
	if limit <= 0 || limit > recentMatchLimit {
		limit = recentMatchLimit
	}
	recs, err := s.d.Archive.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]courtdto.ArchivedGame, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDTOArchived(rec))
	}
	return out, nil
}

// FailureLines phrases an orchestration error for chat.
func (s *Service) FailureLines(err error, board string) []string {
	data := map[string]any{"Name": board, "Board": board}
	switch {
	case errors.Is(err, ErrBadMove):
		return []string{s.msg("game.bad_move", nil)}
	case errors.Is(err, court.ErrDuplicateBoard):
		return []string{s.msg("board.exists", data)}
	case errors.Is(err, court.ErrNoSuchBoard):
		return []string{s.msg("board.missing", data)}
	case errors.Is(err, court.ErrNoActiveGame), errors.Is(err, court.ErrGameTerminal):
		return []string{s.msg("game.no_game", data)}
	case errors.Is(err, court.ErrBoardOccupied):
		return []string{s.msg("board.occupied", data)}
	case errors.Is(err, court.ErrBoardChallenged):
		return []string{s.msg("challenge.board_busy", data)}
	case errors.Is(err, court.ErrSelfChallenge):
		return []string{s.msg("challenge.self", nil)}
	case errors.Is(err, court.ErrChallengeExpired):
		return []string{s.msg("challenge.expired", nil)}
	case errors.Is(err, court.ErrNotYourTurn):
		return []string{s.msg("game.not_your_turn", nil)}
	case errors.Is(err, court.ErrPlayerNotInGame):
		return []string{s.msg("game.not_seated", nil)}
	case errors.Is(err, court.ErrIllegalPromotion):
		return []string{s.msg("game.promotion_invalid", map[string]any{"Piece": "That"})}
	case errors.Is(err, court.ErrNoMoveProvider):
		return []string{s.msg("game.engine_unavailable", nil)}
	}
	return []string{err.Error()}
}
