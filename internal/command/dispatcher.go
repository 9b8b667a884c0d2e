package command

import (
	"context"
	"math/rand"
	"strconv"
	"strings"

	"github.com/quietbay/chesscourt/internal/domain"
)

// Dispatcher parses the chat dialect and routes to the service. Moves are not
// part of the dialect; transports deliver them as dedicated frames.
type Dispatcher struct {
	svc *Service
}

func NewDispatcher(svc *Service) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// Dispatch executes one command line for the caller. It never returns an
// error: failures become reply lines the caller can print as-is.
func (d *Dispatcher) Dispatch(ctx context.Context, caller domain.Player, line string) Reply {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return d.svc.usage("usage.unknown")
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "version":
		return d.svc.Version()

	case "reload":
		return d.svc.Reload(ctx)

	case "boards":
		return d.svc.ListBoards()

	case "create_board":
		if len(args) != 5 {
			return d.svc.usage("usage.create_board")
		}
		anchor, err := parseAnchor(args[2], args[3], args[4])
		if err != nil {
			return d.svc.usage("usage.create_board")
		}
		return d.reply(args[0])(d.svc.CreateBoard(ctx, args[0], args[1], anchor))

	case "delete_board":
		if len(args) != 1 {
			return d.svc.usage("usage.delete_board")
		}
		return d.reply(args[0])(d.svc.DeleteBoard(ctx, args[0]))

	case "set_checkerboard":
		if len(args) < 1 || len(args) > 4 {
			return d.svc.usage("usage.set_checkerboard")
		}
		black, white, border := pick(args, 1), pick(args, 2), pick(args, 3)
		return d.reply(args[0])(d.svc.SetCheckerboard(ctx, args[0], black, white, border))

	case "challenge":
		return d.dispatchChallenge(ctx, caller, args)

	case "accept":
		return d.reply("")(d.svc.Accept(ctx, caller))

	case "next_promotion":
		if len(args) != 2 {
			return d.svc.usage("usage.next_promotion")
		}
		return d.reply(args[0])(d.svc.NextPromotion(caller, args[0], args[1]))

	case "cpu_move":
		if len(args) != 1 {
			return d.svc.usage("usage.cpu_move")
		}
		return d.reply(args[0])(d.svc.CPUReply(ctx, args[0]))

	case "reset":
		if len(args) != 1 {
			return d.svc.usage("usage.reset")
		}
		return d.reply(args[0])(d.svc.Reset(ctx, caller, args[0]))

	case "forfeit":
		if len(args) != 1 {
			return d.svc.usage("usage.forfeit")
		}
		return d.reply(args[0])(d.svc.Forfeit(ctx, caller, args[0]))
	}
	return d.svc.usage("usage.unknown")
}

func (d *Dispatcher) dispatchChallenge(ctx context.Context, caller domain.Player, args []string) Reply {
	if len(args) < 2 {
		return d.svc.usage("usage.challenge")
	}
	switch strings.ToLower(args[0]) {
	case "cpu":
		// challenge cpu <board> [color]
		if len(args) > 3 {
			return d.svc.usage("usage.challenge")
		}
		color, ok := resolveColor(pick(args, 2))
		if !ok {
			return d.svc.usage("usage.challenge")
		}
		return d.reply(args[1])(d.svc.ChallengeCPU(ctx, caller, args[1], color))

	case "player":
		// challenge player <board> <player> [color]
		if len(args) < 3 || len(args) > 4 {
			return d.svc.usage("usage.challenge")
		}
		color, ok := resolveColor(pick(args, 3))
		if !ok {
			return d.svc.usage("usage.challenge")
		}
		return d.reply(args[1])(d.svc.ChallengePlayer(ctx, caller, args[1], args[2], color))
	}
	return d.svc.usage("usage.challenge")
}

// reply curries the board name in so failure phrasing can mention it.
func (d *Dispatcher) reply(board string) func(Reply, error) Reply {
	return func(r Reply, err error) Reply {
		if err != nil {
			return Reply{Lines: d.svc.FailureLines(err, board)}
		}
		return r
	}
}

func pick(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func parseAnchor(x, y, z string) (domain.Vec3, error) {
	xi, err := strconv.Atoi(x)
	if err != nil {
		return domain.Vec3{}, err
	}
	yi, err := strconv.Atoi(y)
	if err != nil {
		return domain.Vec3{}, err
	}
	zi, err := strconv.Atoi(z)
	if err != nil {
		return domain.Vec3{}, err
	}
	return domain.Vec3{X: xi, Y: yi, Z: zi}, nil
}

// resolveColor parses a color argument; empty or "random" rolls the dice.
func resolveColor(arg string) (domain.Color, bool) {
	if arg == "" || strings.EqualFold(arg, "random") {
		if rand.Intn(2) == 0 {
			return domain.White, true
		}
		return domain.Black, true
	}
	return domain.ParseColor(arg)
}
