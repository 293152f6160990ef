package shipyard

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/builders"
	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/core"
	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/middleware"
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding"
)

// Domain is the slash command name and the custom ID prefix
const Domain = "shipyard"

const (
	actionClaim    = "claim"
	actionAnswer   = "answer"
	actionRespond  = "respond"
	actionComplete = "complete"
	actionAbandon  = "abandon"

	subcommandStart  = "start"
	subcommandStatus = "status"

	inputStatement = "statement"
	inputResponse  = "response"

	// Discord caps text inputs at 4000; the service rejects more than this anyway
	maxInputLength = 2000
)

// Command is the slash command definition registered with Discord
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        Domain,
		Description: "Talk your way past the dock guard and claim your first ship",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        subcommandStart,
				Description: "Approach the checkpoint, or pick up where you left off",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        subcommandStatus,
				Description: "Check whether you still need to claim a starting ship",
			},
		},
	}
}

type HandlerConfig struct {
	Service onboarding.Service

	// RateLimit applies to every shipyard interaction when set
	RateLimit *middleware.RateLimitConfig
}

// Handler drives the first-login negotiation through Discord. The invoking
// Discord user ID is the player ID.
type Handler struct {
	service onboarding.Service
	router  *core.Router
}

func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg == nil || cfg.Service == nil {
		panic("shipyard handler requires an onboarding service")
	}

	h := &Handler{
		service: cfg.Service,
		router:  core.NewRouter(Domain),
	}
	if cfg.RateLimit != nil {
		h.router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	h.router.
		CommandFunc(h.handleCommand).
		ComponentFunc(actionClaim, h.handleClaimButton).
		ModalFunc(actionClaim, h.handleClaimModal).
		ComponentFunc(actionAnswer, h.handleAnswerButton).
		ModalFunc(actionRespond, h.handleRespondModal).
		ComponentFunc(actionComplete, h.handleComplete).
		ComponentFunc(actionAbandon, h.handleAbandon)
	return h
}

// Register adds the shipyard routes to the pipeline
func (h *Handler) Register(p *core.Pipeline) {
	p.Register(h.router.Build())
}

// handleCommand treats a bare /shipyard as start
func (h *Handler) handleCommand(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	if ctx.GetSubcommand() == subcommandStatus {
		return h.handleStatus(ctx)
	}

	st, err := h.service.StartOrResumeSession(ctx.Context, ctx.UserID)
	if err != nil {
		return nil, err
	}
	return core.Reply(h.render(st)), nil
}

func (h *Handler) handleStatus(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	ps, err := h.service.GetPlayerStatus(ctx.Context, ctx.UserID)
	if err != nil {
		return nil, err
	}
	return core.Reply(h.renderPlayerStatus(ps)), nil
}

// handleClaimButton opens the claim modal for the chosen ship
func (h *Handler) handleClaimButton(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	id, err := ctx.ParsedCustomID()
	if err != nil {
		return nil, dnderr.Wrap(err, "bad claim button")
	}
	ship := firstlogin.ShipType(id.Arg(0))
	if _, err := h.owned(ctx, id.Target); err != nil {
		return nil, err
	}

	return core.OpenModal(&core.Modal{
		CustomID: h.router.CustomIDs().Modal(actionClaim, id.Target, string(ship)),
		Title:    truncate("Claim the "+ship.DisplayName(), 45),
		Components: []discordgo.MessageComponent{
			builders.ParagraphInput(inputStatement, "Why is this ship yours?",
				"Tell the guard who you are and how you got here", maxInputLength),
		},
	}), nil
}

func (h *Handler) handleClaimModal(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	id, err := ctx.ParsedCustomID()
	if err != nil {
		return nil, dnderr.Wrap(err, "bad claim modal")
	}
	if _, err := h.owned(ctx, id.Target); err != nil {
		return nil, err
	}

	st, err := h.service.ClaimShip(ctx.Context, id.Target, firstlogin.ShipType(id.Arg(0)), ctx.ModalValue(inputStatement))
	if err != nil {
		return nil, err
	}
	return core.Reply(h.render(st)), nil
}

// handleAnswerButton opens a response modal bound to the open question's sequence
func (h *Handler) handleAnswerButton(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	id, err := ctx.ParsedCustomID()
	if err != nil {
		return nil, dnderr.Wrap(err, "bad answer button")
	}
	st, err := h.owned(ctx, id.Target)
	if err != nil {
		return nil, err
	}
	if st.Session.Pending == nil {
		return nil, dnderr.SequenceConflictf("session %s has no open question", id.Target)
	}

	return core.OpenModal(&core.Modal{
		CustomID: h.router.CustomIDs().Modal(actionRespond, id.Target, id.Arg(0)),
		Title:    "Answer the guard",
		Components: []discordgo.MessageComponent{
			builders.ParagraphInput(inputResponse, "Your answer",
				truncate(st.Session.Pending.Text, 100), maxInputLength),
		},
	}), nil
}

func (h *Handler) handleRespondModal(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	id, err := ctx.ParsedCustomID()
	if err != nil {
		return nil, dnderr.Wrap(err, "bad respond modal")
	}
	sequence, err := strconv.Atoi(id.Arg(0))
	if err != nil || sequence <= 0 {
		return nil, dnderr.InvalidArgumentf("bad sequence %q", id.Arg(0))
	}
	if _, err := h.owned(ctx, id.Target); err != nil {
		return nil, err
	}

	st, err := h.service.SubmitResponse(ctx.Context, id.Target, sequence, ctx.ModalValue(inputResponse))
	if err != nil {
		return nil, err
	}
	return core.Reply(h.render(st)), nil
}

func (h *Handler) handleComplete(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	id, err := ctx.ParsedCustomID()
	if err != nil {
		return nil, dnderr.Wrap(err, "bad complete button")
	}
	if _, err := h.owned(ctx, id.Target); err != nil {
		return nil, err
	}

	st, err := h.service.CompleteSession(ctx.Context, id.Target)
	if err != nil {
		return nil, err
	}
	return core.Reply(h.render(st).AsUpdate()), nil
}

func (h *Handler) handleAbandon(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	id, err := ctx.ParsedCustomID()
	if err != nil {
		return nil, dnderr.Wrap(err, "bad abandon button")
	}
	if _, err := h.owned(ctx, id.Target); err != nil {
		return nil, err
	}

	if err := h.service.AbandonSession(ctx.Context, id.Target); err != nil {
		return nil, err
	}
	return core.Reply(core.NewEphemeralResponse(
		"You step back from the checkpoint. Run `/shipyard start` when you're ready to try again.").AsUpdate()), nil
}

// owned loads the session and checks it belongs to the invoking user
func (h *Handler) owned(ctx *core.InteractionContext, sessionID string) (*onboarding.Status, error) {
	if sessionID == "" {
		return nil, dnderr.InvalidArgument("missing session id")
	}
	st, err := h.service.GetSessionStatus(ctx.Context, sessionID)
	if err != nil {
		return nil, err
	}
	if st.Session.PlayerID != ctx.UserID {
		return nil, dnderr.PermissionDeniedf("session %s belongs to another player", sessionID).
			WithMeta("session_id", sessionID)
	}
	return st, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
