package shipyard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/builders"
	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/core"
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/negotiation"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding"
)

var moodColor = map[negotiation.Mood]int{
	negotiation.MoodConvinced:      builders.ColorSuccess,
	negotiation.MoodNeutral:        builders.ColorInfo,
	negotiation.MoodSuspicious:     builders.ColorWarning,
	negotiation.MoodVerySuspicious: builders.ColorError,
}

var moodLabel = map[negotiation.Mood]string{
	negotiation.MoodConvinced:      "Convinced",
	negotiation.MoodNeutral:        "Neutral",
	negotiation.MoodSuspicious:     "Suspicious",
	negotiation.MoodVerySuspicious: "Very suspicious",
}

// render builds the ephemeral view of a session for its current phase.
// Analysis scores are never shown.
func (h *Handler) render(st *onboarding.Status) *core.Response {
	sess := st.Session
	switch sess.Phase {
	case firstlogin.PhaseComplete:
		return h.renderOutcome(sess, st.Resumed)
	case firstlogin.PhaseDialogue:
		return h.renderDialogue(st)
	default:
		return h.renderSelection(st)
	}
}

func (h *Handler) renderSelection(st *onboarding.Status) *core.Response {
	sess := st.Session
	embed := builders.NewEmbed().
		Title("Dock 7 checkpoint").
		Description(promptText(sess.Pending)).
		Color(builders.ColorPrimary).
		Field("Ships in the bay", shipList(sess.Offer.Ships), false).
		Footer(fmt.Sprintf("Attempt %d", sess.Attempt))
	if st.Resumed {
		embed.Field("Welcome back", "The guard remembers you.", false)
	}

	components := builders.NewComponentBuilder(h.router.CustomIDs())
	for _, ship := range sess.Offer.Ships {
		components.PrimaryButton(ship.DisplayName(), actionClaim, sess.ID, string(ship))
	}
	components.NewRow().DangerButton("Walk away", actionAbandon, sess.ID)

	return core.NewEmbedResponse(embed.Build()).
		WithComponents(components.Build()...).
		AsEphemeral()
}

func (h *Handler) renderDialogue(st *onboarding.Status) *core.Response {
	sess := st.Session
	embed := builders.NewEmbed().
		Title("Claiming the " + sess.ClaimedShip.DisplayName()).
		Color(moodColor[st.Mood]).
		Field("Guard", moodLabel[st.Mood], true).
		Field("Questions left", strconv.Itoa(st.Remaining), true)

	if n := len(sess.Exchanges); n > 0 {
		last := sess.Exchanges[n-1]
		embed.Field("You said", last.Response, false)
	}

	components := builders.NewComponentBuilder(h.router.CustomIDs())
	switch {
	case sess.Pending != nil:
		embed.Description(promptText(sess.Pending))
		components.PrimaryButton("Answer", actionAnswer, sess.ID, strconv.Itoa(sess.Pending.Sequence))
	case st.CanComplete():
		embed.Description("The guard taps the datapad and waits for your final word.")
		components.SuccessButton("Report to the guard", actionComplete, sess.ID)
	}
	components.DangerButton("Walk away", actionAbandon, sess.ID)

	return core.NewEmbedResponse(embed.Build()).
		WithComponents(components.Build()...).
		AsEphemeral()
}

// renderOutcome shows the verdict. A resumed session means the player came
// back after finishing, so the view says nothing more is on offer.
func (h *Handler) renderOutcome(sess *firstlogin.Session, resumed bool) *core.Response {
	out := sess.Outcome
	if out == nil {
		return core.NewEphemeralResponse("This negotiation is closed.")
	}

	verdict := out.GuardVerdict
	if verdict == "" {
		verdict = negotiation.Verdict(out)
	}
	if resumed {
		verdict = "You already settled this at the checkpoint.\n\n" + verdict
	}

	color := builders.ColorError
	switch out.Kind {
	case firstlogin.OutcomeSuccess:
		color = builders.ColorSuccess
	case firstlogin.OutcomePartialSuccess:
		color = builders.ColorWarning
	}

	var perks []string
	if out.TradeBonus {
		perks = append(perks, "Trade office contact")
	}
	if out.ReputationPenalty {
		perks = append(perks, "Flagged in the guard's report")
	}

	embed := builders.NewEmbed().
		Title(outcomeTitle(out.Kind)).
		Description(verdict).
		Color(color).
		Field("Ship", out.AwardedShip.DisplayName(), true).
		Field("Credits", strconv.Itoa(out.Credits), true).
		Field("Notes", strings.Join(perks, "\n"), false)
	if sess.PlayerName != "" {
		embed.Footer("Captain " + sess.PlayerName)
	}
	if sess.CompletedAt != nil {
		embed.Timestamp(*sess.CompletedAt)
	}

	return core.NewEmbedResponse(embed.Build()).AsEphemeral()
}

func (h *Handler) renderPlayerStatus(ps *onboarding.PlayerStatus) *core.Response {
	switch {
	case ps.Active != nil:
		return core.NewEphemeralResponse(fmt.Sprintf(
			"Your negotiation is still open with %d exchanges to go. Run `/shipyard start` to continue.",
			ps.Active.Remaining))
	case ps.RequiresFirstLogin:
		return core.NewEphemeralResponse(
			"You haven't claimed a starting ship yet. Run `/shipyard start` to approach the checkpoint.")
	}

	g := ps.Grant
	embed := builders.NewEmbed().
		Title("First login complete").
		Description(outcomeTitle(g.Outcome)).
		Color(builders.ColorInfo).
		Field("Ship", g.Ship.DisplayName(), true).
		Field("Credits", strconv.Itoa(g.Credits), true).
		Timestamp(g.GrantedAt)
	if g.Nickname != "" {
		embed.Footer("Captain " + g.Nickname)
	}
	return core.NewEmbedResponse(embed.Build()).AsEphemeral()
}

func outcomeTitle(kind firstlogin.OutcomeKind) string {
	switch kind {
	case firstlogin.OutcomeSuccess:
		return "Cleared for departure"
	case firstlogin.OutcomePartialSuccess:
		return "Waved through, barely"
	default:
		return "Story didn't hold"
	}
}

func promptText(p *firstlogin.PendingPrompt) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("**Guard:** %s", p.Text)
}

func shipList(ships []firstlogin.ShipType) string {
	names := make([]string, len(ships))
	for i, s := range ships {
		names[i] = "• " + s.DisplayName()
	}
	return strings.Join(names, "\n")
}
