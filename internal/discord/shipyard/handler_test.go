package shipyard_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/core"
	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/shipyard"
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/negotiation"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding"
	mockonboarding "github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding/mock"
	"github.com/KirkDiggler/shipyard-negotiation/internal/testutils"
)

// buttons maps each button label in a response to its custom ID
func buttons(resp *discordgo.InteractionResponse) map[string]string {
	out := map[string]string{}
	for _, row := range resp.Data.Components {
		for _, c := range row.(discordgo.ActionsRow).Components {
			if b, ok := c.(discordgo.Button); ok {
				out[b.Label] = b.CustomID
			}
		}
	}
	return out
}

func subcommand(name string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Type: discordgo.ApplicationCommandOptionSubCommand,
		Name: name,
	}
}

type ShipyardHandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	service  *mockonboarding.MockService
	pipeline *core.Pipeline
	api      *core.RecordingAPI
	session  *firstlogin.Session
}

func (s *ShipyardHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mockonboarding.NewMockService(s.ctrl)
	s.pipeline = core.NewPipeline(nil)
	shipyard.NewHandler(&shipyard.HandlerConfig{Service: s.service}).Register(s.pipeline)
	s.api = &core.RecordingAPI{}
	s.session = testutils.CreateTestSession("s1", "u1")
	s.session.Pending = negotiation.OpeningPrompt(s.session.Offer)
}

func TestShipyardHandlerSuite(t *testing.T) {
	suite.Run(t, new(ShipyardHandlerSuite))
}

func (s *ShipyardHandlerSuite) execute(i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	s.Require().NoError(s.pipeline.Execute(context.Background(), s.api, i))
	resp := s.api.Last()
	s.Require().NotNil(resp)
	return resp
}

func (s *ShipyardHandlerSuite) status() *onboarding.Status {
	return &onboarding.Status{Session: s.session, Mood: negotiation.MoodNeutral, Remaining: 4}
}

func (s *ShipyardHandlerSuite) TestStart_ShowsOfferedShips() {
	s.service.EXPECT().StartOrResumeSession(gomock.Any(), "u1").Return(s.status(), nil)

	resp := s.execute(core.NewTestCommand("u1", shipyard.Domain))

	s.Equal(discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	s.Require().Len(resp.Data.Embeds, 1)
	s.Contains(resp.Data.Embeds[0].Description, s.session.Pending.Text)

	btns := buttons(resp)
	s.Equal("shipyard:claim:s1:ESCAPE_POD", btns["Escape Pod"])
	s.Equal("shipyard:claim:s1:DEFENDER", btns["Defender"])
	s.Equal("shipyard:abandon:s1", btns["Walk away"])
}

func (s *ShipyardHandlerSuite) TestStartSubcommand() {
	s.service.EXPECT().StartOrResumeSession(gomock.Any(), "u1").Return(s.status(), nil)

	resp := s.execute(core.NewTestCommand("u1", shipyard.Domain, subcommand("start")))
	s.Equal("shipyard:abandon:s1", buttons(resp)["Walk away"])
}

func (s *ShipyardHandlerSuite) TestStart_FinishedPlayerSeesSettledOutcome() {
	done := s.session.Clone()
	done.Phase = firstlogin.PhaseComplete
	done.Outcome = &firstlogin.NegotiationOutcome{
		Kind:        firstlogin.OutcomePartialSuccess,
		AwardedShip: firstlogin.ShipLightFreighter,
		Credits:     800,
	}
	s.service.EXPECT().StartOrResumeSession(gomock.Any(), "u1").
		Return(&onboarding.Status{Session: done, Resumed: true}, nil)

	resp := s.execute(core.NewTestCommand("u1", shipyard.Domain, subcommand("start")))

	s.Require().Len(resp.Data.Embeds, 1)
	s.Contains(resp.Data.Embeds[0].Description, "already settled")
	s.Empty(buttons(resp))
}

func (s *ShipyardHandlerSuite) TestStatus_NeedsFirstLogin() {
	s.service.EXPECT().GetPlayerStatus(gomock.Any(), "u1").
		Return(&onboarding.PlayerStatus{PlayerID: "u1", RequiresFirstLogin: true}, nil)

	resp := s.execute(core.NewTestCommand("u1", shipyard.Domain, subcommand("status")))

	s.Equal(discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	s.Contains(resp.Data.Content, "haven't claimed a starting ship")
	s.Contains(resp.Data.Content, "/shipyard start")
}

func (s *ShipyardHandlerSuite) TestStatus_InProgress() {
	s.service.EXPECT().GetPlayerStatus(gomock.Any(), "u1").
		Return(&onboarding.PlayerStatus{PlayerID: "u1", RequiresFirstLogin: true, Active: s.status()}, nil)

	resp := s.execute(core.NewTestCommand("u1", shipyard.Domain, subcommand("status")))

	s.Contains(resp.Data.Content, "still open with 4 exchanges")
}

func (s *ShipyardHandlerSuite) TestStatus_Granted() {
	s.service.EXPECT().GetPlayerStatus(gomock.Any(), "u1").Return(&onboarding.PlayerStatus{
		PlayerID: "u1",
		Grant: &firstlogin.PlayerGrant{
			SessionID: "s1",
			PlayerID:  "u1",
			Ship:      firstlogin.ShipDefender,
			Credits:   7000,
			Outcome:   firstlogin.OutcomeSuccess,
			Nickname:  "Vex",
		},
	}, nil)

	resp := s.execute(core.NewTestCommand("u1", shipyard.Domain, subcommand("status")))

	s.Equal(discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	s.Require().Len(resp.Data.Embeds, 1)
	embed := resp.Data.Embeds[0]
	s.Equal("First login complete", embed.Title)
	s.Equal("Captain Vex", embed.Footer.Text)

	var fields []string
	for _, f := range embed.Fields {
		fields = append(fields, f.Name+"="+f.Value)
	}
	s.Contains(fields, "Ship=Defender")
	s.Contains(fields, "Credits=7000")
}

func (s *ShipyardHandlerSuite) TestStatus_ServiceError() {
	s.service.EXPECT().GetPlayerStatus(gomock.Any(), "u1").Return(nil, dnderr.Internalf("ledger down"))

	resp := s.execute(core.NewTestCommand("u1", shipyard.Domain, subcommand("status")))

	s.NotContains(resp.Data.Content, "ledger down")
}

func (s *ShipyardHandlerSuite) TestClaimButton_OpensModal() {
	s.service.EXPECT().GetSessionStatus(gomock.Any(), "s1").Return(s.status(), nil)

	resp := s.execute(core.NewTestComponent("u1", "shipyard:claim:s1:DEFENDER"))

	s.Equal(discordgo.InteractionResponseModal, resp.Type)
	s.Equal("shipyard:claim:s1:DEFENDER", resp.Data.CustomID)
	s.Contains(resp.Data.Title, "Defender")
}

func (s *ShipyardHandlerSuite) TestClaimButton_OtherPlayer() {
	s.service.EXPECT().GetSessionStatus(gomock.Any(), "s1").Return(s.status(), nil)

	resp := s.execute(core.NewTestComponent("intruder", "shipyard:claim:s1:DEFENDER"))

	s.Equal(dnderr.UserMessage(dnderr.PermissionDeniedf("x")), resp.Data.Content)
	s.Equal(discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func (s *ShipyardHandlerSuite) TestClaimModal_ClaimsShip() {
	claimed := s.session.Clone()
	claimed.Phase = firstlogin.PhaseDialogue
	claimed.ClaimedShip = firstlogin.ShipDefender
	claimed.Exchanges = []firstlogin.DialogueExchange{
		testutils.CreateTestExchange(1, firstlogin.TopicShipClaim, "It is my ship.", testutils.CreateTestAnalysis(0.7)),
	}
	claimed.Pending = &firstlogin.PendingPrompt{Sequence: 2, Text: "Registry number?", Topic: firstlogin.TopicShipKnowledge}

	gomock.InOrder(
		s.service.EXPECT().GetSessionStatus(gomock.Any(), "s1").Return(s.status(), nil),
		s.service.EXPECT().ClaimShip(gomock.Any(), "s1", firstlogin.ShipDefender, "It is my ship.").
			Return(&onboarding.Status{Session: claimed, Mood: negotiation.MoodNeutral, Remaining: 3}, nil),
	)

	resp := s.execute(core.NewTestModalSubmit("u1", "shipyard:claim:s1:DEFENDER",
		map[string]string{"statement": "It is my ship."}))

	s.Require().Len(resp.Data.Embeds, 1)
	s.Contains(resp.Data.Embeds[0].Description, "Registry number?")
	s.Equal("shipyard:answer:s1:2", buttons(resp)["Answer"])
}

func (s *ShipyardHandlerSuite) TestRespondModal_SubmitsSequence() {
	s.service.EXPECT().GetSessionStatus(gomock.Any(), "s1").Return(s.status(), nil)
	s.service.EXPECT().SubmitResponse(gomock.Any(), "s1", 3, "Bay seven.").
		Return(nil, dnderr.SequenceConflictf("sequence 3 was submitted but 4 is open"))

	resp := s.execute(core.NewTestModalSubmit("u1", "shipyard:respond:s1:3",
		map[string]string{"response": "Bay seven."}))

	s.Equal(dnderr.UserMessage(dnderr.SequenceConflictf("x")), resp.Data.Content)
	s.NotContains(resp.Data.Content, "sequence 3")
}

func (s *ShipyardHandlerSuite) TestRespondModal_BadSequence() {
	resp := s.execute(core.NewTestModalSubmit("u1", "shipyard:respond:s1:zero",
		map[string]string{"response": "hello"}))

	s.Equal(dnderr.UserMessage(dnderr.InvalidArgument("x")), resp.Data.Content)
}

func (s *ShipyardHandlerSuite) TestAnswerButton_NoOpenQuestion() {
	st := s.status()
	st.Session.Pending = nil
	s.service.EXPECT().GetSessionStatus(gomock.Any(), "s1").Return(st, nil)

	resp := s.execute(core.NewTestComponent("u1", "shipyard:answer:s1:2"))
	s.Equal(dnderr.UserMessage(dnderr.SequenceConflictf("x")), resp.Data.Content)
}

func (s *ShipyardHandlerSuite) TestComplete_ShowsOutcome() {
	done := s.session.Clone()
	done.Phase = firstlogin.PhaseComplete
	done.Outcome = &firstlogin.NegotiationOutcome{
		Kind:        firstlogin.OutcomeSuccess,
		AwardedShip: firstlogin.ShipDefender,
		Credits:     7000,
		TradeBonus:  true,
	}

	s.service.EXPECT().GetSessionStatus(gomock.Any(), "s1").Return(s.status(), nil)
	s.service.EXPECT().CompleteSession(gomock.Any(), "s1").Return(&onboarding.Status{Session: done}, nil)

	resp := s.execute(core.NewTestComponent("u1", "shipyard:complete:s1"))

	s.Equal(discordgo.InteractionResponseUpdateMessage, resp.Type)
	s.Require().Len(resp.Data.Embeds, 1)
	embed := resp.Data.Embeds[0]
	s.Equal(negotiation.Verdict(done.Outcome), embed.Description)

	var fields []string
	for _, f := range embed.Fields {
		fields = append(fields, f.Name+"="+f.Value)
	}
	s.Contains(fields, "Credits=7000")
	s.Contains(fields, "Ship=Defender")
}

func (s *ShipyardHandlerSuite) TestAbandon() {
	s.service.EXPECT().GetSessionStatus(gomock.Any(), "s1").Return(s.status(), nil)
	s.service.EXPECT().AbandonSession(gomock.Any(), "s1").Return(nil)

	resp := s.execute(core.NewTestComponent("u1", "shipyard:abandon:s1"))
	s.Contains(resp.Data.Content, "/shipyard start")
}

func TestNewHandler_RequiresService(t *testing.T) {
	assert.Panics(t, func() { shipyard.NewHandler(&shipyard.HandlerConfig{}) })
}

// TestFullNegotiation plays a whole session through the pipeline against the real service
func TestFullNegotiation(t *testing.T) {
	provider := services.NewProvider(&services.ProviderConfig{DialogueLength: 3})
	pipeline := core.NewPipeline(nil)
	shipyard.NewHandler(&shipyard.HandlerConfig{Service: provider.OnboardingService}).Register(pipeline)

	const user = "discord-42"
	run := func(i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
		api := &core.RecordingAPI{}
		require.NoError(t, pipeline.Execute(context.Background(), api, i))
		require.Len(t, api.Responses, 1)
		return api.Last()
	}

	start := run(core.NewTestCommand(user, shipyard.Domain))
	var claimID string
	for label, id := range buttons(start) {
		if strings.HasPrefix(id, "shipyard:claim:") && label != "Escape Pod" {
			claimID = id
		}
	}
	require.NotEmpty(t, claimID)

	modal := run(core.NewTestComponent(user, claimID))
	require.Equal(t, discordgo.InteractionResponseModal, modal.Type)

	view := run(core.NewTestModalSubmit(user, modal.Data.CustomID,
		map[string]string{"statement": "Captain Ilse Marr. That ship is mine, registry KX-2231."}))

	for {
		answer, ok := buttons(view)["Answer"]
		if !ok {
			break
		}
		id, err := core.ParseCustomID(answer)
		require.NoError(t, err)
		seq, err := strconv.Atoi(id.Arg(0))
		require.NoError(t, err)

		form := run(core.NewTestComponent(user, answer))
		require.Equal(t, "shipyard:respond:"+id.Target+":"+strconv.Itoa(seq), form.Data.CustomID)

		view = run(core.NewTestModalSubmit(user, form.Data.CustomID,
			map[string]string{"response": "Docked at bay 7 at 0400 after a 12 hour burn from Ceres."}))
	}

	report, ok := buttons(view)["Report to the guard"]
	require.True(t, ok)

	done := run(core.NewTestComponent(user, report))
	require.Len(t, done.Data.Embeds, 1)
	assert.NotEmpty(t, done.Data.Embeds[0].Description)
	assert.Equal(t, "Captain Ilse Marr", done.Data.Embeds[0].Footer.Text)

	again := run(core.NewTestCommand(user, shipyard.Domain, subcommand("start")))
	require.Len(t, again.Data.Embeds, 1)
	assert.Contains(t, again.Data.Embeds[0].Description, "already settled")
	assert.Empty(t, buttons(again))

	status := run(core.NewTestCommand(user, shipyard.Domain, subcommand("status")))
	require.Len(t, status.Data.Embeds, 1)
	assert.Equal(t, "First login complete", status.Data.Embeds[0].Title)
}
