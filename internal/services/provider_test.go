package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services"
)

func TestNewProvider_Defaults(t *testing.T) {
	p := services.NewProvider(&services.ProviderConfig{})
	ctx := context.Background()

	require.NotNil(t, p.OnboardingService)
	assert.Equal(t, 4, p.Store.DialogueLength())

	status, err := p.OnboardingService.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)

	offer := status.Session.Offer
	assert.Equal(t, firstlogin.ShipEscapePod, offer.Ships[0])
	assert.GreaterOrEqual(t, len(offer.Ships), 2)
	assert.LessOrEqual(t, len(offer.Ships), 3)
	assert.GreaterOrEqual(t, offer.RarityRoll, 0)
	assert.LessOrEqual(t, offer.RarityRoll, 100)
}
