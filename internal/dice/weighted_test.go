package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/shipyard-negotiation/internal/dice"
	mockdice "github.com/KirkDiggler/shipyard-negotiation/internal/dice/mock"
)

type item struct {
	name   string
	weight float64
}

func byWeight(i item) float64 { return i.weight }

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}

func TestSampleWithoutReplacement_ScriptedDraws(t *testing.T) {
	items := []item{{"a", 50}, {"b", 25}, {"c", 25}}

	tests := []struct {
		name   string
		floats []float64
		k      int
		want   []string
	}{
		{
			name:   "first draw lands in first bucket",
			floats: []float64{0.0},
			k:      1,
			want:   []string{"a"},
		},
		{
			name:   "draw at the very top picks last item",
			floats: []float64{0.99},
			k:      1,
			want:   []string{"c"},
		},
		{
			name:   "second draw excludes the first pick",
			floats: []float64{0.0, 0.6},
			k:      2,
			want:   []string{"a", "c"},
		},
		{
			name:   "k larger than pool returns everything once",
			floats: []float64{0.5, 0.0, 0.0},
			k:      10,
			want:   []string{"b", "a", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := dice.NewMockRoller()
			roller.SetFloats(tt.floats...)

			got := dice.SampleWithoutReplacement(roller, items, tt.k, byWeight)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSampleWithoutReplacement_SkipsNonPositiveWeights(t *testing.T) {
	items := []item{{"zero", 0}, {"negative", -5}, {"real", 1}}

	got := dice.SampleWithoutReplacement(dice.NewSeededRoller(7), items, 3, byWeight)
	assert.Equal(t, []string{"real"}, names(got))

	assert.Empty(t, dice.SampleWithoutReplacement(dice.NewSeededRoller(7), []item{{"none", 0}}, 1, byWeight))
}

func TestSampleWithoutReplacement_SeedIsDeterministic(t *testing.T) {
	items := []item{{"a", 10}, {"b", 20}, {"c", 30}, {"d", 40}}

	first := dice.SampleWithoutReplacement(dice.NewSeededRoller(42), items, 2, byWeight)
	second := dice.SampleWithoutReplacement(dice.NewSeededRoller(42), items, 2, byWeight)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first[0], first[1])
}

func TestSampleWithoutReplacement_FollowsWeights(t *testing.T) {
	items := []item{{"common", 90}, {"rare", 10}}
	roller := dice.NewSeededRoller(1234)

	common := 0
	const draws = 10000
	for i := 0; i < draws; i++ {
		if dice.SampleWithoutReplacement(roller, items, 1, byWeight)[0].name == "common" {
			common++
		}
	}

	assert.InDelta(t, 0.9, float64(common)/draws, 0.03)
}

func TestSampleWithoutReplacement_UsesRoller(t *testing.T) {
	ctrl := gomock.NewController(t)
	roller := mockdice.NewMockRoller(ctrl)

	roller.EXPECT().Float64().Return(0.75).Times(1)

	got := dice.SampleWithoutReplacement[item](roller, []item{{"a", 1}, {"b", 1}}, 1, byWeight)
	assert.Equal(t, []string{"b"}, names(got))
}

func TestMockRoller_ClampsScriptedInts(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls(5, 200, -1)

	assert.Equal(t, 5, roller.Intn(101))
	assert.Equal(t, 100, roller.Intn(101))
	assert.Equal(t, 0, roller.Intn(101))
	assert.Equal(t, 0, roller.Intn(101), "exhausted script returns zero")
}

func TestSeededRoller_Range(t *testing.T) {
	roller := dice.NewSeededRoller(99)
	for i := 0; i < 1000; i++ {
		v := roller.Intn(101)
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)

		f := roller.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}
