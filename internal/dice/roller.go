package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

// Roller provides an interface for random draws
// This allows us to inject seeded or scripted implementations for testing
type Roller interface {
	// Intn returns a uniform int in [0, n). n must be positive.
	Intn(n int) int

	// Float64 returns a uniform float in [0, 1)
	Float64() float64
}
