package dice

import "sync"

// MockRoller implements Roller for testing with predetermined results.
// Once a script runs out the roller returns 0.
type MockRoller struct {
	mu         sync.Mutex
	ints       []int
	intIndex   int
	floats     []float64
	floatIndex int
}

// NewMockRoller creates a new mock roller
func NewMockRoller() *MockRoller {
	return &MockRoller{}
}

// SetRolls sets the values returned by Intn
func (m *MockRoller) SetRolls(rolls ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ints = rolls
	m.intIndex = 0
}

// SetFloats sets the values returned by Float64
func (m *MockRoller) SetFloats(floats ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floats = floats
	m.floatIndex = 0
}

// Intn implements Roller.Intn. Scripted values are clamped into [0, n).
func (m *MockRoller) Intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.intIndex >= len(m.ints) {
		return 0
	}
	v := m.ints[m.intIndex]
	m.intIndex++

	switch {
	case v < 0:
		return 0
	case v >= n:
		return n - 1
	}
	return v
}

// Float64 implements Roller.Float64
func (m *MockRoller) Float64() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.floatIndex >= len(m.floats) {
		return 0
	}
	v := m.floats[m.floatIndex]
	m.floatIndex++
	return v
}
