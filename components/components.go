// Package components defines ECS components for agents living on a resource grid.
package components

// Position is an agent's cell coordinate in world space.
type Position struct {
	X, Y int
}

// Forager draws resource from the cell it occupies.
type Forager struct {
	IntakeRate float64 // Amount requested per step
	Intake     float64 // Amount actually taken last step
	Total      float64 // Lifetime intake
}
