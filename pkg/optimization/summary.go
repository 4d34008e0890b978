// Package optimization provides shared data structures and search routines
// for optimization results.
package optimization

// Summary captures the result of a single break-even directive.
type Summary struct {
	Component          string   `json:"component"`
	Metric             string   `json:"metric"`
	Target             float64  `json:"target"`
	Original           float64  `json:"original"`
	Value              float64  `json:"value"`
	Headroom           float64  `json:"headroom"`
	Unit               string   `json:"unit"`
	OriginalUnitTariff float64  `json:"originalUnitTariff"`
	UnitTariff         float64  `json:"unitTariff"`
	Iterations         int      `json:"iterations"`
	Converged          bool     `json:"converged"`
	Notes              []string `json:"notes,omitempty"`
}
