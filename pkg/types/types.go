package types

// ProjectState is one entry of the coordinator's project map.
type ProjectState struct {
	// example: App
	Project string `json:"project" example:"App"`
	// Last transition seen for the project: Before or After.
	// example: After
	Order string `json:"order" example:"After"`
}

// CategoryStatus summarizes the status slots recorded for one action category.
type CategoryStatus struct {
	// example: Pre
	Category string `json:"category" example:"Pre"`
	// Aggregate outcome: failed iff any slot is fail.
	// example: success
	Outcome string `json:"outcome" example:"success"`
	// Per-item slots in configuration order (none, success, fail, deferred).
	Slots []string `json:"slots"`
}

// Variable is one user variable definition.
type Variable struct {
	// example: ver
	Name string `json:"name" example:"ver"`
	// Empty for the global scope.
	Project string `json:"project,omitempty"`
	// Identity string as listed by definitions (name or name:project).
	// example: ver:App
	Ident string `json:"ident" example:"ver:App"`
	// Evaluated value, or the raw text when still unevaluated.
	Value       string `json:"value"`
	Unevaluated bool   `json:"unevaluated,omitempty"`
}
