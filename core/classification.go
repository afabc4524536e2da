package core

// Query is one free-text request scoped to a user. It lives for a single
// pipeline run.
type Query struct {
	Text   string
	UserID string
}

// Classification is the structured read of a query produced by the
// classification stage. It is immutable once produced; later stages only
// read it.
type Classification struct {
	Kind             VisualizationKind
	Complexity       Complexity
	RequiresMemory   bool
	RequiresExternal bool
	RequiresImage    bool
}
