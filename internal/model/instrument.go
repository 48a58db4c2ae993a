package model

// Instrument is one tradable equity in the screening universe.
type Instrument struct {
	ID   string // exchange code, e.g. "600519"
	Name string
}
