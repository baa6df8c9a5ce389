package core

// Ordering describes one sort criterion applied to a repository query.
// Repositories decide how to translate Field into their native sort; ties are
// left in stored document order.
type Ordering struct {
	Field     string
	Ascending bool
}
