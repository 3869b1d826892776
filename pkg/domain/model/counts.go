package model

// Counts maps a category to a non-negative count. Unseen categories read as 0.
type Counts map[Category]int

// Get returns the count of c, 0 if absent
func (c Counts) Get(cat Category) int {
	return c[cat]
}

// Add increments the count of cat by n
func (c Counts) Add(cat Category, n int) {
	c[cat] += n
}

// Sum returns the sum of all counts
func (c Counts) Sum() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Clone returns an independent copy
func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Normalized is the result of normalizing one scanner report
type Normalized struct {
	Counts Counts
	Total  int
	// Declared is the total stated by the report itself, if any. It is a
	// cross-check only and never a source of per-category counts.
	Declared *int
	Warnings []string
}

// NewNormalized returns an empty result
func NewNormalized() *Normalized {
	return &Normalized{Counts: Counts{}}
}

// Warn records a diagnostic note
func (n *Normalized) Warn(msg string) {
	n.Warnings = append(n.Warnings, msg)
}

// Reconciles reports whether the declared total, when present, equals the
// sum of the category counts
func (n *Normalized) Reconciles() bool {
	if n.Declared == nil {
		return true
	}
	return *n.Declared == n.Counts.Sum()
}
