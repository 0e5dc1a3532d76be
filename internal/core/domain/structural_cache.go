package domain

// Verdict is the memoized outcome of a structural comparison.
type Verdict uint8

const (
	// VerdictUnknown means no comparison has been recorded.
	VerdictUnknown Verdict = iota
	// VerdictSame means the classes have the same externally visible shape.
	VerdictSame
	// VerdictDifferent means the shapes differ.
	VerdictDifferent
)

// StructuralResult is one memo entry: the verdict for a local class against a
// specific current class.
type StructuralResult struct {
	Verdict Verdict
	Against *CompiledClass
}

// StructuralCache memoizes structural comparisons for one validation batch, keyed by
// the locally bound class.
type StructuralCache struct {
	entries map[*CompiledClass]StructuralResult
}

// NewStructuralCache returns an empty cache.
func NewStructuralCache() *StructuralCache {
	return &StructuralCache{entries: make(map[*CompiledClass]StructuralResult)}
}

// Lookup returns the verdict recorded for local against current, or VerdictUnknown.
func (c *StructuralCache) Lookup(local, current *CompiledClass) Verdict {
	r, ok := c.entries[local]
	if !ok || r.Against != current {
		return VerdictUnknown
	}
	return r.Verdict
}

// Same reports whether local and current share a structural signature, computing and
// recording the answer on first use. Failure to compute a signature counts as different.
func (c *StructuralCache) Same(local, current *CompiledClass) bool {
	switch c.Lookup(local, current) {
	case VerdictSame:
		return true
	case VerdictDifferent:
		return false
	case VerdictUnknown:
	}

	verdict := VerdictDifferent
	ls, lerr := local.SignatureHash()
	cs, cerr := current.SignatureHash()
	if lerr == nil && cerr == nil && ls == cs {
		verdict = VerdictSame
	}
	c.entries[local] = StructuralResult{Verdict: verdict, Against: current}
	return verdict == VerdictSame
}

// Len returns the number of recorded verdicts.
func (c *StructuralCache) Len() int {
	return len(c.entries)
}
