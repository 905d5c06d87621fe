package combinatorics

// PermGen enumerates the permutations of {0, ..., n-1} in lexicographic
// order, one call to Next at a time.
type PermGen struct {
	n     int
	perm  []int
	first bool
	done  bool
}

// NewPermGen prepares a generator for the n! permutations of
// {0, ..., n-1}.
func NewPermGen(n int) *PermGen {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return &PermGen{n: n, perm: perm, first: true}
}

// Next returns the next permutation and true, or nil and false once
// every permutation has been produced.
func (p *PermGen) Next() ([]int, bool) {
	if p.done {
		return nil, false
	}
	if p.first {
		p.first = false
		return p.perm, true
	}

	n := p.n
	tailLen := 1
	for tailLen < n && p.perm[n-tailLen-1] >= p.perm[n-tailLen] {
		tailLen++
	}
	if tailLen >= n {
		p.done = true
		return nil, false
	}

	pivot := n - tailLen - 1
	swapWith := n - 1
	for p.perm[swapWith] < p.perm[pivot] {
		swapWith--
	}
	p.perm[pivot], p.perm[swapWith] = p.perm[swapWith], p.perm[pivot]

	for l, r := pivot+1, n-1; l < r; l, r = l+1, r-1 {
		p.perm[l], p.perm[r] = p.perm[r], p.perm[l]
	}
	return p.perm, true
}
