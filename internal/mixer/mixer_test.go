package mixer

import "testing"

func distinct(xs []uint32) bool {
	seen := make(map[uint32]bool, len(xs))
	for _, x := range xs {
		if seen[x] {
			return false
		}
		seen[x] = true
	}
	return true
}

func TestSearchSingleColumnAlreadyDistinct(t *testing.T) {
	cols := [][]uint32{{1, 2, 3, 4}}
	mx, err := Search(cols)
	if err != nil {
		t.Fatal(err)
	}
	if !distinct(mx.Mixes) {
		t.Fatalf("mixes should stay distinct: %v", mx.Mixes)
	}
	if len(mx.Shifts) != 1 || mx.Shifts[0] != 0 {
		t.Fatalf("single column should use shift 0, got %v", mx.Shifts)
	}
}

func TestSearchCombinesTwoColumns(t *testing.T) {
	// Column 0 alone has duplicates; column 1 disambiguates once shifted.
	cols := [][]uint32{
		{0, 0, 1, 1},
		{0, 1, 0, 1},
	}
	mx, err := Search(cols)
	if err != nil {
		t.Fatal(err)
	}
	if !distinct(mx.Mixes) {
		t.Fatalf("mixes should be pairwise distinct: %v", mx.Mixes)
	}
	if mx.MixBits > 32 {
		t.Fatalf("mix bits out of range: %d", mx.MixBits)
	}
}

func TestSearchMixBitsIsMinimalAndDistinguishing(t *testing.T) {
	cols := [][]uint32{{0, 1, 2, 3, 4, 5, 6, 7}}
	mx, err := Search(cols)
	if err != nil {
		t.Fatal(err)
	}
	mask := uint32(1)<<mx.MixBits - 1
	seen := make(map[uint32]bool)
	for _, m := range mx.Mixes {
		mm := m & mask
		if seen[mm] {
			t.Fatalf("masked mixes collide at width %d", mx.MixBits)
		}
		seen[mm] = true
	}
	if mx.MixBits > 0 {
		smallerMask := uint32(1)<<(mx.MixBits-1) - 1
		smallerSeen := make(map[uint32]bool)
		allDistinct := true
		for _, m := range mx.Mixes {
			mm := m & smallerMask
			if smallerSeen[mm] {
				allDistinct = false
				break
			}
			smallerSeen[mm] = true
		}
		if allDistinct {
			t.Fatalf("mix_bits=%d is not minimal: width %d already distinguishes", mx.MixBits, mx.MixBits-1)
		}
	}
}
