package combinatorics

import "testing"

func collectChoices(n, k int) [][]int {
	gen := NewChooseGen(n, k)
	var out [][]int
	for {
		c, ok := gen.Next()
		if !ok {
			break
		}
		cp := make([]int, len(c))
		copy(cp, c)
		out = append(out, cp)
	}
	return out
}

func choose(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	result := 1
	for i := 0; i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return result
}

func TestChooseGenCounts(t *testing.T) {
	for n := 0; n <= 6; n++ {
		for k := 0; k <= n; k++ {
			got := collectChoices(n, k)
			want := choose(n, k)
			if len(got) != want {
				t.Errorf("ChooseGen(%d,%d): got %d results, want %d", n, k, len(got), want)
			}
		}
	}
}

func TestChooseGenDistinctAndOrdered(t *testing.T) {
	choices := collectChoices(5, 3)
	seen := make(map[string]bool)
	for i, c := range choices {
		if len(c) != 3 {
			t.Fatalf("choice %d has wrong width: %v", i, c)
		}
		for j := 1; j < len(c); j++ {
			if c[j] <= c[j-1] {
				t.Fatalf("choice %v is not strictly increasing", c)
			}
		}
		key := fmtInts(c)
		if seen[key] {
			t.Fatalf("duplicate choice %v", c)
		}
		seen[key] = true
		if i > 0 {
			prev := choices[i-1]
			if !lexLess(prev, c) {
				t.Fatalf("choices out of lexicographic order: %v before %v", prev, c)
			}
		}
	}
}

func TestChooseGenZeroK(t *testing.T) {
	got := collectChoices(3, 0)
	if len(got) != 1 || len(got[0]) != 0 {
		t.Fatalf("ChooseGen(3,0) = %v, want one empty subset", got)
	}
}

func collectPerms(n int) [][]int {
	gen := NewPermGen(n)
	var out [][]int
	for {
		p, ok := gen.Next()
		if !ok {
			break
		}
		cp := make([]int, len(p))
		copy(cp, p)
		out = append(out, cp)
	}
	return out
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

func TestPermGenCounts(t *testing.T) {
	for n := 0; n <= 6; n++ {
		got := collectPerms(n)
		if len(got) != factorial(n) {
			t.Errorf("PermGen(%d): got %d permutations, want %d", n, len(got), factorial(n))
		}
	}
}

func TestPermGenDistinctAndOrdered(t *testing.T) {
	perms := collectPerms(5)
	seen := make(map[string]bool)
	for i, p := range perms {
		key := fmtInts(p)
		if seen[key] {
			t.Fatalf("duplicate permutation %v", p)
		}
		seen[key] = true
		if i > 0 && !lexLess(perms[i-1], p) {
			t.Fatalf("permutations out of lexicographic order: %v before %v", perms[i-1], p)
		}
	}
}

func fmtInts(xs []int) string {
	s := ""
	for _, x := range xs {
		s += string(rune('a' + x))
	}
	return s
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
