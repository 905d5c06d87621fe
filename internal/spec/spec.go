// Package spec builds the normalized description of a key set that the
// rest of the compiler searches over.
package spec

// Key is a byte-string key. Individual bytes are widened to uint32 at
// the point of use by the IR tracer and selector evaluator; Key itself
// stays a plain byte slice since that is what callers naturally have on
// hand.
type Key []byte

// emptySentinel stands in for InterpretedKeys when every input key is
// empty, so length-based selectors always have at least one non-empty
// sample to search over.
var emptySentinel = Key("!")

// Spec is the normalized input to every search phase: the original key
// set plus the derived quantities (the non-empty subset, their length
// bounds, and the minimum hash-table width) that selector, mixer, and
// compressor search all consume.
type Spec struct {
	Keys                  []Key
	InterpretedKeys       []Key
	MinInterpretedKeyLen  int
	MaxInterpretedKeyLen  int
	MinHashBits           uint32
}

// New computes a Spec from a raw key set. keys must be non-empty;
// individual keys may be empty (the zero-length key is handled
// specially throughout the pipeline — it never participates in
// selector/mixer/compressor search, only in PHF assembly).
func New(keys []Key) *Spec {
	interpreted := make([]Key, 0, len(keys))
	for _, k := range keys {
		if len(k) > 0 {
			interpreted = append(interpreted, k)
		}
	}
	if len(interpreted) == 0 {
		interpreted = []Key{emptySentinel}
	}

	minLen, maxLen := len(interpreted[0]), len(interpreted[0])
	for _, k := range interpreted[1:] {
		if len(k) < minLen {
			minLen = len(k)
		}
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}

	minHashTableSize := len(interpreted) + 1
	var minHashBits uint32 = 1
	for (1 << minHashBits) < minHashTableSize {
		minHashBits++
	}

	return &Spec{
		Keys:                 keys,
		InterpretedKeys:      interpreted,
		MinInterpretedKeyLen: minLen,
		MaxInterpretedKeyLen: maxLen,
		MinHashBits:          minHashBits,
	}
}
