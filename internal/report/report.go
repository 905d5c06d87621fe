// Package report renders a compiled Phf into a human-readable summary,
// tagged with a run id for log correlation.
package report

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"phfgen/internal/phf"
)

// Summary is a compile run's human-facing result.
type Summary struct {
	RunID       uuid.UUID
	KeyCount    int
	HashBits    uint32
	TableBytes  uint64
	Duration    time.Duration
}

// Build assembles a Summary for a completed compile.
func Build(p *phf.Phf, elapsed time.Duration) Summary {
	var tableBytes uint64
	tableBytes += uint64(len(p.KeyTable)) * 8 // rough: one 8-byte word per slot
	for _, t := range p.Tables.All() {
		tableBytes += uint64(len(t)) * 4
	}

	keyCount := 0
	for _, o := range p.Ordinals {
		if o >= 0 {
			keyCount++
		}
	}

	return Summary{
		RunID:      uuid.New(),
		KeyCount:   keyCount,
		HashBits:   p.HashBits,
		TableBytes: tableBytes,
		Duration:   elapsed,
	}
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"phf compile %s: %d keys, hash_bits=%d, tables=%s, took %s",
		s.RunID, s.KeyCount, s.HashBits, humanize.Bytes(s.TableBytes), s.Duration,
	)
}
