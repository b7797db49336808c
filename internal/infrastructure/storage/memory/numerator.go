package memory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Numerator hands out per-prefix sequential numbers without a database.
// The sequence resets yearly, matching the postgres-backed numerator's
// default format (PREFIX-YEAR-XXXXX).
type Numerator struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func NewNumerator() *Numerator {
	return &Numerator{seqs: make(map[string]int64)}
}

func (n *Numerator) Next(ctx context.Context, prefix string) (string, error) {
	year := time.Now().Year()
	key := fmt.Sprintf("%s-%d", prefix, year)

	n.mu.Lock()
	n.seqs[key]++
	num := n.seqs[key]
	n.mu.Unlock()

	return fmt.Sprintf("%s-%d-%05d", prefix, year, num), nil
}
