// Package snowflakes generates Discord-style snowflake IDs that are strictly
// increasing for a single Generator, and reads timestamps back out of them.
package snowflakes

import (
	"strconv"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/jamesprial/discordmock/clock"
)

// maxSequence is the largest value the 12-bit increment field can carry.
const maxSequence = 1<<12 - 1

// Generator hands out monotonic snowflakes stamped with the injected clock.
// It is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	clock  clock.Clock
	lastMS int64
	seq    uint64
}

// New returns a Generator reading time from c. A nil clock uses clock.Real.
func New(c clock.Clock) *Generator {
	if c == nil {
		c = clock.Real{}
	}
	return &Generator{clock: c}
}

// Next returns a new snowflake string. IDs never repeat and never decrease,
// even when the clock stands still or moves backwards.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.clock.Now().UnixMilli()
	if ms <= g.lastMS {
		ms = g.lastMS
		g.seq++
		if g.seq > maxSequence {
			ms++
			g.seq = 0
		}
	} else {
		g.seq = 0
	}
	g.lastMS = ms

	id := snowflake.New(time.UnixMilli(ms)) | snowflake.ID(g.seq)
	return id.String()
}

// Time returns the creation time encoded in id.
func Time(id string) (time.Time, error) {
	sf, err := snowflake.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return sf.Time(), nil
}

// Compare orders two snowflakes numerically. Unparseable IDs sort first.
func Compare(a, b string) int {
	x, errA := strconv.ParseUint(a, 10, 64)
	y, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
