package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Fake_AdvanceAndSet(t *testing.T) {
	t.Parallel()

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)
	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	later := start.AddDate(1, 0, 0)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func Test_Real_IsUTC(t *testing.T) {
	t.Parallel()
	assert.Equal(t, time.UTC, Real{}.Now().Location())
}
