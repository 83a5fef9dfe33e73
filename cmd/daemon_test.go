package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRun(t *testing.T) {
	now := time.Date(2026, 8, 26, 8, 30, 0, 0, time.UTC)

	t.Run("later today", func(t *testing.T) {
		next := nextRun(now, 9, 0)
		assert.Equal(t, time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("already passed rolls to tomorrow", func(t *testing.T) {
		next := nextRun(now, 7, 0)
		assert.Equal(t, time.Date(2026, 8, 27, 7, 0, 0, 0, time.UTC), next)
	})

	t.Run("exact boundary rolls to tomorrow", func(t *testing.T) {
		next := nextRun(now, 8, 30)
		assert.Equal(t, time.Date(2026, 8, 27, 8, 30, 0, 0, time.UTC), next)
	})
}
