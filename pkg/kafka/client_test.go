package kafka

import (
	"context"
	"testing"

	"smart-tutor-go/pkg/database"

	"github.com/stretchr/testify/assert"
)

func TestAttemptTrackingWithoutRedisDoesNotPanic(t *testing.T) {
	prev := database.RDB
	database.RDB = nil
	t.Cleanup(func() { database.RDB = prev })

	attempts, ok := attemptsAfterFailure(context.Background(), "doc-1")
	assert.False(t, ok, "no counter means the offset must stay uncommitted")
	assert.Zero(t, attempts)

	assert.NotPanics(t, func() { clearAttempts(context.Background(), "doc-1") })
}
