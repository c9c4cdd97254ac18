package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: 7, Username: "alice"})

	id, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint(7), id.UserID)
	assert.Equal(t, "alice", id.Username)
}

func TestFromContext_Anonymous(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(WithIdentity(context.Background(), Identity{}))
	assert.False(t, ok)
}
