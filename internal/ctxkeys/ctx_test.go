package ctxkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserID(t *testing.T) {
	assert.Empty(t, UserID(context.Background()))

	ctx := WithUserID(context.Background(), "u1")
	assert.Equal(t, "u1", UserID(ctx))
}
