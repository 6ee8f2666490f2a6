package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "cadastro/pkg/domain"
)

func TestAccessors(t *testing.T) {
	ctx := context.Background()

	t.Run("zero values when unset", func(t *testing.T) {
		assert.True(t, UserID(ctx).IsNil())
		assert.True(t, SessionID(ctx).IsNil())
		assert.Empty(t, RequestID(ctx))
		assert.Empty(t, ClientIP(ctx))
		assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
	})

	t.Run("round trips injected values", func(t *testing.T) {
		userID := id.NewUserID()
		sessionID := id.NewSessionID()
		fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		c := WithUserID(ctx, userID)
		c = WithSessionID(c, sessionID)
		c = WithRequestID(c, "req-1")
		c = WithTime(c, fixed)
		c = WithClientMetadata(c, "10.0.0.1", "cadastro-cli")

		assert.Equal(t, userID, UserID(c))
		assert.Equal(t, sessionID, SessionID(c))
		assert.Equal(t, "req-1", RequestID(c))
		assert.Equal(t, fixed, Now(c))
		assert.Equal(t, "10.0.0.1", ClientIP(c))
		assert.Equal(t, "cadastro-cli", UserAgent(c))
	})
}
