package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/store/repository"
	"payja-lending/internal/service/interfaces"

	"go.uber.org/zap"
)

// cachedReply is the answer that closed a session.
type cachedReply struct {
	Reply string             `json:"reply"`
	Step  consts.SessionStep `json:"step"`
}

// replyCache recognises a gateway re-delivering the input that closed a
// session, such as a loan confirmation, and answers it with the first reply.
// Open sessions carry their last turn on the row instead (see redelivered).
type replyCache struct {
	store interfaces.RedisStoreOperations
	ttl   time.Duration
}

func newReplyCache(store interfaces.RedisStoreOperations, ttl time.Duration) *replyCache {
	return &replyCache{store: store, ttl: ttl}
}

func (c *replyCache) enabled() bool {
	return c != nil && c.store != nil && c.ttl > 0
}

func replyKey(sessionID, input string) string {
	sum := sha256.Sum256([]byte(input))
	return consts.ReplyCacheKeyPrefix + sessionID + ":" + hex.EncodeToString(sum[:8])
}

func (c *replyCache) lookup(ctx context.Context, sessionID, input string, sess *models.Session) (*Response, bool) {
	if !c.enabled() {
		return nil, false
	}
	data, err := c.store.Get(ctx, replyKey(sessionID, input))
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			logger.CtxWarn(ctx, "Reply cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var cached cachedReply
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	if sess.Active || cached.Step != sess.Step {
		return nil, false
	}
	return &Response{Reply: cached.Reply, ShouldClose: true}, true
}

func (c *replyCache) remember(ctx context.Context, sessionID, input string, sess *models.Session, resp Response) {
	if !c.enabled() || !resp.ShouldClose {
		return
	}
	data, err := json.Marshal(cachedReply{Reply: resp.Reply, Step: sess.Step})
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, replyKey(sessionID, input), data, c.ttl); err != nil {
		logger.CtxWarn(ctx, "Reply cache write failed", zap.Error(err))
	}
}
