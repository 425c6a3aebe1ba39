package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FlowTTL bounds how long an authorization attempt may sit between the
// redirect out and the callback. Abandoned flows expire.
const FlowTTL = 10 * time.Minute

// FlowState is the transient record for one in-flight connection
// attempt: the CSRF state token and the PKCE code verifier.
type FlowState struct {
	State     string    `json:"state"`
	Verifier  string    `json:"verifier"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FlowStore keeps at most one FlowState per (session, platform) key.
// Save overwrites any previous attempt for the same key; Take removes
// the record so a flow can be completed exactly once.
type FlowStore interface {
	Save(ctx context.Context, sessionID, platform string, fs FlowState) error
	Take(ctx context.Context, sessionID, platform string) (*FlowState, error)
}

type redisFlowStore struct {
	rdb *redis.Client
}

func NewRedisFlowStore(rdb *redis.Client) FlowStore {
	return &redisFlowStore{rdb: rdb}
}

func flowKey(sessionID, platform string) string {
	return fmt.Sprintf("oauth_flow:%s:%s", sessionID, platform)
}

func (s *redisFlowStore) Save(ctx context.Context, sessionID, platform string, fs FlowState) error {
	data, err := json.Marshal(fs)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, flowKey(sessionID, platform), data, FlowTTL).Err()
}

func (s *redisFlowStore) Take(ctx context.Context, sessionID, platform string) (*FlowState, error) {
	data, err := s.rdb.GetDel(ctx, flowKey(sessionID, platform)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var fs FlowState
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, err
	}
	return &fs, nil
}

type memoryFlowStore struct {
	mu    sync.Mutex
	flows map[string]FlowState
}

// NewMemoryFlowStore is a process-local FlowStore for tests and
// single-node development.
func NewMemoryFlowStore() FlowStore {
	return &memoryFlowStore{flows: make(map[string]FlowState)}
}

func (s *memoryFlowStore) Save(ctx context.Context, sessionID, platform string, fs FlowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[flowKey(sessionID, platform)] = fs
	return nil
}

func (s *memoryFlowStore) Take(ctx context.Context, sessionID, platform string) (*FlowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := flowKey(sessionID, platform)
	fs, ok := s.flows[key]
	if !ok {
		return nil, nil
	}
	delete(s.flows, key)

	if time.Since(fs.CreatedAt) > FlowTTL {
		return nil, nil
	}
	return &fs, nil
}
