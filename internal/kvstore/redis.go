package kvstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/util"
)

const changeChannel = "storefront:kv-changes"

// Redis is a Store backed by a Redis instance. Writes publish the
// changed key on a pub/sub channel so every connected process (the
// "other tab") learns about mutations it did not make itself. The
// payload carries the writer's instance id and the listener drops its
// own messages, so a process is never notified of its own writes.
type Redis struct {
	rdb        *redis.Client
	prefix     string
	instanceID string
	logger     *zap.Logger

	mu     sync.Mutex
	subs   map[string]map[int]func(string)
	nextID int
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

// NewRedis connects to Redis and starts the change listener.
func NewRedis(addr, password string, db int, prefix string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	listenCtx, listenCancel := context.WithCancel(context.Background())
	r := &Redis{
		rdb:        rdb,
		prefix:     prefix,
		instanceID: uuid.New().String(),
		logger:     util.GetLogger(),
		subs:       make(map[string]map[int]func(string)),
		pubsub:     rdb.Subscribe(listenCtx, changeChannel),
		cancel:     listenCancel,
	}
	go r.listen(listenCtx)

	return r, nil
}

// Close stops the change listener and closes the connection.
func (r *Redis) Close() error {
	r.cancel()
	_ = r.pubsub.Close()
	return r.rdb.Close()
}

func (r *Redis) storageKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Get returns the value for key and whether it exists.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.storageKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s failed: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key and publishes the change.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.storageKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	r.publishChange(ctx, key)
	return nil
}

// Remove deletes key and publishes the change.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.storageKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s failed: %w", key, err)
	}
	r.publishChange(ctx, key)
	return nil
}

func (r *Redis) publishChange(ctx context.Context, key string) {
	payload := encodeChange(r.instanceID, key)
	if err := r.rdb.Publish(ctx, changeChannel, payload).Err(); err != nil {
		r.logger.Warn("Failed to publish kv change", zap.String("key", key), zap.Error(err))
	}
}

// Subscribe registers fn for changes to key made by other processes.
// This process's own writes are filtered out; local observers learn
// about those through the writer directly.
func (r *Redis) Subscribe(key string, fn func(string)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subs[key] == nil {
		r.subs[key] = make(map[int]func(string))
	}
	id := r.nextID
	r.nextID++
	r.subs[key][id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs[key], id)
	}
}

func (r *Redis) listen(ctx context.Context) {
	ch := r.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			origin, key := decodeChange(msg.Payload)
			if origin == r.instanceID {
				continue
			}

			r.mu.Lock()
			fns := make([]func(string), 0, len(r.subs[key]))
			for _, fn := range r.subs[key] {
				fns = append(fns, fn)
			}
			r.mu.Unlock()

			for _, fn := range fns {
				fn(key)
			}
		}
	}
}

// encodeChange frames a change message as "<instance id>:<key>". The
// id is a uuid and cannot contain the separator.
func encodeChange(origin, key string) string {
	return origin + ":" + key
}

// decodeChange splits a change message into origin and key. A payload
// without a separator yields an empty origin, which never matches a
// live instance.
func decodeChange(payload string) (origin, key string) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return "", payload
	}
	return parts[0], parts[1]
}
