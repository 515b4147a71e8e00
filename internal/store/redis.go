package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

// RedisStore keeps contacts in Redis. Each contact is a JSON blob under
// "<namespace>:contact:<id>", and the tag index is one set of contact ids
// per tag value under "<namespace>:tag:<tag>". Record writes and index
// maintenance run in a single transactional pipeline, so a contact is never
// visible under the wrong tag.
type RedisStore struct {
	rdb       *goredis.Client
	namespace string
	log       *logger.Logger
}

// NewRedisStore creates a store backed by the Redis server at addr. The
// connection is established lazily; call Initialize to verify reachability.
func NewRedisStore(addr string, namespace string, baseLog *logger.Logger) *RedisStore {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	return &RedisStore{
		rdb:       rdb,
		namespace: namespace,
		log:       baseLog.With("store", "redis", "namespace", namespace),
	}
}

// Initialize pings the server and fails if it does not answer.
func (s *RedisStore) Initialize(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying client connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) contactKey(id string) string {
	return s.namespace + ":contact:" + id
}

func (s *RedisStore) tagKey(tag string) string {
	return s.namespace + ":tag:" + tag
}

func (s *RedisStore) Get(ctx context.Context, id string) (*model.Contact, error) {
	raw, err := s.rdb.Get(ctx, s.contactKey(id)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var contact model.Contact
	if err := json.Unmarshal(raw, &contact); err != nil {
		return nil, fmt.Errorf("unmarshal contact %s: %w", id, err)
	}
	return &contact, nil
}

func (s *RedisStore) Put(ctx context.Context, contact model.Contact) error {
	raw, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("marshal contact %s: %w", contact.Id, err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.contactKey(contact.Id), raw, 0)
	// The contact may have carried a different tag before this overwrite, so
	// its id is removed from every other tag set.
	for _, tag := range model.Tags {
		if tag == contact.Tag {
			pipe.SAdd(ctx, s.tagKey(tag), contact.Id)
		} else {
			pipe.SRem(ctx, s.tagKey(tag), contact.Id)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteReturning(ctx context.Context, id string) (*model.Contact, error) {
	raw, err := s.rdb.GetDel(ctx, s.contactKey(id)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel: %w", err)
	}
	var contact model.Contact
	if err := json.Unmarshal(raw, &contact); err != nil {
		return nil, fmt.Errorf("unmarshal contact %s: %w", id, err)
	}
	if err := s.rdb.SRem(ctx, s.tagKey(contact.Tag), id).Err(); err != nil {
		return nil, fmt.Errorf("redis srem: %w", err)
	}
	return &contact, nil
}

func (s *RedisStore) ScanPage(ctx context.Context, cursor uint64, count int64) ([]model.Contact, uint64, error) {
	keys, next, err := s.rdb.Scan(ctx, cursor, s.namespace+":contact:*", count).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis scan: %w", err)
	}
	contacts, err := s.fetch(ctx, keys)
	if err != nil {
		return nil, 0, err
	}
	return contacts, next, nil
}

func (s *RedisStore) QueryTag(ctx context.Context, tag string) ([]model.Contact, error) {
	ids, err := s.rdb.SMembers(ctx, s.tagKey(tag)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.contactKey(id)
	}
	return s.fetch(ctx, keys)
}

// fetch loads and decodes the contacts stored under the given keys. Keys
// that vanished between being listed and being read are skipped.
func (s *RedisStore) fetch(ctx context.Context, keys []string) ([]model.Contact, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	contacts := make([]model.Contact, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var contact model.Contact
		if err := json.Unmarshal([]byte(raw), &contact); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", keys[i], err)
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}
