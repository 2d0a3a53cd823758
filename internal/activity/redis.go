package activity

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record as a JSON string under activity:{id} and an
// owner history list under activities:{owner}. List orders by end time.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func recordKey(id string) string { return "activity:" + id }

func historyKey(ownerID string) string { return "activities:" + ownerID }

// Save writes the record and its history entry in one MULTI. Records are
// immutable per id, so a retry after a partial failure rewrites the same value
// and puts the history entry back exactly once.
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return storeErr("encode", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, recordKey(rec.ID), payload, 0)
	pipe.LRem(ctx, historyKey(rec.OwnerID), 0, rec.ID)
	pipe.LPush(ctx, historyKey(rec.OwnerID), rec.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("save", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Record, error) {
	payload, err := s.rdb.Get(ctx, recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, storeErr("get", err)
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, storeErr("decode", err)
	}
	return rec, nil
}

func (s *RedisStore) List(ctx context.Context, ownerID string) ([]Record, error) {
	ids, err := s.rdb.LRange(ctx, historyKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, storeErr("list", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storeErr("list", err)
	}

	records := make([]Record, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, storeErr("decode", err)
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].EndTime.After(records[j].EndTime) })
	return records, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, recordKey(id))
	pipe.LRem(ctx, historyKey(rec.OwnerID), 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("delete", err)
	}
	return nil
}
