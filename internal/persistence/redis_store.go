package persistence

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRunStore is a RunStore backed by Redis. It uses a simple key
// structure:
//
//	<prefix>run:<id>              => gob-encoded redisRunPayload
//	<prefix>idx:all               => SET of all run IDs
//	<prefix>idx:flow:<flow>       => SET of run IDs for a given flow
//	<prefix>idx:status:<status>   => SET of run IDs for a given status
//
// The index sets are updated on every save; ListRuns intersects them to
// apply filters.
type RedisRunStore struct {
	client *redis.Client
	prefix string
}

var _ RunStore = (*RedisRunStore)(nil)

// NewRedisRunStore creates a RedisRunStore using the given key prefix.
// An empty prefix defaults to "botflow:".
func NewRedisRunStore(client *redis.Client, prefix string) *RedisRunStore {
	if prefix == "" {
		prefix = "botflow:"
	}
	return &RedisRunStore{client: client, prefix: prefix}
}

type redisRunPayload struct {
	ID         string
	Flow       string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []byte
}

func (s *RedisRunStore) runKey(id string) string    { return s.prefix + "run:" + id }
func (s *RedisRunStore) allKey() string             { return s.prefix + "idx:all" }
func (s *RedisRunStore) flowKey(flow string) string { return s.prefix + "idx:flow:" + flow }
func (s *RedisRunStore) statusKey(st string) string { return s.prefix + "idx:status:" + st }

func (s *RedisRunStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	results, err := EncodeResults(rec.Results)
	if err != nil {
		return err
	}

	payload := redisRunPayload{
		ID:         rec.ID,
		Flow:       rec.Flow,
		Status:     string(rec.Status),
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
		Results:    results,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.runKey(rec.ID), buf.Bytes(), 0)
	pipe.SAdd(ctx, s.allKey(), rec.ID)
	pipe.SAdd(ctx, s.flowKey(rec.Flow), rec.ID)
	pipe.SAdd(ctx, s.statusKey(string(rec.Status)), rec.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisRunStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	data, err := s.client.Get(ctx, s.runKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRedisRun(data)
}

func (s *RedisRunStore) ListRuns(ctx context.Context, filter RunFilter) ([]*RunRecord, error) {
	keys := []string{s.allKey()}
	if filter.Flow != "" {
		keys = append(keys, s.flowKey(filter.Flow))
	}
	if filter.Status != "" {
		keys = append(keys, s.statusKey(string(filter.Status)))
	}

	ids, err := s.client.SInter(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*RunRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetRun(ctx, id)
		if errors.Is(err, ErrRunNotFound) {
			// Index entry outlived the record; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

func decodeRedisRun(data []byte) (*RunRecord, error) {
	var payload redisRunPayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return nil, err
	}

	results, err := DecodeResults(payload.Results)
	if err != nil {
		return nil, err
	}

	return &RunRecord{
		ID:         payload.ID,
		Flow:       payload.Flow,
		Status:     RunStatus(payload.Status),
		StartedAt:  payload.StartedAt,
		FinishedAt: payload.FinishedAt,
		Results:    results,
	}, nil
}
