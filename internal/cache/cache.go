// Package cache wraps Redis: change notifications for connected sessions,
// an append-only per-game action history, and a presence set. The client
// lives in the package-level Rdb; callers that publish from goroutines
// check it for nil so the module runs without Redis in tests.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. Nil until Connect succeeds.
var Rdb *redis.Client

const (
	gameChangedChannel = "game:changed"
	actionListPrefix   = "game:actions:"
	presenceKey        = "presence:players"
	presenceWindow     = 30 * time.Second
	actionHistoryMax   = 1000
)

// Connect creates the client and verifies connectivity.
func Connect(ctx context.Context, addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping: %w", err)
	}
	Rdb = client
	logrus.WithField("addr", addr).Info("cache: connected")
	return nil
}

// GameChanged is the payload fanned out whenever a game row advances.
type GameChanged struct {
	GameID  uuid.UUID `json:"gameId"`
	Version int64     `json:"version"`
}

// PublishGameChanged notifies every subscribed session that the game moved
// to a new version.
func PublishGameChanged(ctx context.Context, gameID uuid.UUID, version int64) error {
	payload, err := json.Marshal(GameChanged{GameID: gameID, Version: version})
	if err != nil {
		return fmt.Errorf("cache: marshal change: %w", err)
	}
	if err := Rdb.Publish(ctx, gameChangedChannel, payload).Err(); err != nil {
		return fmt.Errorf("cache: publish change: %w", err)
	}
	return nil
}

// SubscribeGameChanged subscribes to change notifications and pushes them
// to the returned channel until ctx is cancelled.
func SubscribeGameChanged(ctx context.Context) (<-chan GameChanged, error) {
	sub := Rdb.Subscribe(ctx, gameChangedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("cache: subscribe: %w", err)
	}
	out := make(chan GameChanged, 16)
	go func() {
		defer sub.Close()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var ev GameChanged
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logrus.WithError(err).Warn("cache: bad change payload")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// GameActionRecord is one entry of a game's action history.
type GameActionRecord struct {
	GameID        uuid.UUID       `json:"gameId"`
	ActionIndex   int64           `json:"actionIndex"`
	ActorUserID   uuid.UUID       `json:"actorUserId"`
	ActionType    string          `json:"actionType"`
	ActionPayload json.RawMessage `json:"actionPayload,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// PublishGameAction appends a record to the game's history list, trimming
// to the newest entries.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache: marshal action: %w", err)
	}
	key := actionListPrefix + rec.GameID.String()
	pipe := Rdb.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -actionHistoryMax, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: publish action: %w", err)
	}
	return nil
}

// GameActionHistory returns the recorded actions for a game, oldest first.
func GameActionHistory(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	raw, err := Rdb.LRange(ctx, actionListPrefix+gameID.String(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: action history: %w", err)
	}
	out := make([]GameActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("cache: decode action: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// TouchPresence marks a player as active now. Presence is a sorted set
// scored by unix time; stale members age out of ActivePlayers.
func TouchPresence(ctx context.Context, playerID uuid.UUID) error {
	err := Rdb.ZAdd(ctx, presenceKey, redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: playerID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("cache: touch presence: %w", err)
	}
	return nil
}

// ActivePlayers lists players seen within the presence window and drops
// expired members.
func ActivePlayers(ctx context.Context) ([]uuid.UUID, error) {
	cutoff := time.Now().Add(-presenceWindow).Unix()
	if err := Rdb.ZRemRangeByScore(ctx, presenceKey, "-inf", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return nil, fmt.Errorf("cache: prune presence: %w", err)
	}
	members, err := Rdb.ZRange(ctx, presenceKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: list presence: %w", err)
	}
	out := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
