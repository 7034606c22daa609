package infra_redis_outcome

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/restaurantpicker/internal/model"
	usecase_room "github.com/humanbelnik/restaurantpicker/internal/usecase/room"
)

// Driver archives the outcome of each finished room under its code. Codes are
// reused, so a later room overwrites an earlier one.
type Driver struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func New(
	client *redis.Client,
	key string,
	ttl time.Duration,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (d *Driver) Record(ctx context.Context, outcome model.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	return d.client.Set(d.getFullKey(outcome.RoomCode), raw, d.ttl).Err()
}

func (d *Driver) Load(ctx context.Context, code model.RoomCode) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Outcome{}, err
	}

	raw, err := d.client.Get(d.getFullKey(code)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return model.Outcome{}, usecase_room.ErrNoOutcome
		}
		return model.Outcome{}, err
	}

	var outcome model.Outcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		return model.Outcome{}, fmt.Errorf("unmarshal outcome: %w", err)
	}
	return outcome, nil
}

func (d *Driver) getFullKey(code model.RoomCode) string {
	if d.key != "" {
		return d.key + ":" + string(code)
	}
	return string(code)
}
