package redis

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrReserved is returned when a value is already reserved.
var ErrReserved = errors.New("value already reserved")

// ReleaseFunc drops a reservation. It is a no-op when the reservation has
// expired or was taken over.
type ReleaseFunc func(ctx context.Context) error

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Reserve holds value in set for ttl, so Unique reports it as taken while a
// form is being filled in. It uses SET NX PX and fails fast with ErrReserved.
func (c *Checker) Reserve(ctx context.Context, set, value string, ttl time.Duration) (ReleaseFunc, error) {
	key := c.reservationKey(set, value)
	token := fmt.Sprintf("%d", time.Now().UnixNano())

	ok, err := c.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error reserving %q: %w", value, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrReserved, value, set)
	}

	return func(ctx context.Context) error {
		return c.client.Eval(ctx, releaseScript, []string{key}, token).Err()
	}, nil
}
