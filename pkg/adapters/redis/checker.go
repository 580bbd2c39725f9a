package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/formtree/pkg/form"
	backend "github.com/redis/go-redis/v9"
)

const (
	// CodeTaken is reported by Unique when the value is already claimed or reserved.
	CodeTaken = "taken"
	// CodeNotMember is reported by Member when the value is not in the set.
	CodeNotMember = "notMember"
)

// Checker backs async validators with Redis sets. Each named set lives at
// prefix+name; reservations live at prefix+name+":reserved:"+value.
type Checker struct {
	client  *backend.Client
	prefix  string
	timeout time.Duration
}

type Option func(*Checker)

// WithPrefix sets the key prefix for sets and reservations.
func WithPrefix(prefix string) Option {
	return func(c *Checker) {
		c.prefix = prefix
	}
}

// WithTimeout bounds each Redis round trip made by a validator.
// Zero means the validation run's own context is the only bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.timeout = d
	}
}

// New creates a new Redis checker with options.
func New(address, password string, db int, opts ...Option) *Checker {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis checker from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Checker {
	c := &Checker{
		client: client,
		prefix: "formtree:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Checker) setKey(set string) string {
	return c.prefix + set
}

func (c *Checker) reservationKey(set, value string) string {
	return c.prefix + set + ":reserved:" + value
}

// Unique reports CodeTaken when the control's value is a member of set or is
// reserved. Empty values are not checked.
func (c *Checker) Unique(set string) form.AsyncValidator {
	return form.AsyncFunc(func(ctx context.Context, v any) (form.ValidationErrors, error) {
		value, ok := text(v)
		if !ok {
			return nil, nil
		}
		ctx, cancel := c.bound(ctx)
		defer cancel()

		pipe := c.client.Pipeline()
		member := pipe.SIsMember(ctx, c.setKey(set), value)
		reserved := pipe.Exists(ctx, c.reservationKey(set, value))
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("redis unique check: %w", err)
		}
		if member.Val() || reserved.Val() > 0 {
			return form.ValidationErrors{CodeTaken: value}, nil
		}
		return nil, nil
	})
}

// Member reports CodeNotMember when the control's value is not a member of
// set. Empty values are not checked.
func (c *Checker) Member(set string) form.AsyncValidator {
	return form.AsyncFunc(func(ctx context.Context, v any) (form.ValidationErrors, error) {
		value, ok := text(v)
		if !ok {
			return nil, nil
		}
		ctx, cancel := c.bound(ctx)
		defer cancel()

		found, err := c.client.SIsMember(ctx, c.setKey(set), value).Result()
		if err != nil {
			return nil, fmt.Errorf("redis member check: %w", err)
		}
		if !found {
			return form.ValidationErrors{CodeNotMember: value}, nil
		}
		return nil, nil
	})
}

// Claim adds values to set.
func (c *Checker) Claim(ctx context.Context, set string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	members := make([]any, len(values))
	for i, v := range values {
		members[i] = v
	}
	if err := c.client.SAdd(ctx, c.setKey(set), members...).Err(); err != nil {
		return fmt.Errorf("failed to claim in redis: %w", err)
	}
	return nil
}

// Release removes values from set.
func (c *Checker) Release(ctx context.Context, set string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	members := make([]any, len(values))
	for i, v := range values {
		members[i] = v
	}
	if err := c.client.SRem(ctx, c.setKey(set), members...).Err(); err != nil {
		return fmt.Errorf("failed to release in redis: %w", err)
	}
	return nil
}

// Members lists set.
func (c *Checker) Members(ctx context.Context, set string) ([]string, error) {
	members, err := c.client.SMembers(ctx, c.setKey(set)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Close closes the redis client.
func (c *Checker) Close() error {
	return c.client.Close()
}

func (c *Checker) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// text turns a control value into a set member. Nil and blank strings are skipped.
func text(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
