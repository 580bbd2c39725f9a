package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/formtree"
	"github.com/aretw0/formtree/pkg/adapters/redis"
	"github.com/aretw0/formtree/pkg/definition"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/observability"
	"github.com/aretw0/formtree/pkg/registry"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Session is a form built from Options plus the resources backing it.
type Session struct {
	Root    form.Control
	Zone    *form.Zone
	Logger  *slog.Logger
	checker *redis.Checker
}

// Close disposes the form and releases the Redis client, if any.
func (s *Session) Close() error {
	s.Root.Dispose()
	if s.checker != nil {
		return s.checker.Close()
	}
	return nil
}

// createSession loads the definition, builds the form in a fresh zone and
// applies the optional data document. Extra hooks are chained after the
// logging hooks.
func createSession(opts Options, hooks ...form.Hooks) (*Session, error) {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	reg := registry.Builtin()
	var checker *redis.Checker
	if opts.RedisAddr != "" {
		var redisOpts []redis.Option
		if opts.RedisPrefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(opts.RedisPrefix))
		}
		checker = redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, redisOpts...)
		checker.Register(reg)
		logger.Debug("redis validators enabled", "addr", opts.RedisAddr)
	}

	zone := form.NewZone(
		form.WithLogger(logger),
		form.WithHooks(form.ChainHooks(append([]form.Hooks{observability.LogHooks(logger)}, hooks...)...)),
	)

	root, err := build(opts, reg, zone)
	if err != nil {
		if checker != nil {
			err = errors.Join(err, checker.Close())
		}
		return nil, err
	}
	return &Session{Root: root, Zone: zone, Logger: logger, checker: checker}, nil
}

func build(opts Options, reg *registry.Registry, zone *form.Zone) (form.Control, error) {
	f, err := formtree.Load(opts.DefinitionPath, formtree.WithRegistry(reg), formtree.WithZone(zone))
	if err != nil {
		return nil, err
	}
	root := f.Root()
	if opts.DataPath == "" {
		return root, nil
	}

	data, err := loadData(opts.DataPath)
	if err != nil {
		root.Dispose()
		return nil, err
	}
	apply := root.PatchValue
	if opts.Replace {
		apply = root.SetValue
	}
	if err := apply(data); err != nil {
		root.Dispose()
		return nil, fmt.Errorf("failed to apply data: %w", err)
	}
	return root, nil
}

// loadData reads a value document; the format follows the extension.
func loadData(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	var data any
	switch definition.FormatOf(path) {
	case definition.FormatJSON:
		err = json.Unmarshal(raw, &data)
	default:
		err = yaml.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse data %s: %w", path, err)
	}
	return data, nil
}
