package cli

import "time"

// Options contains the configuration shared by the formtree commands.
type Options struct {
	DefinitionPath string
	DataPath       string // Optional YAML/JSON document patched into the form
	Replace        bool   // Apply DataPath with SetValue instead of PatchValue
	Output         string // text, json, yaml or mermaid
	LogLevel       string
	NoColor        bool
	Timeout        time.Duration // Bound for pending async validation

	RedisAddr     string // Enables the "unique" and "member" async validators
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// DefaultTimeout bounds async validation when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
