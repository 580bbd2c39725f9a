package form

import (
	"context"
	"maps"
)

// CodeAsyncFailure is the error code recorded when an AsyncFunc returns a Go error.
const CodeAsyncFailure = "asyncFailure"

// ValidationErrors maps a validator-defined error code to its payload.
// A nil or empty map means "no errors".
type ValidationErrors map[string]any

// Has reports whether code is present.
func (e ValidationErrors) Has(code string) bool {
	_, ok := e[code]
	return ok
}

// Validator inspects a control synchronously. It must not mutate the tree.
type Validator func(c Control) ValidationErrors

// AsyncValidator starts an asynchronous check of c and returns a future.
//
// It is invoked inside the control's zone, so it may read c freely, but it must
// return promptly and do its work elsewhere. The channel yields at most one
// result; closing it without a value means "no errors". ctx is cancelled when
// the run is superseded, the control is disabled or disposed.
type AsyncValidator func(ctx context.Context, c Control) <-chan ValidationErrors

// AsyncFunc adapts a blocking check of the control's value into an AsyncValidator.
// The value is captured when the run starts. A non-nil error that is not caused
// by cancellation is reported under CodeAsyncFailure.
func AsyncFunc(fn func(ctx context.Context, value any) (ValidationErrors, error)) AsyncValidator {
	return func(ctx context.Context, c Control) <-chan ValidationErrors {
		value := c.Value()
		out := make(chan ValidationErrors, 1)
		go func() {
			defer close(out)
			errs, err := fn(ctx, value)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				errs = ValidationErrors{CodeAsyncFailure: err.Error()}
			}
			out <- errs
		}()
		return out
	}
}

// Compose merges several validators into one. Later validators win on code clashes.
func Compose(validators ...Validator) Validator {
	return func(c Control) ValidationErrors {
		return runValidators(validators, c)
	}
}

func runValidators(validators []Validator, c Control) ValidationErrors {
	var merged ValidationErrors
	for _, v := range validators {
		if v == nil {
			continue
		}
		merged = mergeErrors(merged, v(c))
	}
	return merged
}

// mergeErrors folds src into dst, last write wins. Empty results are absent.
func mergeErrors(dst, src ValidationErrors) ValidationErrors {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(ValidationErrors, len(src))
	}
	maps.Copy(dst, src)
	return dst
}
