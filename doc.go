/*
Package formtree builds reactive form-control trees and keeps their value and validity consistent as they change.

A form is a tree of controls: leaves (Field) hold scalar values, Groups hold named children and Arrays hold ordered children. Every mutation recomputes the touched node and walks up to the root, so aggregate values, validation status and interaction flags (pristine/dirty, touched/untouched) are always derived from the current state of the subtree.

# Key Features

  - Consistent State: Value, errors and status are recomputed bottom-up after every change.
  - Async Validation: Debounced validators with stale-result protection; a node is PENDING while they run.
  - Change Streams: Value, status, touch and structure changes are published after the tree has settled.
  - Definitions: Trees can be declared in YAML or JSON and built through a validator registry.
  - Adapters: HTTP API with SSE events, Redis-backed uniqueness checks and Prometheus metrics.

# Usage

The core lives in package form and can be used directly. This package is a thin entry point that builds a tree from a definition file.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/formtree"
	)

	type Signup struct {
		Email string `form:"email"`
		Age   int    `form:"age"`
	}

	func main() {
		f, err := formtree.Load("./signup.yaml")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		if err := f.Patch(map[string]any{"email": "ada@example.com"}); err != nil {
			log.Fatal(err)
		}

		// Wait for async validators before reading the verdict.
		status, err := f.Settle(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		log.Println("form is", status)

		var s Signup
		if err := f.Decode(&s); err != nil {
			log.Fatal(err)
		}
	}
*/
package formtree
