/*
Package form implements a reactive tree of data-entry controls.

A tree is made of three kinds of Control:

  - Field: a leaf holding one value, with focus tracking.
  - Group: children addressed by name; its value is a map[string]any.
  - Array: children addressed by position; its value is a []any.

Every control tracks its value, a set of ValidationErrors, a Status (Valid,
Invalid, Pending, Disabled) and the pristine/touched interaction flags.

# Recompute

Each mutation ends with a recompute of the mutated control, which walks up to
the root:

 1. A composite is disabled when it has children and all of them are disabled.
    Disabled controls skip validation and have no errors.
 2. The value is reduced (composites aggregate their enabled children).
 3. Synchronous validators run in order; on code clashes the last one wins.
 4. Status is derived: Disabled, then Invalid for own errors, then Pending for
    own or child async work, then Invalid for invalid children, else Valid.
 5. Valid or Pending controls with async validators schedule a debounced run.
 6. Value and status are published; the parent recomputes.

Asynchronous validators are debounced per control (WithDebounce, 250ms by
default). A newer run, disabling or disposal abandons the older one, whose
result is never applied.

# Zones

All controls of a tree share a Zone, the scheduling domain that serializes
mutations, debounce timers and async completions. Stream notifications are
queued and delivered after the zone is released, so subscribers observe fully
settled state and may mutate the tree.

	email := form.NewField("", form.WithValidators(validators.Required()))
	login := form.MustGroup(map[string]form.Control{
		"email":    email,
		"password": form.NewField(""),
	})

	stop := login.StatusChanges().Subscribe(func(s form.Status) {
		fmt.Println("form is", s)
	})
	defer stop()

	_ = login.PatchValue(map[string]any{"email": "ada@example.com"})

# Paths

Descendants are addressed with dotted paths. Group segments are keys, array
segments are non-negative integers:

	street, err := profile.Get("addresses.0.street")

# Absent values

nil is the single "absent" value: a Field that was never given a value and one
that was cleared are indistinguishable. Group.SetValue pushes nil to children
whose key is missing while PatchValue leaves them alone; Array.SetValue(nil)
clears every child while a shorter slice leaves the surplus children as they
are.
*/
package form
