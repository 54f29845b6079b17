// Package params holds the four tiers of mutable strategy tunables
// (per-warrant, per-underlying, per-issuer, per-issuer-underlying) plus the
// strategy-type defaults and the bucket output snapshot.
//
// Every user-writable field is guarded by a replaceable validator and an
// additive list of post-update hooks. A write that fails validation mutates
// nothing and fires nothing.
package params

// Field names user-writable tunables for validator/hook registration.
type Field string

// Validator accepts or rejects a prospective value. Boolean tunables are
// carried as 0/1.
type Validator func(value int64) bool

// PostUpdateHook runs after an accepted write.
type PostUpdateHook func()

// guards is the per-field validator/hook registry embedded in each tier.
type guards struct {
	validators map[Field]Validator
	hooks      map[Field][]PostUpdateHook
}

func newGuards() guards {
	return guards{
		validators: make(map[Field]Validator),
		hooks:      make(map[Field][]PostUpdateHook),
	}
}

// SetValidator installs or replaces the validator for a field.
func (g *guards) SetValidator(f Field, v Validator) { g.validators[f] = v }

// AddPostUpdateHook appends a hook for a field. Hooks run in registration
// order after every accepted write.
func (g *guards) AddPostUpdateHook(f Field, h PostUpdateHook) {
	g.hooks[f] = append(g.hooks[f], h)
}

func (g *guards) validate(f Field, value int64) bool {
	if v, ok := g.validators[f]; ok {
		return v(value)
	}
	return true
}

func (g *guards) fire(f Field) {
	for _, h := range g.hooks[f] {
		h()
	}
}

// userSet runs the validate / assign / hook sequence for one field.
func (g *guards) userSet(f Field, value int64, assign func(int64)) bool {
	if !g.validate(f, value) {
		return false
	}
	assign(value)
	g.fire(f)
	return true
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Broadcastable is what the info sender accepts for parameter snapshots.
type Broadcastable interface {
	ParamsKind() string
	StrategyID() int64
}
