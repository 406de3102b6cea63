package model

import "context"

// Hook identifies a lifecycle extension point.
type Hook int

const (
	PreRefresh Hook = iota
	PostRefresh
	PreSave
	PostSave
	PreCreate
	PostCreate
	PreUpdate
	PostUpdate
	PreRemove
	PostRemove
)

var hookNames = [...]string{
	PreRefresh:  "pre-refresh",
	PostRefresh: "post-refresh",
	PreSave:     "pre-save",
	PostSave:    "post-save",
	PreCreate:   "pre-create",
	PostCreate:  "post-create",
	PreUpdate:   "pre-update",
	PostUpdate:  "post-update",
	PreRemove:   "pre-remove",
	PostRemove:  "post-remove",
}

func (h Hook) String() string {
	if h >= 0 && int(h) < len(hookNames) {
		return hookNames[h]
	}
	return "unknown"
}

// HookFunc runs at a lifecycle point. A non-nil error aborts the operation;
// no later step runs.
type HookFunc func(ctx context.Context, r *Record) error

// On registers fn at h. Hooks run in registration order.
func (r *Record) On(h Hook, fn HookFunc) *Record {
	if r.hooks == nil {
		r.hooks = map[Hook][]HookFunc{}
	}
	r.hooks[h] = append(r.hooks[h], fn)
	return r
}

func (r *Record) run(ctx context.Context, hooks ...Hook) error {
	for _, h := range hooks {
		for _, fn := range r.hooks[h] {
			if err := fn(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}
