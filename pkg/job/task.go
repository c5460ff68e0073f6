package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
)

// taskExecutor runs a task from its stored JSON payload.
type taskExecutor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

// taskRegistry maps task names to executors. It is filled while options
// are applied and only read afterwards, so workers share it without locks.
type taskRegistry struct {
	executors  map[string]taskExecutor
	duplicates []string
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{executors: make(map[string]taskExecutor)}
}

// register adds executor under name. A second registration under the same
// name is remembered and reported by validate.
func (r *taskRegistry) register(name string, executor taskExecutor) {
	if _, exists := r.executors[name]; exists && !slices.Contains(r.duplicates, name) {
		r.duplicates = append(r.duplicates, name)
	}
	r.executors[name] = executor
}

func (r *taskRegistry) validate() error {
	if len(r.duplicates) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDuplicateTask, r.duplicates)
}

func (r *taskRegistry) get(name string) (taskExecutor, bool) {
	executor, ok := r.executors[name]
	return executor, ok
}

// names returns the registered task names in order.
func (r *taskRegistry) names() []string {
	out := make([]string, 0, len(r.executors))
	for name := range r.executors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// taskWrapper decodes the payload into P before calling the typed handler.
type taskWrapper[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}] struct {
	task T
}

func (w *taskWrapper[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, fmt.Errorf("task %q: %w", w.task.Name(), err))
		}
	}
	return w.task.Handle(ctx, payload)
}

func newTaskWrapper[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) *taskWrapper[P, T] {
	return &taskWrapper[P, T]{task: task}
}
