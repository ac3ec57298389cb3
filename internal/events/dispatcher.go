package events

import (
	"context"
	"sync"

	"github.com/spec-kit/okta-import/internal/domain"
)

// Dispatcher exposes the three pipeline notification points.
type Dispatcher interface {
	OnValidate(handler ValidateHandler)
	OnPreSubmit(handler PreSubmitHandler)
	OnPostSubmit(handler PostSubmitHandler)

	DispatchValidate(ctx context.Context, batch domain.EmailBatch) (domain.EmailBatch, error)
	DispatchPreSubmit(ctx context.Context, user domain.PendingUser) (domain.PendingUser, error)
	DispatchPostSubmit(ctx context.Context, user domain.SubmittedUser) (domain.SubmittedUser, error)
}

// inMemoryDispatcher runs handlers synchronously in registration order, each
// one receiving the previous handler's output.
type inMemoryDispatcher struct {
	mu         sync.RWMutex
	validate   []ValidateHandler
	preSubmit  []PreSubmitHandler
	postSubmit []PostSubmitHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{}
}

// OnValidate registers a handler for the validate point.
func (d *inMemoryDispatcher) OnValidate(handler ValidateHandler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.validate = append(d.validate, handler)
}

// OnPreSubmit registers a handler for the pre-submit point.
func (d *inMemoryDispatcher) OnPreSubmit(handler PreSubmitHandler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preSubmit = append(d.preSubmit, handler)
}

// OnPostSubmit registers a handler for the post-submit point.
func (d *inMemoryDispatcher) OnPostSubmit(handler PostSubmitHandler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postSubmit = append(d.postSubmit, handler)
}

// DispatchValidate runs the validate chain. On error the batch is returned as
// it was before the failing handler.
func (d *inMemoryDispatcher) DispatchValidate(ctx context.Context, batch domain.EmailBatch) (domain.EmailBatch, error) {
	d.mu.RLock()
	handlers := append([]ValidateHandler{}, d.validate...)
	d.mu.RUnlock()

	for i, handler := range handlers {
		next, err := handler(ctx, batch)
		if err != nil {
			return batch, &HandlerError{Point: PointValidate, Index: i, Err: err}
		}
		batch = next
	}
	return batch, nil
}

// DispatchPreSubmit runs the pre-submit chain.
func (d *inMemoryDispatcher) DispatchPreSubmit(ctx context.Context, user domain.PendingUser) (domain.PendingUser, error) {
	d.mu.RLock()
	handlers := append([]PreSubmitHandler{}, d.preSubmit...)
	d.mu.RUnlock()

	for i, handler := range handlers {
		next, err := handler(ctx, user)
		if err != nil {
			return user, &HandlerError{Point: PointPreSubmit, Index: i, Err: err}
		}
		user = next
	}
	return user, nil
}

// DispatchPostSubmit runs the post-submit chain.
func (d *inMemoryDispatcher) DispatchPostSubmit(ctx context.Context, user domain.SubmittedUser) (domain.SubmittedUser, error) {
	d.mu.RLock()
	handlers := append([]PostSubmitHandler{}, d.postSubmit...)
	d.mu.RUnlock()

	for i, handler := range handlers {
		next, err := handler(ctx, user)
		if err != nil {
			return user, &HandlerError{Point: PointPostSubmit, Index: i, Err: err}
		}
		user = next
	}
	return user, nil
}
