package async

import (
	"context"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/utils/errutil"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
)

// Dispatcher runs background handlers detached from the request context and lets
// the owner wait for them before shutting down.
type Dispatcher struct {
	wg sync.WaitGroup
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch executes handler in a new goroutine with a background context that keeps
// the caller's logger and Sentry hub. Errors and panics go through errutil.Handle,
// never back to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx).With("task", name))
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		bgCtx = sentry.SetHubOnContext(bgCtx, hub.Clone())
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("task", name), goerr.V("panic", r)), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, goerr.Wrap(err, "async handler failed", goerr.V("task", name)), "async handler failed")
		}
	}()
}

// Wait blocks until every dispatched handler returned
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
