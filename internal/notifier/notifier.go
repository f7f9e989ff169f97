package notifier

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// Notifier delivers a payload to one destination.
type Notifier interface {
	Notify(ctx context.Context, payload *Payload) error
}

// Multi delivers to every notifier concurrently and joins their errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, payload *Payload) error {
	p := pool.New().WithErrors()
	for _, n := range m {
		p.Go(func() error {
			return n.Notify(ctx, payload)
		})
	}

	return p.Wait()
}
