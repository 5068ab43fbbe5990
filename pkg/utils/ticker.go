package utils

import (
	"context"
	"time"

	"github.com/Borislavv/shared/pkg/ctime"
)

// NewTicker returns a context-bound tick channel that fires immediately and
// then every interval. The channel closes when ctx is done.
func NewTicker(ctx context.Context, interval time.Duration) (ch <-chan time.Time) {
	tickCh := make(chan time.Time, 1)
	tickCh <- ctime.Now()

	go func() {
		ticker := time.NewTicker(interval)
		defer func() {
			ticker.Stop()
			close(tickCh)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				select {
				case <-ctx.Done():
					return
				case tickCh <- t:
				}
			}
		}
	}()

	return tickCh
}
