package indexbuild

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// Watch builds the index for profile, then rebuilds it every time the
// selected collection changes, until ctx is done. Failed builds are logged
// and the watch keeps going.
//
// The parent directory is watched rather than the file so that editors which
// save through rename do not drop the watch.
func (d *Demo) Watch(ctx context.Context, profile string) error {
	input, err := filepath.Abs(d.InputFor(profile))
	if err != nil {
		return fmt.Errorf("resolve input: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(input), err)
	}

	logger := d.log.With().Str("input", input).Logger()
	rebuild := func(ctx context.Context) {
		if _, err := d.Run(ctx, profile); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("Index build failed")
		}
	}

	rebuild(ctx)
	logger.Info().Msg("Watching for changes")

	g, gctx := errgroup.WithContext(ctx)
	// Buffered by one: changes arriving during a build collapse into a
	// single follow-up build.
	pending := make(chan struct{}, 1)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != input {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				select {
				case pending <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn().Err(err).Msg("Watcher error")
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-pending:
				logger.Debug().Msg("Input changed, rebuilding")
				rebuild(gctx)
			}
		}
	})

	return g.Wait()
}
