// Package heal recovers once from a missing optional driver.
//
// When a request fails because a driver is not available, the hook asks a
// Locator for directories the process was not told about, adds them to the
// driver search path and retries the request a single time. The attempt is
// made at most once for the lifetime of the Hook.
package heal

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/dbbridge/pkg/core"
)

// SearchPath accepts extra directories and reports how many were new.
type SearchPath interface {
	AddSearchDirs(dirs []string) int
}

// Hook runs a request and performs the one-shot driver recovery.
// A Hook is not safe for concurrent use.
type Hook struct {
	locator   Locator
	paths     SearchPath
	logger    *slog.Logger
	attempted bool
}

// NewHook creates a hook. If logger is nil, a discard logger is used.
func NewHook(locator Locator, paths SearchPath, logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hook{locator: locator, paths: paths, logger: logger}
}

// Run calls fn and retries it at most once after a successful recovery.
func Run[T any](ctx context.Context, h *Hook, fn func(context.Context) (T, error)) (T, error) {
	result, err := fn(ctx)
	if err == nil {
		return result, nil
	}

	missing, ok := core.IsMissingDriver(err)
	if !ok || h.attempted {
		return result, err
	}
	h.attempted = true

	h.logger.Debug("driver missing, searching alternate locations",
		slog.String("driver", missing.Driver))

	if h.locator == nil || h.paths == nil {
		return result, err
	}
	dirs, locErr := h.locator.Locate(ctx)
	if locErr != nil {
		h.logger.Debug("driver path lookup failed", slog.Any("error", locErr))
		return result, err
	}

	added := h.paths.AddSearchDirs(dirs)
	if added == 0 {
		return result, err
	}

	h.logger.Info("retrying with new driver search directories", slog.Int("added", added))
	return Run(ctx, h, fn)
}

// Attempted reports whether the recovery has already been tried.
func (h *Hook) Attempted() bool {
	return h.attempted
}
