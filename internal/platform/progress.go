package platform

import (
	"context"
	"fmt"
)

// ProgressFunc receives status lines while listings are being fetched. The
// CLI points it at its spinner.
type ProgressFunc func(msg string)

type progressKey struct{}

// WithProgress attaches fn to ctx so a Source can narrate its fetch.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress sends msg to the callback in ctx. Servers attach none.
func ReportProgress(ctx context.Context, msg string) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(msg)
	}
}

// ReportFound announces how many raw listings a strategy returned for a caliber.
func ReportFound(ctx context.Context, n int, caliber, strategy string) {
	ReportProgress(ctx, fmt.Sprintf("Found %d listings for %s via %s", n, caliber, strategy))
}
