package execution

import (
	"context"
	"errors"
	"fmt"
)

// Run analyzes req and normalizes failures: a *BuildError is returned as
// is, any other error or panic becomes a lint infrastructure error.
func Run(ctx context.Context, req Request, opts Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lint infrastructure error: %v", r)
		}
	}()

	err = New(req, opts).Analyze(ctx)
	if err == nil {
		return nil
	}
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return err
	}
	return fmt.Errorf("lint infrastructure error: %w", err)
}
