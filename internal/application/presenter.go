package application

import "context"

// Presenter shows the outcome of a run to the user.
type Presenter interface {
	Present(ctx context.Context, res *Result) error
	Fail(ctx context.Context, res *Result, err error) error
}
