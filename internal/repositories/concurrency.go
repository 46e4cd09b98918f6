package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewfield/scheduling-service/internal/utils"
)

/*
EntityWithVersion:

* `comparable`  → lets us use `==` to compare two values of type T
* the accessor pair for the optimistic-lock column
*/
type EntityWithVersion interface {
	comparable
	GetID() string
	GetRowVersion() int64
}

type GetByIDFunc[T EntityWithVersion] func(ctx context.Context) (T, error)

type UpdateIfVersionFunc[T EntityWithVersion] func(
	ctx context.Context,
	expectedVersion int64,
) (T, error)

/*
WithRetry runs a read-then-conditional-update loop with optimistic
locking. The update func must fail with utils.ErrRowVersionConflict
when the row moved underneath it; any other error aborts the loop.
*/
func WithRetry[T EntityWithVersion](
	ctx context.Context,
	maxRetries int,
	id string,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
) (T, error) {
	var zero T
	for attempt := 0; attempt < maxRetries; attempt++ {
		current, err := getByID(ctx)
		if err != nil {
			return zero, err
		}
		if current == zero {
			return zero, utils.ErrNotFound
		}

		updated, err := updateIfVersion(ctx, current.GetRowVersion())
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, utils.ErrRowVersionConflict) {
			return zero, err
		}
		// someone else updated first – retry
	}
	return zero, fmt.Errorf("too much contention updating %q", id)
}
