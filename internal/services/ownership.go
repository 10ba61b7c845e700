package services

import (
	"context"
	"errors"

	"github.com/askpeer/askpeer-be/internal/models"
)

// ownerLoader resolves a resource id to its owning user id. Implementations
// return models.ErrNotFound when the id resolves to nothing.
type ownerLoader func(ctx context.Context, id int64) (int64, error)

// requireOwnership gates a mutation on the caller owning the target resource.
// A missing resource fails with ErrNotFound before any ownership comparison,
// so probing a nonexistent id and probing a foreign id stay distinguishable
// from each other but nothing more. The check never mutates state.
func requireOwnership(ctx context.Context, load ownerLoader, id, callerID int64) error {
	ownerID, err := load(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return err
	}
	if ownerID != callerID {
		return models.ErrForbidden
	}
	return nil
}
