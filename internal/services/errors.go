package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bobboe/hspriveko/internal/core"
	"github.com/Bobboe/hspriveko/internal/storage"
)

// requireCategory maps a missing category to a validation error.
func requireCategory(ctx context.Context, tx storage.Tx, id string) error {
	if _, err := tx.GetCategory(ctx, id); err != nil {
		if isNotFound(err) {
			return core.ErrUnknownCategory
		}
		return fmt.Errorf("get category: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}

// wrapStorage adds context to infrastructure errors and passes domain errors
// through untouched.
func wrapStorage(op string, err error) error {
	if core.IsValidation(err) || isNotFound(err) || errors.Is(err, core.ErrCategoryInUse) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
