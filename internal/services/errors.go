package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/baharkarakas/blog-backend/internal/apperr"
)

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", apperr.ErrValidation, err)
}

// storeErr passes through errors that already carry a kind and marks anything
// else as an upstream failure.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrConflict) ||
		errors.Is(err, apperr.ErrValidation) {
		return err
	}
	slog.Error("store failure", "op", op, "err", err)
	if errors.Is(err, apperr.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrUnavailable, err)
}
