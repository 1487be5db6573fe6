package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// IsOrderIndexExists reports whether another row in the same scope already
// holds orderIndex. parentID is ignored for tiers; excludeID skips the row
// being updated.
func IsOrderIndexExists(ctx context.Context, store ContentStore, scope Scope, parentID string, orderIndex int, excludeID string) (bool, error) {
	return store.OrderIndexExists(ctx, scope, parentID, orderIndex, excludeID)
}

func ensureOrderIndexFree(ctx context.Context, store ContentStore, scope Scope, parentID string, orderIndex int, excludeID string) error {
	exists, err := IsOrderIndexExists(ctx, store, scope, parentID, orderIndex, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict(MsgOrderExists)
	}
	return nil
}

// IsTierCodeExists compares codes after upper-casing, so "b1" collides with "B1".
func IsTierCodeExists(ctx context.Context, store ContentStore, code, excludeID string) (bool, error) {
	return store.TierCodeExists(ctx, strings.ToUpper(strings.TrimSpace(code)), excludeID)
}

func IsWordExists(ctx context.Context, store ContentStore, levelID, word, excludeID string) (bool, error) {
	return store.WordExists(ctx, levelID, strings.TrimSpace(word), excludeID)
}

func resolveOrderIndex(ctx context.Context, store ContentStore, scope Scope, parentID string, requested *int) (int, error) {
	if requested == nil {
		return store.NextOrderIndex(ctx, scope, parentID)
	}
	if *requested < 1 {
		return 0, ErrValidation(MsgInvalidOrderIndex, FieldError{Field: "orderIndex", Message: MsgInvalidOrderIndex})
	}
	return *requested, nil
}

func NormalizeRequired(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrValidation(MsgInvalidPayload, FieldError{Field: field, Message: MsgRequired})
	}
	return trimmed, nil
}

func NormalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CanonicalID accepts only the hyphenated 36 character form and returns it
// lower-cased, which is how ids are stored.
func CanonicalID(id string) (string, error) {
	id = strings.TrimSpace(id)
	u, err := uuid.Parse(id)
	if err != nil || len(id) != 36 {
		return "", ErrBadRequest(MsgInvalidID)
	}
	return u.String(), nil
}

func referenceID(value, field string) (string, error) {
	trimmed, err := NormalizeRequired(value, field)
	if err != nil {
		return "", err
	}
	id, err := CanonicalID(trimmed)
	if err != nil {
		return "", ErrValidation(MsgInvalidID, FieldError{Field: field, Message: MsgInvalidID})
	}
	return id, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound(msg)
	}
	return err
}
