package workflows

import (
	"context"
	"errors"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/usecases"
)

// Activity names, as registered from OnboardingActivities.
const (
	ActivityGeocodeStore  = "GeocodeStore"
	ActivityInsertStore   = "InsertStore"
	ActivityAnnounceStore = "AnnounceStore"
	ActivityDeleteStore   = "DeleteStore"
)

// OnboardingActivities holds the activity implementations for store onboarding.
type OnboardingActivities struct {
	Stores *usecases.StoreService
}

// nonRetryable marks caller mistakes so Temporal does not retry them.
func nonRetryable(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidCoordinates):
		return temporal.NewNonRetryableApplicationError(err.Error(), "InvalidRequest", err)
	case errors.Is(err, domain.ErrConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), "Conflict", err)
	}
	return err
}

// GeocodeStore resolves the store address to a position.
func (a *OnboardingActivities) GeocodeStore(ctx context.Context, in domain.StoreInput) (*domain.GeocodeResult, error) {
	pos, err := a.Stores.Geocode(ctx, in)
	if err != nil {
		return nil, nonRetryable(err)
	}
	return pos, nil
}

// InsertStore persists the store at pos and returns its id.
func (a *OnboardingActivities) InsertStore(ctx context.Context, in domain.StoreInput, pos domain.GeocodeResult) (string, error) {
	store, err := a.Stores.Insert(ctx, in, &pos)
	if err != nil {
		return "", nonRetryable(err)
	}
	return store.ID, nil
}

// AnnounceStore publishes store.created for storeID.
func (a *OnboardingActivities) AnnounceStore(ctx context.Context, storeID string) error {
	return a.Stores.Announce(ctx, domain.StoreCreated, storeID)
}

// DeleteStore removes a store that could not be announced (saga compensation).
func (a *OnboardingActivities) DeleteStore(ctx context.Context, storeID string) error {
	err := a.Stores.Delete(ctx, storeID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "store deleted (saga compensation)", "store_id", storeID)
	return nil
}
