package returnstatusnotify

import (
	"context"

	"return-notifier/internal/common/errors"
	"return-notifier/internal/models"
)

// EntityResolver wraps the entity store with the pipeline's not-found rules.
type EntityResolver struct {
	store EntityStore
}

func NewEntityResolver(store EntityStore) *EntityResolver {
	return &EntityResolver{store: store}
}

func (r *EntityResolver) ResolveSeller(ctx context.Context, resellerID int) (*models.Seller, error) {
	seller, err := r.store.FindSellerByID(ctx, resellerID)
	if err != nil {
		return nil, errors.NewLookupFailedError("Seller", err)
	}
	if seller == nil {
		return nil, errors.NewNotFoundError("Seller")
	}
	return seller, nil
}

// ResolveClient returns the contractor only if it is a customer of resellerID.
func (r *EntityResolver) ResolveClient(ctx context.Context, resellerID, clientID int) (*models.Contractor, error) {
	if clientID == 0 {
		return nil, errors.NewNotFoundError("Client")
	}

	client, err := r.store.FindContractorByID(ctx, clientID)
	if err != nil {
		return nil, errors.NewLookupFailedError("Client", err)
	}
	if !client.IsCustomerOf(resellerID) {
		return nil, errors.NewNotFoundError("Client")
	}
	return client, nil
}

// ResolveEmployee treats a missing employee as a server-side fault. Id 0 is
// not looked up and yields nil.
func (r *EntityResolver) ResolveEmployee(ctx context.Context, employeeID int) (*models.Employee, error) {
	if employeeID == 0 {
		return nil, nil
	}

	employee, err := r.store.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, errors.NewLookupFailedError("Employee", err)
	}
	if employee == nil {
		return nil, errors.NewMissingEmployeeError(employeeID)
	}
	return employee, nil
}
