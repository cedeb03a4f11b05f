package tests

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posservice/pkg/domain/model"
	"posservice/pkg/domain/service"
)

func setupCustomerService(t *testing.T) (service.CustomerService, *mockCustomerRepository, *mockEventDispatcher) {
	t.Helper()
	repo := newMockCustomerRepository()
	dispatcher := &mockEventDispatcher{}
	return service.NewCustomerService(repo, dispatcher), repo, dispatcher
}

func TestRegisterCustomer(t *testing.T) {
	svc, repo, dispatcher := setupCustomerService(t)

	customer, err := svc.RegisterCustomer(context.Background(), "+15550100", "Jordan")

	require.NoError(t, err)
	assert.Equal(t, "+15550100", customer.Phone)
	assert.Equal(t, "Jordan", customer.Name)
	assert.Equal(t, int64(0), customer.LoyaltyPoints)
	assert.Equal(t, model.Active, customer.Status)

	stored, err := repo.Find(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, stored.ID)

	require.Len(t, dispatcher.events, 1)
	registered, ok := dispatcher.events[0].(model.CustomerRegistered)
	require.True(t, ok)
	assert.Equal(t, customer.ID, registered.CustomerID)
}

func TestRegisterCustomer_PhoneRequired(t *testing.T) {
	svc, _, _ := setupCustomerService(t)

	_, err := svc.RegisterCustomer(context.Background(), "", "Jordan")
	assert.ErrorIs(t, err, service.ErrPhoneRequired)
}

func TestRegisterCustomer_PhoneTaken(t *testing.T) {
	svc, repo, _ := setupCustomerService(t)
	_, err := svc.RegisterCustomer(context.Background(), "+15550100", "Jordan")
	require.NoError(t, err)

	_, err = svc.RegisterCustomer(context.Background(), "+15550100", "Casey")
	assert.ErrorIs(t, err, model.ErrPhoneTaken)
	assert.Len(t, repo.store, 1)
}

func TestUpdateCustomerProfile(t *testing.T) {
	svc, repo, _ := setupCustomerService(t)
	customer, err := svc.RegisterCustomer(context.Background(), "+15550100", "Jordan")
	require.NoError(t, err)

	err = svc.UpdateCustomerProfile(context.Background(), customer.ID, "Jordan K.")
	require.NoError(t, err)

	stored := repo.store[customer.ID]
	assert.Equal(t, "Jordan K.", stored.Name)
	assert.Equal(t, 2, stored.Version)
}

func TestUpdateCustomerProfile_Inactive(t *testing.T) {
	svc, _, _ := setupCustomerService(t)
	customer, err := svc.RegisterCustomer(context.Background(), "+15550100", "Jordan")
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateCustomer(context.Background(), customer.ID))

	err = svc.UpdateCustomerProfile(context.Background(), customer.ID, "Jordan K.")
	assert.ErrorIs(t, err, service.ErrCustomerChanged)
}

func TestFindCustomerByPhone(t *testing.T) {
	svc, _, _ := setupCustomerService(t)
	customer, err := svc.RegisterCustomer(context.Background(), "+15550100", "Jordan")
	require.NoError(t, err)

	found, err := svc.FindByPhone(context.Background(), "+15550100")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.ID)

	_, err = svc.FindByPhone(context.Background(), "+15550199")
	assert.ErrorIs(t, err, model.ErrCustomerNotFound)

	_, err = svc.FindByPhone(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrPhoneRequired)
}

func TestDeactivateCustomer(t *testing.T) {
	svc, repo, dispatcher := setupCustomerService(t)
	customer, err := svc.RegisterCustomer(context.Background(), "+15550100", "Jordan")
	require.NoError(t, err)
	dispatcher.Reset()

	err = svc.DeactivateCustomer(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Inactive, repo.store[customer.ID].Status)
	require.Len(t, dispatcher.events, 1)

	// Deactivating again is a no-op.
	err = svc.DeactivateCustomer(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Len(t, dispatcher.events, 1)
}

func TestAdjustLoyaltyBalance(t *testing.T) {
	svc, repo, dispatcher := setupCustomerService(t)
	customer, err := svc.RegisterCustomer(context.Background(), "+15550100", "Jordan")
	require.NoError(t, err)
	dispatcher.Reset()

	updated, err := svc.AdjustLoyaltyBalance(context.Background(), customer.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.LoyaltyPoints)

	updated, err = svc.AdjustLoyaltyBalance(context.Background(), customer.ID, -100)
	require.NoError(t, err)
	assert.Equal(t, int64(150), updated.LoyaltyPoints)
	assert.Equal(t, int64(150), repo.store[customer.ID].LoyaltyPoints)

	require.Len(t, dispatcher.events, 2)
	adjusted, ok := dispatcher.events[1].(model.LoyaltyBalanceAdjusted)
	require.True(t, ok)
	assert.Equal(t, int64(-100), adjusted.DeltaPoints)
	assert.Equal(t, int64(150), adjusted.NewBalance)
}

func TestAdjustLoyaltyBalance_CannotGoNegative(t *testing.T) {
	svc, repo, _ := setupCustomerService(t)
	customer, err := svc.RegisterCustomer(context.Background(), "+15550100", "Jordan")
	require.NoError(t, err)

	_, err = svc.AdjustLoyaltyBalance(context.Background(), customer.ID, -1)
	assert.ErrorIs(t, err, model.ErrInsufficientPoints)
	assert.Equal(t, int64(0), repo.store[customer.ID].LoyaltyPoints)
}

func TestAdjustLoyaltyBalance_CustomerNotFound(t *testing.T) {
	svc, _, _ := setupCustomerService(t)

	_, err := svc.AdjustLoyaltyBalance(context.Background(), uuid.New(), 100)
	assert.ErrorIs(t, err, model.ErrCustomerNotFound)
}
