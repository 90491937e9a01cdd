package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuel-nexus/service-backoffice/internal/cache"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
)

func newCustomerService() (*CustomerService, *fakeCustomerRepo) {
	repo := newFakeCustomerRepo()
	return NewCustomerService(repo, cache.New(64, time.Minute), zap.NewNop()), repo
}

func validCustomerRequest() CreateCustomerRequest {
	return CreateCustomerRequest{
		FullName:     "Asha Rao",
		Email:        "asha@example.com",
		MobileNumber: "9876543210",
		Address:      "14 Depot Road",
		City:         "Pune",
		State:        "MH",
		Pincode:      "411001",
		CustomerType: "RETAIL",
	}
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	svc, _ := newCustomerService()

	dto, err := svc.CreateCustomer(context.Background(), validCustomerRequest())
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", dto.FullName)
	assert.Equal(t, "RETAIL", dto.CustomerType)
	assert.True(t, dto.Active)
}

func TestCustomerService_CreateCustomer_InvalidType(t *testing.T) {
	svc, _ := newCustomerService()

	req := validCustomerRequest()
	req.CustomerType = "WHOLESALE"
	_, err := svc.CreateCustomer(context.Background(), req)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestCustomerService_CreateCustomer_DuplicateEmail(t *testing.T) {
	svc, _ := newCustomerService()

	_, err := svc.CreateCustomer(context.Background(), validCustomerRequest())
	require.NoError(t, err)

	_, err = svc.CreateCustomer(context.Background(), validCustomerRequest())
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestCustomerService_DeactivateCustomer(t *testing.T) {
	svc, repo := newCustomerService()

	dto, err := svc.CreateCustomer(context.Background(), validCustomerRequest())
	require.NoError(t, err)

	// Warm the entity cache before mutating.
	_, err = svc.GetCustomer(context.Background(), dto.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateCustomer(context.Background(), dto.ID))

	stored, err := repo.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive())

	// The cached profile from before the deactivation must be gone.
	fresh, err := svc.GetCustomer(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.False(t, fresh.Active)
}

func TestCustomerService_GetCustomer_NotFound(t *testing.T) {
	svc, _ := newCustomerService()

	_, err := svc.GetCustomer(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	svc, _ := newCustomerService()

	dto, err := svc.CreateCustomer(context.Background(), validCustomerRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateCustomer(context.Background(), dto.ID, UpdateCustomerRequest{
		FullName:     "Asha R. Kulkarni",
		Email:        "asha@example.com",
		MobileNumber: "9876543210",
		Address:      "7 Tank Street",
		City:         "Pune",
		State:        "MH",
		Pincode:      "411002",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha R. Kulkarni", updated.FullName)
	assert.Equal(t, "7 Tank Street", updated.Address)
}
