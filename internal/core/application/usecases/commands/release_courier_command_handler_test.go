package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCourierTestBench(t *testing.T) (*MockCourierUoW, *MockCourierUoWFactory, *MockCourierRepository, *MockOutboxRepository, *MockGeoIndex) {
	t.Helper()

	courierRepo := new(MockCourierRepository)
	outbox := new(MockOutboxRepository)
	geoIndex := new(MockGeoIndex)

	uow := new(MockCourierUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	uow.On("CourierRepository").Return(courierRepo)
	uow.On("OutboxRepository").Return(outbox)

	factory := new(MockCourierUoWFactory)
	factory.On("Create").Return(uow)

	return uow, factory, courierRepo, outbox, geoIndex
}

func TestReleaseCourierCommandHandler_Handle_ReleasesOnCancellation(t *testing.T) {
	ctx := t.Context()

	aggregate := newAvailableCourier(t)
	orderID := kernel.NewUUID()
	require.NoError(t, aggregate.Reserve(orderID, time.Now().UTC()))
	aggregate.ClearPendingEvents()

	cmd, err := commands.NewReleaseCourierCommand(aggregate.ID(), orderID, false)
	require.NoError(t, err)

	uow, factory, courierRepo, outbox, geoIndex := newCourierTestBench(t)
	uow.On("Commit", ctx).Return(nil)
	courierRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	courierRepo.On("Update", mock.Anything, aggregate).Return(nil)
	outbox.On("Add", mock.Anything, mock.Anything).Return(nil)
	geoIndex.On("Upsert", aggregate.ID(), mock.Anything, true, mock.Anything).Return()

	handler := commands.NewReleaseCourierCommandHandler(factory, geoIndex)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Nil(t, aggregate.CurrentOrderID())
	assert.True(t, aggregate.Available())
	assert.Equal(t, 0, aggregate.DeliveryCount(), "a cancellation is not a completed delivery")
	geoIndex.AssertExpectations(t)
}

func TestReleaseCourierCommandHandler_Handle_CompletedDeliveryCounts(t *testing.T) {
	ctx := t.Context()

	aggregate := newAvailableCourier(t)
	orderID := kernel.NewUUID()
	require.NoError(t, aggregate.Reserve(orderID, time.Now().UTC()))
	aggregate.ClearPendingEvents()

	cmd, err := commands.NewReleaseCourierCommand(aggregate.ID(), orderID, true)
	require.NoError(t, err)

	uow, factory, courierRepo, outbox, geoIndex := newCourierTestBench(t)
	uow.On("Commit", ctx).Return(nil)
	courierRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	courierRepo.On("Update", mock.Anything, aggregate).Return(nil)
	outbox.On("Add", mock.Anything, mock.Anything).Return(nil)
	geoIndex.On("Upsert", aggregate.ID(), mock.Anything, true, mock.Anything).Return()

	handler := commands.NewReleaseCourierCommandHandler(factory, geoIndex)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, aggregate.DeliveryCount())
	assert.True(t, aggregate.Available())
}

func TestReleaseCourierCommandHandler_Handle_RedeliveredReleaseIsNoOp(t *testing.T) {
	ctx := t.Context()

	aggregate := newAvailableCourier(t)
	orderID := kernel.NewUUID()
	require.NoError(t, aggregate.Reserve(orderID, time.Now().UTC()))
	require.NoError(t, aggregate.Release(orderID, time.Now().UTC()))
	aggregate.ClearPendingEvents()

	cmd, err := commands.NewReleaseCourierCommand(aggregate.ID(), orderID, false)
	require.NoError(t, err)

	uow, factory, courierRepo, outbox, geoIndex := newCourierTestBench(t)
	uow.On("Commit", ctx).Return(nil)
	courierRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	courierRepo.On("Update", mock.Anything, aggregate).Return(nil)
	outbox.On("Add", mock.Anything, mock.Anything).Return(nil)
	geoIndex.On("Upsert", aggregate.ID(), mock.Anything, true, mock.Anything).Return()

	handler := commands.NewReleaseCourierCommandHandler(factory, geoIndex)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, aggregate.Available())
	assert.Nil(t, aggregate.CurrentOrderID())
}

func TestReleaseCourierCommandHandler_Handle_CourierNotFound(t *testing.T) {
	ctx := t.Context()

	courierID := kernel.NewUUID()
	cmd, err := commands.NewReleaseCourierCommand(courierID, kernel.NewUUID(), false)
	require.NoError(t, err)

	uow, factory, courierRepo, _, geoIndex := newCourierTestBench(t)
	courierRepo.On("Get", mock.Anything, courierID).
		Return(nil, errs.NewObjectNotFoundError("courier", courierID.String()))

	handler := commands.NewReleaseCourierCommandHandler(factory, geoIndex)
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	geoIndex.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
