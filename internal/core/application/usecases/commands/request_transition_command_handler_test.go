package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestTransitionCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()

	aggregate := newTestOrder(t)
	aggregate.ClearPendingEvents()
	restaurantNext := order.SystemActor()
	cmd, err := commands.NewRequestTransitionCommand(
		aggregate.ID(), order.WaitingRestaurantValidation, restaurantNext, "", "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	outbox := new(MockOutboxRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		orderRepo.On("Update", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outbox).Once(),
		outbox.On("Add", mock.Anything, mock.AnythingOfType("[]ports.OutboxMessage")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRequestTransitionCommandHandler(factory)
	updated, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, order.WaitingRestaurantValidation, updated.Status())
	assert.Empty(t, updated.PendingEvents())

	orderRepo.AssertExpectations(t)
	outbox.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestRequestTransitionCommandHandler_Handle_InvalidTransitionLeavesStateAlone(t *testing.T) {
	ctx := t.Context()

	aggregate := newTestOrder(t)
	aggregate.ClearPendingEvents()
	restaurant, err := order.NewActor(order.RoleRestaurant, aggregate.RestaurantID())
	require.NoError(t, err)
	cmd, err := commands.NewRequestTransitionCommand(
		aggregate.ID(), order.Processing, restaurant, "", "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", ctx).Return(nil)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	handler := commands.NewRequestTransitionCommandHandler(factory)
	updated, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
	assert.Nil(t, updated)
	assert.Equal(t, order.Pending, aggregate.Status())
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestRequestTransitionCommandHandler_Handle_FailedVerificationPersistsAttempt(t *testing.T) {
	ctx := t.Context()

	aggregate := newReadyOrder(t)
	courierID := kernel.NewUUID()
	require.NoError(t, aggregate.Assign(courierID, aggregate.CreatedAt()))
	courierActor, err := order.NewActor(order.RoleCourier, courierID)
	require.NoError(t, err)
	require.NoError(t, aggregate.RequestTransition(order.OnDelivery, courierActor, order.TransitionOptions{}, aggregate.CreatedAt()))
	aggregate.ClearPendingEvents()

	cmd, err := commands.NewRequestTransitionCommand(
		aggregate.ID(), order.Delivered, courierActor, "000000", "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	orderRepo.On("Update", mock.Anything, aggregate).Return(nil)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	handler := commands.NewRequestTransitionCommandHandler(factory)
	updated, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrVerificationFailed)
	assert.Nil(t, updated)
	assert.Equal(t, order.OnDelivery, aggregate.Status(), "failed verification must not advance the order")
	assert.Equal(t, 1, aggregate.CodeAttempts())

	// The attempt counter must reach storage even though the transition failed.
	orderRepo.AssertCalled(t, "Update", mock.Anything, aggregate)
	uow.AssertCalled(t, "Commit", ctx)
}

func TestRequestTransitionCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()

	orderID := kernel.NewUUID()
	customer, err := order.NewActor(order.RoleCustomer, kernel.NewUUID())
	require.NoError(t, err)
	cmd, err := commands.NewRequestTransitionCommand(orderID, order.Cancelled, customer, "", "changed my mind")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).
		Return(nil, errs.NewObjectNotFoundError("order", orderID.String()))
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", ctx).Return(nil)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	handler := commands.NewRequestTransitionCommandHandler(factory)
	updated, handleErr := handler.Handle(ctx, cmd)

	require.Error(t, handleErr)
	assert.ErrorIs(t, handleErr, errs.ErrObjectNotFound)
	assert.Nil(t, updated)
}

func TestRequestTransitionCommandHandler_Handle_VersionConflictSurfaces(t *testing.T) {
	ctx := t.Context()

	aggregate := newTestOrder(t)
	aggregate.ClearPendingEvents()
	cmd, err := commands.NewRequestTransitionCommand(
		aggregate.ID(), order.WaitingRestaurantValidation, order.SystemActor(), "", "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	orderRepo.On("Update", mock.Anything, aggregate).
		Return(errs.NewVersionIsInvalidErrorWithCause("order " + aggregate.ID().String()))
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", ctx).Return(nil)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	handler := commands.NewRequestTransitionCommandHandler(factory)
	updated, handleErr := handler.Handle(ctx, cmd)

	require.Error(t, handleErr)
	assert.ErrorIs(t, handleErr, errs.ErrVersionIsInvalid)
	assert.Nil(t, updated)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestNewRequestTransitionCommand(t *testing.T) {
	t.Run("should fail with invalid order UUID", func(t *testing.T) {
		var invalidID kernel.UUID
		_, err := commands.NewRequestTransitionCommand(
			invalidID, order.Cancelled, order.SystemActor(), "", "")
		require.Error(t, err)
	})

	t.Run("should fail with unknown target status", func(t *testing.T) {
		_, err := commands.NewRequestTransitionCommand(
			kernel.NewUUID(), order.Unknown, order.SystemActor(), "", "")
		require.Error(t, err)
	})

	t.Run("should fail for unconstructed command", func(t *testing.T) {
		var cmd commands.RequestTransitionCommand
		require.Error(t, cmd.Validate())
	})
}
