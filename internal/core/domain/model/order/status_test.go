package order_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransition(t *testing.T) {
	t.Run("should allow table edges for permitted roles", func(t *testing.T) {
		testCases := []struct {
			from order.Status
			to   order.Status
			role order.Role
		}{
			{order.Pending, order.WaitingRestaurantValidation, order.RoleSystem},
			{order.Pending, order.Cancelled, order.RoleCustomer},
			{order.WaitingRestaurantValidation, order.Processing, order.RoleRestaurant},
			{order.WaitingRestaurantValidation, order.Cancelled, order.RoleRestaurant},
			{order.WaitingRestaurantValidation, order.Cancelled, order.RoleCustomer},
			{order.Processing, order.ReadyForPickup, order.RoleRestaurant},
			{order.Processing, order.Cancelled, order.RoleCustomer},
			{order.ReadyForPickup, order.OnDelivery, order.RoleCourier},
			{order.ReadyForPickup, order.Cancelled, order.RoleRestaurant},
			{order.ReadyForPickup, order.Cancelled, order.RoleSystem},
			{order.OnDelivery, order.Delivered, order.RoleCourier},
		}

		for _, tc := range testCases {
			t.Run(tc.from.String()+" to "+tc.to.String()+" by "+tc.role.String(), func(t *testing.T) {
				assert.NoError(t, tc.from.CanTransition(tc.to, tc.role))
			})
		}
	})

	t.Run("should reject edges missing from the table", func(t *testing.T) {
		testCases := []struct {
			from order.Status
			to   order.Status
		}{
			{order.Pending, order.Processing},
			{order.Pending, order.Delivered},
			{order.WaitingRestaurantValidation, order.ReadyForPickup},
			{order.OnDelivery, order.Cancelled},
			{order.Delivered, order.Cancelled},
			{order.Cancelled, order.Processing},
			{order.Delivered, order.Pending},
		}

		for _, tc := range testCases {
			t.Run(tc.from.String()+" to "+tc.to.String(), func(t *testing.T) {
				err := tc.from.CanTransition(tc.to, order.RoleSystem)
				assert.ErrorIs(t, err, order.ErrInvalidTransition)
			})
		}
	})

	t.Run("should reject permitted edge for wrong role", func(t *testing.T) {
		testCases := []struct {
			from order.Status
			to   order.Status
			role order.Role
		}{
			{order.Pending, order.WaitingRestaurantValidation, order.RoleCustomer},
			{order.WaitingRestaurantValidation, order.Processing, order.RoleCustomer},
			{order.Processing, order.ReadyForPickup, order.RoleCourier},
			{order.ReadyForPickup, order.OnDelivery, order.RoleRestaurant},
			{order.ReadyForPickup, order.Cancelled, order.RoleCustomer},
			{order.OnDelivery, order.Delivered, order.RoleCustomer},
		}

		for _, tc := range testCases {
			t.Run(tc.from.String()+" to "+tc.to.String()+" by "+tc.role.String(), func(t *testing.T) {
				err := tc.from.CanTransition(tc.to, tc.role)
				assert.ErrorIs(t, err, order.ErrUnauthorized)
			})
		}
	})
}

func TestStatusFromString(t *testing.T) {
	t.Run("should parse all stable names", func(t *testing.T) {
		testCases := map[string]order.Status{
			"pending":                       order.Pending,
			"waiting_restaurant_validation": order.WaitingRestaurantValidation,
			"processing":                    order.Processing,
			"ready_for_pickup":              order.ReadyForPickup,
			"on_delivery":                   order.OnDelivery,
			"delivered":                     order.Delivered,
			"cancelled":                     order.Cancelled,
		}

		for name, expected := range testCases {
			status, err := order.StatusFromString(name)

			require.NoError(t, err)
			assert.Equal(t, expected, status)
			assert.Equal(t, name, status.String())
		}
	})

	t.Run("should reject unknown name", func(t *testing.T) {
		_, err := order.StatusFromString("shipped")
		require.Error(t, err)
	})

	t.Run("should reject empty name", func(t *testing.T) {
		_, err := order.StatusFromString("")
		require.Error(t, err)
	})
}

func TestStatus_Validate(t *testing.T) {
	t.Run("should accept lifecycle statuses", func(t *testing.T) {
		for _, status := range []order.Status{
			order.Pending, order.WaitingRestaurantValidation, order.Processing,
			order.ReadyForPickup, order.OnDelivery, order.Delivered, order.Cancelled,
		} {
			assert.NoError(t, status.Validate())
		}
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		assert.Error(t, order.Unknown.Validate())
	})
}
