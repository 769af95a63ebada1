package guard_test

import (
	"errors"
	"testing"

	"fulfillment/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstructorGuard(t *testing.T) {
	t.Run("creates_properly_constructed_guard", func(t *testing.T) {
		// When
		guard := guard.NewConstructorGuard()

		// Then
		assert.NotNil(t, guard)

		// Test with custom error
		customError := errors.New("test object not constructed")
		require.NoError(t, guard.Validate(customError))

		// Test with nil error (should use default)
		require.NoError(t, guard.Validate(nil))
	})
}

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("properly_constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		guard := guard.NewConstructorGuard()
		customError := errors.New("not constructed")

		// When
		err := guard.Validate(customError)

		// Then
		require.NoError(t, err)
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var guard guard.ConstructorGuard // zero value
		expectedError := errors.New("entity not constructed")

		// When
		err := guard.Validate(expectedError)

		// Then
		require.Error(t, err)
		assert.Equal(t, expectedError, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard // zero value

		// When
		err := g.Validate(nil)

		// Then
		require.Error(t, err)
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
	})
}

// TestConstructorGuardUsageExample demonstrates how ConstructorGuard should be used
// in a domain object to enforce constructor usage.
func TestConstructorGuardUsageExample(t *testing.T) {
	// Define a sample domain object that uses ConstructorGuard
	type DeliveryFee struct {
		cents int64
		zone  string
		guard guard.ConstructorGuard
	}

	var errFeeNotConstructed = errors.New("DeliveryFee must be created via NewDeliveryFee")

	newDeliveryFee := func(cents int64, zone string) (DeliveryFee, error) {
		if cents < 0 {
			return DeliveryFee{}, errors.New("fee cannot be negative")
		}
		if zone == "" {
			return DeliveryFee{}, errors.New("zone is required")
		}
		return DeliveryFee{
			cents: cents,
			zone:  zone,
			guard: guard.NewConstructorGuard(),
		}, nil
	}

	validateFee := func(f DeliveryFee) error {
		return f.guard.Validate(errFeeNotConstructed)
	}

	t.Run("valid_construction_through_constructor", func(t *testing.T) {
		// When
		fee, err := newDeliveryFee(299, "paris-center")

		// Then
		require.NoError(t, err)
		require.NoError(t, validateFee(fee))
		assert.Equal(t, int64(299), fee.cents)
		assert.Equal(t, "paris-center", fee.zone)
	})

	t.Run("zero_value_construction_validation", func(t *testing.T) {
		// Given
		var fee DeliveryFee // zero value

		// When
		err := validateFee(fee)

		// Then
		// Zero value DeliveryFee has zero value guard which returns the error we pass
		require.Error(t, err)
		assert.Equal(t, errFeeNotConstructed, err)
	})

	t.Run("constructor_validates_business_rules", func(t *testing.T) {
		// Test negative fee
		_, err := newDeliveryFee(-299, "paris-center")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fee cannot be negative")

		// Test empty zone
		_, err = newDeliveryFee(299, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "zone is required")
	})
}

// TestConstructorGuardRealWorldExample shows a better pattern using embedded types.
func TestConstructorGuardRealWorldExample(t *testing.T) {
	// Define error once
	var errDishNotConstructed = errors.New("Dish must be created via NewDish")

	// Define a guard-aware base type
	type guardedDish struct {
		guard guard.ConstructorGuard
	}

	newGuardedDish := func() guardedDish {
		return guardedDish{
			guard: guard.NewConstructorGuard(),
		}
	}

	validateGuardedDish := func(g guardedDish) error {
		return g.guard.Validate(errDishNotConstructed)
	}

	// Define the actual domain object
	type Dish struct {
		guardedDish
		id         string
		name       string
		priceCents int
	}

	newDish := func(id, name string, priceCents int) (Dish, error) {
		if id == "" {
			return Dish{}, errors.New("dish ID is required")
		}
		if name == "" {
			return Dish{}, errors.New("dish name is required")
		}
		if priceCents < 0 {
			return Dish{}, errors.New("dish price cannot be negative")
		}
		return Dish{
			guardedDish: newGuardedDish(),
			id:          id,
			name:        name,
			priceCents:  priceCents,
		}, nil
	}

	t.Run("valid_dish_construction", func(t *testing.T) {
		// When
		dish, err := newDish("m-01", "Margherita", 899)

		// Then
		require.NoError(t, err)
		require.NoError(t, validateGuardedDish(dish.guardedDish))
		assert.Equal(t, "m-01", dish.id)
		assert.Equal(t, "Margherita", dish.name)
		assert.Equal(t, 899, dish.priceCents)
	})

	t.Run("zero_value_dish_fails_validation", func(t *testing.T) {
		// Given
		var dish Dish // zero value

		// When
		err := validateGuardedDish(dish.guardedDish)

		// Then
		// Zero value has zero value guard which returns the error we pass
		require.Error(t, err)
		assert.Equal(t, errDishNotConstructed, err)
	})
}

// TestConstructorGuardWithMultipleErrors demonstrates using ConstructorGuard
// with different error types and messages.
func TestConstructorGuardWithMultipleErrors(t *testing.T) {
	testCases := []struct {
		name          string
		expectedError error
	}{
		{
			name:          "order_not_constructed_error",
			expectedError: errors.New("Order must be created via NewOrder"),
		},
		{
			name:          "courier_not_constructed_error",
			expectedError: errors.New("Courier must be created via NewCourier factory method"),
		},
		{
			name:          "restaurant_not_constructed_error",
			expectedError: errors.New("Restaurant requires proper initialization through constructor"),
		},
		{
			name:          "nil_error_uses_default",
			expectedError: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Given
			guard := guard.NewConstructorGuard()

			// When
			err := guard.Validate(tc.expectedError)

			// Then
			require.NoError(t, err, "Properly constructed guard should not return error")
		})
	}
}

// TestConstructorGuardDefaultError verifies the default error behavior.
func TestConstructorGuardDefaultError(t *testing.T) {
	t.Run("nil_error_uses_default_for_zero_value", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard // zero value

		// When
		err := g.Validate(nil)

		// Then
		require.Error(t, err)
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
	})

	t.Run("default_error_constant_has_meaningful_message", func(t *testing.T) {
		// Then
		require.Error(t, guard.ErrDefaultConstructorGuard)
		assert.Contains(t, guard.ErrDefaultConstructorGuard.Error(), "constructor")
		assert.Equal(t, "object must be created via its constructor", guard.ErrDefaultConstructorGuard.Error())
	})
}

// BenchmarkConstructorGuard measures the performance overhead of using ConstructorGuard.
func BenchmarkConstructorGuard(b *testing.B) {
	b.Run("NewConstructorGuard", func(b *testing.B) {
		b.ResetTimer()
		for range b.N {
			_ = guard.NewConstructorGuard()
		}
	})

	b.Run("Validate_Success", func(b *testing.B) {
		guard := guard.NewConstructorGuard()
		err := errors.New("not constructed")
		b.ResetTimer()
		for range b.N {
			_ = guard.Validate(err)
		}
	})

	b.Run("Validate_ZeroValue", func(b *testing.B) {
		var guard guard.ConstructorGuard
		err := errors.New("not constructed")
		b.ResetTimer()
		for range b.N {
			_ = guard.Validate(err)
		}
	})
}

// TestConstructorGuardConcurrency verifies that ConstructorGuard is safe for concurrent use.
func TestConstructorGuardConcurrency(t *testing.T) {
	guard := guard.NewConstructorGuard()
	validationError := errors.New("not constructed")

	// Run multiple goroutines that validate the guard concurrently
	done := make(chan bool)
	for range 100 {
		go func() {
			for range 1000 {
				err := guard.Validate(validationError)
				assert.NoError(t, err)
			}
			done <- true
		}()
	}

	// Wait for all goroutines to complete
	for range 100 {
		<-done
	}
}

// TestConstructorGuardImmutability verifies that ConstructorGuard is immutable.
func TestConstructorGuardImmutability(t *testing.T) {
	t.Run("guard_fields_are_not_modifiable", func(t *testing.T) {
		// Given
		originalError := errors.New("original error")
		g := guard.NewConstructorGuard()

		// When
		// Try to create another guard
		anotherError := errors.New("another error")
		_ = guard.NewConstructorGuard()

		// Then
		// Original guard should still validate successfully
		require.NoError(t, g.Validate(originalError))
		require.NoError(t, g.Validate(anotherError))
	})

	t.Run("guard_can_be_safely_passed_by_value", func(t *testing.T) {
		// Given
		guard := guard.NewConstructorGuard()
		testError := errors.New("test error")

		// When
		guardCopy := guard // Pass by value

		// Then
		require.NoError(t, guard.Validate(testError))
		require.NoError(t, guardCopy.Validate(testError))
	})
}
