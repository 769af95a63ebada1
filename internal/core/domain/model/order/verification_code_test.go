package order_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	t.Run("should generate fixed-length numeric code", func(t *testing.T) {
		code, err := order.GenerateVerificationCode()

		require.NoError(t, err)
		require.NoError(t, code.Validate())
		assert.Regexp(t, `^\d{6}$`, code.String())
	})

	t.Run("should generate varying codes", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			code, err := order.GenerateVerificationCode()
			require.NoError(t, err)
			seen[code.String()] = true
		}

		// 20 identical draws from a million-value space would mean the
		// generator is broken.
		assert.Greater(t, len(seen), 1)
	})
}

func TestVerificationCodeFromString(t *testing.T) {
	t.Run("should restore valid code", func(t *testing.T) {
		code, err := order.VerificationCodeFromString("042357")

		require.NoError(t, err)
		require.NoError(t, code.Validate())
		assert.Equal(t, "042357", code.String())
	})

	t.Run("should reject wrong length", func(t *testing.T) {
		_, err := order.VerificationCodeFromString("12345")
		require.Error(t, err)

		_, err = order.VerificationCodeFromString("1234567")
		require.Error(t, err)

		_, err = order.VerificationCodeFromString("")
		require.Error(t, err)
	})

	t.Run("should reject non-digit characters", func(t *testing.T) {
		_, err := order.VerificationCodeFromString("12a456")
		require.Error(t, err)
	})
}

func TestVerificationCode_Matches(t *testing.T) {
	t.Run("should match exact value", func(t *testing.T) {
		code, err := order.VerificationCodeFromString("042357")
		require.NoError(t, err)

		assert.True(t, code.Matches("042357"))
	})

	t.Run("should reject different value", func(t *testing.T) {
		code, err := order.VerificationCodeFromString("042357")
		require.NoError(t, err)

		assert.False(t, code.Matches("042358"))
		assert.False(t, code.Matches("000000"))
	})

	t.Run("should reject value of different length", func(t *testing.T) {
		code, err := order.VerificationCodeFromString("042357")
		require.NoError(t, err)

		assert.False(t, code.Matches("04235"))
		assert.False(t, code.Matches(""))
	})
}

func TestVerificationCode_Validate(t *testing.T) {
	t.Run("should fail for zero value code", func(t *testing.T) {
		var code order.VerificationCode
		assert.ErrorIs(t, code.Validate(), order.ErrVerificationCodeIsNotConstructed)
	})
}
