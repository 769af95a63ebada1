package order

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// VerificationCodeLength is the number of digits in a proof-of-delivery code.
const VerificationCodeLength = 6

// ErrVerificationCodeIsNotConstructed is returned when using a
// VerificationCode that was not created via its constructors.
var ErrVerificationCodeIsNotConstructed = errors.New(
	"VerificationCode must be created via GenerateVerificationCode or VerificationCodeFromString")

// VerificationCode is the single-use shared secret proving delivery to the
// right customer. The engine hands it to the customer when the order becomes
// ready for pickup; the courier must submit it to complete the delivery.
//
// Matching is constant-time: the code is a shared-secret check, so the
// comparison must not leak how many leading digits were right.
type VerificationCode struct { //nolint:recvcheck //using for validation
	value string
	guard guard.ConstructorGuard
}

// GenerateVerificationCode produces a random fixed-length numeric code using
// crypto/rand. Leading zeros are preserved.
func GenerateVerificationCode() (VerificationCode, error) {
	bound := big.NewInt(1)
	for range VerificationCodeLength {
		bound.Mul(bound, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return VerificationCode{}, fmt.Errorf("generate verification code: %w", err)
	}

	return VerificationCode{
		value: fmt.Sprintf("%0*d", VerificationCodeLength, n),
		guard: guard.NewConstructorGuard(),
	}, nil
}

// VerificationCodeFromString restores a code from persistence.
// The value must be exactly VerificationCodeLength decimal digits.
func VerificationCodeFromString(value string) (VerificationCode, error) {
	if len(value) != VerificationCodeLength {
		return VerificationCode{}, errs.NewValueIsInvalidErrorWithCause("verification code",
			fmt.Errorf("length %d, want %d", len(value), VerificationCodeLength))
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return VerificationCode{}, errs.NewValueIsInvalidErrorWithCause("verification code",
				errors.New("contains a non-digit character"))
		}
	}

	return VerificationCode{
		value: value,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the code was created through a constructor.
func (c VerificationCode) Validate() error {
	return c.guard.Validate(ErrVerificationCodeIsNotConstructed)
}

// String returns the code digits, e.g. for the customer-facing snapshot.
func (c VerificationCode) String() string {
	return c.value
}

// Matches reports whether the submitted value equals the stored code using a
// constant-time comparison.
func (c VerificationCode) Matches(submitted string) bool {
	if len(submitted) != len(c.value) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.value), []byte(submitted)) == 1
}
