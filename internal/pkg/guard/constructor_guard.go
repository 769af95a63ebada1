// Package guard implements the constructor-guard pattern used by domain
// value objects and commands to detect zero-value instances that bypassed
// their designated constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when a nil error is
// passed as the validation error, so validation always fails with a
// meaningful message.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as created through its constructor.
// Embed it in a struct and set it with NewConstructorGuard inside the
// constructor; a zero-value struct will then fail Validate.
//
// Example:
//
//	type VerificationCode struct {
//	    value string
//	    guard guard.ConstructorGuard
//	}
//
//	func NewVerificationCode(value string) (VerificationCode, error) {
//	    if len(value) != 6 {
//	        return VerificationCode{}, errors.New("code must be 6 digits")
//	    }
//	    return VerificationCode{value: value, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (c VerificationCode) Validate() error {
//	    return c.guard.Validate(ErrCodeIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marking the enclosing object as
// properly constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil if the object was created through its constructor.
// Otherwise it returns validationError, or ErrDefaultConstructorGuard when
// validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
