// Package services contains stateless domain services of the fulfillment
// engine.
//
// CandidateRanker implements the nearest-courier matching policy as a pure
// function of (courier positions, pickup point, radius): no hidden state, no
// I/O, so the policy is unit-testable in isolation. The actual reservation of
// the chosen courier is a separate compare-and-set performed by the
// application layer.
package services
