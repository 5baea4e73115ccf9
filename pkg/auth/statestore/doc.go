// Package statestore provides backends for one-time OAuth CSRF state
// tokens, implementing the auth.StateStore contract.
//
// The redis store is the production choice: states are written with a TTL
// and consumed atomically with GETDEL, so a state survives process restarts
// and can never be redeemed twice even across concurrent callbacks. The
// memory store serves tests and single-process development setups.
package statestore
