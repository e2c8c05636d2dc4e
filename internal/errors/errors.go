// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. Sign-in failures are classified by kind so they can be
// logged consistently without being surfaced to callers as faults.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// InteractiveFlowFailed indicates the interactive sign-in was cancelled, rejected or
	// failed on the network.
	InteractiveFlowFailed Kind = "interactive_flow_failed"
	// AmbiguousAccount indicates more than one cached account and no way to pick one.
	AmbiguousAccount Kind = "ambiguous_account"
	// NoRemoteSession indicates sign-in returned no result and the account cache is empty.
	NoRemoteSession Kind = "no_remote_session"
	// ConfigInvalid indicates the CLI configuration failed validation.
	ConfigInvalid Kind = "config_invalid"
	// StorageUnavailable indicates the OS keychain could not be opened.
	StorageUnavailable Kind = "storage_unavailable"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
