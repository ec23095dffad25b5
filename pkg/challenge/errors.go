// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"errors"

	"github.com/AccelByte/extend-resolve-challenge/pkg/service"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

var (
	// ErrInsufficientCredits is returned when the balance does not cover
	// the stake. The prior state is untouched, except that a reactivation
	// attempt clears the stale challenge.
	ErrInsufficientCredits = service.ErrInsufficientCredits
	// ErrInvalidTransition is returned when the operation is not allowed
	// from the current status. Nothing is mutated.
	ErrInvalidTransition = state.ErrInvalidTransition
	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
)
