// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import "errors"

// ErrInvalidTransition is returned when an operation is not allowed from the
// challenge's current status. The challenge is left unchanged.
var ErrInvalidTransition = errors.New("invalid challenge state transition")
