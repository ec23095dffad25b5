// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"time"

	"github.com/AccelByte/extend-resolve-challenge/pkg/state"
)

// Settings are the per-user values the challenge evaluators read.
type Settings struct {
	PlaybackTime *state.PlaybackTime `json:"playbackTime,omitempty"`
	// Region is a locale ("ja_JP") or an IANA zone name. Empty means the
	// service default zone.
	Region string `json:"region,omitempty"`
	// LastVideoStartTime is the most recent video start, possibly from a
	// previous day.
	LastVideoStartTime *time.Time `json:"lastVideoStartTime,omitempty"`
}
