package handler

import (
	"context"

	"github.com/AccelByte/extend-resolve-challenge/pkg/challenge"
	"github.com/AccelByte/extend-resolve-challenge/pkg/pipeline"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"

	"github.com/gorilla/mux"
)

// ChallengeService is the challenge API the handlers drive.
// *challenge.Manager implements it.
type ChallengeService interface {
	Start(ctx context.Context, userID string, cost, targetMoney int) error
	Continue(ctx context.Context, userID string) error
	Reset(ctx context.Context, userID string) error
	RecordWatch(ctx context.Context, userID string) error
	RecordVideoStartTime(ctx context.Context, userID string) error
	Snapshot(ctx context.Context, userID string) (*challenge.Snapshot, error)

	Balance(ctx context.Context, userID string) (int, error)
	AddCredits(ctx context.Context, userID string, amount int) error
	DeductCredits(ctx context.Context, userID string, amount int) error

	SetPlaybackTime(ctx context.Context, userID string, p state.PlaybackTime) error
	SetRegion(ctx context.Context, userID, region string) error

	RecordPlayed(ctx context.Context, userID, contentID string) error
	PlayedRecently(ctx context.Context, userID, contentID string) (bool, error)
	RecentlyPlayed(ctx context.Context, userID string) ([]string, error)

	RegisterDevice(ctx context.Context, userID, token string) error
	UnregisterDevice(ctx context.Context, userID, token string) error
}

// HookRunner runs a lifecycle hook. *pipeline.Manager implements it.
type HookRunner interface {
	RunHook(ctx context.Context, hookID, userID string) (*pipeline.HookResult, error)
}

// API serves the per-user challenge commands.
type API struct {
	challenges ChallengeService
	hooks      HookRunner
}

// NewAPI creates the HTTP API.
func NewAPI(challenges ChallengeService, hooks HookRunner) *API {
	return &API{challenges: challenges, hooks: hooks}
}

// Register mounts the API routes on r.
func (a *API) Register(r *mux.Router) {
	users := r.PathPrefix("/v1/users/{userID}").Subrouter()

	users.HandleFunc("/challenge", a.GetChallenge).Methods("GET")
	users.HandleFunc("/challenge/start", a.StartChallenge).Methods("POST")
	users.HandleFunc("/challenge/continue", a.ContinueChallenge).Methods("POST")
	users.HandleFunc("/challenge/reset", a.ResetChallenge).Methods("POST")
	users.HandleFunc("/challenge/watch", a.RecordWatch).Methods("POST")
	users.HandleFunc("/challenge/video-start", a.RecordVideoStart).Methods("POST")

	users.HandleFunc("/hooks/{hookID}", a.RunHook).Methods("POST")

	users.HandleFunc("/credits", a.GetCredits).Methods("GET")
	users.HandleFunc("/credits", a.AddCredits).Methods("POST")
	users.HandleFunc("/credits/deduct", a.DeductCredits).Methods("POST")

	users.HandleFunc("/settings/playback-time", a.SetPlaybackTime).Methods("PUT")
	users.HandleFunc("/settings/region", a.SetRegion).Methods("PUT")

	users.HandleFunc("/history", a.RecordPlayed).Methods("POST")
	users.HandleFunc("/history", a.GetHistory).Methods("GET")

	users.HandleFunc("/devices", a.RegisterDevice).Methods("POST")
	users.HandleFunc("/devices/{token}", a.UnregisterDevice).Methods("DELETE")
}
