package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const requestTimeout = 5 * time.Second

type startRequest struct {
	Cost              int `json:"cost"`
	TargetMoneyAmount int `json:"targetMoneyAmount"`
}

// GET /v1/users/{userID}/challenge - Current challenge, progress and balance
func (a *API) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	a.respondWithSnapshot(ctx, w, r, user, http.StatusOK)
}

// POST /v1/users/{userID}/challenge/start - Stake credits on a new challenge
func (a *API) StartChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithErr(w, r, err)
		return
	}

	if err := a.challenges.Start(ctx, user, req.Cost, req.TargetMoneyAmount); err != nil {
		respondWithErr(w, r, err)
		return
	}

	a.respondWithSnapshot(ctx, w, r, user, http.StatusCreated)
}

// POST /v1/users/{userID}/challenge/continue - Pay to revive a failed challenge
func (a *API) ContinueChallenge(w http.ResponseWriter, r *http.Request) {
	a.command(w, r, a.challenges.Continue)
}

// POST /v1/users/{userID}/challenge/reset - Give up the current challenge
func (a *API) ResetChallenge(w http.ResponseWriter, r *http.Request) {
	a.command(w, r, a.challenges.Reset)
}

// POST /v1/users/{userID}/challenge/watch - Mark today as watched
func (a *API) RecordWatch(w http.ResponseWriter, r *http.Request) {
	a.command(w, r, a.challenges.RecordWatch)
}

// POST /v1/users/{userID}/challenge/video-start - Record that a video started now
func (a *API) RecordVideoStart(w http.ResponseWriter, r *http.Request) {
	a.command(w, r, a.challenges.RecordVideoStartTime)
}

// POST /v1/users/{userID}/hooks/{hookID} - Run a lifecycle hook
func (a *API) RunHook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	result, err := a.hooks.RunHook(ctx, mux.Vars(r)["hookID"], user)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (a *API) command(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID string) error) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	if err := fn(ctx, user); err != nil {
		respondWithErr(w, r, err)
		return
	}

	a.respondWithSnapshot(ctx, w, r, user, http.StatusOK)
}

func (a *API) respondWithSnapshot(ctx context.Context, w http.ResponseWriter, r *http.Request, user string, code int) {
	snap, err := a.challenges.Snapshot(ctx, user)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}
	respondWithJSON(w, code, snap)
}
