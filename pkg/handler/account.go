package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AccelByte/extend-resolve-challenge/pkg/challenge"
	"github.com/AccelByte/extend-resolve-challenge/pkg/state"

	"github.com/gorilla/mux"
)

type creditsRequest struct {
	Amount int `json:"amount"`
}

type creditsResponse struct {
	Balance int `json:"balance"`
}

type playbackTimeRequest struct {
	PlaybackTime string `json:"playbackTime"`
}

type regionRequest struct {
	Region string `json:"region"`
}

type historyRequest struct {
	ContentID string `json:"contentId"`
}

type deviceRequest struct {
	Token string `json:"token"`
}

// GET /v1/users/{userID}/credits - Current credit balance
func (a *API) GetCredits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	balance, err := a.challenges.Balance(ctx, user)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, creditsResponse{Balance: balance})
}

// POST /v1/users/{userID}/credits - Add purchased credits
func (a *API) AddCredits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	var req creditsRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithErr(w, r, err)
		return
	}

	if err := a.challenges.AddCredits(ctx, user, req.Amount); err != nil {
		respondWithErr(w, r, err)
		return
	}

	balance, err := a.challenges.Balance(ctx, user)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, creditsResponse{Balance: balance})
}

// POST /v1/users/{userID}/credits/deduct - Remove credits, e.g. a refunded purchase
func (a *API) DeductCredits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	var req creditsRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithErr(w, r, err)
		return
	}

	if err := a.challenges.DeductCredits(ctx, user, req.Amount); err != nil {
		respondWithErr(w, r, err)
		return
	}

	balance, err := a.challenges.Balance(ctx, user)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, creditsResponse{Balance: balance})
}

// PUT /v1/users/{userID}/settings/playback-time - Set the daily "HH:MM" playback time
func (a *API) SetPlaybackTime(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	var req playbackTimeRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithErr(w, r, err)
		return
	}

	p, err := state.ParsePlaybackTime(req.PlaybackTime)
	if err != nil {
		respondWithErr(w, r, fmt.Errorf("%v: %w", err, challenge.ErrInvalidArgument))
		return
	}

	if err := a.challenges.SetPlaybackTime(ctx, user, p); err != nil {
		respondWithErr(w, r, err)
		return
	}

	a.respondWithSnapshot(ctx, w, r, user, http.StatusOK)
}

// PUT /v1/users/{userID}/settings/region - Set the region used for day boundaries
func (a *API) SetRegion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	var req regionRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithErr(w, r, err)
		return
	}

	if err := a.challenges.SetRegion(ctx, user, req.Region); err != nil {
		respondWithErr(w, r, err)
		return
	}

	a.respondWithSnapshot(ctx, w, r, user, http.StatusOK)
}

// POST /v1/users/{userID}/history - Record a played video
func (a *API) RecordPlayed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	var req historyRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithErr(w, r, err)
		return
	}

	if err := a.challenges.RecordPlayed(ctx, user, req.ContentID); err != nil {
		respondWithErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/users/{userID}/history - Recently played videos, or ?contentId= for one
func (a *API) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	if contentID := strings.TrimSpace(r.URL.Query().Get("contentId")); contentID != "" {
		played, err := a.challenges.PlayedRecently(ctx, user, contentID)
		if err != nil {
			respondWithErr(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"contentId":      contentID,
			"playedRecently": played,
		})
		return
	}

	ids, err := a.challenges.RecentlyPlayed(ctx, user)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	respondWithJSON(w, http.StatusOK, map[string][]string{"contentIds": ids})
}

// POST /v1/users/{userID}/devices - Register a push token
func (a *API) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	var req deviceRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithErr(w, r, err)
		return
	}

	if err := a.challenges.RegisterDevice(ctx, user, req.Token); err != nil {
		respondWithErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /v1/users/{userID}/devices/{token} - Remove a push token
func (a *API) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		respondWithErr(w, r, err)
		return
	}

	if err := a.challenges.UnregisterDevice(ctx, user, mux.Vars(r)["token"]); err != nil {
		respondWithErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
