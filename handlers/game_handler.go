package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jankeeper/jankeeper/middleware"
	"github.com/jankeeper/jankeeper/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gameService services.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

type gameScoresInput struct {
	Scores []services.ScoreInput `json:"scores"`
}

func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	sectionID, err := sectionIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.List(r.Context(), sectionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	sectionID, err := sectionIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input gameScoresInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Scores) == 0 {
		badRequestResponse(w, r, errors.New("scores are required"))
		return
	}

	game, err := h.gameService.Create(r.Context(), actor, sectionID, input.Scores)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	sectionID, err := sectionIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	gameID, err := gameIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input gameScoresInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Scores) == 0 {
		badRequestResponse(w, r, errors.New("scores are required"))
		return
	}

	game, err := h.gameService.UpdateScores(r.Context(), actor, sectionID, gameID, input.Scores)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	sectionID, err := sectionIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	gameID, err := gameIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.gameService.Delete(r.Context(), actor, sectionID, gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func gameIDFromURL(r *http.Request) (string, error) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		return "", errors.New("missing game ID in URL path")
	}
	return gameID, nil
}
