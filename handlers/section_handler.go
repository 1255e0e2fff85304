package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jankeeper/jankeeper/middleware"
	"github.com/jankeeper/jankeeper/models"
	"github.com/jankeeper/jankeeper/services"
)

type SectionHandler struct {
	sectionService services.SectionService
}

func NewSectionHandler(sectionService services.SectionService) *SectionHandler {
	return &SectionHandler{sectionService: sectionService}
}

// ListSections supports ?status=active|closed, ?search= over section
// names, and ?order=asc for oldest-first.
func (h *SectionHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	input := services.ListSectionsInput{
		Search:    r.URL.Query().Get("search"),
		Ascending: r.URL.Query().Get("order") == "asc",
	}

	switch status := r.URL.Query().Get("status"); status {
	case "":
	case string(models.SectionActive):
		s := models.SectionActive
		input.Status = &s
	case string(models.SectionClosed):
		s := models.SectionClosed
		input.Status = &s
	default:
		badRequestResponse(w, r, errors.New("status must be active or closed"))
		return
	}

	sections, err := h.sectionService.List(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"sections": sections}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SectionHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateSectionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	section, err := h.sectionService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"section": section}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SectionHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	sectionID, err := sectionIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	section, err := h.sectionService.Get(r.Context(), sectionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"section": section}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SectionHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
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

	var input services.UpdateSectionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Name == nil && input.StartingPoints == nil && input.ReturnPoints == nil && input.Rate == nil {
		badRequestResponse(w, r, errors.New("no fields provided for update"))
		return
	}

	section, err := h.sectionService.Update(r.Context(), actor, sectionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"section": section}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SectionHandler) CloseSection(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sectionService.Close)
}

func (h *SectionHandler) ReopenSection(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sectionService.Reopen)
}

func (h *SectionHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, actor services.Actor, id string) (*models.Section, error),
) {
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

	section, err := apply(r.Context(), actor, sectionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"section": section}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SectionHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
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

	if err := h.sectionService.Delete(r.Context(), actor, sectionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SectionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sectionID, err := sectionIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.sectionService.Summary(r.Context(), sectionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func sectionIDFromURL(r *http.Request) (string, error) {
	sectionID := chi.URLParam(r, "sectionID")
	if sectionID == "" {
		return "", errors.New("missing section ID in URL path")
	}
	return sectionID, nil
}
