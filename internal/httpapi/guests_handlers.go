package httpapi

import (
	"net/http"

	"societyhub.org/internal/society"
)

func (a *API) createGuest(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in society.CreateGuestInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	g, err := a.svc.CreateGuest(r.Context(), id, in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (a *API) listGuests(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := a.svc.ListGuests(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) listPendingGuests(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := a.svc.ListPendingGuests(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getGuest(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	g, err := a.svc.GetGuest(r.Context(), id, r.PathValue("id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *API) decideGuest(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejectionReason"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	g, err := a.svc.DecideGuest(r.Context(), id, r.PathValue("id"), in.Status, in.RejectionReason)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *API) deleteGuest(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := a.svc.DeleteGuest(r.Context(), id, r.PathValue("id")); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
