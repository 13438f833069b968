package httpapi

import (
	"net/http"

	"societyhub.org/internal/society"
)

func (a *API) createNotice(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in society.CreateNoticeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	n, err := a.svc.CreateNotice(r.Context(), id, in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (a *API) listNotices(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := a.svc.ListNotices(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getNotice(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	n, err := a.svc.GetNotice(r.Context(), id, r.PathValue("id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) updateNotice(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in society.UpdateNoticeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	n, err := a.svc.UpdateNotice(r.Context(), id, r.PathValue("id"), in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) deleteNotice(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := a.svc.DeleteNotice(r.Context(), id, r.PathValue("id")); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
