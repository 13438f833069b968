package httpapi

import (
	"net/http"

	"societyhub.org/internal/society"
)

func (a *API) createComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in society.CreateComplaintInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := a.svc.CreateComplaint(r.Context(), id, in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) listComplaints(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := a.svc.ListComplaints(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	c, err := a.svc.GetComplaint(r.Context(), id, r.PathValue("id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) updateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in struct {
		Status     string  `json:"status"`
		AssignedTo *string `json:"assignedTo"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := a.svc.UpdateComplaintStatus(r.Context(), id, r.PathValue("id"), in.Status, in.AssignedTo)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) addComplaintComment(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := a.svc.AddComplaintComment(r.Context(), id, r.PathValue("id"), in.Text)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) deleteComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := a.svc.DeleteComplaint(r.Context(), id, r.PathValue("id")); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
