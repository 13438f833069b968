package httpapi

import (
	"net/http"

	"societyhub.org/internal/society"
)

func (a *API) createPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in society.CreatePaymentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.svc.CreatePayment(r.Context(), id, in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) listPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := a.svc.ListPayments(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) paymentStats(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	stats, err := a.svc.PaymentStatistics(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) getPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	p, err := a.svc.GetPayment(r.Context(), id, r.PathValue("id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) payPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in society.PayPaymentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.svc.PayPayment(r.Context(), id, r.PathValue("id"), in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.svc.UpdatePaymentStatus(r.Context(), id, r.PathValue("id"), in.Status)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := a.svc.DeletePayment(r.Context(), id, r.PathValue("id")); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
