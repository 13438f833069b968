// Package httpapi is the HTTP surface of the service: REST resources under
// /api, a websocket and an SSE endpoint for realtime events, and the usual
// operational endpoints.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"societyhub.org/internal/blob"
	"societyhub.org/internal/bus"
	"societyhub.org/internal/identity"
	"societyhub.org/internal/obs"
	"societyhub.org/internal/society"
)

// ReadyProbe checks the backing database for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options carries everything the API needs. All dependencies are injected;
// the package owns no globals.
type Options struct {
	Service    *society.Service
	Hub        *bus.Hub
	Resolver   *identity.Resolver
	Tokens     *identity.TokenSigner
	Blobs      *blob.Store
	Ready      ReadyProbe
	Version    string
	RateBurst  int
	RatePerSec int
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	svc        *society.Service
	hub        *bus.Hub
	resolver   *identity.Resolver
	tokens     *identity.TokenSigner
	blobs      *blob.Store
	readyProbe ReadyProbe
	version    string
	rateBurst  int
	ratePerSec int
}

func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		svc:        opts.Service,
		hub:        opts.Hub,
		resolver:   opts.Resolver,
		tokens:     opts.Tokens,
		blobs:      opts.Blobs,
		readyProbe: opts.Ready,
		version:    opts.Version,
		rateBurst:  opts.RateBurst,
		ratePerSec: opts.RatePerSec,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 50
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 25
	}

	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /api/auth/register", a.register)
	a.mux.HandleFunc("POST /api/auth/login", a.login)

	a.mux.HandleFunc("POST /api/complaints", a.createComplaint)
	a.mux.HandleFunc("GET /api/complaints", a.listComplaints)
	a.mux.HandleFunc("GET /api/complaints/{id}", a.getComplaint)
	a.mux.HandleFunc("PUT /api/complaints/{id}/status", a.updateComplaintStatus)
	a.mux.HandleFunc("POST /api/complaints/{id}/comments", a.addComplaintComment)
	a.mux.HandleFunc("DELETE /api/complaints/{id}", a.deleteComplaint)

	a.mux.HandleFunc("POST /api/guests", a.createGuest)
	a.mux.HandleFunc("GET /api/guests", a.listGuests)
	a.mux.HandleFunc("GET /api/guests/pending", a.listPendingGuests)
	a.mux.HandleFunc("GET /api/guests/{id}", a.getGuest)
	a.mux.HandleFunc("PUT /api/guests/{id}/status", a.decideGuest)
	a.mux.HandleFunc("DELETE /api/guests/{id}", a.deleteGuest)

	a.mux.HandleFunc("POST /api/notices", a.createNotice)
	a.mux.HandleFunc("GET /api/notices", a.listNotices)
	a.mux.HandleFunc("GET /api/notices/{id}", a.getNotice)
	a.mux.HandleFunc("PUT /api/notices/{id}", a.updateNotice)
	a.mux.HandleFunc("DELETE /api/notices/{id}", a.deleteNotice)

	a.mux.HandleFunc("POST /api/payments", a.createPayment)
	a.mux.HandleFunc("GET /api/payments", a.listPayments)
	a.mux.HandleFunc("GET /api/payments/stats", a.paymentStats)
	a.mux.HandleFunc("GET /api/payments/{id}", a.getPayment)
	a.mux.HandleFunc("POST /api/payments/{id}/pay", a.payPayment)
	a.mux.HandleFunc("PUT /api/payments/{id}/status", a.updatePaymentStatus)
	a.mux.HandleFunc("DELETE /api/payments/{id}", a.deletePayment)

	a.mux.HandleFunc("POST /api/properties", a.createProperty)
	a.mux.HandleFunc("GET /api/properties", a.listProperties)
	a.mux.HandleFunc("GET /api/properties/{id}", a.getProperty)
	a.mux.HandleFunc("PUT /api/properties/{id}", a.updateProperty)
	a.mux.HandleFunc("POST /api/properties/{id}/book", a.bookProperty)
	a.mux.HandleFunc("DELETE /api/properties/{id}", a.deleteProperty)

	a.mux.HandleFunc("GET /api/users", a.listUsers)
	a.mux.HandleFunc("GET /api/users/stats", a.userStats)
	a.mux.HandleFunc("GET /api/users/pending-guests", a.listPendingGuestUsers)
	a.mux.HandleFunc("GET /api/users/profile", a.profile)
	a.mux.HandleFunc("PUT /api/users/profile", a.updateProfile)
	a.mux.HandleFunc("PUT /api/users/{id}/approve", a.approveGuestUser)
	a.mux.HandleFunc("PUT /api/users/{id}/status", a.setUserActive)
	a.mux.HandleFunc("DELETE /api/users/{id}", a.deleteUser)

	a.mux.HandleFunc("POST /api/uploads", a.upload)
	a.mux.HandleFunc("GET /uploads/{key}", a.serveUpload)

	a.mux.HandleFunc("GET /api/events", a.Events)
	a.mux.HandleFunc("GET /ws", a.WebSocket)

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 10<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- operational handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "society-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// actor pulls the resolved caller; the auth middleware guarantees it is
// present on every non-public route.
func actor(r *http.Request) (identity.Identity, bool) {
	return identity.FromContext(r.Context())
}

func requireActor(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	id, ok := actor(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	}
	return id, ok
}
