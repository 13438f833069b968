package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/api/complaints":               "/api/complaints",
		"/api/complaints/01J0ABC":       "/api/complaints/:id",
		"/api/complaints/01J0ABC/status": "/api/complaints/:id/status",
		"/api/payments/stats":           "/api/payments/stats",
		"/api/guests/pending":           "/api/guests/pending",
		"/api/users/pending-guests":     "/api/users/pending-guests",
		"/api/users/profile":            "/api/users/profile",
		"/api/properties/p1/book":       "/api/properties/:id/book",
		"/api/notices/n9?limit=10":      "/api/notices/:id",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
