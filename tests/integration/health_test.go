//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestHealthProbes(t *testing.T) {
	for _, path := range []string{"/livez", "/readyz"} {
		resp := doGet(t, path)

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		body := decodeJSON[healthResponse](t, resp)
		resp.Body.Close()

		if body.Status != "ok" {
			t.Fatalf("%s: expected status ok, got %q", path, body.Status)
		}
	}
}
