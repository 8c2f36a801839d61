package mount

import (
	"net/http"
	"strings"
	"testing"

	"github.com/kneo/indi-bresserexos2/internal/testutil"
)

func newAdminMux(c *MountController) *http.ServeMux {
	mux := http.NewServeMux()
	c.AttachAdminRoutes(mux)
	return mux
}

// loopback marks a test request as originating from localhost, since
// tsweb.Debugger only serves debug routes to loopback/Tailscale callers.
func loopback(r *http.Request) *http.Request {
	r.RemoteAddr = "127.0.0.1:54321"
	return r
}

// Property 10: debug routes respond to a loopback caller.
func TestAdmin_StateRoute(t *testing.T) {
	c, _, _ := newTestController(t)
	mux := newAdminMux(c)

	req := loopback(testutil.NewTestRequest(http.MethodGet, "/debug/state"))
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), "Disconnected") {
		t.Errorf("body = %q, want it to mention Disconnected state", rec.Body.String())
	}
}

func TestAdmin_SendFrameFormRoute(t *testing.T) {
	c, _, _ := newTestController(t)
	mux := newAdminMux(c)

	req := loopback(testutil.NewTestRequest(http.MethodGet, "/debug/send-frame"))
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "send-frame-api") {
		t.Errorf("form body does not reference send-frame-api: %q", rec.Body.String())
	}
}

func TestAdmin_SendFrameAPI_ParkWhileDisconnected(t *testing.T) {
	c, _, _ := newTestController(t)
	mux := newAdminMux(c)

	req := loopback(testutil.NewTestRequest(http.MethodPost, "/debug/send-frame-api?command=park"))
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)

	// Disconnected controller rejects Park, surfaced as 400 by the handler.
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestAdmin_SendFrameAPI_SyncWhileTracking(t *testing.T) {
	c, _, _ := newTestController(t)
	mustStart(t, c)
	forceState(c, Tracking)
	mux := newAdminMux(c)

	req := loopback(testutil.NewTestRequest(http.MethodPost, "/debug/send-frame-api?command=sync&ra=3.0&dec=10.0"))
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
}

func TestAdmin_SendFrameAPI_RejectsGetMethod(t *testing.T) {
	c, _, _ := newTestController(t)
	mux := newAdminMux(c)

	req := loopback(testutil.NewTestRequest(http.MethodGet, "/debug/send-frame-api"))
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestAdmin_RingHexdumpRoute(t *testing.T) {
	c, _, _ := newTestController(t)
	mux := newAdminMux(c)

	req := loopback(testutil.NewTestRequest(http.MethodGet, "/debug/ring-hexdump"))
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}
