package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"softphone-console/internal/speech"
	"softphone-console/internal/store"
	"softphone-console/internal/voip"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Coordinator, *voip.ManualScheduler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := voip.NewManualScheduler()
	svc := voip.NewService(sched, log)
	coord := store.New(svc, speech.NewNoopEngine(), log)
	t.Cleanup(coord.Close)

	h := Handlers{Coordinator: coord}
	r := gin.New()
	r.GET("/v1/state", h.GetState)
	r.GET("/v1/calls", h.ListCalls)
	r.POST("/v1/calls/start", h.StartCall)
	r.POST("/v1/calls/end", h.EndCall)
	r.POST("/v1/calls/answer", h.AnswerCall)
	r.POST("/v1/calls/decline", h.DeclineCall)
	r.POST("/v1/dialer/digits", h.PressDigit)
	r.DELETE("/v1/dialer/digits", h.Backspace)
	r.DELETE("/v1/dialer", h.ClearDialer)
	r.GET("/v1/voicemails", h.ListVoicemails)
	r.POST("/v1/voicemails", h.SimulateVoicemail)
	r.POST("/v1/voicemails/:id/read", h.MarkVoicemailRead)
	r.DELETE("/v1/voicemails/:id", h.DeleteVoicemail)
	r.GET("/v1/contacts", h.ListContacts)
	r.POST("/v1/contacts", h.CreateContact)
	r.PATCH("/v1/contacts/:id", h.UpdateContact)
	r.DELETE("/v1/contacts/:id", h.DeleteContact)
	return r, coord, sched
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetState_ReturnsSeededSnapshot(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snap store.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(snap.CallHistory) != 5 || len(snap.Voicemails) != 2 || len(snap.Contacts) != 5 {
		t.Fatalf("unexpected seed sizes: %d calls, %d voicemails, %d contacts",
			len(snap.CallHistory), len(snap.Voicemails), len(snap.Contacts))
	}
	if snap.UnreadVoicemails != 1 {
		t.Fatalf("expected 1 unread voicemail, got %d", snap.UnreadVoicemails)
	}
}

func TestStartCall_Conflict(t *testing.T) {
	r, _, _ := newTestRouter(t)

	if w := doJSON(t, r, http.MethodPost, "/v1/calls/start", `{"number":"555-123-4567"}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/calls/start", `{"number":"555-987-6543"}`); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while a call is active, got %d", w.Code)
	}

	if w := doJSON(t, r, http.MethodPost, "/v1/calls/end", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/calls/start", `{"number":"555-987-6543"}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200 after hang-up, got %d", w.Code)
	}
}

func TestStartCall_RequiresNumber(t *testing.T) {
	r, _, _ := newTestRouter(t)
	if w := doJSON(t, r, http.MethodPost, "/v1/calls/start", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnswer_WithoutRingIsConflict(t *testing.T) {
	r, _, _ := newTestRouter(t)
	if w := doJSON(t, r, http.MethodPost, "/v1/calls/answer", ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/calls/decline", ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestDialerTrigger_RingAnswerFlow(t *testing.T) {
	r, coord, sched := newTestRouter(t)

	for _, d := range []string{"9", "1", "1"} {
		if w := doJSON(t, r, http.MethodPost, "/v1/dialer/digits", `{"digit":"`+d+`"}`); w.Code != http.StatusOK {
			t.Fatalf("digit press failed: %d", w.Code)
		}
	}
	if got := coord.DialedNumber(); got != "" {
		t.Fatalf("trigger should clear the buffer, got %q", got)
	}

	sched.Advance(3 * time.Second)

	w := doJSON(t, r, http.MethodPost, "/v1/calls/answer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var snap store.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if snap.ActiveCall == nil || snap.ActiveCall.Number != voip.SimulatedIncomingNumber {
		t.Fatalf("expected active call from the simulated ring, got %+v", snap.ActiveCall)
	}
	if snap.IncomingCall != nil {
		t.Fatalf("incoming call should be cleared after answer")
	}
}

func TestVoicemailEndpoints(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/voicemails", `{"sender_number":"555-777-8888","sender_name":"Eve Adams"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var vm voip.Voicemail
	if err := json.Unmarshal(w.Body.Bytes(), &vm); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if vm.IsRead {
		t.Fatalf("simulated voicemail should start unread")
	}

	if w := doJSON(t, r, http.MethodPost, "/v1/voicemails/"+vm.ID+"/read", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/v1/voicemails/"+vm.ID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	// Unknown ids are accepted as no-ops.
	if w := doJSON(t, r, http.MethodDelete, "/v1/voicemails/"+vm.ID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on repeat delete, got %d", w.Code)
	}
}

func TestContactEndpoints(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/contacts", `{"name":"Frank","number":"555-444-3333","labels":["cliente"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var contact voip.Contact
	if err := json.Unmarshal(w.Body.Bytes(), &contact); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if w := doJSON(t, r, http.MethodPatch, "/v1/contacts/"+contact.ID, `{"name":"Frank Ocean"}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPatch, "/v1/contacts/missing", `{"name":"x"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown contact, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/v1/contacts/"+contact.ID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/contacts", `{"name":"NoNumber"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
