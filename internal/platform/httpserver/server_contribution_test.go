package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contributionengine "paperportal/contexts/community-experience/contribution-engine"
	httptransport "paperportal/contexts/community-experience/contribution-engine/transport/http"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	module := contributionengine.NewInMemoryModule(nil)
	return New(module, nil, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method string, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer test-token")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestContributionRoutesRequireBearerToken(t *testing.T) {
	server := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/contribution/v1/events"},
		{http.MethodPost, "/api/contribution/v1/votes"},
		{http.MethodPost, "/api/contribution/v1/bookmarks"},
		{http.MethodGet, "/api/contribution/v1/users/u1"},
		{http.MethodPost, "/api/contribution/v1/users/u1/recalculate"},
		{http.MethodGet, "/api/contribution/v1/leaderboard"},
		{http.MethodGet, "/api/contribution/v1/tiers"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, req)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401, got %d", tc.method, tc.path, recorder.Code)
		}
	}
}

func TestRecordEventEndpointFoldsState(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/contribution/v1/events",
		`{"user_id":"u1","kind":"solution_created","subject_ref":"s1","occurred_at":"2026-04-07T09:00:00Z"}`, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", recorder.Code, recorder.Body.String())
	}

	var resp httptransport.RecordEventResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" || resp.Data.State.Score != 10 || resp.Data.State.Tier != "bronze" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Data.State.CurrentStreak != 1 || resp.Data.State.StreakMultiplier != 1.0 {
		t.Fatalf("unexpected streak view: %+v", resp.Data.State)
	}

	// The state is now readable.
	recorder = doJSON(t, server, http.MethodGet, "/api/contribution/v1/users/u1", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("get state: expected 200, got %d", recorder.Code)
	}
}

func TestRecordEventEndpointRejectsBadPayloads(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/contribution/v1/events", `{not json`, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("invalid json: expected 400, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodPost, "/api/contribution/v1/events",
		`{"user_id":"","kind":"post_created","occurred_at":"2026-04-07T09:00:00Z"}`, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("blank user: expected 400, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodPost, "/api/contribution/v1/events",
		`{"user_id":"u1","kind":"post_created","occurred_at":"yesterday"}`, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("bad timestamp: expected 400, got %d", recorder.Code)
	}
}

func TestVoteTransitionEndpointMapsInvalidTransition(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/contribution/v1/votes",
		`{"user_id":"u1","subject_ref":"s1","from":"up","to":"up","occurred_at":"2026-04-07T09:00:00Z"}`, nil)
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("same-state transition: expected 422, got %d", recorder.Code)
	}

	var errResp httptransport.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != "invalid_transition" {
		t.Fatalf("expected invalid_transition code, got %q", errResp.Code)
	}
}

func TestGetUnknownUserMapsToNotFound(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/contribution/v1/users/ghost", "", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}

	var errResp httptransport.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != "state_not_found" {
		t.Fatalf("expected state_not_found code, got %q", errResp.Code)
	}
}

func TestIdempotencyKeyHeaderReplays(t *testing.T) {
	server := newTestServer(t)
	body := `{"user_id":"u1","kind":"post_created","subject_ref":"p1","occurred_at":"2026-04-07T09:00:00Z"}`
	headers := map[string]string{"Idempotency-Key": "req-1"}

	first := doJSON(t, server, http.MethodPost, "/api/contribution/v1/events", body, headers)
	if first.Code != http.StatusOK {
		t.Fatalf("first call: expected 200, got %d", first.Code)
	}
	second := doJSON(t, server, http.MethodPost, "/api/contribution/v1/events", body, headers)
	if second.Code != http.StatusOK {
		t.Fatalf("second call: expected 200, got %d", second.Code)
	}

	var resp httptransport.RecordEventResponse
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Replayed {
		t.Fatalf("expected replayed response on duplicate idempotency key")
	}
	if resp.Data.State.Score != 5 {
		t.Fatalf("duplicate must not double count, got score %d", resp.Data.State.Score)
	}
}

func TestRecalculateAndLeaderboardEndpoints(t *testing.T) {
	server := newTestServer(t)

	for _, body := range []string{
		`{"user_id":"u1","kind":"solution_created","occurred_at":"2026-04-07T09:00:00Z"}`,
		`{"user_id":"u2","kind":"post_created","occurred_at":"2026-04-07T09:05:00Z"}`,
	} {
		if recorder := doJSON(t, server, http.MethodPost, "/api/contribution/v1/events", body, nil); recorder.Code != http.StatusOK {
			t.Fatalf("seed event: expected 200, got %d", recorder.Code)
		}
	}

	recorder := doJSON(t, server, http.MethodPost, "/api/contribution/v1/users/u1/recalculate", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("recalculate: expected 200, got %d body=%s", recorder.Code, recorder.Body.String())
	}
	var recalc httptransport.RecalculateResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &recalc); err != nil {
		t.Fatalf("decode recalculate: %v", err)
	}
	if recalc.Data.ReplayedEvents != 1 || recalc.Data.State.Score != 10 {
		t.Fatalf("unexpected recalculation: %+v", recalc.Data)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/contribution/v1/leaderboard?limit=10", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d", recorder.Code)
	}
	var board httptransport.LeaderboardResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if board.Data.TotalUsers != 2 || len(board.Data.Entries) != 2 {
		t.Fatalf("unexpected leaderboard: %+v", board.Data)
	}
	if board.Data.Entries[0].UserID != "u1" || board.Data.Entries[0].Rank != 1 {
		t.Fatalf("expected u1 ranked first, got %+v", board.Data.Entries[0])
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/contribution/v1/leaderboard?limit=oops", "", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", recorder.Code)
	}
}

func TestTierBandsEndpoint(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/contribution/v1/tiers", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("tiers: expected 200, got %d", recorder.Code)
	}

	var resp httptransport.TierBandsResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode tiers: %v", err)
	}
	if len(resp.Data) != 5 || resp.Data[0].Tier != "bronze" || resp.Data[4].MinScore != 5000 {
		t.Fatalf("unexpected tier bands: %+v", resp.Data)
	}
}
