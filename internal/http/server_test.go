package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"hoctap-backend/internal/config"
	"hoctap-backend/internal/models"
	"hoctap-backend/internal/services"
)

// stubStore backs the routes under test. Methods not overridden here panic
// through the nil embedded interface, which flags any unexpected store call.
type stubStore struct {
	services.Store

	mu               sync.Mutex
	tiers            map[string]models.Tier
	users            map[string]models.User
	listErr          error
	leaderboardLimit int
	levelLookups     []string
}

func newStubStore() *stubStore {
	return &stubStore{tiers: map[string]models.Tier{}, users: map[string]models.User{}}
}

func (s *stubStore) ListTiers(ctx context.Context) ([]models.TierSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.TierSummary, 0, len(s.tiers))
	for _, t := range s.tiers {
		out = append(out, models.TierSummary{Tier: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *stubStore) GetTier(ctx context.Context, id string) (models.TierSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiers[id]
	if !ok {
		return models.TierSummary{}, sql.ErrNoRows
	}
	return models.TierSummary{Tier: t}, nil
}

func (s *stubStore) GetLevel(ctx context.Context, id string) (models.LevelDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levelLookups = append(s.levelLookups, id)
	return models.LevelDetail{}, sql.ErrNoRows
}

func (s *stubStore) TierCodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tiers {
		if t.Name == code && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) OrderIndexExists(ctx context.Context, scope services.Scope, parentID string, orderIndex int, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tiers {
		if t.OrderIndex == orderIndex && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) NextOrderIndex(ctx context.Context, scope services.Scope, parentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, t := range s.tiers {
		if t.OrderIndex > max {
			max = t.OrderIndex
		}
	}
	return max + 1, nil
}

func (s *stubStore) CreateTier(ctx context.Context, t *models.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers[t.ID] = *t
	return nil
}

func (s *stubStore) FindUserByAuthID(ctx context.Context, authUserID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[authUserID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *stubStore) GetStats(ctx context.Context, userID string) (models.UserStats, error) {
	return models.UserStats{}, sql.ErrNoRows
}

func (s *stubStore) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboardLimit = limit
	return []models.LeaderboardEntry{{UserID: "u1", TotalPoints: 40}, {UserID: "u2", TotalPoints: 10}}, nil
}

func (s *stubStore) ContentCounts(ctx context.Context) (models.ContentCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ContentCounts{Tiers: len(s.tiers)}, nil
}

type stubProvider struct {
	mu        sync.Mutex
	signedOut []string
}

func (p *stubProvider) SignIn(ctx context.Context, email, password string) (services.ProviderSession, error) {
	if password != "secret" {
		return services.ProviderSession{}, services.ErrProviderRejected
	}
	return services.ProviderSession{UserID: "auth-" + email, Email: email, AccessToken: "provider-at", RefreshToken: "provider-rt"}, nil
}

func (p *stubProvider) SignOut(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedOut = append(p.signedOut, accessToken)
	return nil
}

func (p *stubProvider) Refresh(ctx context.Context, refreshToken string) (services.ProviderSession, error) {
	return services.ProviderSession{}, services.ErrProviderRejected
}

func (p *stubProvider) CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (string, error) {
	return "", errors.New("not used")
}

func (p *stubProvider) DeleteUser(ctx context.Context, userID string) error {
	return errors.New("not used")
}

type testEnv struct {
	srv      *Server
	handler  http.Handler
	store    *stubStore
	provider *stubProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Config{
		JWTSecret:     "test-secret",
		JWTIssuer:     "hoctap",
		JWTTTLSeconds: 3600,
		PassingScore:  60,
		DiskPath:      "/",
	}
	store := newStubStore()
	provider := &stubProvider{}
	srv := NewServer(cfg, nil, store, provider, nil)
	return &testEnv{srv: srv, handler: srv.Router(), store: store, provider: provider}
}

func (e *testEnv) token(t *testing.T, typ string) string {
	t.Helper()
	tok, _, err := e.srv.Tokens.CreateAccessToken(services.Principal{
		ID:    "11111111-2222-4333-8444-555555555555",
		Email: typ + "@hoctap.vn",
		Role:  typ,
		Type:  typ,
	})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestHealthzWithoutDatabase(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("healthz: %d %+v", rec.Code, env)
	}
}

func TestCreateTierRejectsDuplicateOrder(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(t, models.PrincipalAdmin)

	rec, env := e.do(t, http.MethodPost, "/api/learning-path/tiers", admin, map[string]interface{}{
		"name": "a1", "displayName": "Beginner", "orderIndex": 1,
	})
	if rec.Code != http.StatusCreated || !env.Success {
		t.Fatalf("create A1: %d %+v", rec.Code, env)
	}

	rec, env = e.do(t, http.MethodPost, "/api/learning-path/tiers", admin, map[string]interface{}{
		"name": "A2", "displayName": "Elementary", "orderIndex": 1,
	})
	if rec.Code != http.StatusBadRequest || env.Success || env.Message != services.MsgOrderExists {
		t.Fatalf("duplicate order: %d %+v", rec.Code, env)
	}

	rec, env = e.do(t, http.MethodGet, "/api/learning-path/tiers", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	items, ok := env.Data.([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("list data: %#v", env.Data)
	}
	if name := items[0].(map[string]interface{})["name"]; name != "A1" {
		t.Fatalf("tier code not normalised: %v", name)
	}
}

func TestAdminRoutesRequireAdminClaims(t *testing.T) {
	e := newTestEnv(t)
	body := map[string]interface{}{"name": "A1", "displayName": "Beginner"}

	rec, env := e.do(t, http.MethodPost, "/api/learning-path/tiers", "", body)
	if rec.Code != http.StatusUnauthorized || env.Success {
		t.Fatalf("anonymous: %d %+v", rec.Code, env)
	}
	rec, _ = e.do(t, http.MethodPost, "/api/learning-path/tiers", "not-a-jwt", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", rec.Code)
	}
	rec, env = e.do(t, http.MethodPost, "/api/learning-path/tiers", e.token(t, models.PrincipalUser), body)
	if rec.Code != http.StatusForbidden || env.Message != services.MsgForbidden {
		t.Fatalf("user token: %d %+v", rec.Code, env)
	}
	rec, _ = e.do(t, http.MethodGet, "/api/admin/system", e.token(t, models.PrincipalUser), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("system snapshot as user: %d", rec.Code)
	}
}

func TestProgressRoutesRequireUserToken(t *testing.T) {
	e := newTestEnv(t)
	rec, _ := e.do(t, http.MethodGet, "/api/progress/stats", e.token(t, models.PrincipalAdmin), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin on progress: %d", rec.Code)
	}
	rec, env := e.do(t, http.MethodGet, "/api/progress/stats", e.token(t, models.PrincipalUser), nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("stats: %d %+v", rec.Code, env)
	}
	stats := env.Data.(map[string]interface{})
	if stats["totalPoints"] != float64(0) {
		t.Fatalf("fresh stats: %#v", stats)
	}
}

func TestMalformedPathIDIsBadRequest(t *testing.T) {
	e := newTestEnv(t)
	const id = "0b0f5f64-7c1d-4a53-9a1e-7d6a3c2b1e00"
	for _, raw := range []string{"not-a-uuid", "%7B" + id + "%7D", "urn:uuid:" + id, strings.ReplaceAll(id, "-", "")} {
		rec, env := e.do(t, http.MethodGet, "/api/learning-path/tiers/"+raw, "", nil)
		if rec.Code != http.StatusBadRequest || env.Message != services.MsgInvalidID {
			t.Fatalf("%s: got %d %+v", raw, rec.Code, env)
		}
	}
}

func TestUpperCasePathIDFindsTier(t *testing.T) {
	e := newTestEnv(t)
	const id = "0b0f5f64-7c1d-4a53-9a1e-7d6a3c2b1e00"
	e.store.tiers[id] = models.Tier{ID: id, Name: "A1", OrderIndex: 1}
	rec, env := e.do(t, http.MethodGet, "/api/learning-path/tiers/"+strings.ToUpper(id), "", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
}

func TestExerciseBodyIsNormalisedBeforeLookup(t *testing.T) {
	e := newTestEnv(t)
	const levelID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	rec, env := e.do(t, http.MethodPost, "/api/learning-path/exercises", e.token(t, models.PrincipalAdmin), map[string]interface{}{
		"levelId":      strings.ToUpper(levelID),
		"exerciseType": "Matching",
		"title":        "Pairs",
		"content":      map[string]interface{}{"pairs": []string{}},
	})
	if rec.Code != http.StatusNotFound || env.Message != services.MsgLevelNotFound {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
	if len(e.store.levelLookups) != 1 || e.store.levelLookups[0] != levelID {
		t.Fatalf("level lookups: %v", e.store.levelLookups)
	}
}

func TestMissingTierIsNotFound(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodGet, "/api/learning-path/tiers/0b0f5f64-7c1d-4a53-9a1e-7d6a3c2b1e00", "", nil)
	if rec.Code != http.StatusNotFound || env.Message != services.MsgTierNotFound {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
}

func TestValidationErrorsListFields(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodPost, "/api/learning-path/levels", e.token(t, models.PrincipalAdmin), map[string]interface{}{
		"tierId":          "nope",
		"orderIndex":      0,
		"unlockCondition": []string{"x"},
	})
	if rec.Code != http.StatusBadRequest || env.Message != services.MsgInvalidPayload {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
	fields := map[string]string{}
	for _, fe := range env.Errors {
		fields[fe.Field] = fe.Message
	}
	if fields["tierId"] != services.MsgInvalidID {
		t.Fatalf("tierId message: %v", fields)
	}
	if _, ok := fields["orderIndex"]; !ok {
		t.Fatalf("orderIndex missing: %v", fields)
	}
	if fields["unlockCondition[0]"] != services.MsgInvalidID {
		t.Fatalf("unlockCondition message: %v", fields)
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/user/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestStoreFailureIsGenericServerError(t *testing.T) {
	e := newTestEnv(t)
	e.store.listErr = errors.New("connection reset by peer")
	rec, env := e.do(t, http.MethodGet, "/api/learning-path/tiers", "", nil)
	if rec.Code != http.StatusInternalServerError || env.Message != services.MsgInternal {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestLoginWithoutLocalProfileSignsOut(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodPost, "/api/auth/user/login", "", map[string]string{
		"email": "ghost@hoctap.vn", "password": "secret",
	})
	if rec.Code != http.StatusForbidden || env.Message != services.MsgNoAccess {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
	if len(e.provider.signedOut) != 1 || e.provider.signedOut[0] != "provider-at" {
		t.Fatalf("provider session not revoked: %v", e.provider.signedOut)
	}
}

func TestLoginIssuesTokenForKnownUser(t *testing.T) {
	e := newTestEnv(t)
	e.store.users["auth-hoc@hoctap.vn"] = models.User{ID: "7e57a1b2-0000-4000-8000-000000000001", Email: "hoc@hoctap.vn", Role: "user"}

	rec, env := e.do(t, http.MethodPost, "/api/auth/user/login", "", map[string]string{
		"email": "hoc@hoctap.vn", "password": "secret",
	})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("login: %d %+v", rec.Code, env)
	}
	token, _ := env.Data.(map[string]interface{})["token"].(string)
	p, err := e.srv.Tokens.ParseToken(token)
	if err != nil || p.Type != models.PrincipalUser || p.IsAdmin() {
		t.Fatalf("issued token: %+v %v", p, err)
	}

	rec, _ = e.do(t, http.MethodPost, "/api/auth/user/login", "", map[string]string{
		"email": "hoc@hoctap.vn", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", rec.Code)
	}
}

func TestLeaderboardClampsLimit(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodGet, "/api/leaderboard?limit=500", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	if e.store.leaderboardLimit != services.MaxLeaderboardLimit {
		t.Fatalf("limit passed to store: %d", e.store.leaderboardLimit)
	}
	entries := env.Data.([]interface{})
	if rank := entries[1].(map[string]interface{})["rank"]; rank != float64(2) {
		t.Fatalf("rank: %v", rank)
	}

	e.do(t, http.MethodGet, "/api/leaderboard", "", nil)
	if e.store.leaderboardLimit != services.DefaultLeaderboardLimit {
		t.Fatalf("default limit: %d", e.store.leaderboardLimit)
	}
}

func TestSystemSnapshotIncludesContentCounts(t *testing.T) {
	e := newTestEnv(t)
	e.store.tiers["t1"] = models.Tier{ID: "t1", Name: "A1", OrderIndex: 1}
	rec, env := e.do(t, http.MethodGet, "/api/admin/system", e.token(t, models.PrincipalAdmin), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
	content := env.Data.(map[string]interface{})["content"].(map[string]interface{})
	if content["tiers"] != float64(1) {
		t.Fatalf("content counts: %#v", content)
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodGet, "/api/nowhere", "", nil)
	if rec.Code != http.StatusNotFound || env.Success {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
}
