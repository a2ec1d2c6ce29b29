package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/khrees2412/talentmatch/internal/database"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/internal/notify"
	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	handler   http.Handler
	company   *models.Company
	candidate *models.Candidate
	posting   *models.JobPosting
	profile   *models.JobProfile
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store, err := database.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	company := &models.Company{UserID: 10, CompanyName: "Acme"}
	require.NoError(t, store.CreateCompany(ctx, company))
	candidate := &models.Candidate{UserID: 20, Name: "Ada"}
	require.NoError(t, store.CreateCandidate(ctx, candidate))
	posting := &models.JobPosting{
		CompanyID: company.ID, JobTitle: "SAP Consultant", ProductVendor: "SAP", ProductType: "S/4HANA",
		JobRole: "Consultant", SeniorityLevel: "3+ years", WorkType: models.WorkRemote, Location: "Remote",
		RequiredSkills: `["ABAP"]`, IsActive: true,
	}
	require.NoError(t, store.CreatePosting(ctx, posting))
	profile := &models.JobProfile{
		CandidateID: candidate.ID, ProfileName: "SAP", ProductVendor: "SAP", ProductType: "S/4HANA",
		JobRole: "Consultant", YearsOfExperience: 4, WorkType: models.WorkRemote,
		Skills:    []models.Skill{{Name: "ABAP", Proficiency: 5}},
		Locations: []models.LocationPreference{{City: "Berlin", Country: "DE"}},
	}
	require.NoError(t, store.CreateProfile(ctx, profile))

	svc := matching.NewService(store, notify.NewInbox(store), nil, nil)
	return &testServer{
		handler: New(svc, nil, nil).Handler(),
		company: company, candidate: candidate, posting: posting, profile: profile,
	}
}

func (ts *testServer) asCandidate(r *http.Request) *http.Request {
	r.Header.Set(HeaderUserID, strconv.FormatInt(ts.candidate.UserID, 10))
	r.Header.Set(HeaderRole, string(models.ActorCandidate))
	r.Header.Set(HeaderCandidateID, strconv.FormatInt(ts.candidate.ID, 10))
	return r
}

func (ts *testServer) asRecruiter(r *http.Request) *http.Request {
	r.Header.Set(HeaderUserID, strconv.FormatInt(ts.company.UserID, 10))
	r.Header.Set(HeaderRole, string(models.ActorRecruiter))
	r.Header.Set(HeaderCompanyID, strconv.FormatInt(ts.company.ID, 10))
	return r
}

func (ts *testServer) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func (ts *testServer) swipeBody(action models.Action) *bytes.Reader {
	body, _ := json.Marshal(matching.SwipeRequest{
		JobProfileID: ts.profile.ID, JobPostingID: ts.posting.ID, Action: action,
	})
	return bytes.NewReader(body)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndCatalogs(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/catalogs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string][]string](t, w)
	assert.NotEmpty(t, body["technical_skills"])
	assert.NotEmpty(t, body["soft_skills"])
	assert.NotEmpty(t, body["certifications"])
}

func TestMissingIdentityIsUnauthorized(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/matches", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/matches", nil)
	r.Header.Set(HeaderUserID, "1")
	r.Header.Set(HeaderRole, "admin")
	assert.Equal(t, http.StatusUnauthorized, ts.do(r).Code)
}

func TestSwipeFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(ts.asCandidate(httptest.NewRequest(http.MethodPost, "/swipes", ts.swipeBody(models.ActionLike))))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[matching.SwipeResult](t, w)
	assert.Equal(t, models.StateOneSidedCandidate, res.State)

	w = ts.do(ts.asRecruiter(httptest.NewRequest(http.MethodPost, "/swipes", ts.swipeBody(models.ActionLike))))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res = decode[matching.SwipeResult](t, w)
	assert.Equal(t, models.StateMutual, res.State)
	assert.Equal(t, 2, res.Notifications)

	w = ts.do(ts.asRecruiter(httptest.NewRequest(http.MethodPost, "/swipes", ts.swipeBody(models.ActionLike))))
	assert.Equal(t, http.StatusOK, w.Code)
	res = decode[matching.SwipeResult](t, w)
	assert.False(t, res.Created)

	w = ts.do(ts.asCandidate(httptest.NewRequest(http.MethodGet, "/matches?mutual=true", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	matches := decode[[]models.Match](t, w)
	require.Len(t, matches, 1)
	matchID := strconv.FormatInt(matches[0].ID, 10)

	w = ts.do(ts.asCandidate(httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"unread": 1}, decode[map[string]int](t, w))

	w = ts.do(ts.asCandidate(httptest.NewRequest(http.MethodPost, "/matches/"+matchID+"/unlike", nil)))
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(ts.asCandidate(httptest.NewRequest(http.MethodPost, "/matches/"+matchID+"/ask-to-apply", nil)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(ts.asRecruiter(httptest.NewRequest(http.MethodPost, "/matches/"+matchID+"/ask-to-apply", nil)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(ts.asCandidate(httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{"updated": 2}, decode[map[string]int](t, w))
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"unknown match", ts.asCandidate(httptest.NewRequest(http.MethodPost, "/matches/999/like", nil)), http.StatusNotFound},
		{"bad id", ts.asCandidate(httptest.NewRequest(http.MethodPost, "/matches/abc/like", nil)), http.StatusBadRequest},
		{"candidate stats", ts.asCandidate(httptest.NewRequest(http.MethodGet, "/stats", nil)), http.StatusForbidden},
		{"invalid action", ts.asCandidate(httptest.NewRequest(http.MethodPost, "/swipes", ts.swipeBody("superlike"))), http.StatusBadRequest},
		{"read someone else's notification", ts.asCandidate(httptest.NewRequest(http.MethodPut, "/notifications/12345/read", nil)), http.StatusNotFound},
		{"score without ids", ts.asRecruiter(httptest.NewRequest(http.MethodGet, "/score", nil)), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ts.do(tt.req).Code)
		})
	}
}

func TestRecommendationsAndScore(t *testing.T) {
	ts := newTestServer(t)

	path := "/recommendations/postings/" + strconv.FormatInt(ts.posting.ID, 10)
	w := ts.do(ts.asRecruiter(httptest.NewRequest(http.MethodGet, path, nil)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	recs := decode[[]map[string]any](t, w)
	require.Len(t, recs, 1)
	assert.EqualValues(t, 100, recs[0]["score"])

	w = ts.do(ts.asCandidate(httptest.NewRequest(http.MethodGet, path, nil)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	path = "/recommendations/profiles/" + strconv.FormatInt(ts.profile.ID, 10)
	w = ts.do(ts.asCandidate(httptest.NewRequest(http.MethodGet, path, nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	q := "/score?view=candidate&posting_id=" + strconv.FormatInt(ts.posting.ID, 10) +
		"&profile_id=" + strconv.FormatInt(ts.profile.ID, 10)
	w = ts.do(ts.asCandidate(httptest.NewRequest(http.MethodGet, q, nil)))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "candidate", body["view"])
	assert.EqualValues(t, 100, body["score"])
}
