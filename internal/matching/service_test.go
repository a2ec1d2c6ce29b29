package matching_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/khrees2412/talentmatch/internal/database"
	"github.com/khrees2412/talentmatch/internal/matcher"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/internal/notify"
	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	recruiterUser = 100
	candidateUser = 200
)

type env struct {
	store     *database.Store
	svc       *matching.Service
	sent      *notify.Recorder
	company   *models.Company
	candidate *models.Candidate
	posting   *models.JobPosting
	profile   *models.JobProfile
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	store, err := database.Open(filepath.Join(t.TempDir(), "talentmatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	company := &models.Company{UserID: recruiterUser, CompanyName: "Acme"}
	require.NoError(t, store.CreateCompany(ctx, company))
	candidate := &models.Candidate{UserID: candidateUser, Name: "Ada Lovelace"}
	require.NoError(t, store.CreateCandidate(ctx, candidate))

	posting := &models.JobPosting{
		CompanyID:      company.ID,
		JobTitle:       "Fusion Financials Consultant",
		ProductVendor:  "Oracle",
		ProductType:    "Fusion Cloud",
		JobRole:        "Consultant",
		SeniorityLevel: "5-8 years",
		Location:       "Austin, TX",
		SalaryMin:      100,
		SalaryMax:      150,
		IsActive:       true,
		PostingSkills:  []models.PostingSkill{{Name: "General Ledger", Rating: 4}},
	}
	require.NoError(t, store.CreatePosting(ctx, posting))

	profile := &models.JobProfile{
		CandidateID:       candidate.ID,
		ProfileName:       "Oracle Finance",
		ProductVendor:     "Oracle",
		ProductType:       "Fusion Cloud",
		JobRole:           "Consultant",
		YearsOfExperience: 6,
		Skills:            []models.Skill{{Name: "General Ledger", Proficiency: 4}},
		Locations:         []models.LocationPreference{{City: "Austin", State: "TX"}},
	}
	require.NoError(t, store.CreateProfile(ctx, profile))

	sent := &notify.Recorder{}
	svc := matching.NewService(store, sent, matcher.NewRanker(matcher.DefaultMinScore, 2), nil)

	return &env{
		store: store, svc: svc, sent: sent,
		company: company, candidate: candidate, posting: posting, profile: profile,
	}
}

func (e *env) candidateP() matching.Principal {
	return matching.Principal{UserID: candidateUser, Role: models.ActorCandidate, CandidateID: e.candidate.ID}
}

func (e *env) recruiterP() matching.Principal {
	return matching.Principal{UserID: recruiterUser, Role: models.ActorRecruiter, CompanyID: e.company.ID}
}

func (e *env) request(action models.Action) matching.SwipeRequest {
	return matching.SwipeRequest{JobProfileID: e.profile.ID, JobPostingID: e.posting.ID, Action: action}
}

func sentKinds(r *notify.Recorder) []notify.Kind {
	var out []notify.Kind
	for _, s := range r.Sent() {
		out = append(out, s.Kind)
	}
	return out
}

func TestRecordSwipeMutualScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.RecordSwipe(ctx, e.candidateP(), e.request(models.ActionLike))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, models.StateOneSidedCandidate, res.State)
	assert.Equal(t, 0, res.Notifications)
	assert.Empty(t, e.sent.Sent())

	res, err = e.svc.RecordSwipe(ctx, e.recruiterP(), e.request(models.ActionLike))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, models.StateMutual, res.State)
	assert.Equal(t, 2, res.Notifications)

	sent := e.sent.Sent()
	require.Len(t, sent, 2)
	assert.ElementsMatch(t, []int64{candidateUser, recruiterUser}, []int64{sent[0].UserID, sent[1].UserID})
	for _, s := range sent {
		assert.Equal(t, notify.KindNewMatch, s.Kind)
		assert.Equal(t, e.posting.ID, s.Payload.JobPostingID)
		assert.Equal(t, "Ada Lovelace", s.Payload.CandidateName)
	}

	res, err = e.svc.RecordSwipe(ctx, e.recruiterP(), e.request(models.ActionLike))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, models.StateMutual, res.State)
	assert.Equal(t, 0, res.Notifications)
	assert.Len(t, e.sent.Sent(), 2)

	n, err := e.store.CountSwipes(ctx, e.candidate.ID, e.posting.ID, models.ActorRecruiter)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordSwipeRecruiterFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.RecordSwipe(ctx, e.recruiterP(), e.request(models.ActionLike))
	require.NoError(t, err)
	assert.Equal(t, models.StateOneSidedCompany, res.State)
	assert.Equal(t, []notify.Kind{notify.KindRecruiterLiked}, sentKinds(e.sent))
	assert.Equal(t, int64(candidateUser), e.sent.Sent()[0].UserID)
}

func TestRecordSwipePassLeavesNoMatch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := e.svc.RecordSwipe(ctx, e.candidateP(), e.request(models.ActionPass))
		require.NoError(t, err)
		assert.True(t, res.Created)
		assert.Nil(t, res.Match)
		assert.Equal(t, models.StateNone, res.State)
	}

	n, err := e.store.CountSwipes(ctx, e.candidate.ID, e.posting.ID, models.ActorCandidate)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, e.sent.Sent())
}

func TestAskToApplyNotifiesOtherSide(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.RecordSwipe(ctx, e.recruiterP(), e.request(models.ActionAskToApply))
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, float64(matching.AskToApplyPercentage), res.Match.MatchPercentage)
	assert.True(t, res.Match.CompanyAskedToApply)
	assert.Equal(t, models.StateNone, res.State)

	_, err = e.svc.RecordSwipe(ctx, e.candidateP(), e.request(models.ActionAskToApply))
	require.NoError(t, err)

	sent := e.sent.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, notify.KindRecruiterInvite, sent[0].Kind)
	assert.Equal(t, int64(candidateUser), sent[0].UserID)
	assert.Equal(t, notify.KindCandidateShortlisted, sent[1].Kind)
	assert.Equal(t, int64(recruiterUser), sent[1].UserID)
}

func TestUnlikeAndRelike(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.RecordSwipe(ctx, e.candidateP(), e.request(models.ActionLike))
	require.NoError(t, err)
	res, err := e.svc.RecordSwipe(ctx, e.recruiterP(), e.request(models.ActionLike))
	require.NoError(t, err)
	matchID := res.Match.ID
	e.sent.Reset()

	m, err := e.svc.Unlike(ctx, e.candidateP(), matchID)
	require.NoError(t, err)
	assert.Equal(t, models.StateOneSidedCompany, m.State())
	assert.Empty(t, e.sent.Sent())

	n, err := e.store.CountSwipes(ctx, e.candidate.ID, e.posting.ID, models.ActorCandidate)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "unlike must not write to the ledger")

	// a swipe re-like is suppressed by the ledger
	res, err = e.svc.RecordSwipe(ctx, e.candidateP(), e.request(models.ActionLike))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, models.StateOneSidedCompany, res.State)

	res, err = e.svc.ActOnMatch(ctx, e.candidateP(), matchID, models.ActionLike)
	require.NoError(t, err)
	assert.Equal(t, models.StateMutual, res.State)
	assert.Equal(t, 2, res.Notifications)

	res, err = e.svc.ActOnMatch(ctx, e.candidateP(), matchID, models.ActionLike)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Notifications)
}

func TestAuthorization(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	other := &models.Candidate{UserID: 300, Name: "Grace"}
	require.NoError(t, e.store.CreateCandidate(ctx, other))
	rival := &models.Company{UserID: 400, CompanyName: "Globex"}
	require.NoError(t, e.store.CreateCompany(ctx, rival))
	teammate := &models.Company{UserID: 500, CompanyName: "Acme"}
	require.NoError(t, e.store.CreateCompany(ctx, teammate))

	tests := []struct {
		name    string
		p       matching.Principal
		req     matching.SwipeRequest
		wantErr error
	}{
		{
			name:    "candidate swiping another candidate's profile",
			p:       matching.Principal{UserID: 300, Role: models.ActorCandidate, CandidateID: other.ID},
			req:     e.request(models.ActionLike),
			wantErr: matching.ErrForbidden,
		},
		{
			name:    "recruiter outside the team",
			p:       matching.Principal{UserID: 400, Role: models.ActorRecruiter, CompanyID: rival.ID},
			req:     e.request(models.ActionLike),
			wantErr: matching.ErrForbidden,
		},
		{
			name:    "missing posting",
			p:       e.candidateP(),
			req:     matching.SwipeRequest{JobProfileID: e.profile.ID, JobPostingID: 9999, Action: models.ActionLike},
			wantErr: matching.ErrNotFound,
		},
		{
			name: "recruiter naming the wrong candidate",
			p:    e.recruiterP(),
			req: matching.SwipeRequest{CandidateID: other.ID, JobProfileID: e.profile.ID,
				JobPostingID: e.posting.ID, Action: models.ActionLike},
			wantErr: matching.ErrNotFound,
		},
		{
			name:    "unknown action",
			p:       e.candidateP(),
			req:     e.request("superlike"),
			wantErr: matching.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.RecordSwipe(ctx, tt.p, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// a teammate company shares the posting
	res, err := e.svc.RecordSwipe(ctx, matching.Principal{UserID: 500, Role: models.ActorRecruiter, CompanyID: teammate.ID},
		e.request(models.ActionLike))
	require.NoError(t, err)
	assert.Equal(t, e.company.ID, res.Match.CompanyID)

	_, err = e.svc.ActOnMatch(ctx, e.candidateP(), res.Match.ID, models.ActionAskToApply)
	assert.ErrorIs(t, err, matching.ErrInvalidArgument)

	_, err = e.svc.Unlike(ctx, matching.Principal{UserID: 300, Role: models.ActorCandidate, CandidateID: other.ID}, res.Match.ID)
	assert.ErrorIs(t, err, matching.ErrForbidden)

	_, err = e.svc.PostingStats(ctx, e.candidateP())
	assert.ErrorIs(t, err, matching.ErrForbidden)
}

func TestRecommendationsCarryAnnotations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	recs, err := e.svc.RecommendProfiles(ctx, e.recruiterP(), e.posting.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 100, recs[0].Score)
	assert.False(t, recs[0].AlreadySwiped)

	_, err = e.svc.RecordSwipe(ctx, e.recruiterP(), e.request(models.ActionLike))
	require.NoError(t, err)

	recs, err = e.svc.RecommendProfiles(ctx, e.recruiterP(), e.posting.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].AlreadySwiped)
	assert.Equal(t, models.ActionLike, recs[0].SwipeAction)
	assert.True(t, recs[0].AlreadyMatched)
	assert.True(t, recs[0].RecruiterInterested)
	assert.False(t, recs[0].IsMutual)

	postings, err := e.svc.RecommendPostings(ctx, e.candidateP(), e.profile.ID)
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.False(t, postings[0].AlreadySwiped, "candidate has not swiped yet")
	assert.True(t, postings[0].RecruiterInterested)

	_, err = e.svc.RecommendPostings(ctx, e.recruiterP(), e.profile.ID)
	assert.ErrorIs(t, err, matching.ErrForbidden)
}

func TestRescoreMatches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.RecordSwipe(ctx, e.candidateP(), e.request(models.ActionLike))
	require.NoError(t, err)
	assert.Equal(t, float64(matching.LikePercentage), res.Match.MatchPercentage)

	n, err := e.svc.RescoreMatches(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err := e.store.GetMatch(ctx, res.Match.ID)
	require.NoError(t, err)
	assert.True(t, m.Scored)
	assert.Equal(t, 100.0, m.MatchPercentage)

	n, err = e.svc.RescoreMatches(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInbox(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := matching.NewService(e.store, notify.NewInbox(e.store), nil, nil)

	_, err := svc.RecordSwipe(ctx, e.recruiterP(), e.request(models.ActionLike))
	require.NoError(t, err)

	list, err := svc.Notifications(ctx, e.candidateP(), true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, string(notify.KindRecruiterLiked), list[0].Kind)

	count, err := svc.UnreadCount(ctx, e.candidateP())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, svc.MarkRead(ctx, e.recruiterP(), list[0].ID), matching.ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, e.candidateP(), list[0].ID))

	updated, err := svc.MarkAllRead(ctx, e.candidateP())
	require.NoError(t, err)
	assert.Zero(t, updated)
}
