package matching

import (
	"testing"

	"github.com/khrees2412/talentmatch/pkg/models"
	"github.com/stretchr/testify/assert"
)

func kinds(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, string(ev.Kind)+"->"+string(ev.To))
	}
	return out
}

// ---------------------------------------------------------------------------
// Transition
// ---------------------------------------------------------------------------

func TestTransition(t *testing.T) {
	candLiked := models.MatchFlags{CandidateLiked: true}
	compLiked := models.MatchFlags{CompanyLiked: true}
	mutual := models.MatchFlags{CandidateLiked: true, CompanyLiked: true}

	tests := []struct {
		name      string
		before    models.MatchFlags
		exists    bool
		action    models.Action
		actor     models.Actor
		wantState models.MatchState
		wantWrite bool
		wantEvent []string
	}{
		{"candidate like creates one-sided", models.MatchFlags{}, false, models.ActionLike, models.ActorCandidate,
			models.StateOneSidedCandidate, true, []string{}},
		{"recruiter like creates one-sided and notifies candidate", models.MatchFlags{}, false, models.ActionLike, models.ActorRecruiter,
			models.StateOneSidedCompany, true, []string{"recruiter_liked->candidate"}},
		{"recruiter like completes mutual", candLiked, true, models.ActionLike, models.ActorRecruiter,
			models.StateMutual, true, []string{"new_match->candidate", "new_match->company"}},
		{"candidate like completes mutual", compLiked, true, models.ActionLike, models.ActorCandidate,
			models.StateMutual, true, []string{"new_match->candidate", "new_match->company"}},
		{"repeat like on mutual is silent", mutual, true, models.ActionLike, models.ActorRecruiter,
			models.StateMutual, false, []string{}},
		{"pass never writes", models.MatchFlags{}, false, models.ActionPass, models.ActorCandidate,
			models.StateNone, false, []string{}},
		{"pass on one-sided keeps state", candLiked, true, models.ActionPass, models.ActorRecruiter,
			models.StateOneSidedCandidate, false, []string{}},
		{"recruiter ask invites", models.MatchFlags{}, false, models.ActionAskToApply, models.ActorRecruiter,
			models.StateNone, true, []string{"recruiter_invite->candidate"}},
		{"candidate ask shortlists", candLiked, true, models.ActionAskToApply, models.ActorCandidate,
			models.StateOneSidedCandidate, true, []string{"candidate_shortlisted->company"}},
		{"repeat ask is silent", models.MatchFlags{CompanyAskedToApply: true}, true, models.ActionAskToApply, models.ActorRecruiter,
			models.StateNone, false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Transition(tt.before, tt.exists, tt.action, tt.actor)
			exists := tt.exists || out.Write
			assert.Equal(t, tt.wantState, models.DeriveState(exists, out.After))
			assert.Equal(t, tt.wantWrite, out.Write)
			assert.Equal(t, tt.wantEvent, kinds(out.Events))
		})
	}
}

func TestTransitionNeverClearsFlags(t *testing.T) {
	all := models.MatchFlags{CandidateLiked: true, CompanyLiked: true, CandidateAskedToApply: true, CompanyAskedToApply: true}
	for _, action := range []models.Action{models.ActionLike, models.ActionPass, models.ActionAskToApply} {
		for _, actor := range []models.Actor{models.ActorCandidate, models.ActorRecruiter} {
			out := Transition(all, true, action, actor)
			assert.Equal(t, all, out.After, "%s by %s", action, actor)
			assert.False(t, out.Write)
			assert.Empty(t, out.Events)
		}
	}
}

// ---------------------------------------------------------------------------
// Retract
// ---------------------------------------------------------------------------

func TestRetract(t *testing.T) {
	before := models.MatchFlags{CandidateLiked: true, CompanyLiked: true, CompanyAskedToApply: true}

	out := Retract(before, models.ActorRecruiter)
	assert.True(t, out.Write)
	assert.Empty(t, out.Events)
	assert.Equal(t, models.StateOneSidedCandidate, models.DeriveState(true, out.After))
	assert.True(t, out.After.CompanyAskedToApply)

	out = Retract(out.After, models.ActorRecruiter)
	assert.False(t, out.Write)

	out = Retract(before, models.ActorCandidate)
	assert.Equal(t, models.StateOneSidedCompany, models.DeriveState(true, out.After))
}

func TestRelikeAfterRetractNotifiesAgain(t *testing.T) {
	mutual := models.MatchFlags{CandidateLiked: true, CompanyLiked: true}
	retracted := Retract(mutual, models.ActorCandidate).After

	out := Transition(retracted, true, models.ActionLike, models.ActorCandidate)
	assert.Equal(t, []string{"new_match->candidate", "new_match->company"}, kinds(out.Events))
}

// ---------------------------------------------------------------------------
// Derived state
// ---------------------------------------------------------------------------

func TestDeriveStateCoversAllFlagCombinations(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		f := models.MatchFlags{
			CandidateLiked:        mask&1 != 0,
			CompanyLiked:          mask&2 != 0,
			CandidateAskedToApply: mask&4 != 0,
			CompanyAskedToApply:   mask&8 != 0,
		}
		got := models.DeriveState(true, f)
		assert.Equal(t, f.CandidateLiked && f.CompanyLiked, got == models.StateMutual, "flags %+v", f)
	}
	assert.Equal(t, models.StateNone, models.DeriveState(false, models.MatchFlags{CandidateLiked: true, CompanyLiked: true}))
}

func TestPlaceholderAndSide(t *testing.T) {
	assert.Equal(t, 80.0, Placeholder(models.ActionLike))
	assert.Equal(t, 85.0, Placeholder(models.ActionAskToApply))
	assert.Equal(t, SideCandidate, ActorSide(models.ActorCandidate))
	assert.Equal(t, SideCompany, ActorSide(models.ActorRecruiter))
}
