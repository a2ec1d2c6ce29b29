// Package matching turns one-sided swipes into match records.
//
// A match moves between four derived states:
//
//	NONE ──► ONE_SIDED_CANDIDATE ──┐
//	  │                            ├──► MUTUAL
//	  └────► ONE_SIDED_COMPANY ────┘
//
// Swipes only ever set flags. Unlike is the one operation that clears a
// liked flag, and it never notifies. Ask-to-apply flags sit beside the
// state and do not affect it.
package matching

import (
	"github.com/khrees2412/talentmatch/internal/notify"
	"github.com/khrees2412/talentmatch/pkg/models"
)

// Placeholder match percentages stored until the scheduler scores the pair.
const (
	LikePercentage       = 80
	AskToApplyPercentage = 85
)

// Side is one party of a match.
type Side string

const (
	SideCandidate Side = "candidate"
	SideCompany   Side = "company"
)

// Event is a notification a transition asks to send.
type Event struct {
	Kind notify.Kind
	To   Side
}

// Outcome is the result of applying one action to a match.
type Outcome struct {
	After models.MatchFlags
	// Write is false when the action leaves the match untouched.
	Write  bool
	Events []Event
}

// Placeholder returns the creation percentage for action.
func Placeholder(action models.Action) float64 {
	if action == models.ActionAskToApply {
		return AskToApplyPercentage
	}
	return LikePercentage
}

// Transition applies action by actor to the flags of a possibly missing match.
func Transition(before models.MatchFlags, exists bool, action models.Action, actor models.Actor) Outcome {
	after := before
	switch action {
	case models.ActionLike:
		if actor == models.ActorCandidate {
			after.CandidateLiked = true
		} else {
			after.CompanyLiked = true
		}
	case models.ActionAskToApply:
		if actor == models.ActorCandidate {
			after.CandidateAskedToApply = true
		} else {
			after.CompanyAskedToApply = true
		}
	default:
		return Outcome{After: before}
	}

	out := Outcome{After: after, Write: !exists || after != before}

	switch {
	case after.Mutual() && !before.Mutual():
		out.Events = append(out.Events,
			Event{Kind: notify.KindNewMatch, To: SideCandidate},
			Event{Kind: notify.KindNewMatch, To: SideCompany},
		)
	case after.CompanyLiked && !before.CompanyLiked:
		out.Events = append(out.Events, Event{Kind: notify.KindRecruiterLiked, To: SideCandidate})
	}

	if after.CompanyAskedToApply && !before.CompanyAskedToApply {
		out.Events = append(out.Events, Event{Kind: notify.KindRecruiterInvite, To: SideCandidate})
	}
	if after.CandidateAskedToApply && !before.CandidateAskedToApply {
		out.Events = append(out.Events, Event{Kind: notify.KindCandidateShortlisted, To: SideCompany})
	}
	return out
}

// Retract clears the liked flag of actor's side. Ask flags are kept.
func Retract(before models.MatchFlags, actor models.Actor) Outcome {
	after := before
	if actor == models.ActorCandidate {
		after.CandidateLiked = false
	} else {
		after.CompanyLiked = false
	}
	return Outcome{After: after, Write: after != before}
}

// ActorSide maps an actor to the side of the match it owns.
func ActorSide(actor models.Actor) Side {
	if actor == models.ActorCandidate {
		return SideCandidate
	}
	return SideCompany
}
