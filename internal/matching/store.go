package matching

import (
	"context"

	"github.com/khrees2412/talentmatch/pkg/models"
)

// Mutation decides the new flags of a match. existing is nil when no row
// exists yet. It may be called more than once per store operation and must
// not have side effects.
type Mutation func(existing *models.Match) (after models.MatchFlags, write bool)

// SwipeRecord is what the store did with one swipe.
type SwipeRecord struct {
	// Created is false when a duplicate like was suppressed.
	Created bool
	// Before is the match as it was inside the transaction, nil if absent.
	Before *models.Match
	// After is the match after the mutation, nil if none exists.
	After *models.Match
}

// MatchFilter narrows ListMatches.
type MatchFilter struct {
	CandidateID int64
	CompanyIDs  []int64
	MutualOnly  bool
}

// PostingFilter narrows ListPostings.
type PostingFilter struct {
	CompanyIDs []int64
	ActiveOnly bool
}

// Store is the persistence the matching service needs.
//
// ApplySwipe and UpdateMatch run the mutation inside one transaction that
// holds the match row, so concurrent callers on one key are serialized.
type Store interface {
	GetPosting(ctx context.Context, id int64) (*models.JobPosting, error)
	GetProfile(ctx context.Context, id int64) (*models.JobProfile, error)
	GetCandidate(ctx context.Context, id int64) (*models.Candidate, error)
	GetCompany(ctx context.Context, id int64) (*models.Company, error)
	TeamCompanyIDs(ctx context.Context, companyID int64) ([]int64, error)
	ListProfiles(ctx context.Context) ([]models.JobProfile, error)
	ListPostings(ctx context.Context, filter PostingFilter) ([]models.JobPosting, error)

	ApplySwipe(ctx context.Context, swipe *models.Swipe, placeholder float64, mutate Mutation) (*SwipeRecord, error)
	UpdateMatch(ctx context.Context, matchID int64, mutate Mutation) (before, after *models.Match, err error)
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	FindMatch(ctx context.Context, key models.MatchKey) (*models.Match, error)
	LatestSwipe(ctx context.Context, candidateID, postingID int64, actor models.Actor) (*models.Swipe, error)
	ListMatches(ctx context.Context, filter MatchFilter) ([]models.Match, error)
	ListUnscoredMatches(ctx context.Context, limit int) ([]models.Match, error)
	SetMatchScore(ctx context.Context, matchID int64, percentage float64) error
	PostingStats(ctx context.Context, companyIDs []int64) ([]models.PostingStats, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkNotificationRead(ctx context.Context, userID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error)
}
