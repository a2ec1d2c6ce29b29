// Package notify delivers match events to users.
//
// Dispatch is best-effort: callers log failures and carry on, so a broken
// sink never rolls back a swipe that has already been recorded.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/khrees2412/talentmatch/pkg/models"
	"go.uber.org/zap"
)

// Kind names a notification type.
type Kind string

const (
	KindNewMatch             Kind = "new_match"
	KindRecruiterLiked       Kind = "recruiter_liked"
	KindRecruiterInvite      Kind = "recruiter_invite"
	KindCandidateShortlisted Kind = "candidate_shortlisted"
)

// Payload identifies the posting and profile an event is about.
type Payload struct {
	JobPostingID   int64  `json:"jobPostingId"`
	JobTitle       string `json:"jobTitle"`
	CandidateID    int64  `json:"candidateId"`
	CandidateName  string `json:"candidateName"`
	JobProfileID   int64  `json:"jobProfileId"`
	JobProfileName string `json:"jobProfileName"`
}

// Dispatcher sends a notification to one user.
type Dispatcher interface {
	Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error
}

// Render returns the title and message shown for an event.
func Render(kind Kind, p Payload) (string, string) {
	switch kind {
	case KindNewMatch:
		return "It's a match!", fmt.Sprintf("%s and %s are interested in each other.", p.CandidateName, p.JobTitle)
	case KindRecruiterLiked:
		return "A recruiter likes your profile", fmt.Sprintf("Your profile %q caught interest for %s.", p.JobProfileName, p.JobTitle)
	case KindRecruiterInvite:
		return "You're invited to apply", fmt.Sprintf("A recruiter asked you to apply for %s.", p.JobTitle)
	case KindCandidateShortlisted:
		return "Candidate shortlisted", fmt.Sprintf("%s asked to apply for %s.", p.CandidateName, p.JobTitle)
	}
	return string(kind), ""
}

// InboxStore persists notifications.
type InboxStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Inbox stores notifications for later retrieval.
type Inbox struct {
	store InboxStore
}

// NewInbox returns an Inbox writing to store.
func NewInbox(store InboxStore) *Inbox {
	return &Inbox{store: store}
}

// Notify implements Dispatcher.
func (i *Inbox) Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	title, message := Render(kind, payload)
	n := &models.Notification{
		UserID:  userID,
		Kind:    string(kind),
		Title:   title,
		Message: message,
		Payload: string(body),
	}
	if err := i.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// Fanout delivers to every dispatcher and joins their errors.
type Fanout []Dispatcher

// Notify implements Dispatcher.
func (f Fanout) Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error {
	var errs []error
	for _, d := range f {
		if err := d.Notify(ctx, userID, kind, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logging writes each event to a zap logger.
type Logging struct {
	Logger *zap.Logger
}

// Notify implements Dispatcher.
func (l Logging) Notify(_ context.Context, userID int64, kind Kind, payload Payload) error {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("notification",
		zap.Int64("user_id", userID),
		zap.String("kind", string(kind)),
		zap.Int64("job_posting_id", payload.JobPostingID),
		zap.Int64("job_profile_id", payload.JobProfileID),
	)
	return nil
}

// Sent is one recorded notification.
type Sent struct {
	UserID  int64
	Kind    Kind
	Payload Payload
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
}

// Notify implements Dispatcher.
func (r *Recorder) Notify(_ context.Context, userID int64, kind Kind, payload Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{UserID: userID, Kind: kind, Payload: payload})
	return nil
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// Reset forgets recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
