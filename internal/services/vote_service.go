// Package services – VoteService
//
// This file implements the public vote operations on feedback items. The
// service resolves the voter identity (supplied email wins, source IP is
// the fallback), locates the owning website through the feedback item, and
// verifies credentials before delegating to the vote ledger in the repo
// layer, which performs the row mutation and counter adjustment as one
// atomic unit.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// VoteService implements the cast/remove vote use-cases.
type VoteService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Verifier resolves website credentials; votes authenticate against the
	// website owning the feedback item.
	Verifier WebsiteVerifier
}

// Cast records, repeats, or flips a vote and returns the refreshed
// counters.
//
// Semantics:
//   - voteType must be "up" or "down"; otherwise ErrInvalidVoteType.
//   - The voter identity is voterEmail when non-empty, else sourceIP; if
//     neither resolves, ErrNoVoterIdentity.
//   - feedbackID must exist; otherwise ErrFeedbackNotFound.
//   - The presented key must match the item's owning website and the
//     website must be active (ErrUnauthorized / ErrWebsiteInactive).
//   - Repeating the same vote is a no-op; a different type flips the vote
//     and shifts both counters atomically.
func (s *VoteService) Cast(ctx context.Context, apiKey, feedbackID string, voteType domain.VoteType, voterEmail, sourceIP string) (domain.VoteCounts, error) {
	if !voteType.Valid() {
		return domain.VoteCounts{}, ErrInvalidVoteType
	}
	voter := domain.ResolveVoter(voterEmail, sourceIP)
	if voter.IsZero() {
		return domain.VoteCounts{}, ErrNoVoterIdentity
	}

	fb, err := repo.GetFeedback(ctx, s.DB, feedbackID)
	if err != nil {
		if isNotFound(err) {
			return domain.VoteCounts{}, ErrFeedbackNotFound
		}
		return domain.VoteCounts{}, err
	}
	if _, err := s.Verifier.Verify(ctx, fb.WebsiteID, apiKey); err != nil {
		return domain.VoteCounts{}, err
	}

	counts, err := repo.ApplyVote(ctx, s.DB, feedbackID, voteType, voter)
	if err != nil {
		if isNotFound(err) {
			return domain.VoteCounts{}, ErrFeedbackNotFound
		}
		return domain.VoteCounts{}, err
	}
	return counts, nil
}

// Remove retracts the voter's vote and returns the refreshed counters.
// Returns ErrVoteNotFound when the resolved voter has no vote on the item;
// counters are left unchanged in that case.
func (s *VoteService) Remove(ctx context.Context, apiKey, feedbackID, voterEmail, sourceIP string) (domain.VoteCounts, error) {
	voter := domain.ResolveVoter(voterEmail, sourceIP)
	if voter.IsZero() {
		return domain.VoteCounts{}, ErrNoVoterIdentity
	}

	fb, err := repo.GetFeedback(ctx, s.DB, feedbackID)
	if err != nil {
		if isNotFound(err) {
			return domain.VoteCounts{}, ErrFeedbackNotFound
		}
		return domain.VoteCounts{}, err
	}
	if _, err := s.Verifier.Verify(ctx, fb.WebsiteID, apiKey); err != nil {
		return domain.VoteCounts{}, err
	}

	counts, err := repo.RemoveVote(ctx, s.DB, feedbackID, voter)
	if err != nil {
		if isNotFound(err) {
			return domain.VoteCounts{}, ErrVoteNotFound
		}
		return domain.VoteCounts{}, err
	}
	return counts, nil
}
