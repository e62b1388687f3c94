// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file is the vote ledger: it records at most one vote
// per (feedback item, voter) pair and keeps the denormalized upvote/downvote
// counters on the feedback row consistent with the vote table.
//
// Consistency contract:
//   - Every ledger mutation (insert, flip, delete) and its counter
//     adjustment run inside ONE transaction. A reader can never observe a
//     vote row without its counter effect, or a half-applied flip.
//   - Counter adjustments are expressed as relative deltas in SQL
//     (upvotes = upvotes + 1), never read-then-overwrite, so concurrent
//     votes on the same item do not lose updates.
//   - The composite unique indexes on (feedback_id, voter_email) and
//     (feedback_id, voter_ip) are the backstop for concurrent first votes
//     from the same voter: the losing insert is detected and degraded into
//     the repeat-vote path instead of duplicating the row.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// voteScope narrows a query to the vote row owned by voter on feedbackID.
// The lookup column is derived from the identity variant; exactly one of
// voter_email / voter_ip is ever consulted.
func voteScope(db *gorm.DB, feedbackID string, voter domain.VoterIdentity) *gorm.DB {
	q := db.Where("feedback_id = ?", feedbackID)
	if voter.Kind() == domain.VoterEmail {
		return q.Where("voter_email = ?", voter.Value())
	}
	return q.Where("voter_ip = ?", voter.Value())
}

// FindVote returns the vote cast by voter on feedbackID, or ErrNotFound.
func FindVote(ctx context.Context, db *gorm.DB, feedbackID string, voter domain.VoterIdentity) (*domain.Vote, error) {
	var v domain.Vote
	if err := voteScope(db.WithContext(ctx), feedbackID, voter).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// ApplyVote casts or updates a vote and returns the refreshed counters.
//
// Semantics (all within one transaction):
//   - feedback item missing            -> ErrNotFound
//   - no prior vote by this voter      -> insert row, counter +1
//   - prior vote with the same type    -> no-op (idempotent repeat)
//   - prior vote with a different type -> flip row type, new counter +1 and
//     old counter -1 in a single UPDATE statement
func ApplyVote(ctx context.Context, db *gorm.DB, feedbackID string, voteType domain.VoteType, voter domain.VoterIdentity) (domain.VoteCounts, error) {
	var counts domain.VoteCounts
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Where("id = ?", feedbackID).First(&domain.Feedback{}).Error; err != nil {
			return err
		}

		var existing domain.Vote
		err := voteScope(tx, feedbackID, voter).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			v := newVoteRow(feedbackID, voteType, voter)
			if cerr := tx.Create(v).Error; cerr != nil {
				if !isUniqueViolation(cerr) {
					return cerr
				}
				// Lost a race against another request from the same voter:
				// the unique index rejected the insert. Degrade to the
				// repeat-vote path against the row that won.
				if ferr := voteScope(tx, feedbackID, voter).First(&existing).Error; ferr != nil {
					return ferr
				}
				if flipErr := flipVote(tx, feedbackID, &existing, voteType); flipErr != nil {
					return flipErr
				}
				return reloadCounts(tx, feedbackID, &counts)
			}
			if uerr := adjustCounter(tx, feedbackID, voteType, +1); uerr != nil {
				return uerr
			}
			return reloadCounts(tx, feedbackID, &counts)

		case err != nil:
			return err

		default:
			if flipErr := flipVote(tx, feedbackID, &existing, voteType); flipErr != nil {
				return flipErr
			}
			return reloadCounts(tx, feedbackID, &counts)
		}
	})
	return counts, err
}

// RemoveVote retracts the voter's vote and returns the refreshed counters.
// Returns ErrNotFound when the item or the vote row is absent; counters are
// left untouched in either case.
func RemoveVote(ctx context.Context, db *gorm.DB, feedbackID string, voter domain.VoterIdentity) (domain.VoteCounts, error) {
	var counts domain.VoteCounts
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Where("id = ?", feedbackID).First(&domain.Feedback{}).Error; err != nil {
			return err
		}

		var existing domain.Vote
		if err := voteScope(tx, feedbackID, voter).First(&existing).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", existing.ID).Delete(&domain.Vote{}).Error; err != nil {
			return err
		}
		if err := adjustCounter(tx, feedbackID, existing.Type, -1); err != nil {
			return err
		}
		return reloadCounts(tx, feedbackID, &counts)
	})
	return counts, err
}

// newVoteRow builds a Vote with the correct identity column populated.
func newVoteRow(feedbackID string, voteType domain.VoteType, voter domain.VoterIdentity) *domain.Vote {
	v := &domain.Vote{
		ID:         uuid.NewString(),
		FeedbackID: feedbackID,
		Type:       voteType,
		CreatedAt:  time.Now().UTC(),
	}
	val := voter.Value()
	if voter.Kind() == domain.VoterEmail {
		v.VoterEmail = &val
	} else {
		v.VoterIP = &val
	}
	return v
}

// flipVote handles the repeat-vote cases: same type is a no-op, a different
// type updates the row and shifts both counters in one UPDATE.
func flipVote(tx *gorm.DB, feedbackID string, existing *domain.Vote, voteType domain.VoteType) error {
	if existing.Type == voteType {
		return nil
	}
	if err := tx.Model(&domain.Vote{}).
		Where("id = ?", existing.ID).
		UpdateColumn("type", string(voteType)).Error; err != nil {
		return err
	}
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if voteType == domain.VoteUp {
		updates["upvotes"] = gorm.Expr("upvotes + 1")
		updates["downvotes"] = gorm.Expr("downvotes - 1")
	} else {
		updates["downvotes"] = gorm.Expr("downvotes + 1")
		updates["upvotes"] = gorm.Expr("upvotes - 1")
	}
	return tx.Model(&domain.Feedback{}).
		Where("id = ?", feedbackID).
		UpdateColumns(updates).Error
}

// adjustCounter shifts one counter by delta using a relative SQL expression.
func adjustCounter(tx *gorm.DB, feedbackID string, voteType domain.VoteType, delta int) error {
	col := "downvotes"
	if voteType == domain.VoteUp {
		col = "upvotes"
	}
	return tx.Model(&domain.Feedback{}).
		Where("id = ?", feedbackID).
		UpdateColumns(map[string]any{
			col:          gorm.Expr(col+" + ?", delta),
			"updated_at": time.Now().UTC(),
		}).Error
}

// reloadCounts reads the counters back inside the same transaction so the
// returned pair reflects exactly the state this operation committed.
func reloadCounts(tx *gorm.DB, feedbackID string, out *domain.VoteCounts) error {
	var row struct {
		Upvotes   int
		Downvotes int
	}
	if err := tx.Model(&domain.Feedback{}).
		Select("upvotes", "downvotes").
		Where("id = ?", feedbackID).
		First(&row).Error; err != nil {
		return err
	}
	out.Upvotes = row.Upvotes
	out.Downvotes = row.Downvotes
	return nil
}

// isUniqueViolation detects unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite: "UNIQUE constraint failed: …"
	// Postgres:        "duplicate key value violates unique constraint …"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
