package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"xdrive-logistics-api-server/internal/jobs"
	"xdrive-logistics-api-server/internal/models"
	"xdrive-logistics-api-server/internal/socket"
	"xdrive-logistics-api-server/internal/store"
)

// Resolution actions accepted by Resolve.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// BidService owns all bid mutation: submission, withdrawal, and the
// accept/reject resolution flow that keeps a job and its bids consistent.
type BidService struct {
	Store store.Store
	Hub   *socket.Hub
}

// SubmitBidInput is a carrier's offer against an open job.
type SubmitBidInput struct {
	Amount    float64
	Currency  string
	Message   string
	DriverID  string
	VehicleID string
}

// ListBids returns every bid on a job. Restricted to the posting
// company and admins: carriers must not see competing offers.
func (s *BidService) ListBids(ctx context.Context, actor Actor, jobID string) ([]models.Bid, error) {
	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !actor.Role.IsPlatformAdmin() && actor.CompanyID != job.PostingCompanyID {
		return nil, fmt.Errorf("%w: only the posting company can view bids on this job", ErrForbidden)
	}

	return s.Store.ListBidsForJob(ctx, jobID)
}

// Submit records a new bid on an open job and notifies the poster.
func (s *BidService) Submit(ctx context.Context, actor Actor, jobID string, in SubmitBidInput) (*models.Bid, error) {
	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != jobs.MarketOpen {
		return nil, fmt.Errorf("%w: job '%s' is no longer open for bidding", ErrInvalidState, jobID)
	}
	if !actor.Role.CanBid() || actor.CompanyID == "" {
		return nil, fmt.Errorf("%w: only carrier company members can bid", ErrForbidden)
	}
	if actor.CompanyID == job.PostingCompanyID {
		return nil, fmt.Errorf("%w: cannot bid on your own job", ErrForbidden)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: bid amount must be positive", ErrInvalidState)
	}

	now := time.Now()
	bid := &models.Bid{
		BidID:        fmt.Sprintf("BID-%s", strings.ToUpper(uuid.New().String()[:8])),
		JobID:        jobID,
		BidderUserID: actor.UserID,
		CompanyID:    actor.CompanyID,
		Amount:       in.Amount,
		Currency:     in.Currency,
		Message:      in.Message,
		DriverID:     in.DriverID,
		VehicleID:    in.VehicleID,
		Status:       models.BidSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.CreateBid(ctx, bid); err != nil {
		return nil, err
	}

	if s.Hub != nil {
		s.Hub.Notify([]string{job.PostedByUserID}, "bid_submitted",
			map[string]interface{}{"jobID": jobID, "bidID": bid.BidID, "amount": bid.Amount})
	}

	return bid, nil
}

// Resolve decides one submitted bid on an open job.
//
// Accept commits the win on the bid first, then clears
// competitors best-effort, then flip the job. The job update is the
// arbiter between concurrent accepts — a caller that wins its own bid's
// swap but finds the job already assigned rolls the bid back and
// reports a conflict, so at most one bid ever stays accepted.
func (s *BidService) Resolve(ctx context.Context, actor Actor, jobID, bidID, action string) (string, error) {
	if action != ActionAccept && action != ActionReject {
		return "", fmt.Errorf("%w: action must be 'accept' or 'reject'", ErrInvalidState)
	}

	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return "", err
	}

	if !actor.Role.IsPlatformAdmin() && actor.CompanyID != job.PostingCompanyID {
		return "", fmt.Errorf("%w: only the posting company can resolve bids on this job", ErrForbidden)
	}
	if job.Status != jobs.MarketOpen {
		return "", fmt.Errorf("%w: Cannot manage bids on a job with status '%s'", ErrInvalidState, job.Status)
	}

	bid, err := s.Store.FindBid(ctx, bidID)
	if err != nil {
		if err == store.ErrNotFound {
			return "", fmt.Errorf("bid %s: %w", bidID, ErrNotFound)
		}
		return "", err
	}
	if bid.JobID != jobID {
		return "", fmt.Errorf("bid %s does not belong to job %s: %w", bidID, jobID, ErrNotFound)
	}
	if bid.Status != models.BidSubmitted {
		return "", fmt.Errorf("%w: bid '%s' has status '%s' and can no longer be resolved", ErrInvalidState, bidID, bid.Status)
	}

	now := time.Now()

	if action == ActionReject {
		ok, err := s.Store.UpdateBidStatus(ctx, bidID, models.BidSubmitted, models.BidRejected, now)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: bid was resolved concurrently", ErrConflict)
		}
		if s.Hub != nil {
			s.Hub.Notify([]string{bid.BidderUserID}, "bid_rejected",
				map[string]interface{}{"jobID": jobID, "bidID": bidID})
		}
		return fmt.Sprintf("Bid %s rejected", bidID), nil
	}

	// Accept. Step 1: the winning company comes off the bid itself.
	winnerCompanyID := bid.CompanyID

	// Step 2: commit the win.
	ok, err := s.Store.UpdateBidStatus(ctx, bidID, models.BidSubmitted, models.BidAccepted, now)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: bid was resolved concurrently", ErrConflict)
	}

	// Step 3: clear competitors. Best effort — a failure here leaves
	// stale submitted siblings, which closed-job reads already hide.
	if err := s.Store.RejectSubmittedSiblings(ctx, jobID, bidID, now); err != nil {
		log.Printf("CRITICAL: failed to reject sibling bids for job %s after accepting %s: %v", jobID, bidID, err)
	}

	// Step 4: flip the job. This is the one write whose failure must be
	// surfaced, since the job record would disagree with bid state.
	assigned, err := s.Store.AssignJob(ctx, jobID, bidID, winnerCompanyID, bid.DriverID, bid.VehicleID, now)
	if err != nil {
		return "", fmt.Errorf("accepted bid %s but failed to update job %s; manual reconciliation required: %v", bidID, jobID, err)
	}
	if !assigned {
		// Lost the race on the job: another accept got there first.
		// Roll our bid back so only the winner's stays accepted.
		if _, rbErr := s.Store.UpdateBidStatus(ctx, bidID, models.BidAccepted, models.BidRejected, time.Now()); rbErr != nil {
			log.Printf("CRITICAL: failed to roll back bid %s after losing job %s assignment race: %v", bidID, jobID, rbErr)
		}
		return "", fmt.Errorf("%w: job was assigned concurrently", ErrConflict)
	}

	if s.Hub != nil {
		s.Hub.Notify([]string{bid.BidderUserID}, "bid_accepted",
			map[string]interface{}{"jobID": jobID, "bidID": bidID})
		siblings, err := s.Store.ListBidsForJob(ctx, jobID)
		if err == nil {
			for _, sib := range siblings {
				if sib.BidID != bidID && sib.Status == models.BidRejected {
					s.Hub.Notify([]string{sib.BidderUserID}, "bid_rejected",
						map[string]interface{}{"jobID": jobID, "bidID": sib.BidID})
				}
			}
		}
	}

	return fmt.Sprintf("Bid %s accepted; job %s assigned to company %s", bidID, jobID, winnerCompanyID), nil
}

// Withdraw retracts the caller's own submitted bid.
func (s *BidService) Withdraw(ctx context.Context, actor Actor, bidID string) error {
	bid, err := s.Store.FindBid(ctx, bidID)
	if err != nil {
		if err == store.ErrNotFound {
			return fmt.Errorf("bid %s: %w", bidID, ErrNotFound)
		}
		return err
	}

	if bid.BidderUserID != actor.UserID && !actor.Role.IsPlatformAdmin() {
		return fmt.Errorf("%w: only the bidder can withdraw a bid", ErrForbidden)
	}
	if bid.Status != models.BidSubmitted {
		return fmt.Errorf("%w: bid '%s' has status '%s' and can no longer be withdrawn", ErrInvalidState, bidID, bid.Status)
	}

	ok, err := s.Store.UpdateBidStatus(ctx, bidID, models.BidSubmitted, models.BidWithdrawn, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: bid was resolved concurrently", ErrConflict)
	}
	return nil
}

// CompanyBids lists the caller company's own bids across jobs.
func (s *BidService) CompanyBids(ctx context.Context, actor Actor) ([]models.Bid, error) {
	if actor.CompanyID == "" {
		return []models.Bid{}, nil
	}
	return s.Store.ListBidsForCompany(ctx, actor.CompanyID)
}

func (s *BidService) findJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.Store.FindJob(ctx, jobID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return nil, err
	}
	return job, nil
}
