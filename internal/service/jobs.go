package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/jobs"
	"xdrive-logistics-api-server/internal/models"
	"xdrive-logistics-api-server/internal/store"
)

// JobService covers posting, reading and cancelling marketplace jobs.
type JobService struct {
	Store store.Store
}

// PostJobInput is the poster-provided part of a new job.
type PostJobInput struct {
	PickupAddress   models.Address
	DeliveryAddress models.Address
	PickupWindow    string
	DeliveryWindow  string
	Cargo           models.CargoDetails
}

// Post creates a job in the open marketplace status.
func (s *JobService) Post(ctx context.Context, actor Actor, in PostJobInput) (*models.Job, error) {
	if !actor.Role.CanPostJobs() {
		return nil, fmt.Errorf("%w: your role cannot post jobs", ErrForbidden)
	}
	if actor.CompanyID == "" {
		return nil, fmt.Errorf("%w: posting requires a company membership", ErrForbidden)
	}

	now := time.Now()
	job := &models.Job{
		JobID:            fmt.Sprintf("JOB-%s", strings.ToUpper(uuid.New().String()[:8])),
		PostedByUserID:   actor.UserID,
		PostingCompanyID: actor.CompanyID,
		PickupAddress:    in.PickupAddress,
		DeliveryAddress:  in.DeliveryAddress,
		PickupWindow:     in.PickupWindow,
		DeliveryWindow:   in.DeliveryWindow,
		Cargo:            in.Cargo,
		Status:           jobs.MarketOpen,
		CreatedAt:        now,
		StatusUpdatedAt:  now,
	}
	if err := s.Store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get fetches one job visible to the caller.
func (s *JobService) Get(ctx context.Context, actor Actor, jobID string) (*models.Job, error) {
	job, err := s.Store.FindJob(ctx, jobID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return nil, err
	}
	if !canViewJob(actor, job) && job.Status != jobs.MarketOpen {
		return nil, fmt.Errorf("%w: you are not a party to this job", ErrForbidden)
	}
	return job, nil
}

// List returns jobs scoped to the caller: admins see everything,
// drivers their assignments, everyone else their company's jobs on
// either side of the marketplace.
func (s *JobService) List(ctx context.Context, actor Actor, status jobs.MarketStatus) ([]models.Job, error) {
	filter := store.JobFilter{Status: status}
	switch {
	case actor.Role.IsPlatformAdmin():
		// no scope
	case actor.Role == auth.RoleDriver:
		filter.AssignedDriverID = actor.UserID
	default:
		filter.CompanyID = actor.CompanyID
	}
	return s.Store.ListJobs(ctx, filter)
}

// OpenJobs is the carrier-facing marketplace view.
func (s *JobService) OpenJobs(ctx context.Context) ([]models.Job, error) {
	return s.Store.ListJobs(ctx, store.JobFilter{Status: jobs.MarketOpen})
}

// CancelOpen cancels a job that is still open for bidding. Assigned
// jobs are cancelled through the fulfillment lifecycle instead, so the
// audit trail records who pulled the job off the road.
func (s *JobService) CancelOpen(ctx context.Context, actor Actor, jobID string) error {
	job, err := s.Store.FindJob(ctx, jobID)
	if err != nil {
		if err == store.ErrNotFound {
			return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return err
	}

	if !actor.Role.IsPlatformAdmin() && actor.CompanyID != job.PostingCompanyID {
		return fmt.Errorf("%w: only the posting company can cancel this job", ErrForbidden)
	}
	if job.Status != jobs.MarketOpen {
		return fmt.Errorf("%w: job '%s' has status '%s' and cannot be cancelled here", ErrInvalidState, jobID, job.Status)
	}

	ok, err := s.Store.UpdateJobMarketStatus(ctx, jobID, jobs.MarketOpen, jobs.MarketCancelled, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: job status changed concurrently", ErrConflict)
	}
	return nil
}
