package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/jobs"
	"xdrive-logistics-api-server/internal/models"
	"xdrive-logistics-api-server/internal/socket"
	"xdrive-logistics-api-server/internal/store"
)

// StatusService gates fulfillment transitions against the transition
// table, persists accepted moves, and appends the audit trail.
type StatusService struct {
	Store store.Store
	Hub   *socket.Hub
}

// StatusUpdate is a requested fulfillment transition.
type StatusUpdate struct {
	Status   string
	Notes    string
	Location *models.GeoPoint
}

// Advance validates and applies one fulfillment transition. The status
// event append is best effort: its failure is logged and the update
// still succeeds. Returns the refreshed job and a confirmation message.
func (s *StatusService) Advance(ctx context.Context, actor Actor, jobID string, upd StatusUpdate) (*models.Job, string, error) {
	job, err := s.Store.FindJob(ctx, jobID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, "", fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return nil, "", err
	}

	if !canAdvanceStatus(actor, job) {
		return nil, "", fmt.Errorf("%w: only the assigned driver, an admin, or an admin of the posting company can update job status", ErrForbidden)
	}

	if job.FulfillmentStatus == "" {
		return nil, "", fmt.Errorf("%w: job '%s' has no active fulfillment; it has not been assigned yet", ErrInvalidState, jobID)
	}

	target := jobs.FulfillmentStatus(strings.ToUpper(upd.Status))
	if !jobs.ValidFulfillmentStatus(target) || !jobs.IsValidTransition(job.FulfillmentStatus, target) {
		return nil, "", &InvalidTransitionError{
			From:    job.FulfillmentStatus,
			To:      target,
			Allowed: jobs.AllowedTargets(job.FulfillmentStatus),
		}
	}

	now := time.Now()
	market := jobs.MarketStatusAfter(target, job.Status)
	ok, err := s.Store.UpdateFulfillmentStatus(ctx, jobID, job.FulfillmentStatus, target, market, now)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("%w: job status changed concurrently, please retry", ErrConflict)
	}

	event := &models.StatusEvent{
		EventID:     fmt.Sprintf("EVT-%s", strings.ToUpper(uuid.New().String()[:8])),
		JobID:       jobID,
		Status:      target,
		ActorUserID: actor.UserID,
		ActorRole:   actor.Role,
		Notes:       upd.Notes,
		Location:    upd.Location,
		CreatedAt:   now,
	}
	if err := s.Store.AppendStatusEvent(ctx, event); err != nil {
		log.Printf("CRITICAL: failed to append status event for job %s (-> %s): %v", jobID, target, err)
	}

	updated, err := s.Store.FindJob(ctx, jobID)
	if err != nil {
		// The update itself succeeded; fall back to the stale copy.
		updated = job
		updated.FulfillmentStatus = target
		updated.Status = market
	}

	if s.Hub != nil {
		s.Hub.Notify(
			[]string{updated.PostedByUserID, updated.AssignedDriverID},
			"job_status_updated",
			map[string]interface{}{"jobID": jobID, "status": target},
		)
	}

	message := fmt.Sprintf("Job %s status updated to %s", jobID, target)
	return updated, message, nil
}

// History returns the job's ordered status events. Visible to the
// poster company, the assigned company and driver, and admins.
func (s *StatusService) History(ctx context.Context, actor Actor, jobID string) ([]models.StatusEvent, error) {
	job, err := s.Store.FindJob(ctx, jobID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return nil, err
	}

	if !canViewJob(actor, job) {
		return nil, fmt.Errorf("%w: you are not a party to this job", ErrForbidden)
	}

	return s.Store.ListStatusEvents(ctx, jobID)
}

func canAdvanceStatus(actor Actor, job *models.Job) bool {
	if actor.Role.IsPlatformAdmin() {
		return true
	}
	if actor.UserID != "" && actor.UserID == job.AssignedDriverID {
		return true
	}
	// Company admins of the posting company may correct or cancel.
	return actor.Role == auth.RoleCompanyAdmin && actor.CompanyID == job.PostingCompanyID
}

func canViewJob(actor Actor, job *models.Job) bool {
	if actor.Role.IsPlatformAdmin() {
		return true
	}
	if actor.CompanyID != "" && (actor.CompanyID == job.PostingCompanyID || actor.CompanyID == job.AssignedCompanyID) {
		return true
	}
	return actor.UserID == job.AssignedDriverID || actor.UserID == job.PostedByUserID
}
