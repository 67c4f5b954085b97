package store

import (
	"context"
	"errors"
	"time"

	"xdrive-logistics-api-server/internal/jobs"
	"xdrive-logistics-api-server/internal/models"
)

// ErrNotFound is returned when a job or bid does not exist.
var ErrNotFound = errors.New("not found")

// JobFilter narrows ListJobs. Zero-value fields are ignored. CompanyID
// matches jobs the company either posted or was assigned.
type JobFilter struct {
	Status           jobs.MarketStatus
	CompanyID        string
	AssignedDriverID string
}

// Store is the persistence boundary for jobs, bids and status events.
// All mutation of job and bid status goes through the conditional
// (compare-and-swap) methods below, which report whether the expected
// prior state still held. Company, user and vehicle administration is
// plain CRUD and talks to the database directly in its handlers.
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	FindJob(ctx context.Context, jobID string) (*models.Job, error)
	ListJobs(ctx context.Context, f JobFilter) ([]models.Job, error)
	// UpdateJobMarketStatus swaps the marketplace status iff it still
	// equals from. Used for cancelling open jobs.
	UpdateJobMarketStatus(ctx context.Context, jobID string, from, to jobs.MarketStatus, now time.Time) (bool, error)
	// AssignJob swaps an open job to assigned, recording the accepted
	// bid, winning company and proposed crew, and seeds the fulfillment
	// lifecycle at ALLOCATED. Returns false when the job was no longer open.
	AssignJob(ctx context.Context, jobID, bidID, companyID, driverID, vehicleID string, now time.Time) (bool, error)
	// UpdateFulfillmentStatus swaps the fulfillment status iff it still
	// equals from, also applying the mapped marketplace status.
	UpdateFulfillmentStatus(ctx context.Context, jobID string, from, to jobs.FulfillmentStatus, market jobs.MarketStatus, now time.Time) (bool, error)
	AddPodPhoto(ctx context.Context, jobID string, photo models.MediaPointer) error

	CreateBid(ctx context.Context, bid *models.Bid) error
	FindBid(ctx context.Context, bidID string) (*models.Bid, error)
	ListBidsForJob(ctx context.Context, jobID string) ([]models.Bid, error)
	ListBidsForCompany(ctx context.Context, companyID string) ([]models.Bid, error)
	// UpdateBidStatus swaps the bid status iff it still equals from.
	UpdateBidStatus(ctx context.Context, bidID string, from, to models.BidStatus, now time.Time) (bool, error)
	// RejectSubmittedSiblings marks every still-submitted bid on the job
	// except the given one as rejected.
	RejectSubmittedSiblings(ctx context.Context, jobID, exceptBidID string, now time.Time) error

	AppendStatusEvent(ctx context.Context, ev *models.StatusEvent) error
	// ListStatusEvents returns the job's audit trail ordered by
	// timestamp ascending.
	ListStatusEvents(ctx context.Context, jobID string) ([]models.StatusEvent, error)
}
