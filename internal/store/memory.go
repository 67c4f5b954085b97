package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"xdrive-logistics-api-server/internal/jobs"
	"xdrive-logistics-api-server/internal/models"
)

// Memory is an in-process Store used by tests. Each method takes the
// lock for its whole body, so every conditional update is atomic the
// same way a single MongoDB UpdateOne is.
type Memory struct {
	mu     sync.Mutex
	jobs   map[string]*models.Job
	bids   map[string]*models.Bid
	events []models.StatusEvent
}

func NewMemory() *Memory {
	return &Memory{
		jobs: make(map[string]*models.Job),
		bids: make(map[string]*models.Bid),
	}
}

func (s *Memory) CreateJob(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.JobID] = &cp
	return nil
}

func (s *Memory) FindJob(ctx context.Context, jobID string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *Memory) ListJobs(ctx context.Context, f JobFilter) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Job{}
	for _, job := range s.jobs {
		if f.Status != "" && job.Status != f.Status {
			continue
		}
		if f.CompanyID != "" && job.PostingCompanyID != f.CompanyID && job.AssignedCompanyID != f.CompanyID {
			continue
		}
		if f.AssignedDriverID != "" && job.AssignedDriverID != f.AssignedDriverID {
			continue
		}
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) UpdateJobMarketStatus(ctx context.Context, jobID string, from, to jobs.MarketStatus, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != from {
		return false, nil
	}
	job.Status = to
	job.StatusUpdatedAt = now
	return true, nil
}

func (s *Memory) AssignJob(ctx context.Context, jobID, bidID, companyID, driverID, vehicleID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != jobs.MarketOpen {
		return false, nil
	}
	job.Status = jobs.MarketAssigned
	job.FulfillmentStatus = jobs.Allocated
	job.AcceptedBidID = bidID
	job.AssignedCompanyID = companyID
	if driverID != "" {
		job.AssignedDriverID = driverID
	}
	if vehicleID != "" {
		job.AssignedVehicleID = vehicleID
	}
	job.StatusUpdatedAt = now
	return true, nil
}

func (s *Memory) UpdateFulfillmentStatus(ctx context.Context, jobID string, from, to jobs.FulfillmentStatus, market jobs.MarketStatus, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.FulfillmentStatus != from {
		return false, nil
	}
	job.FulfillmentStatus = to
	job.Status = market
	job.StatusUpdatedAt = now
	return true, nil
}

func (s *Memory) AddPodPhoto(ctx context.Context, jobID string, photo models.MediaPointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	job.PodPhotos = append(job.PodPhotos, photo)
	return nil
}

func (s *Memory) CreateBid(ctx context.Context, bid *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bid
	s.bids[bid.BidID] = &cp
	return nil
}

func (s *Memory) FindBid(ctx context.Context, bidID string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid, ok := s.bids[bidID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *bid
	return &cp, nil
}

func (s *Memory) ListBidsForJob(ctx context.Context, jobID string) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Bid{}
	for _, bid := range s.bids {
		if bid.JobID == jobID {
			out = append(out, *bid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) ListBidsForCompany(ctx context.Context, companyID string) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Bid{}
	for _, bid := range s.bids {
		if bid.CompanyID == companyID {
			out = append(out, *bid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) UpdateBidStatus(ctx context.Context, bidID string, from, to models.BidStatus, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid, ok := s.bids[bidID]
	if !ok || bid.Status != from {
		return false, nil
	}
	bid.Status = to
	bid.UpdatedAt = now
	return true, nil
}

func (s *Memory) RejectSubmittedSiblings(ctx context.Context, jobID, exceptBidID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bid := range s.bids {
		if bid.JobID == jobID && bid.BidID != exceptBidID && bid.Status == models.BidSubmitted {
			bid.Status = models.BidRejected
			bid.UpdatedAt = now
		}
	}
	return nil
}

func (s *Memory) AppendStatusEvent(ctx context.Context, ev *models.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *ev)
	return nil
}

func (s *Memory) ListStatusEvents(ctx context.Context, jobID string) ([]models.StatusEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.StatusEvent{}
	for _, ev := range s.events {
		if ev.JobID == jobID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
