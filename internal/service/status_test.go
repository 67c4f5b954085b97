package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/jobs"
	"xdrive-logistics-api-server/internal/models"
	"xdrive-logistics-api-server/internal/store"
)

var driverActor = Actor{UserID: "USR-DRIVER1", Role: auth.RoleDriver, CompanyID: "CMP-CARRA"}

func seedAssignedJob(t *testing.T, st store.Store) *models.Job {
	t.Helper()
	now := time.Now()
	job := &models.Job{
		JobID:             "JOB-TEST01",
		PostedByUserID:    brokerActor.UserID,
		PostingCompanyID:  brokerActor.CompanyID,
		Status:            jobs.MarketAssigned,
		FulfillmentStatus: jobs.Allocated,
		AssignedCompanyID: carrierA.CompanyID,
		AcceptedBidID:     "BID-WIN",
		AssignedDriverID:  driverActor.UserID,
		CreatedAt:         now,
		StatusUpdatedAt:   now,
	}
	require.NoError(t, st.CreateJob(context.Background(), job))
	return job
}

func TestAdvanceHappyPath(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	seedAssignedJob(t, st)

	job, message, err := svc.Advance(context.Background(), driverActor, "JOB-TEST01", StatusUpdate{
		Status: "ON_MY_WAY_TO_PICKUP",
		Notes:  "Leaving the depot",
	})
	require.NoError(t, err)
	assert.Equal(t, jobs.OnMyWayToPickup, job.FulfillmentStatus)
	assert.Equal(t, jobs.MarketAssigned, job.Status)
	assert.Contains(t, message, "ON_MY_WAY_TO_PICKUP")

	events, err := st.ListStatusEvents(context.Background(), "JOB-TEST01")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, jobs.OnMyWayToPickup, events[0].Status)
	assert.Equal(t, driverActor.UserID, events[0].ActorUserID)
	assert.Equal(t, auth.RoleDriver, events[0].ActorRole)
	assert.Equal(t, "Leaving the depot", events[0].Notes)
}

func TestAdvanceAcceptsLowercaseStatus(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	seedAssignedJob(t, st)

	job, _, err := svc.Advance(context.Background(), driverActor, "JOB-TEST01", StatusUpdate{Status: "on_my_way_to_pickup"})
	require.NoError(t, err)
	assert.Equal(t, jobs.OnMyWayToPickup, job.FulfillmentStatus)
}

func TestAdvanceRejectsSkippedStep(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	seedAssignedJob(t, st)

	_, _, err := svc.Advance(context.Background(), driverActor, "JOB-TEST01", StatusUpdate{Status: "PICKED_UP"})

	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, jobs.Allocated, transitionErr.From)
	assert.Equal(t, jobs.PickedUp, transitionErr.To)
	assert.Equal(t, []jobs.FulfillmentStatus{jobs.OnMyWayToPickup, jobs.Cancelled}, transitionErr.Allowed)

	// A rejected move leaves no trace in the audit trail.
	events, err := st.ListStatusEvents(context.Background(), "JOB-TEST01")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAdvanceRejectsUnknownStatus(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	seedAssignedJob(t, st)

	_, _, err := svc.Advance(context.Background(), driverActor, "JOB-TEST01", StatusUpdate{Status: "LOADING"})

	var transitionErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestAdvanceFromTerminalStatus(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	seedAssignedJob(t, st)

	for _, status := range []string{
		"ON_MY_WAY_TO_PICKUP", "ON_SITE_PICKUP", "PICKED_UP",
		"ON_MY_WAY_TO_DELIVERY", "ON_SITE_DELIVERY", "DELIVERED",
	} {
		_, _, err := svc.Advance(context.Background(), driverActor, "JOB-TEST01", StatusUpdate{Status: status})
		require.NoError(t, err)
	}

	_, _, err := svc.Advance(context.Background(), driverActor, "JOB-TEST01", StatusUpdate{Status: "CANCELLED"})
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Empty(t, transitionErr.Allowed)

	events, err := st.ListStatusEvents(context.Background(), "JOB-TEST01")
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestDeliveredCompletesJob(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	job := seedAssignedJob(t, st)
	job.FulfillmentStatus = jobs.OnSiteDelivery
	require.NoError(t, st.CreateJob(context.Background(), job))

	updated, _, err := svc.Advance(context.Background(), driverActor, job.JobID, StatusUpdate{Status: "DELIVERED"})
	require.NoError(t, err)
	assert.Equal(t, jobs.Delivered, updated.FulfillmentStatus)
	assert.Equal(t, jobs.MarketCompleted, updated.Status)
}

func TestCancelledCancelsJob(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	seedAssignedJob(t, st)

	updated, _, err := svc.Advance(context.Background(), driverActor, "JOB-TEST01", StatusUpdate{Status: "CANCELLED"})
	require.NoError(t, err)
	assert.Equal(t, jobs.Cancelled, updated.FulfillmentStatus)
	assert.Equal(t, jobs.MarketCancelled, updated.Status)
}

func TestAdvanceAuthorization(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	seedAssignedJob(t, st)

	// Another driver of the same carrier is not the assigned driver.
	otherDriver := Actor{UserID: "USR-DRIVER2", Role: auth.RoleDriver, CompanyID: carrierA.CompanyID}
	_, _, err := svc.Advance(context.Background(), otherDriver, "JOB-TEST01", StatusUpdate{Status: "ON_MY_WAY_TO_PICKUP"})
	assert.ErrorIs(t, err, ErrForbidden)

	// A company admin of the posting company may advance.
	_, _, err = svc.Advance(context.Background(), brokerActor, "JOB-TEST01", StatusUpdate{Status: "ON_MY_WAY_TO_PICKUP"})
	assert.NoError(t, err)

	// Platform admins always may.
	_, _, err = svc.Advance(context.Background(), adminActor, "JOB-TEST01", StatusUpdate{Status: "ON_SITE_PICKUP"})
	assert.NoError(t, err)
}

func TestAdvanceUnassignedJob(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	now := time.Now()
	require.NoError(t, st.CreateJob(context.Background(), &models.Job{
		JobID:            "JOB-OPEN",
		PostedByUserID:   brokerActor.UserID,
		PostingCompanyID: brokerActor.CompanyID,
		Status:           jobs.MarketOpen,
		CreatedAt:        now,
		StatusUpdatedAt:  now,
	}))

	_, _, err := svc.Advance(context.Background(), brokerActor, "JOB-OPEN", StatusUpdate{Status: "ON_MY_WAY_TO_PICKUP"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAdvanceMissingJob(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}

	_, _, err := svc.Advance(context.Background(), adminActor, "JOB-NOPE", StatusUpdate{Status: "ON_MY_WAY_TO_PICKUP"})
	assert.ErrorIs(t, err, ErrNotFound)
}

// failingEventStore simulates an audit-trail outage.
type failingEventStore struct {
	*store.Memory
}

func (s *failingEventStore) AppendStatusEvent(ctx context.Context, ev *models.StatusEvent) error {
	return errors.New("events collection unavailable")
}

func TestAdvanceSucceedsWhenEventAppendFails(t *testing.T) {
	st := &failingEventStore{Memory: store.NewMemory()}
	svc := &StatusService{Store: st}
	seedAssignedJob(t, st)

	job, _, err := svc.Advance(context.Background(), driverActor, "JOB-TEST01", StatusUpdate{Status: "ON_MY_WAY_TO_PICKUP"})
	require.NoError(t, err)
	assert.Equal(t, jobs.OnMyWayToPickup, job.FulfillmentStatus)

	stored, err := st.FindJob(context.Background(), "JOB-TEST01")
	require.NoError(t, err)
	assert.Equal(t, jobs.OnMyWayToPickup, stored.FulfillmentStatus)
}

func TestHistoryOrderingAndVisibility(t *testing.T) {
	st := store.NewMemory()
	svc := &StatusService{Store: st}
	seedAssignedJob(t, st)

	for _, status := range []string{"ON_MY_WAY_TO_PICKUP", "ON_SITE_PICKUP", "PICKED_UP"} {
		_, _, err := svc.Advance(context.Background(), driverActor, "JOB-TEST01", StatusUpdate{Status: status})
		require.NoError(t, err)
	}

	events, err := svc.History(context.Background(), brokerActor, "JOB-TEST01")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, jobs.OnMyWayToPickup, events[0].Status)
	assert.Equal(t, jobs.OnSitePickup, events[1].Status)
	assert.Equal(t, jobs.PickedUp, events[2].Status)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].CreatedAt.Before(events[i-1].CreatedAt))
	}

	// An unrelated company cannot read the trail.
	_, err = svc.History(context.Background(), carrierB, "JOB-TEST01")
	assert.ErrorIs(t, err, ErrForbidden)

	// The assigned carrier can.
	_, err = svc.History(context.Background(), carrierA, "JOB-TEST01")
	assert.NoError(t, err)
}
