package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"xdrive-logistics-api-server/internal/jobs"
	"xdrive-logistics-api-server/internal/models"
)

// Mongo implements Store on top of a MongoDB database. Conditional
// updates filter on the expected prior status and report success via
// ModifiedCount, so a raced update shows up as a missed swap instead of
// a lost write.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (s *Mongo) jobs() *mongo.Collection   { return s.db.Collection("jobs") }
func (s *Mongo) bids() *mongo.Collection   { return s.db.Collection("bids") }
func (s *Mongo) events() *mongo.Collection { return s.db.Collection("status_events") }

func (s *Mongo) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.jobs().InsertOne(ctx, job)
	return err
}

func (s *Mongo) FindJob(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	err := s.jobs().FindOne(ctx, bson.M{"jobID": jobID}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *Mongo) ListJobs(ctx context.Context, f JobFilter) ([]models.Job, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CompanyID != "" {
		filter["$or"] = []bson.M{
			{"postingCompanyID": f.CompanyID},
			{"assignedCompanyID": f.CompanyID},
		}
	}
	if f.AssignedDriverID != "" {
		filter["assignedDriverID"] = f.AssignedDriverID
	}

	cursor, err := s.jobs().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Job
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Job{}
	}
	return out, nil
}

func (s *Mongo) UpdateJobMarketStatus(ctx context.Context, jobID string, from, to jobs.MarketStatus, now time.Time) (bool, error) {
	res, err := s.jobs().UpdateOne(ctx,
		bson.M{"jobID": jobID, "status": from},
		bson.M{"$set": bson.M{"status": to, "statusUpdatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *Mongo) AssignJob(ctx context.Context, jobID, bidID, companyID, driverID, vehicleID string, now time.Time) (bool, error) {
	set := bson.M{
		"status":            jobs.MarketAssigned,
		"fulfillmentStatus": jobs.Allocated,
		"acceptedBidID":     bidID,
		"assignedCompanyID": companyID,
		"statusUpdatedAt":   now,
	}
	if driverID != "" {
		set["assignedDriverID"] = driverID
	}
	if vehicleID != "" {
		set["assignedVehicleID"] = vehicleID
	}

	res, err := s.jobs().UpdateOne(ctx,
		bson.M{"jobID": jobID, "status": jobs.MarketOpen},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *Mongo) UpdateFulfillmentStatus(ctx context.Context, jobID string, from, to jobs.FulfillmentStatus, market jobs.MarketStatus, now time.Time) (bool, error) {
	res, err := s.jobs().UpdateOne(ctx,
		bson.M{"jobID": jobID, "fulfillmentStatus": from},
		bson.M{"$set": bson.M{
			"fulfillmentStatus": to,
			"status":            market,
			"statusUpdatedAt":   now,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *Mongo) AddPodPhoto(ctx context.Context, jobID string, photo models.MediaPointer) error {
	res, err := s.jobs().UpdateOne(ctx,
		bson.M{"jobID": jobID},
		bson.M{"$push": bson.M{"podPhotos": photo}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) CreateBid(ctx context.Context, bid *models.Bid) error {
	_, err := s.bids().InsertOne(ctx, bid)
	return err
}

func (s *Mongo) FindBid(ctx context.Context, bidID string) (*models.Bid, error) {
	var bid models.Bid
	err := s.bids().FindOne(ctx, bson.M{"bidID": bidID}).Decode(&bid)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (s *Mongo) ListBidsForJob(ctx context.Context, jobID string) ([]models.Bid, error) {
	return s.listBids(ctx, bson.M{"jobID": jobID})
}

func (s *Mongo) ListBidsForCompany(ctx context.Context, companyID string) ([]models.Bid, error) {
	return s.listBids(ctx, bson.M{"companyID": companyID})
}

func (s *Mongo) listBids(ctx context.Context, filter bson.M) ([]models.Bid, error) {
	cursor, err := s.bids().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Bid
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Bid{}
	}
	return out, nil
}

func (s *Mongo) UpdateBidStatus(ctx context.Context, bidID string, from, to models.BidStatus, now time.Time) (bool, error) {
	res, err := s.bids().UpdateOne(ctx,
		bson.M{"bidID": bidID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *Mongo) RejectSubmittedSiblings(ctx context.Context, jobID, exceptBidID string, now time.Time) error {
	_, err := s.bids().UpdateMany(ctx,
		bson.M{"jobID": jobID, "bidID": bson.M{"$ne": exceptBidID}, "status": models.BidSubmitted},
		bson.M{"$set": bson.M{"status": models.BidRejected, "updatedAt": now}},
	)
	return err
}

func (s *Mongo) AppendStatusEvent(ctx context.Context, ev *models.StatusEvent) error {
	_, err := s.events().InsertOne(ctx, ev)
	return err
}

func (s *Mongo) ListStatusEvents(ctx context.Context, jobID string) ([]models.StatusEvent, error) {
	cursor, err := s.events().Find(ctx, bson.M{"jobID": jobID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.StatusEvent
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.StatusEvent{}
	}
	return out, nil
}
