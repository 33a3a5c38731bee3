package mongo

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Observations is the repo for one ingestion target collection.
type Observations struct {
	col *mongo.Collection
}

func (c *Client) Observations(name string) *Observations {
	return &Observations{col: c.DB.Collection(name)}
}

// EnsureIndexes covers the stable provider identifiers and the ingestion
// clock. None are unique: re-runs insert fresh documents on purpose.
func (o *Observations) EnsureIndexes(ctx context.Context) error {
	_, err := o.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "stix_id", Value: 1}}},
		{Keys: bson.D{{Key: "stix_type", Value: 1}}},
		{Keys: bson.D{{Key: "city_id", Value: 1}}},
		{Keys: bson.D{{Key: "ingestion_timestamp", Value: -1}}},
	})
	return err
}

// inserter is the part of *mongo.Collection the batch loader needs.
type inserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// InsertBatches writes docs in contiguous chunks of at most batchSize, one
// ordered InsertMany per chunk, and returns the total acknowledged count.
// On a failing chunk the count covers prior chunks plus whatever part of
// the failing chunk the server acknowledged; the error is surfaced, not
// retried.
func (o *Observations) InsertBatches(ctx context.Context, docs []any, batchSize int) (int, error) {
	return insertBatches(ctx, o.col, docs, batchSize)
}

func insertBatches(ctx context.Context, col inserter, docs []any, batchSize int) (int, error) {
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	total := 0
	batchNum := 0
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batchNum++
		res, err := col.InsertMany(ctx, docs[start:end], options.InsertMany().SetOrdered(true))
		if err != nil {
			total += insertedBeforeError(res, err)
			return total, fmt.Errorf("insert batch %d: %w", batchNum, err)
		}
		total += len(res.InsertedIDs)
		log.Printf(`{"msg":"observations-insert","batch":%d,"size":%d,"total":%d}`, batchNum, end-start, total)
	}
	return total, nil
}

// insertedBeforeError recovers the partial count from a failed ordered
// InsertMany: either the driver reports the inserted ids directly, or the
// first write error index tells how far the chunk got.
func insertedBeforeError(res *mongo.InsertManyResult, err error) int {
	if res != nil && len(res.InsertedIDs) > 0 {
		return len(res.InsertedIDs)
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
		return bwe.WriteErrors[0].Index
	}
	return 0
}

// Count backs the best-effort validation stage and the status API.
func (o *Observations) Count(ctx context.Context) (int64, error) {
	return o.col.CountDocuments(ctx, bson.M{})
}

type ListQuery struct {
	StixType string
	City     string
	Page     int
	Limit    int64
}

// List returns a page of stored documents, newest ingestion first, with
// raw_data projected away (it dominates document size).
func (o *Observations) List(ctx context.Context, q ListQuery) ([]bson.M, int64, error) {
	filter := bson.M{}
	if q.StixType != "" {
		filter["stix_type"] = q.StixType
	}
	if q.City != "" {
		filter["city_name"] = bson.M{"$regex": q.City, "$options": "i"}
	}

	skip := int64(q.Page-1) * q.Limit
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "raw_data": 0}).
		SetSort(bson.D{{Key: "ingestion_timestamp", Value: -1}}).
		SetSkip(skip).
		SetLimit(q.Limit)

	cur, err := o.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var items []bson.M
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	total, err := o.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
