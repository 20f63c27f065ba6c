package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/metrics"
)

var _ surgery.Repository = (*SurgeryRepository)(nil)

type SurgeryRepository struct {
	client       *mongo.Client
	coll         *mongo.Collection
	queryTimeout time.Duration
	metrics      *metrics.Collector
	log          *zap.Logger
}

func NewSurgeryRepository(
	client *mongo.Client,
	database, collection string,
	queryTimeout time.Duration,
	m *metrics.Collector,
	log *zap.Logger,
) *SurgeryRepository {
	return &SurgeryRepository{
		client:       client,
		coll:         client.Database(database).Collection(collection),
		queryTimeout: queryTimeout,
		metrics:      m,
		log:          log.With(zap.String("collection", collection)),
	}
}

// EnsureIndexes creates the index backing the List sort order.
func (r *SurgeryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, done := r.begin(ctx, "create_index")
	defer done()

	model := mongo.IndexModel{
		Keys:    bson.D{{Key: fieldDateTime, Value: 1}, {Key: fieldID, Value: 1}},
		Options: options.Index().SetName("idx_surgeries_date_time"),
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, model); err != nil {
		return r.storeError("create_index", err)
	}
	return nil
}

func (r *SurgeryRepository) Create(ctx context.Context, s *surgery.Surgery) error {
	ctx, done := r.begin(ctx, "insert")
	defer done()

	res, err := r.coll.InsertOne(ctx, toDocument(s))
	if err != nil {
		return r.storeError("insert", err)
	}

	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	// Read back so the caller sees the canonical stored form (UTC, ms precision).
	stored, err := r.findByObjectID(ctx, oid)
	if err != nil {
		return readBackError(oid, err)
	}
	*s = *stored
	return nil
}

func (r *SurgeryRepository) GetByID(ctx context.Context, id string) (*surgery.Surgery, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", surgery.ErrInvalidID, id)
	}

	ctx, done := r.begin(ctx, "find_one")
	defer done()

	return r.findByObjectID(ctx, oid)
}

func (r *SurgeryRepository) List(ctx context.Context, q *surgery.ListSurgeriesQuery) (*surgery.PagedSurgeries, error) {
	ctx, done := r.begin(ctx, "find")
	defer done()

	filter := bson.D{}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, r.storeError("count", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: fieldDateTime, Value: 1}, {Key: fieldID, Value: 1}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.PageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, r.storeError("find", err)
	}
	defer cur.Close(ctx)

	var docs []surgeryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, r.storeError("find", err)
	}

	items := make([]*surgery.Surgery, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toEntity())
	}

	return surgery.NewPagedSurgeries(items, total, q), nil
}

func (r *SurgeryRepository) Update(ctx context.Context, id string, changes *surgery.Changes) (*surgery.Surgery, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", surgery.ErrSurgeryNotFound, surgery.ErrInvalidID)
	}

	ctx, done := r.begin(ctx, "update_one")
	defer done()

	if !changes.IsEmpty() {
		res, err := r.coll.UpdateOne(ctx, bson.M{fieldID: oid}, bson.M{"$set": setFields(changes)})
		if err != nil {
			return nil, r.storeError("update_one", err)
		}
		if res.MatchedCount == 0 {
			return nil, surgery.ErrSurgeryNotFound
		}
		// ModifiedCount is 0 when the supplied values equal the stored ones;
		// the record still exists and is returned unchanged below.
		r.log.Debug("surgery updated",
			zap.String("surgery_id", id),
			zap.Int64("modified", res.ModifiedCount),
		)
	}

	return r.findByObjectID(ctx, oid)
}

func (r *SurgeryRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	ctx, done := r.begin(ctx, "delete_one")
	defer done()

	res, err := r.coll.DeleteOne(ctx, bson.M{fieldID: oid})
	if err != nil {
		return false, r.storeError("delete_one", err)
	}
	return res.DeletedCount == 1, nil
}

func (r *SurgeryRepository) Ping(ctx context.Context) error {
	ctx, done := r.begin(ctx, "ping")
	defer done()

	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return r.storeError("ping", err)
	}
	return nil
}

func (r *SurgeryRepository) findByObjectID(ctx context.Context, oid bson.ObjectID) (*surgery.Surgery, error) {
	var doc surgeryDocument
	err := r.coll.FindOne(ctx, bson.M{fieldID: oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, surgery.ErrSurgeryNotFound
	}
	if err != nil {
		return nil, r.storeError("find_one", err)
	}
	return doc.toEntity(), nil
}

// begin applies the per-call query timeout and returns a func that records
// the operation latency.
func (r *SurgeryRepository) begin(ctx context.Context, op string) (context.Context, func()) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	return ctx, func() {
		cancel()
		r.metrics.DBQueryDuration.WithLabelValues(op, r.coll.Name()).Observe(time.Since(start).Seconds())
	}
}

// readBackError reports a failed read of a just-inserted document. A missing
// document here means it was deleted concurrently, not that the caller asked
// for an unknown id, so it must not surface as ErrSurgeryNotFound.
func readBackError(oid bson.ObjectID, err error) error {
	if errors.Is(err, surgery.ErrSurgeryNotFound) {
		return fmt.Errorf("inserted surgery %s was removed before it could be read back", oid.Hex())
	}
	return fmt.Errorf("reading back inserted surgery %s: %w", oid.Hex(), err)
}

// storeError classifies a driver error. A cancelled request context means the
// client went away; that is not a store failure and is returned unwrapped.
func (r *SurgeryRepository) storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		r.log.Debug("store operation cancelled", zap.String("operation", op))
		return fmt.Errorf("%s: %w", op, err)
	}

	r.metrics.DBErrorsTotal.WithLabelValues(op, r.coll.Name()).Inc()
	r.log.Error("store operation failed",
		zap.String("operation", op),
		zap.Bool("timeout", mongo.IsTimeout(err)),
		zap.Bool("network", mongo.IsNetworkError(err)),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %w", surgery.ErrStoreUnavailable, op, err)
}
