package mongodb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/metrics"
)

// newOfflineRepository builds a repository on a client that never dials;
// the driver connects lazily, so only pure helpers may be exercised.
func newOfflineRepository(t *testing.T) (*SurgeryRepository, *metrics.Collector) {
	t.Helper()
	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	m := metrics.NewCollector("test", prometheus.NewRegistry())
	return NewSurgeryRepository(client, "scheduling", "surgeries", time.Second, m, zap.NewNop()), m
}

func TestStoreError_DriverFailureIsUnavailable(t *testing.T) {
	repo, m := newOfflineRepository(t)

	err := repo.storeError("find_one", errors.New("server selection timeout"))

	require.ErrorIs(t, err, surgery.ErrStoreUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBErrorsTotal.WithLabelValues("find_one", "surgeries")))
}

func TestStoreError_CancelledRequestIsNotAnOutage(t *testing.T) {
	repo, m := newOfflineRepository(t)

	err := repo.storeError("find_one", fmt.Errorf("connection(127.0.0.1:27017) read: %w", context.Canceled))

	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, surgery.ErrStoreUnavailable)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DBErrorsTotal.WithLabelValues("find_one", "surgeries")))
}

func TestStoreError_QueryTimeoutIsUnavailable(t *testing.T) {
	repo, _ := newOfflineRepository(t)

	err := repo.storeError("find", context.DeadlineExceeded)
	assert.ErrorIs(t, err, surgery.ErrStoreUnavailable)
}

func TestReadBackError(t *testing.T) {
	oid := bson.NewObjectID()

	err := readBackError(oid, surgery.ErrSurgeryNotFound)
	require.Error(t, err)
	assert.NotErrorIs(t, err, surgery.ErrSurgeryNotFound)
	assert.Contains(t, err.Error(), oid.Hex())

	outage := fmt.Errorf("%w: find_one: connection reset", surgery.ErrStoreUnavailable)
	assert.ErrorIs(t, readBackError(oid, outage), surgery.ErrStoreUnavailable)
}
