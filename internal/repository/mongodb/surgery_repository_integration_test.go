package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/metrics"
)

// SurgeryRepositorySuite runs against a real server; set MONGODB_TEST_URI to enable it.
type SurgeryRepositorySuite struct {
	suite.Suite

	client *mongo.Client
	dbName string
	repo   *SurgeryRepository
}

func TestSurgeryRepositorySuite(t *testing.T) {
	if os.Getenv("MONGODB_TEST_URI") == "" {
		t.Skip("MONGODB_TEST_URI not set; skipping MongoDB integration tests")
	}
	suite.Run(t, new(SurgeryRepositorySuite))
}

func (s *SurgeryRepositorySuite) SetupSuite() {
	client, err := mongo.Connect(options.Client().ApplyURI(os.Getenv("MONGODB_TEST_URI")))
	s.Require().NoError(err)
	s.client = client
	s.dbName = "surgery_scheduler_test_" + bson.NewObjectID().Hex()
}

func (s *SurgeryRepositorySuite) TearDownSuite() {
	ctx := context.Background()
	_ = s.client.Database(s.dbName).Drop(ctx)
	_ = s.client.Disconnect(ctx)
}

func (s *SurgeryRepositorySuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.client.Database(s.dbName).Collection("surgeries").Drop(ctx))

	m := metrics.NewCollector("test", prometheus.NewRegistry())
	s.repo = NewSurgeryRepository(s.client, s.dbName, "surgeries", 5*time.Second, m, zap.NewNop())
	s.Require().NoError(s.repo.EnsureIndexes(ctx))
}

func (s *SurgeryRepositorySuite) newSurgery(at time.Time) *surgery.Surgery {
	return &surgery.Surgery{
		DateTime:         at,
		SurgeryType:      "Appendectomy",
		SurgeonName:      "Dr. Smith",
		PatientName:      "John Doe",
		PatientBirthdate: time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC),
		PatientAge:       35,
	}
}

func (s *SurgeryRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()
	in := s.newSurgery(time.Date(2025, time.October, 27, 10, 0, 0, 0, time.UTC))

	s.Require().NoError(s.repo.Create(ctx, in))
	s.Require().NotEmpty(in.ID)

	got, err := s.repo.GetByID(ctx, in.ID)
	s.Require().NoError(err)
	s.Equal(in, got)
}

func (s *SurgeryRepositorySuite) TestGetByID_InvalidAndMissing() {
	ctx := context.Background()

	_, err := s.repo.GetByID(ctx, "not-an-object-id")
	s.ErrorIs(err, surgery.ErrInvalidID)

	_, err = s.repo.GetByID(ctx, bson.NewObjectID().Hex())
	s.ErrorIs(err, surgery.ErrSurgeryNotFound)
}

func (s *SurgeryRepositorySuite) TestListOrderedByDateTimeWithPages() {
	ctx := context.Background()
	base := time.Date(2025, time.October, 27, 10, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		s.Require().NoError(s.repo.Create(ctx, s.newSurgery(base.Add(offset))))
	}

	page, err := s.repo.List(ctx, &surgery.ListSurgeriesQuery{Page: 1, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), page.TotalCount)
	s.Equal(2, page.TotalPages)
	s.Require().Len(page.Surgeries, 2)
	s.Equal(base, page.Surgeries[0].DateTime)
	s.Equal(base.Add(time.Hour), page.Surgeries[1].DateTime)

	page, err = s.repo.List(ctx, &surgery.ListSurgeriesQuery{Page: 2, PageSize: 2})
	s.Require().NoError(err)
	s.Require().Len(page.Surgeries, 1)
	s.Equal(base.Add(2*time.Hour), page.Surgeries[0].DateTime)
}

func (s *SurgeryRepositorySuite) TestUpdate() {
	ctx := context.Background()
	in := s.newSurgery(time.Date(2025, time.October, 27, 10, 0, 0, 0, time.UTC))
	s.Require().NoError(s.repo.Create(ctx, in))

	surgeon := "Dr. Lee"
	got, err := s.repo.Update(ctx, in.ID, &surgery.Changes{SurgeonName: &surgeon})
	s.Require().NoError(err)
	s.Equal("Dr. Lee", got.SurgeonName)
	s.Equal(35, got.PatientAge)

	// Same value again: nothing modified, record still returned.
	got, err = s.repo.Update(ctx, in.ID, &surgery.Changes{SurgeonName: &surgeon})
	s.Require().NoError(err)
	s.Equal("Dr. Lee", got.SurgeonName)

	got, err = s.repo.Update(ctx, in.ID, &surgery.Changes{})
	s.Require().NoError(err)
	s.Equal(in.ID, got.ID)

	_, err = s.repo.Update(ctx, bson.NewObjectID().Hex(), &surgery.Changes{SurgeonName: &surgeon})
	s.ErrorIs(err, surgery.ErrSurgeryNotFound)

	_, err = s.repo.Update(ctx, "bad-id", &surgery.Changes{SurgeonName: &surgeon})
	s.ErrorIs(err, surgery.ErrSurgeryNotFound)
}

func (s *SurgeryRepositorySuite) TestDelete() {
	ctx := context.Background()
	in := s.newSurgery(time.Date(2025, time.October, 27, 10, 0, 0, 0, time.UTC))
	s.Require().NoError(s.repo.Create(ctx, in))

	ok, err := s.repo.Delete(ctx, in.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.repo.Delete(ctx, in.ID)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.repo.Delete(ctx, "bad-id")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *SurgeryRepositorySuite) TestStoreErrorsAreUnavailable() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.repo.Delete(ctx, bson.NewObjectID().Hex())
	s.True(errors.Is(err, surgery.ErrStoreUnavailable))
}
