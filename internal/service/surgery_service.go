package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/config"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/metrics"
)

const tracerName = "github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/service"

type SurgeryService struct {
	repo    surgery.Repository
	metrics *metrics.Collector
	log     *zap.Logger
	tracer  trace.Tracer
	list    config.ListConfig
	now     func() time.Time
}

type Option func(*SurgeryService)

// WithClock overrides the clock used for age derivation and date checks.
func WithClock(now func() time.Time) Option {
	return func(s *SurgeryService) { s.now = now }
}

func WithListConfig(cfg config.ListConfig) Option {
	return func(s *SurgeryService) { s.list = cfg }
}

func NewSurgeryService(repo surgery.Repository, m *metrics.Collector, log *zap.Logger, opts ...Option) *SurgeryService {
	s := &SurgeryService{
		repo:    repo,
		metrics: m,
		log:     log,
		tracer:  otel.Tracer(tracerName),
		list:    config.ListConfig{DefaultPageSize: 100, MaxPageSize: 1000},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SurgeryService) ScheduleSurgery(ctx context.Context, cmd *surgery.CreateSurgeryCommand) (_ *surgery.Surgery, err error) {
	ctx, span := s.tracer.Start(ctx, "SurgeryService.ScheduleSurgery")
	defer func() { endSpan(span, err) }()

	now := s.now()
	if err := validateCreateCommand(cmd, now); err != nil {
		return nil, err
	}

	birthdate := surgery.DateOnly(cmd.PatientBirthdate)
	sg := &surgery.Surgery{
		DateTime:         cmd.DateTime,
		SurgeryType:      strings.TrimSpace(cmd.SurgeryType),
		SurgeonName:      strings.TrimSpace(cmd.SurgeonName),
		PatientName:      strings.TrimSpace(cmd.PatientName),
		PatientBirthdate: birthdate,
		PatientAge:       surgery.AgeOn(birthdate, now),
	}

	if err := s.repo.Create(ctx, sg); err != nil {
		s.log.Error("failed to create surgery", zap.Error(err))
		return nil, fmt.Errorf("creating surgery: %w", err)
	}

	s.metrics.SurgeriesScheduledTotal.Inc()
	span.SetAttributes(attribute.String("surgery.id", sg.ID))
	s.log.Info("surgery scheduled",
		zap.String("surgery_id", sg.ID),
		zap.Time("date_time", sg.DateTime),
		zap.String("surgery_type", sg.SurgeryType),
	)

	return sg, nil
}

func (s *SurgeryService) ListSurgeries(ctx context.Context, q *surgery.ListSurgeriesQuery) (_ *surgery.PagedSurgeries, err error) {
	ctx, span := s.tracer.Start(ctx, "SurgeryService.ListSurgeries")
	defer func() { endSpan(span, err) }()

	if q.PageSize <= 0 {
		q.PageSize = s.list.DefaultPageSize
	}
	if q.PageSize > s.list.MaxPageSize {
		q.PageSize = s.list.MaxPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	span.SetAttributes(attribute.Int("page", q.Page), attribute.Int("page_size", q.PageSize))

	page, err := s.repo.List(ctx, q)
	if err != nil {
		s.log.Error("failed to list surgeries", zap.Error(err))
		return nil, fmt.Errorf("listing surgeries: %w", err)
	}
	return page, nil
}

func (s *SurgeryService) GetSurgery(ctx context.Context, id string) (_ *surgery.Surgery, err error) {
	ctx, span := s.tracer.Start(ctx, "SurgeryService.GetSurgery",
		trace.WithAttributes(attribute.String("surgery.id", id)))
	defer func() { endSpan(span, err) }()

	return s.repo.GetByID(ctx, id)
}

// ModifySurgery applies a partial update. Patient age is recomputed only when
// the birthdate is among the supplied fields.
func (s *SurgeryService) ModifySurgery(ctx context.Context, id string, cmd *surgery.UpdateSurgeryCommand) (_ *surgery.Surgery, err error) {
	ctx, span := s.tracer.Start(ctx, "SurgeryService.ModifySurgery",
		trace.WithAttributes(attribute.String("surgery.id", id)))
	defer func() { endSpan(span, err) }()

	now := s.now()
	if err := validateUpdateCommand(cmd, now); err != nil {
		return nil, err
	}

	changes := &surgery.Changes{
		DateTime:    cmd.DateTime,
		SurgeryType: trimmed(cmd.SurgeryType),
		SurgeonName: trimmed(cmd.SurgeonName),
		PatientName: trimmed(cmd.PatientName),
	}
	if cmd.PatientBirthdate != nil {
		birthdate := surgery.DateOnly(*cmd.PatientBirthdate)
		age := surgery.AgeOn(birthdate, now)
		changes.PatientBirthdate = &birthdate
		changes.PatientAge = &age
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		if !errors.Is(err, surgery.ErrSurgeryNotFound) {
			s.log.Error("failed to update surgery", zap.String("surgery_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.SurgeriesModifiedTotal.Inc()
	s.log.Info("surgery modified",
		zap.String("surgery_id", id),
		zap.Bool("age_recomputed", changes.PatientAge != nil),
	)
	return updated, nil
}

// CancelSurgery hard-deletes the surgery.
func (s *SurgeryService) CancelSurgery(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "SurgeryService.CancelSurgery",
		trace.WithAttributes(attribute.String("surgery.id", id)))
	defer func() { endSpan(span, err) }()

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("failed to delete surgery", zap.String("surgery_id", id), zap.Error(err))
		return err
	}
	if !deleted {
		return surgery.ErrSurgeryNotFound
	}

	s.metrics.SurgeriesCancelledTotal.Inc()
	s.log.Info("surgery cancelled", zap.String("surgery_id", id))
	return nil
}

func (s *SurgeryService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func validateCreateCommand(cmd *surgery.CreateSurgeryCommand, now time.Time) error {
	var errs []string

	if cmd.DateTime.IsZero() {
		errs = append(errs, "date_time is required")
	}
	if strings.TrimSpace(cmd.SurgeryType) == "" {
		errs = append(errs, "surgery_type is required")
	}
	if strings.TrimSpace(cmd.SurgeonName) == "" {
		errs = append(errs, "surgeon_name is required")
	}
	if strings.TrimSpace(cmd.PatientName) == "" {
		errs = append(errs, "patient_name is required")
	}
	if cmd.PatientBirthdate.IsZero() {
		errs = append(errs, "patient_birthdate is required")
	} else if birthdateInFuture(cmd.PatientBirthdate, now) {
		errs = append(errs, "patient_birthdate: "+surgery.ErrBirthdateInFuture.Error())
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validateUpdateCommand(cmd *surgery.UpdateSurgeryCommand, now time.Time) error {
	var errs []string

	if cmd.DateTime != nil && cmd.DateTime.IsZero() {
		errs = append(errs, "date_time must not be empty")
	}
	if cmd.SurgeryType != nil && strings.TrimSpace(*cmd.SurgeryType) == "" {
		errs = append(errs, "surgery_type must not be blank")
	}
	if cmd.SurgeonName != nil && strings.TrimSpace(*cmd.SurgeonName) == "" {
		errs = append(errs, "surgeon_name must not be blank")
	}
	if cmd.PatientName != nil && strings.TrimSpace(*cmd.PatientName) == "" {
		errs = append(errs, "patient_name must not be blank")
	}
	if cmd.PatientBirthdate != nil && birthdateInFuture(*cmd.PatientBirthdate, now) {
		errs = append(errs, "patient_birthdate: "+surgery.ErrBirthdateInFuture.Error())
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func birthdateInFuture(birthdate, now time.Time) bool {
	return surgery.DateOnly(birthdate).After(surgery.DateOnly(now))
}
