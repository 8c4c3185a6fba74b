package predictionsservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tipster/app/eventbus"
	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	predictionsdomain "github.com/Black-And-White-Club/tipster/app/modules/predictions/domain"
	predictionsdb "github.com/Black-And-White-Club/tipster/app/modules/predictions/infrastructure/repositories"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/Black-And-White-Club/tipster/app/observability/metrics"
	"github.com/Black-And-White-Club/tipster/app/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "PredictionsService"

var (
	ErrForbidden        = errors.New("membership belongs to another user")
	ErrMemberNotFound   = errors.New("member not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrQuestionNotFound = errors.New("bonus question not found")
)

// Service accepts predictions and bonus answers from members.
type Service interface {
	// SubmitPrediction stores pick for the member's membership until the match locks.
	SubmitPrediction(ctx context.Context, principal authdomain.Principal, memberID, matchID uuid.UUID, pick string) (*PredictionResult, error)

	// SubmitBonusAnswer stores answer until the question closes.
	SubmitBonusAnswer(ctx context.Context, principal authdomain.Principal, memberID, questionID uuid.UUID, answer predictionsdomain.Answer) (*BonusAnswerResult, error)
}

type PredictionResult struct {
	MemberID  uuid.UUID `json:"memberId"`
	MatchID   uuid.UUID `json:"matchId"`
	Pick      string    `json:"pick"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BonusAnswerResult struct {
	MemberID   uuid.UUID `json:"memberId"`
	QuestionID uuid.UUID `json:"questionId"`
	Number     *float64  `json:"number,omitempty"`
	Choice     *string   `json:"choice,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PredictionsService implements the Service interface.
type PredictionsService struct {
	repo      predictionsdb.Repository
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   metrics.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	now       func() time.Time
}

// NewPredictionsService creates a new PredictionsService. A nil publisher
// disables event publication.
func NewPredictionsService(
	db *bun.DB,
	repo predictionsdb.Repository,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
) *PredictionsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionsService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		now:       time.Now,
	}
}

type operationFunc[S any] func(ctx context.Context) (results.OperationResult[S, error], error)

// withTelemetry wraps an operation with a span, operation metrics and logging.
func withTelemetry[S any](
	s *PredictionsService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S],
) (result results.OperationResult[S, error], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
		start := time.Now()
		defer func() {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(start))
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered", attr.ExtractCorrelationID(ctx), attr.Error(err))
			span.SetStatus(codes.Error, "panic")
			result = results.OperationResult[S, error]{}
		}
	}()

	result, err = op(ctx)
	switch {
	case err != nil:
		err = fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	case result.IsFailure():
		s.logger.InfoContext(ctx, "Submission rejected",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(*result.Failure),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

func runInTx[S any](
	s *PredictionsService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, error], error),
) (results.OperationResult[S, error], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, error]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

func unwrap[S any](result results.OperationResult[S, error], err error) (*S, error) {
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return result.Success, nil
}

func (s *PredictionsService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish submission event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}
