package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
)

var errServiceClosed = errors.New("review service closed")

type (
	// Repository is the append-only Review half of the review store.
	// Every query returns reviews in submission order.
	Repository interface {
		CreateReview(ctx context.Context, rv Review) (Review, error)
		QueryReviewsByResource(ctx context.Context, resourceID string) ([]Review, error)
		// QueryReviewsByOwner joins reviews to the resources currently owned by `ownerID`.
		QueryReviewsByOwner(ctx context.Context, ownerID string) ([]Review, error)
		QueryAllReviews(ctx context.Context) ([]Review, error)
	}

	Service struct {
		repo       Repository
		catalog    catalog.Repository
		agg        *Aggregator
		moderator  *Moderator
		validate   *validator.Validate
		translator ut.Translator
		logger     core.Logger

		retryMaxElapsed time.Duration
		mu              sync.Mutex
		closed          bool
		ctx             context.Context
		cancel          context.CancelFunc
		pending         sync.WaitGroup
	}
)

func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	notifier Notifier,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
	conf *core.Config,
) *Service {
	agg := NewAggregator(repo, catalogRepo)
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:            repo,
		catalog:         catalogRepo,
		agg:             agg,
		moderator:       NewModerator(agg, catalogRepo, notifier, logger, conf.Moderation),
		validate:        validate,
		translator:      translator,
		logger:          logger,
		retryMaxElapsed: conf.Moderation.RetryMaxElapsed,
		ctx:             ctx,
		cancel:          cancel,
	}
}

func (svc *Service) Aggregator() *Aggregator { return svc.agg }

// Submit validates and records a review, then evaluates the escalation rules.
// Once the review is recorded Submit succeeds: a failed evaluation is logged and retried in the background.
func (svc *Service) Submit(ctx context.Context, nr NewReview) (Review, error) {
	if err := nr.Validate(svc.validate, svc.translator); err != nil {
		return Review{}, err
	}
	res, err := svc.catalog.GetResourceByID(ctx, nr.ResourceID)
	if err != nil {
		return Review{}, errors.Wrap(err, "finding resource")
	}

	rv, err := svc.repo.CreateReview(ctx, Review{
		ID:         uuid.NewString(),
		ResourceID: res.ID,
		Author:     nr.Author,
		Rating:     nr.Rating,
		Comment:    nr.Comment,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Review{}, errors.Wrap(err, "creating review")
	}

	if _, err := svc.moderator.Evaluate(ctx, rv); err != nil {
		svc.logger.Error("escalation evaluation failed; retrying", err)
		svc.retry(rv)
	}
	return rv, nil
}

// retry re-runs the evaluation of `rv` with exponential backoff until it succeeds,
// the retry window elapses or the service is closed.
func (svc *Service) retry(rv Review) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.closed {
		svc.logger.Warn(fmt.Sprintf("dropping evaluation retry of review %s", rv.ID), errServiceClosed)
		return
	}

	svc.pending.Add(1)
	go func() {
		defer svc.pending.Done()

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 50 * time.Millisecond
		b.MaxElapsedTime = svc.retryMaxElapsed

		op := func() error {
			_, err := svc.moderator.Evaluate(svc.ctx, rv)
			return err
		}
		notify := func(err error, next time.Duration) {
			svc.logger.Warn(fmt.Sprintf("evaluation of review %s failed, next attempt in %v", rv.ID, next), err)
		}
		if err := backoff.RetryNotify(op, backoff.WithContext(b, svc.ctx), notify); err != nil {
			svc.logger.Error(fmt.Sprintf("giving up evaluation of review %s", rv.ID), err)
		}
	}()
}

// Close stops pending evaluation retries and waits for them to return.
func (svc *Service) Close() {
	svc.mu.Lock()
	svc.closed = true
	svc.mu.Unlock()

	svc.cancel()
	svc.pending.Wait()
}

// Aggregates returns {average, count, distribution} of an existing resource.
func (svc *Service) Aggregates(ctx context.Context, resourceID string) (Stats, error) {
	if _, err := svc.catalog.GetResourceByID(ctx, core.CleanString(resourceID)); err != nil {
		return Stats{}, errors.Wrap(err, "finding resource")
	}
	return svc.agg.ResourceStats(ctx, core.CleanString(resourceID))
}

func (svc *Service) QueryByResource(ctx context.Context, resourceID string) ([]Review, error) {
	if _, err := svc.catalog.GetResourceByID(ctx, core.CleanString(resourceID)); err != nil {
		return nil, errors.Wrap(err, "finding resource")
	}
	return svc.repo.QueryReviewsByResource(ctx, core.CleanString(resourceID))
}

// Reevaluate reruns the escalation rules of a resource, e.g. after an outage outlasted the retries.
func (svc *Service) Reevaluate(ctx context.Context, resourceID string) (Outcome, error) {
	return svc.moderator.Reevaluate(ctx, core.CleanString(resourceID))
}
