package review

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
)

type (
	// Notifier is told about every owner suspension, once per transition.
	// Delivery is best effort.
	Notifier interface {
		NotifySuspension(ctx context.Context, ownerID string, count int) error
	}

	// Outcome describes one evaluation. Flagged and Suspended are only true
	// for the evaluation that performed the transition.
	Outcome struct {
		Evaluated        bool   `json:"evaluated"`
		ResourceID       string `json:"resource_id"`
		ResourceOneStars int    `json:"resource_one_stars"`
		Flagged          bool   `json:"flagged"`
		OwnerID          string `json:"owner_id"`
		OwnerOneStars    int    `json:"owner_one_stars"`
		Suspended        bool   `json:"suspended"`
	}

	// Moderator flags resources and suspends owners once their one-star counts reach the thresholds.
	Moderator struct {
		agg           *Aggregator
		catalog       catalog.Repository
		notifier      Notifier
		logger        core.Logger
		flagAt        int
		suspendAt     int
		resourceLocks *keyedMutex
		ownerLocks    *keyedMutex
	}
)

// EscalationError is a failed evaluation of an already recorded review.
type EscalationError struct {
	ReviewID   string
	ResourceID string
	Err        error
}

func (e *EscalationError) Error() string {
	return fmt.Sprintf("evaluating review %s of resource %s: %v", e.ReviewID, e.ResourceID, e.Err)
}

func (e *EscalationError) Unwrap() error { return e.Err }

func IsEscalationFailure(err error) bool {
	_, ok := errors.Cause(err).(*EscalationError)
	return ok
}

func NewModerator(
	agg *Aggregator,
	catalogRepo catalog.Repository,
	notifier Notifier,
	logger core.Logger,
	conf core.ModerationConfig,
) *Moderator {
	return &Moderator{
		agg:           agg,
		catalog:       catalogRepo,
		notifier:      notifier,
		logger:        logger,
		flagAt:        conf.ResourceFlagThreshold,
		suspendAt:     conf.OwnerSuspendThreshold,
		resourceLocks: newKeyedMutex(),
		ownerLocks:    newKeyedMutex(),
	}
}

// Evaluate runs the escalation rules for a newly recorded review. Only one-star reviews can escalate.
// Re-evaluating the same review is harmless: transitions happen at most once.
func (m *Moderator) Evaluate(ctx context.Context, rv Review) (Outcome, error) {
	if rv.Rating != MinRating {
		return Outcome{ResourceID: rv.ResourceID}, nil
	}
	out, err := m.evaluate(ctx, rv.ResourceID)
	if err != nil {
		return out, &EscalationError{ReviewID: rv.ID, ResourceID: rv.ResourceID, Err: err}
	}
	return out, nil
}

// Reevaluate runs the escalation rules for a resource regardless of any particular review.
func (m *Moderator) Reevaluate(ctx context.Context, resourceID string) (Outcome, error) {
	return m.evaluate(ctx, resourceID)
}

func (m *Moderator) evaluate(ctx context.Context, resourceID string) (Outcome, error) {
	out := Outcome{Evaluated: true, ResourceID: resourceID}

	res, err := m.catalog.GetResourceByID(ctx, resourceID)
	if err != nil {
		return out, errors.Wrap(err, "finding resource")
	}
	out.OwnerID = res.OwnerID

	if err = m.evaluateResource(ctx, res, &out); err != nil {
		return out, err
	}
	if err = m.evaluateOwner(ctx, res.OwnerID, &out); err != nil {
		return out, err
	}

	// notify outside of the owner lock
	if out.Suspended {
		if err := m.notifier.NotifySuspension(ctx, out.OwnerID, out.OwnerOneStars); err != nil {
			m.logger.Error(fmt.Sprintf("notifying suspension of %s", out.OwnerID), err)
		}
	}
	return out, nil
}

func (m *Moderator) evaluateResource(ctx context.Context, res catalog.Resource, out *Outcome) error {
	unlock := m.resourceLocks.Lock(res.ID)
	defer unlock()

	count, err := m.agg.RatingCount(ctx, res.ID, MinRating)
	if err != nil {
		return errors.Wrap(err, "counting resource one-star reviews")
	}
	out.ResourceOneStars = count
	if count < m.flagAt || res.Flagged {
		return nil
	}

	changed, err := m.catalog.FlagResource(ctx, res.ID)
	if err != nil {
		return errors.Wrap(err, "flagging resource")
	}
	if changed {
		out.Flagged = true
		m.logger.Info(fmt.Sprintf("resource %s flagged after %d one-star reviews", res.ID, count))
	}
	return nil
}

func (m *Moderator) evaluateOwner(ctx context.Context, ownerID string, out *Outcome) error {
	unlock := m.ownerLocks.Lock(ownerID)
	defer unlock()

	count, err := m.agg.OwnerOneStarCount(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "counting owner one-star reviews")
	}
	out.OwnerOneStars = count
	if count < m.suspendAt {
		return nil
	}

	changed, err := m.catalog.SuspendOwner(ctx, ownerID)
	if err != nil {
		if core.IsNotFound(err) {
			m.logger.Warn(fmt.Sprintf("owner %s of resource %s not registered; suspension skipped", ownerID, out.ResourceID))
			return nil
		}
		return errors.Wrap(err, "suspending owner")
	}
	if changed {
		out.Suspended = true
		m.logger.Info(fmt.Sprintf("owner %s suspended after %d one-star reviews", ownerID, count))
	}
	return nil
}
