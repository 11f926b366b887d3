// Package testutil holds the fixtures shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
)

// NewValidator returns a validator with every custom tag and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	review.InitValidators(validate, translator)
	return validate, translator
}

// Logger writes to zap only; no error reporting service is involved.
type Logger struct {
	log *zap.SugaredLogger
}

var _ core.Logger = (*Logger)(nil)

// NewLogger returns a silent logger.
func NewLogger(*core.Config) *Logger {
	return &Logger{log: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log.Debugw(msg, "args", args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log.Infow(msg, "args", args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log.Warnw(msg, "args", args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log.Errorw(msg, "args", args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log.Fatalw(msg, "args", args) }

func CreateOwner(t *testing.T, repo catalog.Repository, email, name string) catalog.Owner {
	t.Helper()
	owner, err := repo.CreateOwner(context.Background(), catalog.Owner{
		ID:        email,
		Name:      name,
		Role:      catalog.RoleAdmin,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		t.Fatalf("CreateOwner() failed: %v", err)
	}
	return owner
}

func CreateResource(t *testing.T, repo catalog.Repository, ownerID, title, description, category string) catalog.Resource {
	t.Helper()
	res, err := repo.CreateResource(context.Background(), catalog.Resource{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Category:    category,
		OwnerID:     ownerID,
		PublishedAt: time.Now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		t.Fatalf("CreateResource() failed: %v", err)
	}
	return res
}

// AddReviews stores `n` reviews of `rating` straight into the store, without any moderation.
func AddReviews(t *testing.T, repo review.Repository, resourceID string, rating, n int) []review.Review {
	t.Helper()
	reviews := make([]review.Review, 0, n)
	for i := 0; i < n; i++ {
		rv, err := repo.CreateReview(context.Background(), review.Review{
			ID:         uuid.NewString(),
			ResourceID: resourceID,
			Author:     "tester",
			Rating:     rating,
			Comment:    "fixture",
			CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
		})
		if err != nil {
			t.Fatalf("AddReviews() failed: %v", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews
}

type Suspension struct {
	OwnerID string
	Count   int
}

// Notifier records every suspension it is told about.
type Notifier struct {
	mu          sync.Mutex
	suspensions []Suspension
	Err         error
}

var _ review.Notifier = (*Notifier)(nil)

func (n *Notifier) NotifySuspension(_ context.Context, ownerID string, count int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.suspensions = append(n.suspensions, Suspension{OwnerID: ownerID, Count: count})
	return n.Err
}

func (n *Notifier) Suspensions() []Suspension {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Suspension(nil), n.suspensions...)
}
