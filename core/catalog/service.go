package catalog

import (
	"context"
	"iter"
	"slices"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core"
)

var (
	// errors
	ErrOwnerSuspended = errors.New("owner is suspended")
	ErrOwnerExists    = errors.New("an owner with this email already exists")
)

type (
	// Repository is the Resource/Owner half of the review store.
	// Every query returns resources in publication order.
	Repository interface {
		CreateOwner(ctx context.Context, owner Owner) (Owner, error)
		GetOwnerByID(ctx context.Context, id string) (Owner, error)
		QueryAllOwners(ctx context.Context) ([]Owner, error)
		// SuspendOwner sets Owner.Suspended if it is not set yet and reports whether it did.
		SuspendOwner(ctx context.Context, id string) (bool, error)

		CreateResource(ctx context.Context, res Resource) (Resource, error)
		GetResourceByID(ctx context.Context, id string) (Resource, error)
		QueryAllResources(ctx context.Context) ([]Resource, error)
		// QueryResources applies Filter; implementations may push it down to the backend.
		QueryResources(ctx context.Context, filter Filter) ([]Resource, error)
		QueryResourcesByOwner(ctx context.Context, ownerID string) ([]Resource, error)
		// FlagResource sets Resource.Flagged if it is not set yet and reports whether it did.
		FlagResource(ctx context.Context, id string) (bool, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{repo: repo, validate: validate, translator: translator}
}

// RegisterOwner registers a publisher, keyed by its lower-cased email.
func (svc *Service) RegisterOwner(ctx context.Context, no NewOwner) (Owner, error) {
	if err := no.Validate(svc.validate, svc.translator); err != nil {
		return Owner{}, err
	}
	if _, err := svc.repo.GetOwnerByID(ctx, no.Email); err == nil {
		return Owner{}, core.NewValidationError(ErrOwnerExists, core.FieldError{Field: "email", Error: ErrOwnerExists.Error()})
	} else if !core.IsNotFound(err) {
		return Owner{}, errors.Wrap(err, "checking owner uniqueness")
	}

	owner, err := svc.repo.CreateOwner(ctx, Owner{
		ID:        no.Email,
		Name:      no.Name,
		Role:      RoleAdmin,
		CreatedAt: time.Now().UTC(),
	})
	return owner, errors.Wrap(err, "creating owner")
}

func (svc *Service) GetOwner(ctx context.Context, id string) (Owner, error) {
	return svc.repo.GetOwnerByID(ctx, core.CleanString(id, true /* lower */))
}

func (svc *Service) QueryOwners(ctx context.Context) ([]Owner, error) {
	return svc.repo.QueryAllOwners(ctx)
}

// Publish adds a Resource owned by `ownerID`. Suspended owners cannot publish.
func (svc *Service) Publish(ctx context.Context, ownerID string, nr NewResource) (Resource, error) {
	if err := nr.Validate(svc.validate, svc.translator); err != nil {
		return Resource{}, err
	}
	owner, err := svc.GetOwner(ctx, ownerID)
	if err != nil {
		return Resource{}, errors.Wrap(err, "finding owner")
	}
	if owner.Suspended {
		return Resource{}, ErrOwnerSuspended
	}

	res, err := svc.repo.CreateResource(ctx, Resource{
		ID:          uuid.NewString(),
		Title:       nr.Title,
		Description: nr.Description,
		Category:    nr.Category,
		OwnerID:     owner.ID,
		PublishedAt: time.Now().UTC(),
	})
	return res, errors.Wrap(err, "creating resource")
}

func (svc *Service) GetResource(ctx context.Context, id string) (Resource, error) {
	return svc.repo.GetResourceByID(ctx, core.CleanString(id))
}

func (svc *Service) QueryByOwner(ctx context.Context, ownerID string) ([]Resource, error) {
	return svc.repo.QueryResourcesByOwner(ctx, core.CleanString(ownerID, true /* lower */))
}

// Search reads one snapshot of the matching resources and returns a lazy, restartable
// sequence over it, in publication order.
func (svc *Service) Search(ctx context.Context, filter Filter) (iter.Seq[Resource], error) {
	filter.Clean()
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	snapshot, err := svc.repo.QueryResources(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	return Select(slices.Values(snapshot), filter), nil
}
