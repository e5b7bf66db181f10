package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"pizzapos/internal/apperr"
	"pizzapos/internal/cache"
	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo     store.Repository
	cache    cache.DashboardCache
	cacheTTL time.Duration
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
	log      logrus.FieldLogger
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone that defines calendar days and months in reports
// and date-only filters.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithDashboardCache caches dashboard statistics in c for ttl. A non-positive
// ttl leaves caching off.
func WithDashboardCache(c cache.DashboardCache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil && ttl > 0 {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func New(repo store.Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		cache:    cache.NoopDashboardCache{},
		cacheTTL: 30 * time.Second,
		validate: newValidator(),
		now:      time.Now,
		loc:      time.Local,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// notFound converts a store miss into the client-facing 404 for what.
func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(what + " not found")
	}
	return err
}

// storeErr maps the store sentinels that can still surface after the
// service-level checks, e.g. when two requests race on a unique value.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(what + " not found")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.BusinessRulef("a %s with that data already exists", what)
	case errors.Is(err, store.ErrReferenced):
		return apperr.BusinessRulef("the %s references a record that does not exist or is referenced by other records", what)
	}
	return apperr.Wrap(err)
}
