package cached

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-crud-api/internal/adapter/cache"
	domain "user-crud-api/internal/domain/user"
	"user-crud-api/internal/usecase/user"
	"user-crud-api/pkg/logger"
)

// UserStore implements user.UserStore with read-through caching.
// It wraps a persistent store (DB) and a cache implementation.
type UserStore struct {
	store user.UserStore
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group

	// mu orders cache fills against evictions; reads maps ids with a
	// database read in flight to their eviction generation.
	mu    sync.Mutex
	reads map[int64]*readState
}

type readState struct {
	gen     uint64
	readers int
}

var _ user.UserStore = (*UserStore)(nil)

// NewUserStore creates a new instance of UserStore.
func NewUserStore(store user.UserStore, c cache.UserCache, log *zap.Logger) *UserStore {
	return &UserStore{
		store: store,
		cache: c,
		log:   log,
		reads: make(map[int64]*readState),
	}
}

// FindAll delegates to the DB store.
func (s *UserStore) FindAll(ctx context.Context) ([]domain.User, error) {
	return s.store.FindAll(ctx)
}

// FindByID retrieves a user by ID using the cache-aside pattern.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)

	cachedUser, err := s.cache.Get(ctx, id)
	if err != nil {
		log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// Concurrent misses for the same id share one database read
	result, err, _ := s.group.Do(flightKey(id), func() (any, error) {
		st, gen := s.beginRead(id)
		defer s.endRead(id, st)

		u, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		s.fill(ctx, u, st, gen)
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not alias one another's entity
	clone := *result.(*domain.User)
	return &clone, nil
}

// Save persists the user and evicts any cached copy.
func (s *UserStore) Save(ctx context.Context, u *domain.User) error {
	isNew := u != nil && u.IsNew()
	if err := s.store.Save(ctx, u); err != nil {
		return err
	}

	if !isNew {
		s.evict(ctx, u.ID)
	}
	return nil
}

// Delete removes the user from the DB store and evicts any cached copy.
func (s *UserStore) Delete(ctx context.Context, u *domain.User) error {
	if err := s.store.Delete(ctx, u); err != nil {
		return err
	}

	s.evict(ctx, u.ID)
	return nil
}

// beginRead registers a database read for id and returns the eviction
// generation it started under.
func (s *UserStore) beginRead(id int64) (*readState, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.reads[id]
	if !ok {
		st = &readState{}
		s.reads[id] = st
	}
	st.readers++
	return st, st.gen
}

func (s *UserStore) endRead(id int64, st *readState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.readers--
	if st.readers == 0 {
		delete(s.reads, id)
	}
}

// fill caches u unless the id was evicted after the read began; the row it
// holds may already be gone or replaced.
func (s *UserStore) fill(ctx context.Context, u *domain.User, st *readState, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.WithContext(ctx, s.log)
	if st.gen != gen {
		log.Debug("skipping cache fill after concurrent write", zap.Int64("id", u.ID))
		return
	}
	if err := s.cache.Set(ctx, u); err != nil {
		log.Warn("failed to cache user", zap.Int64("id", u.ID), zap.Error(err))
	}
}

func (s *UserStore) evict(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.reads[id]; ok {
		st.gen++
	}
	// later misses must not join a flight that read the old row
	s.group.Forget(flightKey(id))

	if err := s.cache.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, s.log).Warn("failed to invalidate cached user", zap.Int64("id", id), zap.Error(err))
	}
}

func flightKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
