// Package cache puts a Redis read-through cache in front of a UserRepository.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/persistence"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
)

const DefaultTTL = 5 * time.Minute

// cachedUser is the JSON form kept in Redis.
type cachedUser struct {
	ID       string  `json:"id"`
	Email    *string `json:"email,omitempty"`
	FullName string  `json:"full_name"`
	Age      int     `json:"age"`
}

// UserRepository caches lookups by id and email. Writes go to the inner
// repository first and then evict. Redis failures are logged and never
// fail the call.
type UserRepository struct {
	inner  repository.UserRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(inner repository.UserRepository, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *UserRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserRepository{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func idKey(id string) string       { return "user:id:" + id }
func emailKey(email string) string { return "user:email:" + email }

func (r *UserRepository) FindByID(ctx context.Context, id entity.UserID) (*entity.User, bool, error) {
	if u, ok := r.get(ctx, id.String()); ok {
		return u, true, nil
	}
	u, found, err := r.inner.FindByID(ctx, id)
	if err != nil || !found {
		return u, found, err
	}
	r.put(ctx, u)
	return u, true, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email entity.EmailAddress) (*entity.User, bool, error) {
	var id string
	ok, err := helpers.RedisGetJSON(ctx, r.rdb, emailKey(email.String()), &id)
	if err != nil {
		r.warn(err, emailKey(email.String()))
	}
	if ok {
		// the email index may outlive a change; trust it only when it still matches
		if u, hit := r.get(ctx, id); hit && u.EmailAddress().Equals(email) {
			return u, true, nil
		}
	}
	u, found, err := r.inner.FindByEmail(ctx, email)
	if err != nil || !found {
		return u, found, err
	}
	r.put(ctx, u)
	return u, true, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	return r.inner.ListAll(ctx)
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	return r.inner.Insert(ctx, u)
}

func (r *UserRepository) ChangeDetails(ctx context.Context, u *entity.User) (*entity.User, error) {
	prev, hit := r.get(ctx, u.ID().String())
	saved, err := r.inner.ChangeDetails(ctx, u)
	if err != nil {
		return nil, err
	}
	r.evict(ctx, u.ID().String())
	if hit && prev.HasEmailAddress() {
		r.del(ctx, emailKey(prev.EmailAddress().String()))
	}
	return saved, nil
}

func (r *UserRepository) DeleteBy(ctx context.Context, id entity.UserID) error {
	prev, hit := r.get(ctx, id.String())
	if err := r.inner.DeleteBy(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id.String())
	if hit && prev.HasEmailAddress() {
		r.del(ctx, emailKey(prev.EmailAddress().String()))
	}
	return nil
}

func (r *UserRepository) get(ctx context.Context, id string) (*entity.User, bool) {
	var c cachedUser
	ok, err := helpers.RedisGetJSON(ctx, r.rdb, idKey(id), &c)
	if err != nil {
		r.warn(err, idKey(id))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	u, err := persistence.Rehydrate(c.ID, c.Email, c.FullName, c.Age)
	if err != nil {
		r.warn(err, idKey(id))
		r.del(ctx, idKey(id))
		return nil, false
	}
	return u, true
}

func (r *UserRepository) put(ctx context.Context, u *entity.User) {
	c := cachedUser{
		ID:       u.ID().String(),
		Email:    persistence.NullableEmail(u),
		FullName: u.FullName().String(),
		Age:      u.Age().Int(),
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := helpers.RedisSetJSON(ctx, pipe, idKey(c.ID), c, r.ttl); err != nil {
			return err
		}
		if c.Email == nil {
			return nil
		}
		return helpers.RedisSetJSON(ctx, pipe, emailKey(*c.Email), c.ID, r.ttl)
	})
	if err != nil {
		r.warn(err, idKey(c.ID))
	}
}

func (r *UserRepository) evict(ctx context.Context, id string) {
	r.del(ctx, idKey(id))
}

func (r *UserRepository) del(ctx context.Context, key string) {
	if err := helpers.RedisDel(ctx, r.rdb, key); err != nil {
		r.warn(err, key)
	}
}

func (r *UserRepository) warn(err error, key string) {
	r.logger.WithError(err).WithField("key", key).Warn("user cache unavailable")
}
