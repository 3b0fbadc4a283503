package db

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

// UserCache запоминает пользователей на время одного запроса,
// чтобы не читать одного и того же участника несколько раз
type UserCache struct {
	store Store
	users map[uuid.UUID]*models.User
}

// NewUserCache создаёт пустой кэш
func NewUserCache(store Store) *UserCache {
	return &UserCache{store: store, users: make(map[uuid.UUID]*models.User)}
}

// Put добавляет уже загруженного пользователя
func (c *UserCache) Put(user *models.User) {
	if user != nil {
		c.users[user.ID] = user
	}
}

// Get возвращает пользователя; отсутствующий пользователь даёт nil без ошибки
func (c *UserCache) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := c.users[id]; ok {
		return user, nil
	}

	user, err := c.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.users[id] = nil
			return nil, nil
		}
		return nil, err
	}
	c.users[id] = user
	return user, nil
}

// EnrichRequest заполняет FromUser и ToUser
func (c *UserCache) EnrichRequest(ctx context.Context, req *models.SwapRequest) error {
	from, err := c.Get(ctx, req.FromUserID)
	if err != nil {
		return err
	}
	to, err := c.Get(ctx, req.ToUserID)
	if err != nil {
		return err
	}
	req.FromUser = from.Summary()
	req.ToUser = to.Summary()
	return nil
}

// EnrichRequests заполняет участников для списка предложений
func (c *UserCache) EnrichRequests(ctx context.Context, reqs []models.SwapRequest) error {
	for i := range reqs {
		if err := c.EnrichRequest(ctx, &reqs[i]); err != nil {
			return err
		}
	}
	return nil
}

// EnrichMessages заполняет отправителей сообщений
func (c *UserCache) EnrichMessages(ctx context.Context, msgs []models.Message) error {
	for i := range msgs {
		sender, err := c.Get(ctx, msgs[i].SenderID)
		if err != nil {
			return err
		}
		msgs[i].Sender = sender.Summary()
	}
	return nil
}
