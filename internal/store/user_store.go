package store

import (
	"context"
	"time"

	"walletledger/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// UserFilter narrows List. Nil fields are not applied.
type UserFilter struct {
	ID     *int64
	Email  *string
	Status *models.UserStatus
}

func (s *UserStore) Create(ctx context.Context, tx Getter, email string) (models.User, error) {
	var user models.User
	err := tx.GetContext(ctx, &user, `
		INSERT INTO users (email, status)
		VALUES ($1, $2)
		RETURNING id, email, status, created
	`, email, models.UserActive)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) GetByID(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, email, status, created
		FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, email, status, created
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)
	`, email)
	return exists, err
}

func (s *UserStore) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := `SELECT id, email, status, created FROM users`
	var clauses []string
	var args []any
	if filter.ID != nil {
		args = append(args, *filter.ID)
		clauses = append(clauses, "id = $"+itoa(len(args)))
	}
	if filter.Email != nil {
		args = append(args, *filter.Email)
		clauses = append(clauses, "email = $"+itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, "status = $"+itoa(len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created DESC"
	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) UpdateStatus(ctx context.Context, tx Getter, userID int64, status models.UserStatus) (models.User, error) {
	var user models.User
	err := tx.GetContext(ctx, &user, `
		UPDATE users
		SET status = $1
		WHERE id = $2
		RETURNING id, email, status, created
	`, status, userID)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) ListRegisteredBetween(ctx context.Context, start, end time.Time) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `
		SELECT id, email, status, created
		FROM users
		WHERE created >= $1 AND created <= $2
	`, start, end)
	if err != nil {
		return nil, err
	}
	return users, nil
}
