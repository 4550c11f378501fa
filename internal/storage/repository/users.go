package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

const userColumns = `uid, email, password_hash, first_name, last_name, address, city,
			      country, postal_code, is_active, is_staff, is_superuser, date_joined`

// CreateUser сохраняет пользователя вместе с членством в группах и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (string, error) {
	const op = "storage.CreateUser"
	return s.createUser(ctx, op, user, "")
}

// CreateUserWithToken сохраняет пользователя, его группы и токен активации в одной
// транзакции: неактивный пользователь без токена не может появиться.
func (s *Storage) CreateUserWithToken(ctx context.Context, user *models.User, token string) (string, error) {
	const op = "storage.CreateUserWithToken"
	if token == "" {
		return "", fmt.Errorf("%s: empty activation token", op)
	}
	return s.createUser(ctx, op, user, token)
}

func (s *Storage) createUser(ctx context.Context, op string, user *models.User, token string) (string, error) {
	if err := ctxDone(ctx, op); err != nil {
		return "", err
	}

	var newID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO users (email, password_hash, first_name, last_name, address, city,
				      country, postal_code, is_active, is_staff, is_superuser)
				  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				  RETURNING uid, date_joined`
		if err := tx.QueryRowContext(ctx, query,
			user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Address, user.City,
			user.Country, user.PostalCode, user.IsActive, user.IsStaff, user.IsSuperuser,
		).Scan(&newID, &user.DateJoined); err != nil {
			if isUniqueViolation(err) {
				return models.ErrEmailTaken
			}
			return err
		}
		for _, group := range user.Groups {
			if err := addToGroup(ctx, tx, newID, group); err != nil {
				return err
			}
		}
		if token == "" {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activation_tokens (token, user_uid) VALUES ($1, $2)`, token, newID); err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user.UUID = newID
	return newID, nil
}

func addToGroup(ctx context.Context, tx *sql.Tx, userUID, group string) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO user_groups (user_uid, group_id)
			  SELECT $1, id FROM groups WHERE name = $2
			  ON CONFLICT DO NOTHING`, userUID, group)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE name = $1)`, group).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("group %q: %w", group, models.ErrNotFound)
		}
	}
	return nil
}

// GetUserByEmail возвращает пользователя по email вместе с его группами.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := s.scanUser(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по UID вместе с его группами.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := s.scanUser(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *Storage) scanUser(ctx context.Context, query string, arg any) (*models.User, error) {
	u := &models.User{}
	if err := s.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.UUID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Address, &u.City,
		&u.Country, &u.PostalCode, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.DateJoined,
	); err != nil {
		return nil, mapError(err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT g.name FROM groups g
			  JOIN user_groups ug ON ug.group_id = g.id
			  WHERE ug.user_uid = $1
			  ORDER BY g.name`, u.UUID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		u.Groups = append(u.Groups, name)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile обновляет редактируемые поля профиля.
func (s *Storage) UpdateProfile(ctx context.Context, userUID string, p models.Profile) error {
	const op = "storage.UpdateProfile"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users
			  SET first_name = $1, last_name = $2, address = $3,
			      city = $4, country = $5, postal_code = $6
			  WHERE uid = $7`
	res, err := s.DB.ExecContext(ctx, query,
		p.FirstName, p.LastName, p.Address, p.City, p.Country, p.PostalCode, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
