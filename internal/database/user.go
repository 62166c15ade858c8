package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// User represents an account. The email address is the only natural key,
// there is no username.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Name         string `gorm:"size:255"`
	PasswordHash string
	IsActive     bool `gorm:"not null"`
	IsStaff      bool `gorm:"not null"`
	IsSuperuser  bool `gorm:"not null"`
	LastLogin    *time.Time
}

func (c *Client) CreateUser(ctx context.Context, user *User) error {
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrDuplicate) {
			log.Error("failed to create user", "error", err)
		}
		return err
	}
	return nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrNotFound) {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, ErrNotFound) {
			log.Error("failed to get user by email", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Order("email ASC").Find(&users).Error; err != nil {
		log.Error("failed to get all users", "error", err)
		return nil, err
	}
	return users, nil
}

// UpdateUser writes every column of user, including zero values.
func (c *Client) UpdateUser(ctx context.Context, user *User) error {
	if user.ID == 0 {
		return ErrNotFound
	}
	if err := c.db.WithContext(ctx).Save(user).Error; err != nil {
		err = translateError(err)
		log.Error("failed to update user", "error", err)
		return err
	}
	return nil
}

// ProfileUpdate lists the self-service fields of a user. Nil fields are left untouched.
type ProfileUpdate struct {
	Name         *string
	PasswordHash *string
}

// UpdateLastLogin sets only the last_login column.
func (c *Client) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	res := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).UpdateColumn("last_login", at)
	if res.Error != nil {
		log.Error("failed to update last login", "user_id", id, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile writes the non-nil fields of update and nothing else.
func (c *Client) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) error {
	columns := map[string]any{}
	if update.Name != nil {
		columns["name"] = *update.Name
	}
	if update.PasswordHash != nil {
		columns["password_hash"] = *update.PasswordHash
	}
	if len(columns) == 0 {
		_, err := c.GetUserByID(ctx, id)
		return err
	}

	res := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		log.Error("failed to update profile", "user_id", id, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
