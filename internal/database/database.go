package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jon4hz/recipebox/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// DB is the store handle passed to handlers and account functions.
type DB interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user *User) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) error

	Tags() ResourceStore[Tag]
	Ingredients() ResourceStore[Ingredient]

	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

var _ DB = (*Client)(nil) // Ensure Client implements DB

// Client wraps the gorm.DB instance.
type Client struct {
	db          *gorm.DB
	tags        ResourceStore[Tag]
	ingredients ResourceStore[Ingredient]
}

// New opens the configured database and performs migrations.
func New(cfg *config.DatabaseConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	c := &Client{db: db}
	if err := c.Migrate(); err != nil {
		return nil, err
	}
	c.tags = NewResourceStore[Tag](db)
	c.ingredients = NewResourceStore[Ingredient](db)

	return c, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DatabaseDriverSQLite, "":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(cfg.Path + "?_pragma=foreign_keys(1)"), nil
	case config.DatabaseDriverPostgres:
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate brings the schema up to date.
func (c *Client) Migrate() error {
	if err := c.db.AutoMigrate(
		&User{},
		&Tag{},
		&Ingredient{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Client) Tags() ResourceStore[Tag] {
	return c.tags
}

func (c *Client) Ingredients() ResourceStore[Ingredient] {
	return c.ingredients
}

// Stats holds row counts for the db-stats command.
type Stats struct {
	Users       int64
	StaffUsers  int64
	Tags        int64
	Ingredients int64
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	db := c.db.WithContext(ctx)
	if err := db.Model(&User{}).Count(&stats.Users).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&User{}).Where("is_staff = ?", true).Count(&stats.StaffUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count staff users: %w", err)
	}
	if err := db.Model(&Tag{}).Count(&stats.Tags).Error; err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	if err := db.Model(&Ingredient{}).Count(&stats.Ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to count ingredients: %w", err)
	}
	return &stats, nil
}

// translateError maps gorm errors onto the package sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
