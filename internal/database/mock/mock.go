package mock

import (
	"context"
	"sync"
	"time"

	"github.com/jon4hz/recipebox/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is an in-memory implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	// User storage
	users      map[uint]*database.User
	nextUserID uint

	tags        *ResourceStore[database.Tag, *database.Tag]
	ingredients *ResourceStore[database.Ingredient, *database.Ingredient]

	// Error simulation
	CreateUserError      error
	GetUserByIDError     error
	GetUserByEmailError  error
	GetAllUsersError     error
	UpdateUserError      error
	UpdateLastLoginError error
	UpdateProfileError   error
	GetStatsError        error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:       make(map[uint]*database.User),
		nextUserID:  1,
		tags:        NewResourceStore[database.Tag](),
		ingredients: NewResourceStore[database.Ingredient](),
	}
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[uint]*database.User)
	m.nextUserID = 1
	m.tags.Reset()
	m.ingredients.Reset()

	m.CreateUserError = nil
	m.GetUserByIDError = nil
	m.GetUserByEmailError = nil
	m.GetAllUsersError = nil
	m.UpdateUserError = nil
	m.UpdateLastLoginError = nil
	m.UpdateProfileError = nil
	m.GetStatsError = nil
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, user *database.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}

	now := time.Now()
	user.ID = m.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	m.nextUserID++

	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	if m.GetUserByEmailError != nil {
		return nil, m.GetUserByEmailError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) GetAllUsers(ctx context.Context) ([]database.User, error) {
	if m.GetAllUsersError != nil {
		return nil, m.GetAllUsersError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]database.User, 0, len(m.users))
	for id := uint(1); id < m.nextUserID; id++ {
		if user, ok := m.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (m *MockDB) UpdateUser(ctx context.Context, user *database.User) error {
	if m.UpdateUserError != nil {
		return m.UpdateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return database.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockDB) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	if m.UpdateLastLoginError != nil {
		return m.UpdateLastLoginError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	user.LastLogin = &at
	return nil
}

func (m *MockDB) UpdateProfile(ctx context.Context, id uint, update database.ProfileUpdate) error {
	if m.UpdateProfileError != nil {
		return m.UpdateProfileError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	user.UpdatedAt = time.Now()
	return nil
}

// Resource operations

func (m *MockDB) Tags() database.ResourceStore[database.Tag] {
	return m.tags
}

func (m *MockDB) Ingredients() database.ResourceStore[database.Ingredient] {
	return m.ingredients
}

// TagStore exposes the tag store for error injection.
func (m *MockDB) TagStore() *ResourceStore[database.Tag, *database.Tag] {
	return m.tags
}

// IngredientStore exposes the ingredient store for error injection.
func (m *MockDB) IngredientStore() *ResourceStore[database.Ingredient, *database.Ingredient] {
	return m.ingredients
}

func (m *MockDB) GetStats(ctx context.Context) (*database.Stats, error) {
	if m.GetStatsError != nil {
		return nil, m.GetStatsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &database.Stats{
		Users:       int64(len(m.users)),
		Tags:        m.tags.count(),
		Ingredients: m.ingredients.count(),
	}
	for _, u := range m.users {
		if u.IsStaff {
			stats.StaffUsers++
		}
	}
	return stats, nil
}

func (m *MockDB) Close() error {
	return nil
}

// ResourceStore is an in-memory database.ResourceStore.
type ResourceStore[T any, P database.Ownable[T]] struct {
	mu     sync.RWMutex
	items  []T
	nextID uint

	ListByOwnerError error
	ListAllError     error
	CreateError      error
}

// NewResourceStore creates an empty in-memory store.
func NewResourceStore[T any, P database.Ownable[T]]() *ResourceStore[T, P] {
	return &ResourceStore[T, P]{nextID: 1}
}

// Reset clears all records and errors.
func (s *ResourceStore[T, P]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.nextID = 1
	s.ListByOwnerError = nil
	s.ListAllError = nil
	s.CreateError = nil
}

func (s *ResourceStore[T, P]) ListByOwner(ctx context.Context, userID uint) ([]T, error) {
	if s.ListByOwnerError != nil {
		return nil, s.ListByOwnerError
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]T, 0)
	for _, item := range s.items {
		if P(&item).Base().UserID == userID {
			items = append(items, item)
		}
	}
	database.SortByNameDesc[T, P](items)
	return items, nil
}

func (s *ResourceStore[T, P]) ListAll(ctx context.Context) ([]T, error) {
	if s.ListAllError != nil {
		return nil, s.ListAllError
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]T, len(s.items))
	copy(items, s.items)
	database.SortByNameDesc[T, P](items)
	return items, nil
}

func (s *ResourceStore[T, P]) Create(ctx context.Context, userID uint, name string) (*T, error) {
	if s.CreateError != nil {
		return nil, s.CreateError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := new(T)
	P(item).Assign(userID, name)
	base := P(item).Base()
	base.ID = s.nextID
	base.CreatedAt = time.Now()
	base.UpdatedAt = base.CreatedAt
	s.nextID++

	s.items = append(s.items, *item)
	return item, nil
}

func (s *ResourceStore[T, P]) count() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items))
}
