package database

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/jon4hz/recipebox/internal/config"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type DatabaseTestSuite struct {
	suite.Suite
	client *Client
	ctx    context.Context
}

func (s *DatabaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	client, err := New(&config.DatabaseConfig{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(s.T().TempDir(), "recipebox.db"),
	})
	s.Require().NoError(err)
	s.client = client
}

func (s *DatabaseTestSuite) TearDownTest() {
	if s.client != nil {
		s.NoError(s.client.Close())
	}
}

func (s *DatabaseTestSuite) createUser(email string) *User {
	user := &User{Email: email, IsActive: true}
	s.Require().NoError(s.client.CreateUser(s.ctx, user))
	return user
}

func (s *DatabaseTestSuite) TestCreateAndGetUser() {
	user := s.createUser("mo@gobe.com")
	s.NotZero(user.ID)

	byID, err := s.client.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("mo@gobe.com", byID.Email)
	s.True(byID.IsActive)
	s.False(byID.IsStaff)

	byEmail, err := s.client.GetUserByEmail(s.ctx, "mo@gobe.com")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)
}

func (s *DatabaseTestSuite) TestGetUser_NotFound() {
	_, err := s.client.GetUserByID(s.ctx, 42)
	s.ErrorIs(err, ErrNotFound)

	_, err = s.client.GetUserByEmail(s.ctx, "nobody@gobe.com")
	s.ErrorIs(err, ErrNotFound)
}

func (s *DatabaseTestSuite) TestCreateUser_DuplicateEmail() {
	s.createUser("mo@gobe.com")

	err := s.client.CreateUser(s.ctx, &User{Email: "mo@gobe.com"})
	s.Error(err)

	users, err := s.client.GetAllUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 1)
}

func (s *DatabaseTestSuite) TestUpdateUser_WritesZeroValues() {
	user := s.createUser("mo@gobe.com")
	user.IsActive = false
	user.Name = "Mo"
	s.Require().NoError(s.client.UpdateUser(s.ctx, user))

	stored, err := s.client.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.False(stored.IsActive)
	s.Equal("Mo", stored.Name)
}

func (s *DatabaseTestSuite) TestUpdateUser_Unsaved() {
	err := s.client.UpdateUser(s.ctx, &User{Email: "ghost@gobe.com"})
	s.ErrorIs(err, ErrNotFound)
}

func (s *DatabaseTestSuite) TestUpdateLastLogin_OnlyTouchesLastLogin() {
	user := s.createUser("mo@gobe.com")
	stale := *user

	user.IsActive = false
	s.Require().NoError(s.client.UpdateUser(s.ctx, user))

	at := time.Now().UTC().Truncate(time.Second)
	s.Require().NoError(s.client.UpdateLastLogin(s.ctx, stale.ID, at))

	got, err := s.client.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.False(got.IsActive)
	s.Require().NotNil(got.LastLogin)
	s.True(at.Equal(*got.LastLogin))

	s.ErrorIs(s.client.UpdateLastLogin(s.ctx, 4242, at), ErrNotFound)
}

func (s *DatabaseTestSuite) TestUpdateProfile() {
	user := s.createUser("mo@gobe.com")
	user.IsActive = false
	user.IsStaff = true
	s.Require().NoError(s.client.UpdateUser(s.ctx, user))

	name := "Mo"
	s.Require().NoError(s.client.UpdateProfile(s.ctx, user.ID, ProfileUpdate{Name: &name}))

	got, err := s.client.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Mo", got.Name)
	s.Empty(got.PasswordHash)
	s.False(got.IsActive)
	s.True(got.IsStaff)

	hash := "$2a$10$hash"
	s.Require().NoError(s.client.UpdateProfile(s.ctx, user.ID, ProfileUpdate{PasswordHash: &hash}))
	got, err = s.client.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Mo", got.Name)
	s.Equal(hash, got.PasswordHash)
}

func (s *DatabaseTestSuite) TestUpdateProfile_NotFound() {
	name := "ghost"
	s.ErrorIs(s.client.UpdateProfile(s.ctx, 4242, ProfileUpdate{Name: &name}), ErrNotFound)
	s.ErrorIs(s.client.UpdateProfile(s.ctx, 4242, ProfileUpdate{}), ErrNotFound)
}

func (s *DatabaseTestSuite) TestGetAllUsers_OrderedByEmail() {
	s.createUser("zed@gobe.com")
	s.createUser("amy@gobe.com")

	users, err := s.client.GetAllUsers(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"amy@gobe.com", "zed@gobe.com"}, lo.Map(users, func(u User, _ int) string { return u.Email }))
}

func (s *DatabaseTestSuite) TestTags_ScopedToOwner() {
	user1 := s.createUser("user1@mail.com")
	user2 := s.createUser("user2@mail.com")

	for _, name := range []string{"Vegan", "Dessert", "comfort food"} {
		_, err := s.client.Tags().Create(s.ctx, user1.ID, name)
		s.Require().NoError(err)
	}
	_, err := s.client.Tags().Create(s.ctx, user2.ID, "Dairy")
	s.Require().NoError(err)

	tags, err := s.client.Tags().ListByOwner(s.ctx, user1.ID)
	s.Require().NoError(err)
	s.Equal([]string{"comfort food", "Vegan", "Dessert"}, tagNames(tags))

	tags, err = s.client.Tags().ListByOwner(s.ctx, user2.ID)
	s.Require().NoError(err)
	s.Equal([]string{"Dairy"}, tagNames(tags))
}

func (s *DatabaseTestSuite) TestIngredients_DuplicatesAllowed() {
	user := s.createUser("user1@email.com")

	first, err := s.client.Ingredients().Create(s.ctx, user.ID, "beans")
	s.Require().NoError(err)
	second, err := s.client.Ingredients().Create(s.ctx, user.ID, "beans")
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)

	_, err = s.client.Ingredients().Create(s.ctx, user.ID, "onions")
	s.Require().NoError(err)

	ingredients, err := s.client.Ingredients().ListByOwner(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Len(ingredients, 3)
	s.Equal("onions", ingredients[0].Name)
	// equal names keep insertion order
	s.Equal(first.ID, ingredients[1].ID)
	s.Equal(second.ID, ingredients[2].ID)
}

func (s *DatabaseTestSuite) TestTagsAndIngredients_AreIndependent() {
	user := s.createUser("user1@email.com")
	_, err := s.client.Tags().Create(s.ctx, user.ID, "Vegan")
	s.Require().NoError(err)

	ingredients, err := s.client.Ingredients().ListByOwner(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(ingredients)
	s.NotNil(ingredients)
}

func (s *DatabaseTestSuite) TestListAll() {
	user1 := s.createUser("user1@mail.com")
	user2 := s.createUser("user2@mail.com")
	_, err := s.client.Tags().Create(s.ctx, user1.ID, "apple")
	s.Require().NoError(err)
	_, err = s.client.Tags().Create(s.ctx, user2.ID, "banana")
	s.Require().NoError(err)

	tags, err := s.client.Tags().ListAll(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"banana", "apple"}, tagNames(tags))
}

func (s *DatabaseTestSuite) TestGetStats() {
	user := s.createUser("user1@mail.com")
	staff := &User{Email: "admin@mail.com", IsActive: true, IsStaff: true}
	s.Require().NoError(s.client.CreateUser(s.ctx, staff))
	_, err := s.client.Tags().Create(s.ctx, user.ID, "Vegan")
	s.Require().NoError(err)
	_, err = s.client.Ingredients().Create(s.ctx, user.ID, "beans")
	s.Require().NoError(err)
	_, err = s.client.Ingredients().Create(s.ctx, user.ID, "onions")
	s.Require().NoError(err)

	stats, err := s.client.GetStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), stats.Users)
	s.Equal(int64(1), stats.StaffUsers)
	s.Equal(int64(1), stats.Tags)
	s.Equal(int64(2), stats.Ingredients)
}

func TestDatabaseTestSuite(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}

func TestSortByNameDesc(t *testing.T) {
	tags := []Tag{
		{Resource: Resource{Name: "Vegan"}},
		{Resource: Resource{Name: "Dessert"}},
		{Resource: Resource{Name: "comfort food"}},
		{Resource: Resource{Name: "Vegan"}},
	}
	tags[0].ID, tags[3].ID = 1, 4

	SortByNameDesc[Tag](tags)

	if got := tagNames(tags); !slices.Equal(got, []string{"comfort food", "Vegan", "Vegan", "Dessert"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	if tags[1].ID != 1 || tags[2].ID != 4 {
		t.Fatalf("equal names were reordered: %d, %d", tags[1].ID, tags[2].ID)
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.DatabaseConfig{Driver: "mysql"})
	if err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func tagNames(tags []Tag) []string {
	return lo.Map(tags, func(t Tag, _ int) string { return t.Name })
}
