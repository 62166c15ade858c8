package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/recipebox/internal/accounts"
	"github.com/jon4hz/recipebox/internal/auth"
	"github.com/jon4hz/recipebox/internal/config"
	"github.com/jon4hz/recipebox/internal/database"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	db      *database.Client
	handler http.Handler
	cfg     *config.Config
}

func (s *ServerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.cfg = &config.Config{
		Listen:        "127.0.0.1:0",
		SecretKey:     "test-secret",
		TokenTTL:      time.Hour,
		SessionKey:    "test-session-key",
		SessionMaxAge: 3600,
		Database: &config.DatabaseConfig{
			Driver: config.DatabaseDriverSQLite,
			Path:   filepath.Join(s.T().TempDir(), "recipebox.db"),
		},
		Gravatar: &config.GravatarConfig{},
	}

	db, err := database.New(s.cfg.Database)
	s.Require().NoError(err)
	s.db = db

	server, err := New(s.cfg, db)
	s.Require().NoError(err)
	s.handler = server.Handler()
}

func (s *ServerTestSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *ServerTestSuite) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) tokenFor(email string) string {
	user, err := accounts.CreateUser(context.Background(), s.db, email, "testpass123")
	s.Require().NoError(err)
	token, err := auth.GenerateToken(user.ID, []byte(s.cfg.SecretKey), s.cfg.TokenTTL)
	s.Require().NoError(err)
	return token
}

func (s *ServerTestSuite) names(w *httptest.ResponseRecorder) []string {
	s.Require().Equal(http.StatusOK, w.Code)
	var items []struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func (s *ServerTestSuite) TestRecipeEndpoints_RequireAuth() {
	for _, path := range []string{"/api/recipe/tags/", "/api/recipe/ingredients/"} {
		w := s.do(http.MethodGet, path, "", "")
		s.Equal(http.StatusUnauthorized, w.Code, path)

		w = s.do(http.MethodPost, path, `{"name":"beans"}`, "")
		s.Equal(http.StatusUnauthorized, w.Code, path)
	}

	stats, err := s.db.GetStats(context.Background())
	s.Require().NoError(err)
	s.Zero(stats.Tags)
	s.Zero(stats.Ingredients)
}

func (s *ServerTestSuite) TestIngredients_EndToEnd() {
	token := s.tokenFor("user@gobe.com")

	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/recipe/ingredients/", `{"name":"beans"}`, token).Code)
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/recipe/ingredients/", `{"name":"onions"}`, token).Code)

	s.Equal([]string{"onions", "beans"}, s.names(s.do(http.MethodGet, "/api/recipe/ingredients/", "", token)))
}

func (s *ServerTestSuite) TestTags_ScopedAndOrdered() {
	alice := s.tokenFor("alice@gobe.com")
	bob := s.tokenFor("bob@gobe.com")

	for _, name := range []string{"Vegan", "Dessert", "comfort food"} {
		s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/recipe/tags/", `{"name":"`+name+`"}`, alice).Code)
	}
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/recipe/tags/", `{"name":"Fruity"}`, bob).Code)

	s.Equal([]string{"comfort food", "Vegan", "Dessert"}, s.names(s.do(http.MethodGet, "/api/recipe/tags/", "", alice)))
	s.Equal([]string{"Fruity"}, s.names(s.do(http.MethodGet, "/api/recipe/tags/", "", bob)))
}

func (s *ServerTestSuite) TestUserFlow() {
	w := s.do(http.MethodPost, "/api/user/create/", `{"email":"new@gobe.com","password":"testpass","name":"New"}`, "")
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/user/token/", `{"email":"new@gobe.com","password":"testpass"}`, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))

	w = s.do(http.MethodGet, "/api/user/me/", "", resp.Token)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"email":"new@gobe.com","name":"New"}`, w.Body.String())
}

func (s *ServerTestSuite) TestInactiveUserRejected() {
	token := s.tokenFor("gone@gobe.com")

	user, err := s.db.GetUserByEmail(context.Background(), "gone@gobe.com")
	s.Require().NoError(err)
	user.IsActive = false
	s.Require().NoError(s.db.UpdateUser(context.Background(), user))

	w := s.do(http.MethodGet, "/api/recipe/tags/", "", token)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ServerTestSuite) TestAdminRedirectsAnonymous() {
	w := s.do(http.MethodGet, "/admin/users/", "", "")
	s.Equal(http.StatusFound, w.Code)
	s.Equal(adminLoginPath, w.Header().Get("Location"))
}

func (s *ServerTestSuite) TestRun_Shutdown() {
	server, err := New(s.cfg, s.db)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(5 * time.Second):
		s.Fail("server did not shut down")
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, nil)
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
