package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/recipebox/internal/accounts"
	"github.com/jon4hz/recipebox/internal/auth"
	"github.com/jon4hz/recipebox/internal/config"
	"github.com/jon4hz/recipebox/internal/database"
	"github.com/jon4hz/recipebox/internal/gravatar"
	"github.com/mergestat/timediff"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the admin page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"timeDiff": func(t time.Time) string { return timediff.TimeDiff(t) },
	}).ParseFS(templateFS, "templates/*.html"))
}

// AdminHandler serves the server-rendered admin pages.
type AdminHandler struct {
	db       database.DB
	sessions *auth.SessionProvider
	gravatar *config.GravatarConfig
}

func NewAdmin(db database.DB, sessions *auth.SessionProvider, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		db:       db,
		sessions: sessions,
		gravatar: cfg.Gravatar,
	}
}

type userRow struct {
	database.User
	Avatar string
}

type resourceRow struct {
	ID    uint
	Name  string
	Owner string
}

func (h *AdminHandler) render(c *gin.Context, status int, name string, data gin.H) {
	if user, ok := auth.CurrentUser(c); ok {
		data["Current"] = user
	}
	c.HTML(status, name, data)
}

// LoginPage renders the login form.
func (h *AdminHandler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Email": ""})
}

// Login starts an admin session for an active staff user. The login is
// recorded only once the session is granted.
func (h *AdminHandler) Login(c *gin.Context) {
	email := c.PostForm("email")

	user, err := accounts.CheckCredentials(c.Request.Context(), h.db, email, c.PostForm("password"))
	if err != nil || !user.IsStaff {
		if err != nil && !errors.Is(err, accounts.ErrInvalidCredentials) {
			log.Error("failed to authenticate admin", "error", err)
		}
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Email": email,
			"Error": "Please enter the correct email address and password for a staff account.",
		})
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		log.Error("failed to save session", "error", err)
		c.String(http.StatusInternalServerError, "failed to save session")
		return
	}
	if err := accounts.RecordLogin(c.Request.Context(), h.db, user); err != nil {
		log.Error("failed to record login", "user_id", user.ID, "error", err)
	}
	c.Redirect(http.StatusFound, "/admin/users/")
}

// Logout ends the admin session.
func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c); err != nil {
		log.Error("failed to clear session", "error", err)
	}
	c.Redirect(http.StatusFound, "/admin/login/")
}

// Users lists all accounts.
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.db.GetAllUsers(c.Request.Context())
	if err != nil {
		log.Error("failed to list users", "error", err)
		c.String(http.StatusInternalServerError, "failed to list users")
		return
	}

	rows := lo.Map(users, func(u database.User, _ int) userRow {
		return userRow{User: u, Avatar: gravatar.URL(u.Email, h.gravatar)}
	})
	h.render(c, http.StatusOK, "users.html", gin.H{"Users": rows})
}

// AddUserPage renders an empty user form.
func (h *AdminHandler) AddUserPage(c *gin.Context) {
	h.render(c, http.StatusOK, "user_form.html", gin.H{
		"Action": "/admin/users/add/",
		"User":   &database.User{IsActive: true},
		"New":    true,
	})
}

// AddUser creates an account from the admin form. Staff and superuser
// status can only be granted by a superuser.
func (h *AdminHandler) AddUser(c *gin.Context) {
	grant := canGrantStatus(c)
	staff := grant && checkbox(c, "is_staff")
	superuser := grant && checkbox(c, "is_superuser")

	opts := []accounts.Option{
		accounts.WithName(c.PostForm("name")),
		accounts.WithActive(checkbox(c, "is_active")),
	}
	if staff {
		opts = append(opts, accounts.WithStaff())
	}
	if superuser {
		opts = append(opts, accounts.WithSuperuser())
	}

	_, err := accounts.CreateUser(c.Request.Context(), h.db, c.PostForm("email"), c.PostForm("password"), opts...)
	if err != nil {
		var verr *accounts.ValidationError
		if !errors.As(err, &verr) {
			log.Error("failed to create user", "error", err)
			c.String(http.StatusInternalServerError, "failed to create user")
			return
		}
		h.render(c, http.StatusBadRequest, "user_form.html", gin.H{
			"Action": "/admin/users/add/",
			"User": &database.User{
				Email:       c.PostForm("email"),
				Name:        c.PostForm("name"),
				IsActive:    checkbox(c, "is_active"),
				IsStaff:     staff,
				IsSuperuser: superuser,
			},
			"New":   true,
			"Error": verr.Error(),
		})
		return
	}
	c.Redirect(http.StatusFound, "/admin/users/")
}

// EditUserPage renders the change form of one account.
func (h *AdminHandler) EditUserPage(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "user_form.html", gin.H{
		"Action": c.Request.URL.Path,
		"User":   user,
	})
}

// EditUser updates the name, flags and optionally the password of an account.
// Staff and superuser status are left untouched unless a superuser is editing.
func (h *AdminHandler) EditUser(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	user.Name = strings.TrimSpace(c.PostForm("name"))
	user.IsActive = checkbox(c, "is_active")
	if canGrantStatus(c) {
		user.IsStaff = checkbox(c, "is_staff")
		user.IsSuperuser = checkbox(c, "is_superuser")
	}
	if password := c.PostForm("password"); password != "" {
		if err := accounts.SetPassword(user, password); err != nil {
			log.Error("failed to set password", "user_id", user.ID, "error", err)
			c.String(http.StatusInternalServerError, "failed to set password")
			return
		}
	}

	if err := h.db.UpdateUser(c.Request.Context(), user); err != nil {
		log.Error("failed to update user", "user_id", user.ID, "error", err)
		c.String(http.StatusInternalServerError, "failed to update user")
		return
	}
	c.Redirect(http.StatusFound, "/admin/users/")
}

func (h *AdminHandler) loadUser(c *gin.Context) (*database.User, bool) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.String(http.StatusNotFound, "user not found")
		return nil, false
	}
	user, err := h.db.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.String(http.StatusNotFound, "user not found")
			return nil, false
		}
		log.Error("failed to load user", "user_id", id, "error", err)
		c.String(http.StatusInternalServerError, "failed to load user")
		return nil, false
	}
	return user, true
}

// Tags lists every tag with its owner.
func (h *AdminHandler) Tags(c *gin.Context) {
	tags, err := h.db.Tags().ListAll(c.Request.Context())
	if err != nil {
		log.Error("failed to list tags", "error", err)
		c.String(http.StatusInternalServerError, "failed to list tags")
		return
	}
	h.renderResources(c, "Tags", lo.Map(tags, func(t database.Tag, _ int) database.Resource { return t.Resource }))
}

// Ingredients lists every ingredient with its owner.
func (h *AdminHandler) Ingredients(c *gin.Context) {
	items, err := h.db.Ingredients().ListAll(c.Request.Context())
	if err != nil {
		log.Error("failed to list ingredients", "error", err)
		c.String(http.StatusInternalServerError, "failed to list ingredients")
		return
	}
	h.renderResources(c, "Ingredients", lo.Map(items, func(i database.Ingredient, _ int) database.Resource { return i.Resource }))
}

func (h *AdminHandler) renderResources(c *gin.Context, title string, items []database.Resource) {
	users, err := h.db.GetAllUsers(c.Request.Context())
	if err != nil {
		log.Error("failed to list users", "error", err)
		c.String(http.StatusInternalServerError, "failed to list users")
		return
	}
	owners := lo.SliceToMap(users, func(u database.User) (uint, string) { return u.ID, u.Email })

	rows := lo.Map(items, func(r database.Resource, _ int) resourceRow {
		return resourceRow{ID: r.ID, Name: r.Name, Owner: owners[r.UserID]}
	})
	h.render(c, http.StatusOK, "resources.html", gin.H{"Title": title, "Rows": rows})
}

func canGrantStatus(c *gin.Context) bool {
	current, ok := auth.CurrentUser(c)
	return ok && current.IsSuperuser
}

func checkbox(c *gin.Context, name string) bool {
	switch c.PostForm(name) {
	case "on", "true", "1":
		return true
	default:
		return false
	}
}
