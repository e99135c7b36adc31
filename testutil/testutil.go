// Package testutil builds throwaway databases and routers for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/config"
	"github.com/yeremiapane/pc-cafe/database"
	"github.com/yeremiapane/pc-cafe/hub"
	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/router"
	"github.com/yeremiapane/pc-cafe/utils"
)

const (
	JWTSecret = "test-secret"
	AdminCode = "admin123"
)

// Config returns settings for an isolated in-memory sqlite database with
// rate limiting and metering turned off.
func Config(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", dbName(t))
	cfg.Database.MaxOpenConns = 1
	cfg.Database.LogLevel = "silent"
	cfg.Auth.JWTSecret = JWTSecret
	cfg.Auth.AdminCode = AdminCode
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Server.UploadDir = t.TempDir()
	cfg.Server.RateLimit.Enabled = false
	cfg.Metering.Enabled = false
	return cfg
}

// NewDB opens, migrates and seeds the database described by cfg.
func NewDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()
	utils.InfoLogger.SetLevel(logrus.WarnLevel)

	db, err := config.InitDB(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedSeats(db, cfg.Seats.Count, true))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user directly, bypassing the API.
func CreateUser(t *testing.T, db *gorm.DB, registerID, password, role string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{RegisterID: registerID, Password: hash, Name: "Name " + registerID, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Server is a fully wired router on a fresh database.
type Server struct {
	t      *testing.T
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Tokens *utils.TokenManager
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	return NewServerWith(t, Config(t), nil)
}

func NewServerWith(t *testing.T, cfg *config.Config, live *hub.Hub) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := NewDB(t, cfg)
	engine, err := router.SetupRouter(db, cfg, live)
	require.NoError(t, err)

	tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	require.NoError(t, err)

	return &Server{t: t, Engine: engine, DB: db, Config: cfg, Tokens: tokens}
}

// Do sends body as JSON (nil for no body) with an optional bearer token.
func (s *Server) Do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	s.t.Helper()

	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequest(method, path, nil)
	} else {
		payload, mErr := json.Marshal(body)
		require.NoError(s.t, mErr)
		req, err = http.NewRequest(method, path, bytes.NewBuffer(payload))
		req.Header.Set("Content-Type", "application/json")
	}
	require.NoError(s.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

// Serve runs a prepared request.
func (s *Server) Serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

// Token signs a token for user without going through login.
func (s *Server) Token(user *models.User) string {
	s.t.Helper()
	token, err := s.Tokens.GenerateToken(user.ID, user.RegisterID, user.Name, user.Role)
	require.NoError(s.t, err)
	return token
}

// User creates a user and returns it with a valid token.
func (s *Server) User(registerID, role string) (*models.User, string) {
	s.t.Helper()
	user := CreateUser(s.t, s.DB, registerID, "secret", role)
	return user, s.Token(user)
}

// Envelope is the standard response body.
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func Decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// DecodeData unmarshals the envelope's data into out.
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Envelope {
	t.Helper()
	env := Decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	return env
}

func dbName(t *testing.T) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, t.Name())
	return name + "_" + uuid.NewString()[:8]
}
