package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crmdesk.com/crmdesk/core"
	"crmdesk.com/crmdesk/infrastructure/devops"
	"crmdesk.com/crmdesk/web/handlers"
	"crmdesk.com/crmdesk/web/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testJWTSecret = []byte("test-signing-secret")

// memStorage is an in-memory stand-in for the blob store.
type memStorage struct {
	objects map[string][]byte
	err     error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) Put(_ context.Context, key string, _ string, body io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = b
	return "https://files.test/" + key, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, *handlers.Endpoint) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, core.AutoMigrate(db))

	ep := &handlers.Endpoint{
		Dm:      core.NewFromDB(db),
		Storage: newMemStorage(),
		Cfg: &devops.Config{
			SeedSecret: "test-seed-secret",
			DeployedAt: time.Now(),
		},
		CustomerActor: core.SentinelResolver{},
		FollowUpActor: core.FirstUserResolver{},
	}

	r := gin.New()
	r.Use(gin.Recovery())
	api := r.Group("/api/v1")
	handlers.Register(api, ep)

	admin := r.Group("/api/v1/admin")
	admin.Use(middlewares.Authentication(testJWTSecret))
	handlers.RegisterAdmin(admin, ep)

	return r, db, ep
}

func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := middlewares.CreateJWT("admin", time.Hour, testJWTSecret)
	require.NoError(t, err)
	return token
}

func performAdmin(r *gin.Engine, t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
