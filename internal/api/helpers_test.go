package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contact_system/internal/config"
	"contact_system/internal/db"
	"contact_system/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUploadLimit = 4096

func init() {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	conn   *gorm.DB
	redis  *miniredis.Miniredis
	rdb    *redis.Client
}

type session struct {
	userID  uuid.UUID
	access  string
	refresh string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(conn))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		CacheTTL:        time.Minute,
		UploadMaxBytes:  testUploadLimit,
	}
	r := gin.New()
	RegisterRoutes(r, Deps{DB: conn, Redis: rdb, Config: cfg})
	return &testServer{t: t, router: r, conn: conn, redis: mr, rdb: rdb}
}

// generation reads the owner's contact cache generation from Redis.
func (s *testServer) generation(owner uuid.UUID) int64 {
	s.t.Helper()
	gen, err := utils.GetGeneration(context.Background(), s.rdb, utils.ContactsGenerationKey(owner))
	require.NoError(s.t, err)
	return gen
}

// do sends body as JSON unless it is already a string.
func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(token, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(s.t, err)
		_, err = fw.Write(content)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/contacts/upload-vcf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp registers username and logs in.
func (s *testServer) signUp(username string) session {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[map[string]any](s.t, w)

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": "password123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	tokens := decode[TokenResponse](s.t, w)
	return session{
		userID:  uuid.MustParse(user["id"].(string)),
		access:  tokens.AccessToken,
		refresh: tokens.RefreshToken,
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func vcf(names ...string) []byte {
	var buf bytes.Buffer
	for i, name := range names {
		fmt.Fprintf(&buf, "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:%s\r\nTEL;TYPE=CELL:555-01%02d\r\nEND:VCARD\r\n", name, i)
	}
	return buf.Bytes()
}
