package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreetAndUnknownPath(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/greet", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Hello World!"}`, w.Body.String())

	w = s.do(http.MethodGet, "/something", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"username": "Ada", "email": "ada@example.com", "password": "password123"}

	w := s.do(http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[map[string]any](t, w)
	assert.Equal(t, "ada", user["username"])
	assert.NotEmpty(t, user["id"])
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/auth/register", "", `{"username": "bob",`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/auth/register", "", gin.H{"email": "bob@example.com", "password": "password123"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Fields, "username")

	w = s.do(http.MethodPost, "/auth/register", "", gin.H{"username": "bob", "email": "nope", "password": "password123"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"email"`)
}

func TestLoginRefreshLogout(t *testing.T) {
	s := newTestServer(t)
	sess := s.signUp("ada")

	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"username": "ada", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/auth/users/me", sess.access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada", decode[map[string]any](t, w)["username"])

	// a refresh token is not an access token
	w = s.do(http.MethodGet, "/auth/users/me", sess.refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": sess.refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refreshed := decode[TokenResponse](t, w)
	assert.Equal(t, "bearer", refreshed.TokenType)
	assert.Empty(t, refreshed.RefreshToken)

	w = s.do(http.MethodGet, "/auth/users/me", refreshed.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": sess.access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/logout", sess.access, gin.H{"refresh_token": sess.refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/auth/users/me", sess.access, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": sess.refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// tokens issued separately stay valid
	w = s.do(http.MethodGet, "/auth/users/me", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout_WithoutBody(t *testing.T) {
	s := newTestServer(t)
	sess := s.signUp("ada")

	w := s.do(http.MethodPost, "/auth/logout", sess.access, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/auth/users/me", sess.access, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_ForeignRefreshToken(t *testing.T) {
	s := newTestServer(t)
	ada := s.signUp("ada")
	bob := s.signUp("bob")

	w := s.do(http.MethodPost, "/auth/logout", ada.access, gin.H{"refresh_token": bob.refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": bob.refresh})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordRecovery(t *testing.T) {
	s := newTestServer(t)
	sess := s.signUp("ada")

	w := s.do(http.MethodPost, "/securities/", sess.access, gin.H{"question": "First pet?", "answer": "Rex"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "answer")

	w = s.do(http.MethodPost, "/auth/recover/questions", "", gin.H{"username": "ada"})
	require.Equal(t, http.StatusOK, w.Code)
	questions := decode[[]RecoveryQuestion](t, w)
	require.Len(t, questions, 1)
	assert.Equal(t, "First pet?", questions[0].Question)

	w = s.do(http.MethodPost, "/auth/recover", "", gin.H{
		"username": "ada", "question_id": questions[0].ID, "answer": "Fido", "new_password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/recover", "", gin.H{
		"username": "ada", "question_id": questions[0].ID, "answer": " rex ", "new_password": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// tokens issued under the old password stop working
	w = s.do(http.MethodGet, "/auth/users/me", sess.access, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token no longer valid", decode[errorBody](t, w).Error)
	w = s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": sess.refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodGet, "/contacts", sess.access, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"username": "ada", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"username": "ada", "password": "brand-new-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decode[TokenResponse](t, w)

	w = s.do(http.MethodGet, "/auth/users/me", fresh.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": fresh.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/auth/users/me", decode[TokenResponse](t, w).AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityQAs(t *testing.T) {
	s := newTestServer(t)
	ada := s.signUp("ada")
	bob := s.signUp("bob")

	w := s.do(http.MethodPost, "/securities", ada.access, gin.H{"question": "Pet?", "answer": "Rex"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]any](t, w)["id"].(string)

	w = s.do(http.MethodGet, "/securities", bob.access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodDelete, "/securities/"+id, bob.access, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/securities/"+id, ada.access, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/securities", ada.access, gin.H{"question": "Pet?"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
