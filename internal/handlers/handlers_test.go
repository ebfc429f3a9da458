package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"scrumboard-api/internal/auth"
	"scrumboard-api/internal/config"
	"scrumboard-api/internal/database"
	"scrumboard-api/internal/models"
	"scrumboard-api/internal/routes"
	"scrumboard-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testInviteCode = "let-me-in"

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	cfg := config.Defaults()
	cfg.Auth.AdminInviteCode = testInviteCode
	return routes.SetupRoutes(cfg)
}

func seedActiveUser(t *testing.T, username, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	u := models.User{
		ID:       "user-" + username,
		Username: username,
		Password: string(hash),
		Role:     role,
		Status:   models.StatusActive,
	}
	require.NoError(t, database.DB.Create(&u).Error)
	return &u
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(u.ID, u.Username)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func seedBoardGroup(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/groups", token, gin.H{
		"name":  "Sprint 1",
		"color": "#579bfc",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}
