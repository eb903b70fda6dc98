package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProvisioner struct {
	users map[int64]*models.User
	err   error
}

func (f *fakeProvisioner) EnsureUser(_ context.Context, userID int64, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	u := &models.User{ID: userID, Email: email}
	f.users[userID] = u
	return u, nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func newAuthRouter(users *fakeProvisioner) (*gin.Engine, *auth.JWTService) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "peers"})
	m := NewAuthMiddleware(jwtService, users)

	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": user.Email})
	})
	r.POST("/events", m.JWTAuth(), m.VerifiedStudentRequired(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r, jwtService
}

func TestJWTAuth(t *testing.T) {
	users := &fakeProvisioner{users: map[int64]*models.User{}}
	r, jwtService := newAuthRouter(users)

	token, err := jwtService.GenerateToken(7, "ada@uni.edu", time.Hour)
	require.NoError(t, err)

	t.Run("header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":7,"email":"ada@uni.edu"}`, w.Body.String())
		assert.Contains(t, users.users, int64(7))
	})

	t.Run("query parameter", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)
	})

	t.Run("garbage", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := jwtService.GenerateToken(7, "ada@uni.edu", -time.Minute)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Error.Code)
	})
}

func TestJWTAuthProvisioningFailure(t *testing.T) {
	users := &fakeProvisioner{users: map[int64]*models.User{}, err: errors.New("db down")}
	r, jwtService := newAuthRouter(users)
	token, err := jwtService.GenerateToken(7, "ada@uni.edu", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestVerifiedStudentRequired(t *testing.T) {
	users := &fakeProvisioner{users: map[int64]*models.User{
		1: {ID: 1, Email: "a@uni.edu"},
		2: {ID: 2, Email: "b@uni.edu", IsVerifiedStudent: true},
	}}
	r, jwtService := newAuthRouter(users)

	for id, want := range map[int64]int{1: http.StatusForbidden, 2: http.StatusCreated} {
		token, err := jwtService.GenerateToken(id, users.users[id].Email, time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "user %d", id)
	}
}

func TestHandleAPIError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.NewResourceNotFoundError("event 3 not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.NewValidationError("bad"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.NewConflictError("taken"), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.NewUpstreamError(errors.New("smtp"), "failed to send"), http.StatusBadGateway, dto.ErrorCodeExternalServiceError},
		{auth.ErrExpiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleAPIError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		resp := decodeError(t, w)
		assert.Equal(t, tc.code, resp.Error.Code)
		assert.False(t, resp.Success)
	}
}

func TestHandleAPIErrorCarriesMessageAndField(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/events", nil)

	HandleAPIError(c, apperrors.NewValidationError("duration must be a positive number of minutes").
		WithDetails(map[string]interface{}{"field": "duration"}))

	resp := decodeError(t, w)
	assert.Equal(t, "duration must be a positive number of minutes", resp.Error.Message)
	assert.Equal(t, "duration", resp.Error.Field)
}

func TestHandleBindError(t *testing.T) {
	type body struct {
		Title string `json:"title" binding:"required"`
	}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			HandleBindError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title", decodeError(t, w).Error.Field)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://peers.app"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://peers.app")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://peers.app", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "/missing", line["path"])
	assert.EqualValues(t, 404, line["status"])
}
