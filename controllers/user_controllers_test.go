package controllers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/testutil"
)

func TestProfileEndpoint(t *testing.T) {
	s := testutil.NewServer(t)
	user, token := s.User("u1", models.RoleUser)
	require.NoError(t, s.DB.Model(user).Update("remaining_time", 3600).Error)

	var profile services.Profile
	w := s.Do(http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeData(t, w, &profile)
	assert.Equal(t, "u1", profile.RegisterID)
	assert.Equal(t, models.RoleUser, profile.Role)
	assert.Equal(t, int64(3600), profile.RemainingTime)
	assert.Nil(t, profile.SeatNumber)
	assert.NotContains(t, w.Body.String(), "password")

	require.NoError(t, s.DB.Delete(user).Error)
	w = s.Do(http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserListEndpoint(t *testing.T) {
	s := testutil.NewServer(t)
	_, userToken := s.User("u1", models.RoleUser)
	_, adminToken := s.User("boss", models.RoleAdmin)

	w := s.Do(http.MethodGet, "/api/users", nil, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var users []models.User
	w = s.Do(http.MethodGet, "/api/users", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeData(t, w, &users)
	assert.Len(t, users, 2)
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestPasswordEndpoints(t *testing.T) {
	s := testutil.NewServer(t)
	user, token := s.User("u1", models.RoleUser)
	_, adminToken := s.User("boss", models.RoleAdmin)

	login := func(password string) int {
		return s.Do(http.MethodPost, "/api/auth/login", map[string]interface{}{"registerid": "u1", "password": password}, "").Code
	}

	w := s.Do(http.MethodPost, "/api/users/change-password", map[string]interface{}{
		"currentPassword": "wrong", "newPassword": "n3w",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.Do(http.MethodPost, "/api/users/change-password", map[string]interface{}{
		"currentPassword": "secret", "newPassword": "n3w",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, login("n3w"))
	assert.Equal(t, http.StatusUnauthorized, login("secret"))

	resetPath := "/api/users/" + strconv.Itoa(int(user.ID)) + "/reset-password"
	w = s.Do(http.MethodPost, resetPath, nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.Do(http.MethodPost, "/api/users/9999/reset-password", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.Do(http.MethodPost, resetPath, nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, login(s.Config.Auth.DefaultResetPassword))
}
