package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletledger/internal/models"
	"walletledger/internal/services"
	"walletledger/internal/store"
)

func TestCreateUser(t *testing.T) {
	var gotEmail string
	handler := newTestHandler(handlerStubs{
		users: stubUserService{
			createFn: func(_ context.Context, email string) (services.UserDetail, error) {
				gotEmail = email
				return services.UserDetail{User: models.User{ID: 1, Email: email, Status: models.UserActive}}, nil
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email":"  Alice@Example.com "}`))
	rr := doJSON(handler.CreateUser, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "alice@example.com", gotEmail)

	var body services.UserDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.ID)
}

func TestCreateUserInvalidEmail(t *testing.T) {
	handler := newTestHandler(handlerStubs{})

	for _, payload := range []string{`{"email":""}`, `{"email":"no-at-sign"}`, `{"email":"trailing@"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(payload))
		rr := doJSON(handler.CreateUser, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "payload %s", payload)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		users: stubUserService{
			createFn: func(_ context.Context, email string) (services.UserDetail, error) {
				return services.UserDetail{}, &models.UserAlreadyExistsError{Email: email}
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email":"a@b.com"}`))
	rr := doJSON(handler.CreateUser, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestListUsersStatusFilter(t *testing.T) {
	var gotFilter store.UserFilter
	handler := newTestHandler(handlerStubs{
		users: stubUserService{
			listFn: func(_ context.Context, filter store.UserFilter) ([]services.UserDetail, error) {
				gotFilter = filter
				return []services.UserDetail{}, nil
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/users?status=blocked", nil)
	rr := doJSON(handler.ListUsers, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotFilter.Status)
	assert.Equal(t, models.UserBlocked, *gotFilter.Status)
	assert.Nil(t, gotFilter.ID)
	assert.Nil(t, gotFilter.Email)
}

func TestListUsersRejectsUnknownStatus(t *testing.T) {
	handler := newTestHandler(handlerStubs{})

	req := httptest.NewRequest(http.MethodGet, "/users?status=SUSPENDED", nil)
	rr := doJSON(handler.ListUsers, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetUserNotFound(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		users: stubUserService{
			getByIDFn: func(_ context.Context, userID int64) (services.UserDetail, error) {
				return services.UserDetail{}, &models.UserNotFoundError{UserID: userID}
			},
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/users/42", nil), "id", "42")
	rr := doJSON(handler.GetUser, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetUserInvalidID(t *testing.T) {
	handler := newTestHandler(handlerStubs{})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/users/abc", nil), "id", "abc")
	rr := doJSON(handler.GetUser, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateUserStatus(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		users: stubUserService{
			updateStatusFn: func(_ context.Context, userID int64, status models.UserStatus) (models.User, error) {
				return models.User{ID: userID, Status: status}, nil
			},
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/users/7", strings.NewReader(`{"status":"BLOCKED"}`)), "id", "7")
	rr := doJSON(handler.UpdateUserStatus, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.Equal(t, models.UserBlocked, user.Status)
}

func TestUpdateUserStatusRedundantTransition(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		users: stubUserService{
			updateStatusFn: func(_ context.Context, userID int64, _ models.UserStatus) (models.User, error) {
				return models.User{}, &models.UserAlreadyBlockedError{UserID: userID}
			},
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/users/7", strings.NewReader(`{"status":"BLOCKED"}`)), "id", "7")
	rr := doJSON(handler.UpdateUserStatus, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
