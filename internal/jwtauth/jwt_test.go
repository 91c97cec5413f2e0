package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
)

var (
	service = New("test-signing-key")
	userID  = id.NewUserID()
)

func Test_IssueAndValidate(t *testing.T) {
	token, err := service.Issue(userID, id.RoleAdmin, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, id.RoleAdmin, claims.Role)
}

func Test_Validate_InvalidToken(t *testing.T) {
	_, err := service.Validate("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_ExpiredToken(t *testing.T) {
	token, err := service.Issue(userID, id.RoleUser, -time.Hour)
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func Test_Validate_WrongKey(t *testing.T) {
	other := New("a-different-key")
	token, err := other.Issue(userID, id.RoleUser, time.Hour)
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_UnknownRole(t *testing.T) {
	token, err := service.Issue(userID, id.Role("superuser"), time.Hour)
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
