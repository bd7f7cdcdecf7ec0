package service

import (
	"context"
	"strings"
	"testing"

	"tasleem/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, token, err := f.auth.Register(ctx, &RegisterRequest{Phone: "07720000001", Password: "secret1", StoreName: "متجر النور"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleMerchant, user.Role)
	assert.True(t, strings.HasPrefix(user.MerchantCode, "TSL-"))
	assert.Equal(t, int64(0), user.Balance)
	assert.Equal(t, int64(0), user.PendingBalance)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	current, err := f.auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	_, _, err = f.auth.Login(ctx, &LoginRequest{Phone: "07720000001", Password: "wrong"})
	requireKind(t, err, KindAuthentication)

	_, _, err = f.auth.Login(ctx, &LoginRequest{Phone: "07729999999", Password: "secret1"})
	requireKind(t, err, KindAuthentication)

	_, token, err = f.auth.Login(ctx, &LoginRequest{Phone: "07720000001", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, token))
	_, err = f.auth.Authenticate(ctx, token)
	requireKind(t, err, KindAuthentication)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.merchant(t, "07720000002")

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing phone", RegisterRequest{Password: "secret1", StoreName: "x"}},
		{"missing store", RegisterRequest{Phone: "07720000003", Password: "secret1"}},
		{"short password", RegisterRequest{Phone: "07720000003", Password: "12345", StoreName: "x"}},
		{"taken phone", RegisterRequest{Phone: "07720000002", Password: "secret1", StoreName: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.auth.Register(ctx, &tt.req)
			requireKind(t, err, KindValidation)
		})
	}
}

func TestAuthenticateUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Authenticate(context.Background(), "")
	requireKind(t, err, KindAuthentication)

	_, err = f.auth.Authenticate(context.Background(), "not-a-session")
	requireKind(t, err, KindAuthentication)
}

func TestUpdateProfileLeavesLedgerAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := deliveredMerchant(t, f, "07720000004", 700)
	other := f.merchant(t, "07720000005")

	name := "متجر جديد"
	updated, err := f.auth.UpdateProfile(ctx, m, &ProfileRequest{StoreName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.StoreName)
	assert.Equal(t, m.Phone, updated.Phone)
	assert.Equal(t, int64(700), updated.Balance)

	_, err = f.auth.UpdateProfile(ctx, m, &ProfileRequest{Phone: &other.Phone})
	requireKind(t, err, KindValidation)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.auth.EnsureAdmin(ctx, "07800000000", "adminpass"))
	require.NoError(t, f.auth.EnsureAdmin(ctx, "07800000000", "adminpass"))

	users, err := f.auth.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdmin())

	_, _, err = f.auth.Login(ctx, &LoginRequest{Phone: "07800000000", Password: "adminpass"})
	require.NoError(t, err)

	require.NoError(t, f.auth.EnsureAdmin(ctx, "", ""))
}
