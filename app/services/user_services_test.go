package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
)

func TestSignupDuplicateIsDuplicateError(t *testing.T) {
	f := newFixture(t)
	f.buyer(t, "alice")

	_, err := f.users.SignupBuyer(f.ctx, services.BuyerSignup{ID: "alice", PW: "other", Name: "A", Gender: "female"})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	_, err = f.users.SignupSeller(f.ctx, services.SellerSignup{ID: "alice", PW: "other"})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	available, err := f.users.IDAvailable(f.ctx, "alice")
	require.NoError(t, err)
	assert.False(t, available)
	available, err = f.users.IDAvailable(f.ctx, "bob")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestSignupStoresHashNotPassword(t *testing.T) {
	f := newFixture(t)
	u := f.buyer(t, "alice")

	stored, err := f.userRepo.FindByID(f.ctx, u.Hex())
	require.NoError(t, err)
	assert.NotEqual(t, "pw1234", stored.Password)
	assert.Equal(t, auth.ScopeBuyer, stored.Scope)
	assert.Empty(t, stored.RToken)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	u := f.buyer(t, "alice")

	got, err := f.auth.Authenticate(f.ctx, "alice", "pw1234")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.auth.Authenticate(f.ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = f.auth.Authenticate(f.ctx, "nobody", "pw1234")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.auth.AuthenticateByID(f.ctx, u.Hex(), "pw1234")
	assert.NoError(t, err)
	_, err = f.auth.AuthenticateByID(f.ctx, "not-an-id", "pw1234")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLoginIssuesAndStoresRefreshToken(t *testing.T) {
	f := newFixture(t)
	u := f.buyer(t, "alice")

	sess, err := f.users.Login(f.ctx, auth.ScopeBuyer, services.Credentials{Username: "alice", Password: "pw1234"})
	require.NoError(t, err)
	assert.Equal(t, u.Hex(), sess.UserID)
	assert.Equal(t, "bearer", sess.TokenType)
	assert.Nil(t, sess.StoreID)

	access, err := f.tokens.VerifyAccessToken(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.ScopeBuyer, access.Scope)

	stored, err := f.userRepo.FindByID(f.ctx, u.Hex())
	require.NoError(t, err)
	assert.Equal(t, sess.RefreshToken, stored.RToken)
}

func TestLoginWrongScope(t *testing.T) {
	f := newFixture(t)
	f.buyer(t, "alice")

	_, err := f.users.Login(f.ctx, auth.ScopeSeller, services.Credentials{Username: "alice", Password: "pw1234"})
	assert.ErrorIs(t, err, apperr.ErrScope)
}

func TestSellerLoginCarriesStoreID(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.SignupSeller(f.ctx, services.SellerSignup{ID: "shop", PW: "pw1234"})
	require.NoError(t, err)

	sess, err := f.users.Login(f.ctx, auth.ScopeSeller, services.Credentials{Username: "shop", Password: "pw1234"})
	require.NoError(t, err)
	require.NotNil(t, sess.StoreID)
	assert.Empty(t, *sess.StoreID)
}

func login(t *testing.T, f *fixture, id string) (*services.Session, *auth.RefreshClaims) {
	t.Helper()
	sess, err := f.users.Login(f.ctx, auth.ScopeBuyer, services.Credentials{Username: id, Password: "pw1234"})
	require.NoError(t, err)
	claims, err := f.tokens.VerifyRefreshToken(sess.RefreshToken)
	require.NoError(t, err)
	return sess, claims
}

func TestRefreshRotationRevokesOldToken(t *testing.T) {
	f := newFixture(t)
	u := f.buyer(t, "alice")
	sess, claims := login(t, f, "alice")

	rotated, err := f.users.IssueRefresh(f.ctx, u.Hex(), claims, sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.RefreshToken, rotated)

	_, err = f.users.IssueAccess(f.ctx, u.Hex(), claims, sess.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrRevokedToken)

	newClaims, err := f.tokens.VerifyRefreshToken(rotated)
	require.NoError(t, err)
	access, err := f.users.IssueAccess(f.ctx, u.Hex(), newClaims, rotated)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
}

func TestIssueChecksOwnershipAndScope(t *testing.T) {
	f := newFixture(t)
	alice := f.buyer(t, "alice")
	bob := f.buyer(t, "bob")
	sess, claims := login(t, f, "alice")

	_, err := f.users.IssueAccess(f.ctx, bob.Hex(), claims, sess.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrRevokedToken)

	_, err = f.users.IssueAccess(f.ctx, "zzz", claims, sess.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	forged, err := f.tokens.IssueRefreshToken(alice.Hex(), auth.ScopeSeller)
	require.NoError(t, err)
	forgedClaims, err := f.tokens.VerifyRefreshToken(forged)
	require.NoError(t, err)
	_, err = f.users.IssueAccess(f.ctx, alice.Hex(), forgedClaims, forged)
	assert.ErrorIs(t, err, apperr.ErrScope)
}

func TestLogoutClearsSlot(t *testing.T) {
	f := newFixture(t)
	u := f.buyer(t, "alice")
	sess, claims := login(t, f, "alice")

	require.NoError(t, f.users.Logout(f.ctx, u.Hex(), claims, sess.RefreshToken))

	_, err := f.users.IssueAccess(f.ctx, u.Hex(), claims, sess.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrRevokedToken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	u := f.buyer(t, "alice")

	err := f.users.ChangePassword(f.ctx, u.Hex(), services.PasswordChange{OldPW: "nope", NewPW: "next-pw"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	require.NoError(t, f.users.ChangePassword(f.ctx, u.Hex(), services.PasswordChange{OldPW: "pw1234", NewPW: "next-pw"}))
	_, err = f.auth.Authenticate(f.ctx, "alice", "next-pw")
	assert.NoError(t, err)
}

func TestChangeBuyerInfoRequiresMatchingScope(t *testing.T) {
	f := newFixture(t)
	u := f.buyer(t, "alice")

	_, err := f.users.ChangeBuyerInfo(f.ctx, u.Hex(), auth.ScopeSeller, services.BuyerInfo{Name: "Al", Gender: "male", Age: 31})
	assert.ErrorIs(t, err, apperr.ErrScope)

	got, err := f.users.ChangeBuyerInfo(f.ctx, u.Hex(), auth.ScopeBuyer, services.BuyerInfo{Name: "Al", Gender: "male", Age: 31})
	require.NoError(t, err)
	assert.Equal(t, "Al", got.Name)

	stored, err := f.userRepo.FindByID(f.ctx, u.Hex())
	require.NoError(t, err)
	assert.Equal(t, 31, stored.Age)
}

func TestChangeSellerStore(t *testing.T) {
	f := newFixture(t)
	seller, err := f.users.SignupSeller(f.ctx, services.SellerSignup{ID: "shop", PW: "pw1234"})
	require.NoError(t, err)

	_, err = f.users.ChangeSellerStore(f.ctx, seller.Hex(), auth.ScopeSeller, services.SellerStore{StoreID: "64b0c0ffee0000000000cafe"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	store := f.store(t, "Noodle Bar")
	got, err := f.users.ChangeSellerStore(f.ctx, seller.Hex(), auth.ScopeSeller, services.SellerStore{StoreID: store.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, store.ID.Hex(), got.StoreID)
}
