package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

type resetFixture struct {
	users    *MockUserRepository
	creds    *MockCredentialsRepository
	resets   *MockResetTokenRepository
	tokens   *MockRefreshTokenRepository
	mailer   *MockMailer
	flow     *auth.PasswordResetFlow
	sessions *auth.RefreshTokenStore
}

func newResetFixture(t *testing.T, withMailer bool) *resetFixture {
	t.Helper()

	f := &resetFixture{
		users:  new(MockUserRepository),
		creds:  new(MockCredentialsRepository),
		resets: new(MockResetTokenRepository),
		tokens: new(MockRefreshTokenRepository),
		mailer: new(MockMailer),
	}
	f.sessions = auth.NewRefreshTokenStore(f.tokens, f.users, new(MockRoleRepository), newTestIssuer(t))

	var mailer auth.Mailer
	if withMailer {
		mailer = f.mailer
	}
	f.flow = auth.NewPasswordResetFlow(f.users, f.creds, f.resets, f.sessions, mailer,
		auth.WithResetBcryptCost(bcrypt.MinCost))

	return f
}

func TestPasswordResetRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("known email gets a token", func(t *testing.T) {
		t.Parallel()

		f := newResetFixture(t, true)
		user := &auth.User{ID: uuid.New(), Email: "user@example.com", Active: true}
		f.users.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil)

		var stored *auth.PasswordResetToken
		f.resets.On("CreateToken", ctx, mock.AnythingOfType("*auth.PasswordResetToken")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*auth.PasswordResetToken)
			}).
			Return(nil)

		var mailed string
		f.mailer.On("SendPasswordResetEmail", ctx, "user@example.com", mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) {
				mailed = args.Get(2).(string)
			}).
			Return(nil)

		require.NoError(t, f.flow.Request(ctx, "User@Example.com"))

		require.NotNil(t, stored)
		require.Len(t, mailed, 64)
		// The mail carries the plaintext; only the digest is persisted.
		assert.Equal(t, auth.HashToken(mailed), stored.TokenHash)
		assert.Equal(t, user.ID, stored.UserID)
		assert.Nil(t, stored.UsedAt)
		assert.WithinDuration(t, time.Now().Add(auth.ResetTokenTTL), stored.ExpiresAt, 5*time.Second)
	})

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		t.Parallel()

		f := newResetFixture(t, true)
		f.users.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, auth.ErrUserNotFound)

		require.NoError(t, f.flow.Request(ctx, "ghost@example.com"))
		f.resets.AssertNotCalled(t, "CreateToken", mock.Anything, mock.Anything)
		f.mailer.AssertNotCalled(t, "SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no mailer configured", func(t *testing.T) {
		t.Parallel()

		f := newResetFixture(t, false)

		err := f.flow.Request(ctx, "user@example.com")
		assert.ErrorIs(t, err, auth.ErrMailerNotConfigured)
	})
}

func TestPasswordResetRedeem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	presented := "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
	presentedHash := auth.HashToken(presented)

	t.Run("successful redemption revokes every session", func(t *testing.T) {
		t.Parallel()

		f := newResetFixture(t, true)
		userID := uuid.New()
		row := &auth.PasswordResetToken{
			TokenHash: presentedHash,
			UserID:    userID,
			ExpiresAt: time.Now().Add(30 * time.Minute),
			CreatedAt: time.Now().Add(-30 * time.Minute),
		}
		f.resets.On("GetActiveToken", ctx, presentedHash, mock.AnythingOfType("time.Time")).Return(row, nil)

		var storedHash []byte
		f.creds.On("StorePasswordHash", ctx, userID, mock.AnythingOfType("[]uint8")).
			Run(func(args mock.Arguments) {
				storedHash = args.Get(2).([]byte)
			}).
			Return(nil)
		f.resets.On("MarkTokenUsed", ctx, presentedHash, mock.AnythingOfType("time.Time")).Return(nil)
		f.tokens.On("DeleteUserTokens", ctx, userID).Return(nil)

		require.NoError(t, f.flow.Redeem(ctx, presented, "brand-new-Passw0rd"))

		require.NotEmpty(t, storedHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword(storedHash, []byte("brand-new-Passw0rd")))
		f.resets.AssertCalled(t, "MarkTokenUsed", ctx, presentedHash, mock.AnythingOfType("time.Time"))
		f.tokens.AssertCalled(t, "DeleteUserTokens", ctx, userID)
	})

	t.Run("losing a concurrent redemption leaves the password untouched", func(t *testing.T) {
		t.Parallel()

		f := newResetFixture(t, true)
		row := &auth.PasswordResetToken{
			TokenHash: presentedHash,
			UserID:    uuid.New(),
			ExpiresAt: time.Now().Add(30 * time.Minute),
			CreatedAt: time.Now().Add(-30 * time.Minute),
		}
		f.resets.On("GetActiveToken", ctx, presentedHash, mock.AnythingOfType("time.Time")).Return(row, nil)
		// Another redemption claimed the token between lookup and mark-used.
		f.resets.On("MarkTokenUsed", ctx, presentedHash, mock.AnythingOfType("time.Time")).
			Return(auth.ErrTokenNotFound)

		err := f.flow.Redeem(ctx, presented, "brand-new-Passw0rd")
		assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)
		f.creds.AssertNotCalled(t, "StorePasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown or consumed token", func(t *testing.T) {
		t.Parallel()

		f := newResetFixture(t, true)
		f.resets.On("GetActiveToken", ctx, presentedHash, mock.AnythingOfType("time.Time")).
			Return(nil, auth.ErrTokenNotFound)

		err := f.flow.Redeem(ctx, presented, "brand-new-Passw0rd")
		assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)
		f.creds.AssertNotCalled(t, "StorePasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("weak password rejected before lookup", func(t *testing.T) {
		t.Parallel()

		f := newResetFixture(t, true)

		err := f.flow.Redeem(ctx, presented, "short")
		require.Error(t, err)
		f.resets.AssertNotCalled(t, "GetActiveToken", mock.Anything, mock.Anything, mock.Anything)
	})
}
