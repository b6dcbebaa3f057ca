package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

type authFixture struct {
	users    *stubUserRepo
	roles    *stubRoleRepo
	keys     *stubAPIKeyRepo
	hasher   *plainHasher
	codec    *memCodec
	throttle *clockThrottle
	auth     *AuthService
	identity *IdentityService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    newStubUserRepo(),
		roles:    newStubRoleRepo(),
		keys:     newStubAPIKeyRepo(),
		hasher:   &plainHasher{},
		codec:    newMemCodec(),
		throttle: newClockThrottle(5 * time.Second),
	}
	f.auth = NewAuthService(f.users, f.roles, f.hasher, f.codec, f.throttle, zerolog.Nop())
	f.identity = NewIdentityService(f.users, f.roles, f.keys, f.codec, f.hasher, zerolog.Nop())
	return f
}

func (f *authFixture) register(t *testing.T, email, password string) *domain.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), ports.RegisterInput{Name: "Test", Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register(%s) returned error: %v", email, err)
	}
	return u
}

func (f *authFixture) setRole(t *testing.T, userID string, role domain.RoleName) {
	t.Helper()
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	f.users.users[userID].RoleID = string(role)
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user := f.register(t, "Alice@Example.com ", "pass123")
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if user.RoleID != string(domain.RoleUser) {
		t.Fatalf("expected default role USER, got %s", user.RoleID)
	}
	if user.TokenVersion != domain.InitialTokenVersion {
		t.Fatalf("expected token version %d, got %d", domain.InitialTokenVersion, user.TokenVersion)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice@example.com", "pass123")

	_, err := f.auth.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "alice@example.com", Password: "x"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_MissingDefaultRole(t *testing.T) {
	f := newAuthFixture()
	delete(f.roles.roles, string(domain.RoleUser))

	_, err := f.auth.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@example.com", Password: "x"})
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "alice@example.com", "pass123")

	res, err := f.auth.Login(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}
	if res.ExpiresIn != 3600 {
		t.Fatalf("expected expires_in 3600, got %d", res.ExpiresIn)
	}
	claims, err := f.codec.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != user.ID || claims.TokenVersion != 1 || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_WrongPasswordAndUnknownEmailMatch(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice@example.com", "pass123")

	_, errWrong := f.auth.Login(context.Background(), "alice@example.com", "nope")
	_, errUnknown := f.auth.Login(context.Background(), "ghost@example.com", "nope")

	if !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", errWrong)
	}
	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", errWrong, errUnknown)
	}
}

func TestAuthService_Login_UnknownEmailStillComparesHash(t *testing.T) {
	f := newAuthFixture()

	before := f.hasher.calls
	_, _ = f.auth.Login(context.Background(), "ghost@example.com", "nope")
	if f.hasher.calls != before+1 {
		t.Fatalf("expected one hash comparison for unknown email, got %d", f.hasher.calls-before)
	}
}

func TestAuthService_Login_Banned(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "bob@example.com", "pass123")
	f.setRole(t, user.ID, domain.RoleBan)

	_, err := f.auth.Login(context.Background(), "bob@example.com", "pass123")
	if !errors.Is(err, domain.ErrLoginNotPermitted) {
		t.Fatalf("expected ErrLoginNotPermitted, got %v", err)
	}
}

func TestAuthService_Login_Cooldown(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice@example.com", "pass123")
	ctx := context.Background()

	if _, err := f.auth.Login(ctx, "alice@example.com", "pass123"); err != nil {
		t.Fatalf("first login: %v", err)
	}

	f.throttle.advance(2 * time.Second)
	_, err := f.auth.Login(ctx, "alice@example.com", "pass123")
	var rl *domain.RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected errors.Is ErrRateLimited")
	}
	if got := rl.RetryAfterSeconds(); got != 3 {
		t.Fatalf("expected retry after 3s, got %d", got)
	}

	// A different email is not affected.
	if _, err := f.auth.Login(ctx, "other@example.com", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for other email, got %v", err)
	}

	f.throttle.advance(3 * time.Second)
	if _, err := f.auth.Login(ctx, "alice@example.com", "pass123"); err != nil {
		t.Fatalf("login after cooldown: %v", err)
	}
}

func TestAuthService_Login_CooldownAppliesToFailures(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice@example.com", "pass123")
	ctx := context.Background()

	if _, err := f.auth.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.auth.Login(ctx, "ALICE@example.com", "pass123"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on immediate retry, got %v", err)
	}
}

func TestAuthService_Login_ThrottleError(t *testing.T) {
	f := newAuthFixture()
	f.throttle.err = errors.New("redis down")

	_, err := f.auth.Login(context.Background(), "alice@example.com", "pass123")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestAuthService_ChangePassword_RevokesTokens(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "old-pass")

	res, err := f.auth.Login(ctx, "alice@example.com", "old-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.identity.ResolveBearer(ctx, bearer(res.Token)); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	if err := f.auth.ChangePassword(ctx, user.ID, "old-pass", "new-pass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	stored, _ := f.users.FindByID(ctx, user.ID)
	if stored.TokenVersion != 2 {
		t.Fatalf("expected token version 2, got %d", stored.TokenVersion)
	}

	if _, err := f.identity.ResolveBearer(ctx, bearer(res.Token)); !errors.Is(err, domain.ErrStaleToken) {
		t.Fatalf("expected ErrStaleToken for old token, got %v", err)
	}

	f.throttle.advance(5 * time.Second)
	if _, err := f.auth.Login(ctx, "alice@example.com", "old-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must fail, got %v", err)
	}
	f.throttle.advance(5 * time.Second)
	res2, err := f.auth.Login(ctx, "alice@example.com", "new-pass")
	if err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	p, err := f.identity.ResolveBearer(ctx, bearer(res2.Token))
	if err != nil {
		t.Fatalf("new token rejected: %v", err)
	}
	if p.ID != user.ID {
		t.Fatalf("unexpected principal %s", p.ID)
	}
}

func TestAuthService_ChangePassword_WrongOld(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "alice@example.com", "old-pass")

	err := f.auth.ChangePassword(context.Background(), user.ID, "nope", "new-pass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	stored, _ := f.users.FindByID(context.Background(), user.ID)
	if stored.TokenVersion != 1 {
		t.Fatalf("token version must not change, got %d", stored.TokenVersion)
	}
}
