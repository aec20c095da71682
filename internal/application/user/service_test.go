package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/notification/notificationtest"
	"github.com/xiebiao/restbookstore/internal/domain/user"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/jwt"
	"github.com/xiebiao/restbookstore/pkg/logger"
)

type fakeRepo struct {
	mu   sync.Mutex
	data map[string]user.User
}

func newFakeRepo() *fakeRepo { return &fakeRepo{data: map[string]user.User{}} }

func (r *fakeRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.Username == u.Username {
			return user.ErrUsernameDuplicate
		}
		if existing.Email == u.Email {
			return user.ErrEmailDuplicate
		}
	}
	r.data[u.ID] = *u
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeRepo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.Username == username && !u.IsDeleted {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[u.ID] = *u
	return nil
}

func (r *fakeRepo) List(context.Context, user.ListParams) ([]*user.User, int64, error) {
	return nil, 0, nil
}

type fakeSessions struct {
	saved       map[string]map[string]interface{}
	blacklisted map[string]time.Duration
	saveErr     error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{saved: map[string]map[string]interface{}{}, blacklisted: map[string]time.Duration{}}
}

func (f *fakeSessions) SaveSession(_ context.Context, userID string, data map[string]interface{}, _ time.Duration) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[userID] = data
	return nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, userID string) error {
	delete(f.saved, userID)
	return nil
}

func (f *fakeSessions) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	f.blacklisted[token] = ttl
	return nil
}

func sampleCommand() Command {
	return Command{
		Name:     "Ana",
		Surname:  "García",
		Username: "ana",
		Email:    "ana@example.com",
		Password: "secret123",
	}
}

func newUserService(orders common.DependentCounter[string]) (*Service, *fakeRepo, *notificationtest.Recorder) {
	repo := newFakeRepo()
	rec := &notificationtest.Recorder{}
	orderIDs := func(context.Context, string) ([]string, error) { return []string{"65a1b2c3d4e5f60718293a4b"}, nil }
	svc := NewService(repo, user.NewPasswordService(bcrypt.MinCost), orderIDs, orders, common.Deps{Notifier: rec, Log: logger.Discard()})
	return svc, repo, rec
}

func TestUserService_CreateHashesPasswordAndDefaultsRole(t *testing.T) {
	svc, repo, rec := newUserService(nil)

	resp, err := svc.Create(context.Background(), sampleCommand())
	require.NoError(t, err)
	assert.Equal(t, []string{"USER"}, resp.Roles)

	stored := repo.data[resp.ID]
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))

	n := rec.Last().(notification.Notification[*Response])
	assert.Equal(t, notification.Users, n.Entity)
	assert.Equal(t, notification.Create, n.Type)
}

func TestUserService_CreateValidation(t *testing.T) {
	svc, _, rec := newUserService(nil)
	ctx := context.Background()

	cmd := sampleCommand()
	cmd.Roles = []string{"ROOT"}
	_, err := svc.Create(ctx, cmd)
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	cmd = sampleCommand()
	cmd.Email = "not-an-email"
	_, err = svc.Create(ctx, cmd)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)

	cmd = sampleCommand()
	cmd.Password = "short"
	_, err = svc.Create(ctx, cmd)
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	_, err = svc.Create(ctx, sampleCommand())
	require.NoError(t, err)
	_, err = svc.Create(ctx, sampleCommand())
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.Len(t, rec.All(), 1)
}

func TestUserService_PatchRolesAndPassword(t *testing.T) {
	svc, repo, rec := newUserService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleCommand())
	require.NoError(t, err)
	before := repo.data[created.ID].Password

	password := "another456"
	resp, err := svc.Patch(ctx, created.ID, PatchCommand{Roles: []string{"ADMIN", "USER", "ADMIN"}, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN", "USER"}, resp.Roles)
	assert.Equal(t, "ana", resp.Username)
	assert.NotEqual(t, before, repo.data[created.ID].Password)

	assert.Equal(t, []notification.Type{notification.Create, notification.Update}, rec.Kinds())
}

func TestUserService_DeleteAndMe(t *testing.T) {
	orders := int64(1)
	svc, repo, rec := newUserService(func(context.Context, string) (int64, error) { return orders, nil })
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleCommand())
	require.NoError(t, err)

	me, err := svc.Me(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"65a1b2c3d4e5f60718293a4b"}, me.OrderIDs)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), user.ErrHasActiveOrders)
	orders = 0
	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.True(t, repo.data[created.ID].IsDeleted)

	_, err = svc.Me(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = svc.Update(ctx, created.ID, sampleCommand())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Equal(t, []notification.Type{notification.Create, notification.Delete}, rec.Kinds())
}

func newAuthService(sessions *fakeSessions) (*AuthService, *fakeRepo, *jwt.Manager, *notificationtest.Recorder) {
	repo := newFakeRepo()
	rec := &notificationtest.Recorder{}
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	svc := NewAuthService(repo, user.NewPasswordService(bcrypt.MinCost), manager, sessions, 24*time.Hour,
		common.Deps{Notifier: rec, Log: logger.Discard()})
	return svc, repo, manager, rec
}

func signupRequest() SignupRequest {
	return SignupRequest{
		Name:           "Ana",
		Username:       "ana",
		Email:          "ana@example.com",
		Password:       "secret123",
		RepeatPassword: "secret123",
	}
}

func TestAuthService_SignupSigninSignout(t *testing.T) {
	sessions := newFakeSessions()
	svc, _, manager, rec := newAuthService(sessions)
	ctx := context.Background()

	created, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"USER"}, created.Roles)
	assert.Equal(t, []notification.Type{notification.Create}, rec.Kinds())

	resp, err := svc.Signin(ctx, SigninRequest{Username: "ana", Password: "secret123", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "10.0.0.1", sessions.saved[created.ID]["ip"])

	claims, err := manager.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.True(t, claims.HasRole("USER"))

	require.NoError(t, svc.Signout(ctx, claims, resp.AccessToken))
	assert.NotContains(t, sessions.saved, created.ID)
	assert.Greater(t, sessions.blacklisted[resp.AccessToken], 59*time.Minute)
}

func TestAuthService_SignupErrors(t *testing.T) {
	svc, _, _, rec := newAuthService(newFakeSessions())
	ctx := context.Background()

	req := signupRequest()
	req.RepeatPassword = "different1"
	_, err := svc.Signup(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrPasswordMismatch)

	req = signupRequest()
	req.Password, req.RepeatPassword = "password", "password"
	_, err = svc.Signup(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	assert.Empty(t, rec.All())
}

func TestAuthService_SigninFailures(t *testing.T) {
	sessions := newFakeSessions()
	svc, _, _, _ := newAuthService(sessions)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)

	_, err = svc.Signin(ctx, SigninRequest{Username: "ana", Password: "wrong1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	_, err = svc.Signin(ctx, SigninRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	// 会话保存失败不影响登录
	sessions.saveErr = apperrors.ErrRedisError
	_, err = svc.Signin(ctx, SigninRequest{Username: "ana", Password: "secret123"})
	assert.NoError(t, err)
}
