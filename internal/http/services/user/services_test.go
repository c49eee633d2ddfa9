package user

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/userhub/internal/cache"
	"github.com/dropDatabas3/userhub/internal/domain"
	dto "github.com/dropDatabas3/userhub/internal/http/dto/user"
	jwtx "github.com/dropDatabas3/userhub/internal/jwt"
	"github.com/dropDatabas3/userhub/internal/media"
	"github.com/dropDatabas3/userhub/internal/security/password"
	"github.com/dropDatabas3/userhub/internal/session"
	"github.com/dropDatabas3/userhub/internal/store"
)

// =================================================================================
// FAKES
// =================================================================================

type sentMail struct {
	to, name, code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendActivation(_ context.Context, to, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, name, code})
	return nil
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeAvatars struct {
	calls     []string
	invalid   error
	uploadErr error
	n         int
}

func (a *fakeAvatars) Validate(string) error { return a.invalid }

func (a *fakeAvatars) Upload(_ context.Context, image string) (domain.Avatar, error) {
	a.calls = append(a.calls, "upload")
	if a.uploadErr != nil {
		return domain.Avatar{}, a.uploadErr
	}
	a.n++
	id := "avatars/" + string(rune('a'+a.n))
	return domain.Avatar{PublicID: id, URL: "https://cdn.example.com/" + id}, nil
}

func (a *fakeAvatars) Delete(_ context.Context, publicID string) error {
	a.calls = append(a.calls, "delete:"+publicID)
	return nil
}

type fixture struct {
	svcs     Services
	users    *store.Users
	sessions *session.Store
	issuer   *jwtx.Issuer
	mailer   *fakeMailer
	avatars  *fakeAvatars
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, store.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(ctx, db, "sqlite"))

	f := &fixture{
		users:    store.NewUsers(db),
		sessions: session.NewStore(cache.NewMemory("test", time.Minute), time.Hour),
		issuer: jwtx.NewIssuer(jwtx.Config{
			ActivationSecret: "activation-secret",
			AccessSecret:     "access-secret",
			RefreshSecret:    "refresh-secret",
			ActivationTTL:    30 * time.Minute,
			AccessTTL:        30 * time.Minute,
			RefreshTTL:       72 * time.Hour,
		}),
		mailer:  &fakeMailer{},
		avatars: &fakeAvatars{},
	}
	f.svcs = NewServices(Deps{
		Users:    f.users,
		Sessions: f.sessions,
		Tokens:   f.issuer,
		Mailer:   f.mailer,
		Avatars:  f.avatars,
		Policy:   password.Policy{MinLength: 6},
	})
	return f
}

// registerAndActivate crea una cuenta verificada por el flujo completo.
func (f *fixture) registerAndActivate(t *testing.T, name, email, pass string) *domain.User {
	t.Helper()
	ctx := context.Background()
	token, err := f.svcs.Registration.Register(ctx, dto.RegisterRequest{Name: name, Email: email, Password: pass})
	require.NoError(t, err)
	u, err := f.svcs.Registration.Activate(ctx, dto.ActivateRequest{ActivationToken: token, ActivationCode: f.mailer.last().code})
	require.NoError(t, err)
	return u
}

func countUsers(t *testing.T, f *fixture) int {
	t.Helper()
	_, total, err := f.users.List(context.Background(), 100, 0)
	require.NoError(t, err)
	return total
}

// =================================================================================
// REGISTRATION
// =================================================================================

func TestRegisterSendsCodeAndPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.svcs.Registration.Register(ctx, dto.RegisterRequest{Name: "Jane", Email: "Jane@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	m := f.mailer.last()
	assert.Equal(t, "jane@example.com", m.to)
	assert.Equal(t, "Jane", m.name)
	assert.Len(t, m.code, 6)
	assert.Equal(t, 0, countUsers(t, f))

	pending, err := f.issuer.VerifyActivation(token, m.code)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAvatarURL, pending.Avatar.URL)
	assert.Empty(t, pending.Avatar.PublicID)
	require.NotNil(t, pending.Password)
	assert.True(t, password.Verify("secret1", *pending.Password))
}

func TestActivateCreatesVerifiedUser(t *testing.T) {
	f := newFixture(t)
	u := f.registerAndActivate(t, "Jane", "jane@example.com", "secret1")

	assert.NotEmpty(t, u.ID)
	assert.True(t, u.IsVerified)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Nil(t, u.Password)
	assert.Equal(t, 1, countUsers(t, f))
}

func TestRegisterDuplicateEmailStopsEarly(t *testing.T) {
	f := newFixture(t)
	f.registerAndActivate(t, "Jane", "jane@example.com", "secret1")
	sentBefore := len(f.mailer.sent)

	_, err := f.svcs.Registration.Register(context.Background(), dto.RegisterRequest{Name: "Other", Email: "jane@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Len(t, f.mailer.sent, sentBefore, "no ticket mailed for a taken email")
}

func TestActivateTwiceNeverDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.svcs.Registration.Register(ctx, dto.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	code := f.mailer.last().code

	_, err = f.svcs.Registration.Activate(ctx, dto.ActivateRequest{ActivationToken: token, ActivationCode: code})
	require.NoError(t, err)
	_, err = f.svcs.Registration.Activate(ctx, dto.ActivateRequest{ActivationToken: token, ActivationCode: code})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Equal(t, 1, countUsers(t, f))
}

func TestActivateWrongCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.svcs.Registration.Register(ctx, dto.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	wrong := "000000"
	if f.mailer.last().code == wrong {
		wrong = "111111"
	}
	_, err = f.svcs.Registration.Activate(ctx, dto.ActivateRequest{ActivationToken: token, ActivationCode: wrong})
	assert.ErrorIs(t, err, jwtx.ErrInvalidActivationCode)
	assert.Equal(t, 0, countUsers(t, f))
}

func TestActivateTamperedToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.svcs.Registration.Register(ctx, dto.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svcs.Registration.Activate(ctx, dto.ActivateRequest{ActivationToken: token + "x", ActivationCode: f.mailer.last().code})
	assert.ErrorIs(t, err, jwtx.ErrInvalidOrExpiredToken)
	assert.Equal(t, 0, countUsers(t, f))
}

func TestRegisterMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp send: connection refused")

	_, err := f.svcs.Registration.Register(context.Background(), dto.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	var dep *DependencyError
	require.ErrorAs(t, err, &dep)
	assert.Equal(t, "mail", dep.Dep)
	assert.Equal(t, "smtp send: connection refused", err.Error())
	assert.Equal(t, 0, countUsers(t, f))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svcs.Registration.Register(context.Background(), dto.RegisterRequest{Name: "Jane", Email: "not-an-email", Password: "secret1"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.svcs.Registration.Register(context.Background(), dto.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "abc"})
	var weak *WeakPasswordError
	require.ErrorAs(t, err, &weak)
	assert.Contains(t, weak.Reasons, "too_short")
}

// =================================================================================
// SESSION
// =================================================================================

func TestLoginWritesSessionAndIssuesTokens(t *testing.T) {
	f := newFixture(t)
	u := f.registerAndActivate(t, "Jane", "jane@example.com", "secret1")
	ctx := context.Background()

	res, err := f.svcs.Session.Login(ctx, dto.LoginRequest{Email: "JANE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.Nil(t, res.User.Password)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)

	cached, err := f.sessions.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", cached.Email)

	claims, err := f.issuer.VerifyAccess(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	u := f.registerAndActivate(t, "Jane", "jane@example.com", "secret1")
	ctx := context.Background()

	_, err := f.svcs.Session.Login(ctx, dto.LoginRequest{Email: "jane@example.com"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = f.svcs.Session.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svcs.Session.Login(ctx, dto.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.sessions.Get(ctx, u.ID)
	assert.ErrorIs(t, err, session.ErrNotFound, "failed login leaves no session")
}

func TestLoginSocialAccountHasNoPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svcs.Session.SocialAuth(ctx, dto.SocialAuthRequest{Email: "soc@example.com", Name: "Soc"})
	require.NoError(t, err)

	_, err = f.svcs.Session.Login(ctx, dto.LoginRequest{Email: "soc@example.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t)
	u := f.registerAndActivate(t, "Jane", "jane@example.com", "secret1")
	ctx := context.Background()

	_, err := f.svcs.Session.Login(ctx, dto.LoginRequest{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svcs.Session.Logout(ctx, u.ID))
	require.NoError(t, f.svcs.Session.Logout(ctx, u.ID))
	_, err = f.sessions.Get(ctx, u.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	u := f.registerAndActivate(t, "Jane", "jane@example.com", "secret1")
	ctx := context.Background()

	res, err := f.svcs.Session.Login(ctx, dto.LoginRequest{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	// mismo segundo que el login: el par igual debe rotar
	again, err := f.svcs.Session.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.User.ID)
	assert.NotEqual(t, res.Tokens.AccessToken, again.Tokens.AccessToken)
	assert.NotEqual(t, res.Tokens.RefreshToken, again.Tokens.RefreshToken)
	claims, err := f.issuer.VerifyAccess(again.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)

	// sin sesión el refresh token válido no alcanza
	require.NoError(t, f.svcs.Session.Logout(ctx, u.ID))
	_, err = f.svcs.Session.Refresh(ctx, res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshFailed)

	_, err = f.svcs.Session.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrRefreshFailed)

	// un access token no sirve como refresh
	_, err = f.svcs.Session.Refresh(ctx, res.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrRefreshFailed)
}

func TestSocialAuthCreatesThenLogsIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := dto.SocialAuthRequest{Email: "soc@example.com", Name: "Soc", Avatar: "https://lh3.example.com/p.jpg"}

	first, err := f.svcs.Session.SocialAuth(ctx, in)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.True(t, first.User.IsVerified)
	assert.Equal(t, "https://lh3.example.com/p.jpg", first.User.Avatar.URL)

	cached, err := f.sessions.Get(ctx, first.User.ID)
	require.NoError(t, err, "social auth opens a session")
	assert.Equal(t, first.User.ID, cached.ID)

	second, err := f.svcs.Session.SocialAuth(ctx, in)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, 1, countUsers(t, f))

	stored, err := f.users.GetByID(ctx, first.User.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasPassword())
}

// =================================================================================
// PROFILE
// =================================================================================

func loggedIn(t *testing.T, f *fixture, name, email string) *domain.User {
	t.Helper()
	u := f.registerAndActivate(t, name, email, "secret1")
	_, err := f.svcs.Session.Login(context.Background(), dto.LoginRequest{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func strp(s string) *string { return &s }

func TestMeReadsStore(t *testing.T) {
	f := newFixture(t)
	u := loggedIn(t, f, "Jane", "jane@example.com")

	me, err := f.svcs.Profile.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
	assert.Nil(t, me.Password)

	_, err = f.svcs.Profile.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := loggedIn(t, f, "Jane", "jane@example.com")
	loggedIn(t, f, "Bob", "bob@example.com")

	_, err := f.svcs.Profile.UpdateInfo(ctx, u.ID, dto.UpdateInfoRequest{Email: strp("bob@example.com")})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	// el propio email no cuenta como conflicto
	got, err := f.svcs.Profile.UpdateInfo(ctx, u.ID, dto.UpdateInfoRequest{Email: strp("jane@example.com"), Name: strp("Jane D")})
	require.NoError(t, err)
	assert.Equal(t, "Jane D", got.Name)

	got, err = f.svcs.Profile.UpdateInfo(ctx, u.ID, dto.UpdateInfoRequest{Email: strp("jd@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "jd@example.com", got.Email)
	assert.Equal(t, "Jane D", got.Name)

	cached, err := f.sessions.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "jd@example.com", cached.Email)
	assert.Equal(t, "Jane D", cached.Name)
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := loggedIn(t, f, "Jane", "jane@example.com")

	_, err := f.svcs.Profile.UpdatePassword(ctx, u.ID, dto.UpdatePasswordRequest{NewPassword: "newpass1"})
	assert.ErrorIs(t, err, ErrMissingCurrentPassword)
	_, err = f.svcs.Profile.UpdatePassword(ctx, u.ID, dto.UpdatePasswordRequest{CurrentPassword: "secret1"})
	assert.ErrorIs(t, err, ErrMissingNewPassword)
	_, err = f.svcs.Profile.UpdatePassword(ctx, u.ID, dto.UpdatePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, ErrInvalidCurrentPassword)

	got, err := f.svcs.Profile.UpdatePassword(ctx, u.ID, dto.UpdatePasswordRequest{CurrentPassword: "secret1", NewPassword: "newpass1"})
	require.NoError(t, err)
	assert.Nil(t, got.Password)

	_, err = f.svcs.Session.Login(ctx, dto.LoginRequest{Email: "jane@example.com", Password: "newpass1"})
	require.NoError(t, err)
	_, err = f.svcs.Session.Login(ctx, dto.LoginRequest{Email: "jane@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdatePasswordSocialAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svcs.Session.SocialAuth(ctx, dto.SocialAuthRequest{Email: "soc@example.com", Name: "Soc"})
	require.NoError(t, err)

	_, err = f.svcs.Profile.UpdatePassword(ctx, res.User.ID, dto.UpdatePasswordRequest{CurrentPassword: "x", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, ErrSocialAccount)
}

func TestUpdateAvatarIsSequential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := loggedIn(t, f, "Jane", "jane@example.com")

	_, err := f.svcs.Profile.UpdateAvatar(ctx, u.ID, dto.UpdateAvatarRequest{})
	assert.ErrorIs(t, err, ErrMissingAvatar)

	// placeholder sin public id: no hay delete
	first, err := f.svcs.Profile.UpdateAvatar(ctx, u.ID, dto.UpdateAvatarRequest{Avatar: "data:image/png;base64,xxx"})
	require.NoError(t, err)
	assert.Equal(t, []string{"upload"}, f.avatars.calls)

	second, err := f.svcs.Profile.UpdateAvatar(ctx, u.ID, dto.UpdateAvatarRequest{Avatar: "data:image/png;base64,yyy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"upload", "delete:" + first.Avatar.PublicID, "upload"}, f.avatars.calls)
	assert.NotEqual(t, first.Avatar.PublicID, second.Avatar.PublicID)

	cached, err := f.sessions.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Avatar, cached.Avatar)
}

func TestUpdateAvatarInvalidImage(t *testing.T) {
	f := newFixture(t)
	u := loggedIn(t, f, "Jane", "jane@example.com")
	f.avatars.invalid = media.ErrInvalidImage

	_, err := f.svcs.Profile.UpdateAvatar(context.Background(), u.ID, dto.UpdateAvatarRequest{Avatar: "garbage"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateAvatarInvalidKeepsCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := loggedIn(t, f, "Jane", "jane@example.com")

	cur, err := f.svcs.Profile.UpdateAvatar(ctx, u.ID, dto.UpdateAvatarRequest{Avatar: "data:image/png;base64,xxx"})
	require.NoError(t, err)
	require.NotEmpty(t, cur.Avatar.PublicID)

	f.avatars.invalid = media.ErrTooLarge
	_, err = f.svcs.Profile.UpdateAvatar(ctx, u.ID, dto.UpdateAvatarRequest{Avatar: "garbage"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	assert.Equal(t, []string{"upload"}, f.avatars.calls, "rejected payload must not delete or upload")
	me, err := f.svcs.Profile.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, cur.Avatar, me.Avatar)
}

// =================================================================================
// ADMIN
// =================================================================================

func TestAdminListAndSetRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := loggedIn(t, f, "Jane", "jane@example.com")
	f.registerAndActivate(t, "Bob", "bob@example.com", "secret1")

	page, err := f.svcs.Admin.List(ctx, dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, defaultPageSize, page.Limit)
	for _, x := range page.Users {
		assert.Nil(t, x.Password)
	}

	_, err = f.svcs.Admin.List(ctx, dto.ListQuery{Limit: 500})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.svcs.Admin.SetRole(ctx, "jane@example.com", "root")
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = f.svcs.Admin.SetRole(ctx, "ghost@example.com", domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)

	got, err := f.svcs.Admin.SetRole(ctx, "JANE@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	cached, err := f.sessions.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, cached.Role, "live session sees the new role")

	// Bob no tiene sesión: no se crea una
	bob, err := f.svcs.Admin.SetRole(ctx, "bob@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = f.sessions.Get(ctx, bob.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}
