package user

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/testutil"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []capturedMail
}

func (m *fakeMailer) SendMail(to, subject, body string) error {
	m.sent = append(m.sent, capturedMail{to, subject, body})
	return nil
}

func newTestService(t *testing.T) (UserService, *fakeMailer) {
	db := testutil.NewTestDB(t)
	mailer := &fakeMailer{}
	svc := NewUserService(NewUserRepository(db), jwt.NewJWTServiceWithSecret("secret"), nil, mailer)
	return svc, mailer
}

// staleEmailRepository answers the existence check as if a concurrent
// registration had not committed yet.
type staleEmailRepository struct {
	UserRepository
}

func (staleEmailRepository) CheckEmailExists(context.Context, string) (bool, error) {
	return false, nil
}

func register(t *testing.T, svc UserService, email string) domain.PublicUser {
	t.Helper()
	u, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "Maria Produtora",
		Email:    email,
		Password: "senha-forte",
		Role:     domain.RoleProducer,
		Phone:    "31999990000",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)

	u := register(t, svc, "  Maria@Example.COM ")
	assert.Equal(t, "maria@example.com", u.Email)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Outra", Email: "MARIA@example.com", Password: "12345678", Role: domain.RoleRepresentative,
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterDuplicateAfterExistenceCheck(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := staleEmailRepository{NewUserRepository(db)}
	svc := NewUserService(repo, jwt.NewJWTServiceWithSecret("secret"), nil, &fakeMailer{})

	register(t, svc, "joao@example.com")

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Joao", Email: "joao@example.com", Password: "12345678", Role: domain.RoleProducer,
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	u := register(t, svc, "maria@example.com")

	res, err := svc.Login(context.Background(), domain.LoginRequest{Email: "Maria@example.com", Password: "senha-forte"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, u.ID, res.User.ID)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "maria@example.com", Password: "errada"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "ninguem@example.com", Password: "senha-forte"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUpdateUserAppliesPatch(t *testing.T) {
	svc, _ := newTestService(t)
	u := register(t, svc, "maria@example.com")

	city, state, birth := "Lavras", "mg", "1990-04-12"
	updated, err := svc.UpdateUser(context.Background(), u.ID, domain.UpdateUserRequest{
		City: &city, State: &state, BirthDate: &birth,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lavras", updated.City)
	assert.Equal(t, "MG", updated.State)
	assert.Equal(t, "Maria Produtora", updated.Name)
	require.NotNil(t, updated.BirthDate)
	assert.Equal(t, 1990, updated.BirthDate.Year())

	bad := "12/04/1990"
	_, err = svc.UpdateUser(context.Background(), u.ID, domain.UpdateUserRequest{BirthDate: &bad})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	u := register(t, svc, "maria@example.com")
	ctx := context.Background()

	err := svc.ChangePassword(ctx, u.ID, domain.ChangePasswordRequest{CurrentPassword: "errada", NewPassword: "nova-senha"})
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, domain.ChangePasswordRequest{CurrentPassword: "senha-forte", NewPassword: "nova-senha"}))
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "maria@example.com", Password: "nova-senha"})
	assert.NoError(t, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, mailer := newTestService(t)
	register(t, svc, "maria@example.com")
	ctx := context.Background()

	require.NoError(t, svc.ForgotPassword(ctx, domain.ForgotPasswordRequest{Email: "desconhecido@example.com"}))
	assert.Empty(t, mailer.sent)

	require.NoError(t, svc.ForgotPassword(ctx, domain.ForgotPasswordRequest{Email: "maria@example.com"}))
	require.Len(t, mailer.sent, 1)
	token := extractToken(t, mailer.sent[0].body)

	require.NoError(t, svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: token, Password: "outra-senha"}))
	_, err := svc.Login(ctx, domain.LoginRequest{Email: "maria@example.com", Password: "outra-senha"})
	assert.NoError(t, err)

	err = svc.ResetPassword(ctx, domain.ResetPasswordRequest{Token: token, Password: "terceira-senha"})
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
}

func extractToken(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, "token=")
	require.GreaterOrEqual(t, i, 0)
	rest := body[i+len("token="):]
	if end := strings.IndexAny(rest, "\"'< "); end >= 0 {
		rest = rest[:end]
	}
	token, err := url.QueryUnescape(rest)
	require.NoError(t, err)
	return token
}
