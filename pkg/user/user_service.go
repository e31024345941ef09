package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/mailing"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/storage"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 30 * time.Minute

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.PublicUser, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (domain.PublicUser, error)
		UpdateUser(ctx context.Context, userID string, req domain.UpdateUserRequest) (domain.PublicUser, error)
		UpdateAvatar(ctx context.Context, userID string, req domain.UpdateAvatarRequest) (domain.PublicUser, error)
		ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		s3             storage.AwsS3
		mailer         mailing.Mailer
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, s3 storage.AwsS3, mailer mailing.Mailer) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		s3:             s3,
		mailer:         mailer,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.PublicUser, error) {
	if req.Role != domain.RoleProducer && req.Role != domain.RoleRepresentative {
		return domain.PublicUser{}, domain.ErrInvalidRole
	}

	email := domain.NormalizeEmail(req.Email)
	exists, err := s.userRepository.CheckEmailExists(ctx, email)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if exists {
		return domain.PublicUser{}, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.PublicUser{}, err
	}

	user := &entities.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.userRepository.RegisterUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.PublicUser{}, domain.ErrEmailAlreadyExists
		}
		return domain.PublicUser{}, err
	}

	logging.LogEvent("user_registered", map[string]interface{}{
		"user_id": user.ID.String(),
		"role":    user.Role,
	})
	return domain.ToPublicUser(user), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		Token: token,
		User:  domain.ToPublicUser(user),
	}, nil
}

func (s *userService) getUser(ctx context.Context, userID string) (*entities.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.PublicUser, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return domain.ToPublicUser(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, req domain.UpdateUserRequest) (domain.PublicUser, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.PublicUser{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.PublicUser{}, domain.NewValidationError("name cannot be empty")
		}
		user.Name = name
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.BirthDate != nil {
		if *req.BirthDate == "" {
			user.BirthDate = nil
		} else {
			date, err := time.Parse("2006-01-02", *req.BirthDate)
			if err != nil {
				return domain.PublicUser{}, domain.NewValidationError("birth_date must be YYYY-MM-DD")
			}
			user.BirthDate = &date
		}
	}
	if req.PostalCode != nil {
		user.PostalCode = strings.TrimSpace(*req.PostalCode)
	}
	if req.City != nil {
		user.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		user.State = strings.ToUpper(strings.TrimSpace(*req.State))
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}

	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return domain.PublicUser{}, err
	}
	return domain.ToPublicUser(user), nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, req domain.UpdateAvatarRequest) (domain.PublicUser, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.PublicUser{}, err
	}

	key, err := s.s3.UploadFile(ctx, user.ID.String(), req.Avatar, "avatars", storage.AllowImage...)
	if err != nil {
		if errors.Is(err, storage.ErrFileTypeNotAllowed) {
			return domain.PublicUser{}, domain.NewValidationError("avatar must be an image")
		}
		return domain.PublicUser{}, domain.NewExternalServiceError("storage", err)
	}

	user.AvatarURL = s.s3.GetPublicLinkKey(key)
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return domain.PublicUser{}, err
	}
	return domain.ToPublicUser(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return domain.ErrWrongPassword
	}
	return s.setPassword(ctx, user, req.NewPassword)
}

// ForgotPassword never reveals whether the email is registered.
func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenPasswordReset(user.ID.String(), user.PasswordHash, resetTokenTTL)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(utils.GetConfig("APP_URL"), "/"), token)
	if err := s.mailer.SendMail(user.Email, "Redefinição de senha", mailing.PasswordResetBody(user.Name, link)); err != nil {
		return domain.NewExternalServiceError("mail", err)
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	claims, err := s.jwtService.ValidateTokenPasswordReset(req.Token)
	if err != nil {
		return domain.ErrInvalidResetToken
	}

	user, err := s.getUser(ctx, claims.UserID)
	if err != nil {
		return domain.ErrInvalidResetToken
	}
	if !claims.MatchesPassword(user.PasswordHash) {
		return domain.ErrInvalidResetToken
	}
	return s.setPassword(ctx, user, req.Password)
}

func (s *userService) setPassword(ctx context.Context, user *entities.User, password string) error {
	if len(password) < 8 {
		return domain.NewValidationError("password must have at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.userRepository.UpdateUser(ctx, user)
}
