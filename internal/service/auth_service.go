package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/ignatzorin/artisan-backend/internal/logger"
	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/pkg/apperror"
	"github.com/ignatzorin/artisan-backend/internal/repository"
	"github.com/ignatzorin/artisan-backend/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateArtisanProfile(ctx context.Context, profile *models.ArtisanProfile) error
	GetArtisanProfile(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error)
	UpgradeToArtisan(ctx context.Context, userID uuid.UUID, profile *models.ArtisanProfile) error
	Deactivate(ctx context.Context, userID uuid.UUID, reason *string, permanent bool) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
}

// AuthVerificationRepository создаёт заявки на верификацию мастеров.
type AuthVerificationRepository interface {
	Create(ctx context.Context, request *models.VerificationRequest) error
}

// AuthNotifier рассылает служебные уведомления при регистрации.
type AuthNotifier interface {
	NotifyAdmins(ctx context.Context, title, message, notifType string, relatedID *uuid.UUID) error
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	repo             AuthRepository
	verificationRepo AuthVerificationRepository
	notifier         AuthNotifier
	tokenManager     *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email           string
	Phone           string
	Password        string
	FullName        string
	Role            string
	Address         *string
	CategoryID      *uuid.UUID
	Skills          *string
	ExperienceYears int
	HourlyRate      *float64
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// ArtisanProfileInput содержит данные профиля при смене роли на мастера.
type ArtisanProfileInput struct {
	CategoryID      uuid.UUID
	Skills          *string
	ExperienceYears int
	HourlyRate      *float64
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User
	Profile   *models.ArtisanProfile
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, verificationRepo AuthVerificationRepository, notifier AuthNotifier, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:             repo,
		verificationRepo: verificationRepo,
		notifier:         notifier,
		tokenManager:     tokenManager,
	}
}

// Register создаёт нового пользователя. Мастер регистрируется
// неверифицированным: профиль создаётся сразу, а подтверждение
// оформляется заявкой на верификацию.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta map[string]string) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateFullName(in.FullName); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleArtisan {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимая роль при регистрации")
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(passHash),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		Address:      in.Address,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	var profile *models.ArtisanProfile
	if role == models.RoleArtisan {
		if in.CategoryID == nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "категория обязательна для мастера")
		}
		if err := validation.ValidateExperienceYears(in.ExperienceYears); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		if err := validation.ValidateSkills(in.Skills); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}

		profile = &models.ArtisanProfile{
			UserID:          user.ID,
			CategoryID:      *in.CategoryID,
			Skills:          in.Skills,
			ExperienceYears: in.ExperienceYears,
			HourlyRate:      in.HourlyRate,
		}
		if err := s.repo.CreateArtisanProfile(ctx, profile); err != nil {
			return nil, err
		}

		verification := &models.VerificationRequest{UserID: user.ID, RequestData: in.Skills}
		if err := s.verificationRepo.Create(ctx, verification); err != nil {
			return nil, err
		}

		if err := s.notifier.NotifyAdmins(ctx,
			"Новый мастер",
			fmt.Sprintf("Мастер %s ожидает верификации", user.FullName),
			models.NotificationTypeVerification,
			&verification.ID,
		); err != nil && logger.Log != nil {
			logger.Log.WithField("user_id", user.ID).Warnf("auth service: не удалось уведомить администраторов: %v", err)
		}
	}

	tokenPair, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Profile: profile, TokenPair: tokenPair}, nil
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta map[string]string) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	user, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := s.repo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		// Сбой обновления last_login_at не прерывает вход.
		if logger.Log != nil {
			logger.Log.WithFields(map[string]interface{}{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Warn("auth service: не удалось обновить last_login_at")
		}
	}

	tokenPair, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	var profile *models.ArtisanProfile
	if user.IsArtisan() {
		if profile, err = s.repo.GetArtisanProfile(ctx, user.ID); err != nil {
			profile = nil
		}
	}

	return &AuthResult{User: user, Profile: profile, TokenPair: tokenPair}, nil
}

// Refresh выпускает новую пару токенов по refresh токену.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta map[string]string) (*TokenPair, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	if _, err := s.repo.GetSessionByToken(ctx, oldToken); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "некорректный subject")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
	}

	if err := s.repo.DeleteSession(ctx, oldToken); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user, meta)
}

// Logout удаляет сессию по refresh токену.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.DeleteSession(ctx, refreshToken)
}

// UpgradeToArtisan переводит заказчика в мастера: роль меняется, профиль
// создаётся, верификация сбрасывается и оформляется новой заявкой.
func (s *AuthService) UpgradeToArtisan(ctx context.Context, userID uuid.UUID, in ArtisanProfileInput) (*models.ArtisanProfile, error) {
	if err := validation.ValidateExperienceYears(in.ExperienceYears); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(in.Skills); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	profile := &models.ArtisanProfile{
		UserID:          userID,
		CategoryID:      in.CategoryID,
		Skills:          in.Skills,
		ExperienceYears: in.ExperienceYears,
		HourlyRate:      in.HourlyRate,
	}

	if err := s.repo.UpgradeToArtisan(ctx, userID, profile); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, apperror.ErrUserNotFound
		case errors.Is(err, repository.ErrAlreadyArtisan):
			return nil, apperror.New(apperror.ErrCodeConflict, "пользователь уже является мастером")
		}
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err == nil {
		if notifyErr := s.notifier.NotifyAdmins(ctx,
			"Новый мастер",
			fmt.Sprintf("Мастер %s ожидает верификации", user.FullName),
			models.NotificationTypeVerification,
			nil,
		); notifyErr != nil && logger.Log != nil {
			logger.Log.WithField("user_id", userID).Warnf("auth service: не удалось уведомить администраторов: %v", notifyErr)
		}
	}

	return profile, nil
}

// Me возвращает учётную запись и профиль текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, *models.ArtisanProfile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, apperror.ErrUserNotFound
		}
		return nil, nil, err
	}

	var profile *models.ArtisanProfile
	if user.IsArtisan() {
		if profile, err = s.repo.GetArtisanProfile(ctx, userID); err != nil {
			profile = nil
		}
	}

	return user, profile, nil
}

// Deactivate блокирует аккаунт и фиксирует причину.
func (s *AuthService) Deactivate(ctx context.Context, userID uuid.UUID, reason *string, permanent bool) error {
	if err := s.repo.Deactivate(ctx, userID, reason, permanent); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}
	return nil
}

// issueSession выпускает пару токенов и сохраняет сессию.
func (s *AuthService) issueSession(ctx context.Context, user *models.User, meta map[string]string) (*TokenPair, error) {
	tokenPair, _, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    refreshExp,
	}

	if meta != nil {
		if ua, ok := meta["user_agent"]; ok {
			session.UserAgent = &ua
		}
		if ip, ok := meta["ip"]; ok {
			session.IPAddress = &ip
		}
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return tokenPair, nil
}
