package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/modules/auth/dto"
	"talib.app/backend/internal/modules/auth/repository"
	ownerRepo "talib.app/backend/internal/modules/owner/repository"
	owner "talib.app/backend/internal/modules/owner/service"
	studentRepo "talib.app/backend/internal/modules/student/repository"
	student "talib.app/backend/internal/modules/student/service"
	"talib.app/backend/pkg/apperror"
	"talib.app/backend/pkg/sanitizer"
	"talib.app/backend/pkg/token"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	AdminLogin(ctx context.Context, req dto.AdminLoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, actor entity.Actor) (any, error)
	ChangePassword(ctx context.Context, actor entity.Actor, req dto.ChangePasswordRequest) error
	GoogleLoginURL(state string) (string, error)
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type authService struct {
	students     studentRepo.StudentRepository
	owners       ownerRepo.OwnerRepository
	admins       repository.AdminRepository
	tokens       *token.Manager
	googleConfig *oauth2.Config
	userInfoURL  string
	logger       *zap.Logger
}

func NewAuthService(students studentRepo.StudentRepository, owners ownerRepo.OwnerRepository, admins repository.AdminRepository, tokens *token.Manager, googleCfg GoogleConfig, logger *zap.Logger) AuthService {
	var googleConfig *oauth2.Config
	if googleCfg.ClientID != "" {
		googleConfig = &oauth2.Config{
			ClientID:     googleCfg.ClientID,
			ClientSecret: googleCfg.ClientSecret,
			RedirectURL:  googleCfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	return &authService{
		students:     students,
		owners:       owners,
		admins:       admins,
		tokens:       tokens,
		googleConfig: googleConfig,
		userInfoURL:  googleUserInfoURL,
		logger:       logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)

	switch req.Role {
	case entity.RoleStudent:
		account := &entity.Student{
			Email:        email,
			PasswordHash: string(hashed),
			FirstName:    sanitizer.PlainText(req.FirstName),
			LastName:     sanitizer.PlainText(req.LastName),
			University:   optional(sanitizer.PlainText(req.University)),
			Phone:        optional(req.Phone),
		}
		created, err := s.students.Create(ctx, account)
		if err != nil {
			return nil, err
		}
		if !created {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		}
		s.logger.Info("student registered", zap.String("student_id", account.ID.String()))
		return s.issueStudent(account)

	case entity.RoleOwner:
		account := &entity.Owner{
			Email:        email,
			PasswordHash: string(hashed),
			FullName:     sanitizer.PlainText(req.FullName),
			Phone:        optional(req.Phone),
			CompanyName:  optional(sanitizer.PlainText(req.CompanyName)),
		}
		created, err := s.owners.Create(ctx, account)
		if err != nil {
			return nil, err
		}
		if !created {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		}
		s.logger.Info("owner registered", zap.String("owner_id", account.ID.String()))
		return s.issueOwner(account)
	}

	return nil, fmt.Errorf("role must be student or owner: %w", apperror.ErrBadRequest)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	switch req.Role {
	case entity.RoleStudent:
		account, err := s.students.FindByEmail(ctx, email)
		if err != nil {
			return nil, credentialsError(err)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
			return nil, errInvalidCredentials
		}
		return s.issueStudent(account)

	case entity.RoleOwner:
		account, err := s.owners.FindByEmail(ctx, email)
		if err != nil {
			return nil, credentialsError(err)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
			return nil, errInvalidCredentials
		}
		return s.issueOwner(account)
	}

	return nil, fmt.Errorf("role must be student or owner: %w", apperror.ErrBadRequest)
}

func (s *authService) AdminLogin(ctx context.Context, req dto.AdminLoginRequest) (*dto.AuthResponse, error) {
	admin, err := s.admins.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, credentialsError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	signed, expiresAt, err := s.tokens.Generate(token.Subject{
		UserID:   admin.ID.String(),
		Email:    admin.Email,
		Username: admin.Username,
		Role:     entity.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Role:        entity.RoleAdmin,
		Account:     adminResponse(admin),
	}, nil
}

func (s *authService) Me(ctx context.Context, actor entity.Actor) (any, error) {
	switch actor.Role {
	case entity.RoleStudent:
		account, err := s.students.FindByID(ctx, actor.ID)
		if err != nil {
			return nil, accountError(err)
		}
		return student.ToResponse(account, true), nil
	case entity.RoleOwner:
		account, err := s.owners.FindByID(ctx, actor.ID)
		if err != nil {
			return nil, accountError(err)
		}
		return owner.ToResponse(account, true), nil
	case entity.RoleAdmin:
		admin, err := s.admins.FindByID(ctx, actor.ID)
		if err != nil {
			return nil, accountError(err)
		}
		return adminResponse(admin), nil
	}
	return nil, apperror.ErrUnauthorized
}

func (s *authService) ChangePassword(ctx context.Context, actor entity.Actor, req dto.ChangePasswordRequest) error {
	var currentHash string
	switch actor.Role {
	case entity.RoleStudent:
		account, err := s.students.FindByID(ctx, actor.ID)
		if err != nil {
			return accountError(err)
		}
		currentHash = account.PasswordHash
	case entity.RoleOwner:
		account, err := s.owners.FindByID(ctx, actor.ID)
		if err != nil {
			return accountError(err)
		}
		currentHash = account.PasswordHash
	case entity.RoleAdmin:
		admin, err := s.admins.FindByID(ctx, actor.ID)
		if err != nil {
			return accountError(err)
		}
		currentHash = admin.PasswordHash
	default:
		return apperror.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", apperror.ErrBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	switch actor.Role {
	case entity.RoleStudent:
		return s.students.Update(ctx, actor.ID, map[string]any{"password_hash": string(hashed)})
	case entity.RoleOwner:
		return s.owners.Update(ctx, actor.ID, map[string]any{"password_hash": string(hashed)})
	default:
		return s.admins.UpdatePassword(ctx, actor.ID, string(hashed))
	}
}

func (s *authService) GoogleLoginURL(state string) (string, error) {
	if s.googleConfig == nil {
		return "", fmt.Errorf("google sign-in is not configured: %w", apperror.ErrBadRequest)
	}
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	if s.googleConfig == nil {
		return nil, fmt.Errorf("google sign-in is not configured: %w", apperror.ErrBadRequest)
	}

	oauthToken, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %v: %w", err, apperror.ErrUnauthorized)
	}

	resp, err := s.googleConfig.Client(ctx, oauthToken).Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	var googleUser dto.GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	account, err := s.studentFromGoogle(ctx, googleUser)
	if err != nil {
		return nil, err
	}
	return s.issueStudent(account)
}

// studentFromGoogle finds the student linked to the Google account, links an
// existing student with the same verified email, or registers a new one.
func (s *authService) studentFromGoogle(ctx context.Context, googleUser dto.GoogleUser) (*entity.Student, error) {
	if googleUser.ID == "" || googleUser.Email == "" {
		return nil, fmt.Errorf("google account has no email: %w", apperror.ErrUnauthorized)
	}
	if !googleUser.VerifiedEmail {
		return nil, fmt.Errorf("google email is not verified: %w", apperror.ErrUnauthorized)
	}

	account, err := s.students.FindByGoogleID(ctx, googleUser.ID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := normalizeEmail(googleUser.Email)
	account, err = s.students.FindByEmail(ctx, email)
	if err == nil {
		if err := s.students.Update(ctx, account.ID, map[string]any{"google_id": googleUser.ID}); err != nil {
			return nil, err
		}
		account.GoogleID = &googleUser.ID
		return account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Google-only accounts get an unguessable password until they set one.
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	firstName := googleUser.GivenName
	if firstName == "" {
		firstName = strings.Split(email, "@")[0]
	}

	account = &entity.Student{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     googleUser.FamilyName,
		AvatarURL:    optional(googleUser.Picture),
		GoogleID:     &googleUser.ID,
	}
	created, err := s.students.Create(ctx, account)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("account already exists: %w", apperror.ErrConflict)
	}
	s.logger.Info("student registered with google", zap.String("student_id", account.ID.String()))
	return account, nil
}

func (s *authService) issueStudent(account *entity.Student) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Generate(token.Subject{
		UserID: account.ID.String(),
		Email:  account.Email,
		Role:   entity.RoleStudent,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Role:        entity.RoleStudent,
		Account:     student.ToResponse(account, true),
	}, nil
}

func (s *authService) issueOwner(account *entity.Owner) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Generate(token.Subject{
		UserID: account.ID.String(),
		Email:  account.Email,
		Role:   entity.RoleOwner,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Role:        entity.RoleOwner,
		Account:     owner.ToResponse(account, true),
	}, nil
}

func adminResponse(admin *entity.Admin) dto.AdminResponse {
	return dto.AdminResponse{
		ID:        admin.ID,
		Username:  admin.Username,
		Email:     admin.Email,
		CreatedAt: admin.CreatedAt,
	}
}

func credentialsError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errInvalidCredentials
	}
	return err
}

func accountError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("account no longer exists: %w", apperror.ErrUnauthorized)
	}
	return err
}
