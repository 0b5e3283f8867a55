package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	crmservice "github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/middleware"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors re-exported from the CRM layer so handlers classify
// both domains the same way.
var (
	ErrValidation = crmservice.ErrValidation
	ErrForbidden  = crmservice.ErrForbidden
	ErrConflict   = crmservice.ErrConflict

	ErrInvalidCredentials = errors.New("invalid phone or password")
)

// UserService handles registration, login, token issuance and admin
// user management.
type UserService struct {
	repo *repository.UserRepository

	jwtSecret     string
	jwtIssuer     string
	accessExpire  time.Duration
	refreshExpire time.Duration
}

func NewUserService(repo *repository.UserRepository, jwtSecret, jwtIssuer string, accessExpire, refreshExpire time.Duration) *UserService {
	return &UserService{
		repo:          repo,
		jwtSecret:     jwtSecret,
		jwtIssuer:     jwtIssuer,
		accessExpire:  accessExpire,
		refreshExpire: refreshExpire,
	}
}

// RegisterRequest is the self-service signup payload. Self-registration
// always yields a customer account.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Region     string `json:"region"`
}

// AdminCreateUserRequest lets admins create accounts of any role.
type AdminCreateUserRequest struct {
	RegisterRequest
	Role         string `json:"role" binding:"required"`
	IsIndustrial bool   `json:"is_industrial"`
}

// UpdateUserRequest carries partial profile edits.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	PostalCode   *string `json:"postal_code"`
	Region       *string `json:"region"`
	FCMToken     *string `json:"fcm_token"`
	IsActive     *bool   `json:"is_active"`
	IsIndustrial *bool   `json:"is_industrial"`
	Password     *string `json:"password"`
}

// TokenPair is the login/refresh result.
type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *entity.User `json:"user"`
}

// NormalizePhone reduces a phone number to +91XXXXXXXXXX form. Ten-digit
// local numbers get the country prefix; already-prefixed numbers pass
// through.
func NormalizePhone(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	switch {
	case len(cleaned) == 10:
		return "+91" + cleaned
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "91"):
		return "+" + cleaned
	case strings.HasPrefix(phone, "+"):
		return "+" + cleaned
	default:
		return cleaned
	}
}

// Register creates a customer account.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	return s.createUser(ctx, req, entity.RoleCustomer, false)
}

// AdminCreate creates an account of any role.
func (s *UserService) AdminCreate(ctx context.Context, req *AdminCreateUserRequest) (*entity.User, error) {
	switch req.Role {
	case entity.RoleCustomer, entity.RoleWorker, entity.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}
	return s.createUser(ctx, &req.RegisterRequest, req.Role, req.IsIndustrial)
}

func (s *UserService) createUser(ctx context.Context, req *RegisterRequest, role string, industrial bool) (*entity.User, error) {
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if req.Region != "" && !entity.ValidRegion(req.Region) {
		return nil, fmt.Errorf("%w: unknown region %q", ErrValidation, req.Region)
	}

	phone := NormalizePhone(req.Phone)
	if len(phone) < 11 {
		return nil, fmt.Errorf("%w: invalid phone %q", ErrValidation, req.Phone)
	}

	if _, err := s.repo.FindByPhone(ctx, phone); err == nil {
		return nil, fmt.Errorf("%w: phone already registered", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New().String()[:32],
		Name:         req.Name,
		Phone:        phone,
		PasswordHash: string(hash),
		Address:      req.Address,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Region:       req.Region,
		Role:         role,
		IsActive:     true,
		IsAvailable:  role == entity.RoleWorker,
		IsIndustrial: industrial,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the phone/password pair and issues a token pair.
func (s *UserService) Login(ctx context.Context, phone, password string) (*TokenPair, error) {
	user, err := s.repo.FindByPhone(ctx, NormalizePhone(phone))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", ErrForbidden)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := jwt.ParseWithClaims(refreshToken, &middleware.JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*middleware.JWTClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", ErrForbidden)
	}
	return s.issueTokens(user)
}

func (s *UserService) issueTokens(user *entity.User) (*TokenPair, error) {
	access, err := s.mint(user, s.accessExpire)
	if err != nil {
		return nil, err
	}
	refresh, err := s.mint(user, s.refreshExpire)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *UserService) mint(user *entity.User, expire time.Duration) (string, error) {
	now := time.Now()
	claims := &middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Phone:  user.Phone,
		Role:   user.Role,
		Region: user.Region,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.repo.FindByID(ctx, id)
}

// List pages users. Admin-only.
func (s *UserService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.User, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

// AvailableWorkers lists workers free for assignment in a region.
func (s *UserService) AvailableWorkers(ctx context.Context, region string) ([]entity.User, error) {
	return s.repo.FindAvailableWorkers(ctx, region)
}

// Update edits a profile. Users edit themselves; admins edit anyone.
// Role, activation and industrial flags are admin-only fields.
func (s *UserService) Update(ctx context.Context, actorID, actorRole, id string, req *UpdateUserRequest) (*entity.User, error) {
	isAdmin := actorRole == entity.RoleAdmin
	if !isAdmin && actorID != id {
		return nil, fmt.Errorf("%w: cannot edit another user", ErrForbidden)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.PostalCode != nil {
		user.PostalCode = *req.PostalCode
	}
	if req.Region != nil {
		if !entity.ValidRegion(*req.Region) {
			return nil, fmt.Errorf("%w: unknown region %q", ErrValidation, *req.Region)
		}
		user.Region = *req.Region
	}
	if req.FCMToken != nil {
		user.FCMToken = *req.FCMToken
	}
	if req.IsActive != nil {
		if !isAdmin {
			return nil, fmt.Errorf("%w: activation is admin-only", ErrForbidden)
		}
		user.IsActive = *req.IsActive
	}
	if req.IsIndustrial != nil {
		if !isAdmin {
			return nil, fmt.Errorf("%w: industrial flag is admin-only", ErrForbidden)
		}
		user.IsIndustrial = *req.IsIndustrial
	}
	// Admin password resets skip the old-password check of ChangePassword.
	if req.Password != nil {
		if !isAdmin {
			return nil, fmt.Errorf("%w: password reset is admin-only", ErrForbidden)
		}
		if len(*req.Password) < 6 {
			return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the old password and replaces it.
func (s *UserService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.repo.Update(ctx, user)
}
