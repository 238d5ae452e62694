package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"emall-backend/internal/apperr"
	"emall-backend/internal/config"
	"emall-backend/internal/dto"
	"emall-backend/internal/model"
	"emall-backend/internal/policy"
	"emall-backend/internal/repository"
	"emall-backend/internal/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	RegisterShopOwner(ctx context.Context, req *dto.RegisterShopOwnerRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, p policy.Principal) (*model.User, error)

	// EnsureAdmin creates an admin account unless the email is taken.
	// created reports whether a row was written.
	EnsureAdmin(ctx context.Context, req *dto.RegisterRequest) (created bool, err error)
}

type authServiceImpl struct {
	transactor repository.Transactor
	userRepo   repository.UserRepository
	shopRepo   repository.ShopRepository
	tokens     token.Maker
	bcryptCost int
	trialDays  int
	now        Clock
}

func NewAuthService(
	transactor repository.Transactor,
	userRepo repository.UserRepository,
	shopRepo repository.ShopRepository,
	tokens token.Maker,
	authCfg config.Auth,
	subCfg config.Subscription,
	now Clock,
) AuthService {
	cost := authCfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &authServiceImpl{
		transactor: transactor,
		userRepo:   userRepo,
		shopRepo:   shopRepo,
		tokens:     tokens,
		bcryptCost: cost,
		trialDays:  subCfg.TrialDays,
		now:        now,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	normalizeRegister(req)
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.newUser(ctx, req, model.RoleCustomer)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		return nil, apperr.FromDB(err, "user")
	}

	return s.issue(user, nil)
}

// RegisterShopOwner creates the owner and a pending third-tier shop on a
// trial period in one transaction.
func (s *authServiceImpl) RegisterShopOwner(ctx context.Context, req *dto.RegisterShopOwnerRequest) (*dto.AuthResponse, error) {
	normalizeRegister(&req.RegisterRequest)
	req.ShopName = strings.TrimSpace(req.ShopName)
	req.City = strings.TrimSpace(req.City)
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.newUser(ctx, &req.RegisterRequest, model.RoleShopOwner)
	if err != nil {
		return nil, err
	}

	category := req.ShopCategory
	if category == "" {
		category = model.CategoryAll
	}
	phone := req.ShopPhone
	if phone == "" {
		phone = req.Phone
	}
	trialEnds := s.now().AddDate(0, 0, s.trialDays)

	shop := &model.Shop{
		Name:                  req.ShopName,
		Description:           req.ShopDescription,
		Category:              category,
		City:                  req.City,
		Address:               req.Address,
		Phone:                 phone,
		PlanTier:              model.TierThird,
		Status:                model.ShopStatusPending,
		SubscriptionExpiresAt: &trialEnds,
	}

	err = s.transactor.WithinTx(ctx, func(tx *gorm.DB) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		shop.OwnerID = user.ID
		return s.shopRepo.Create(ctx, tx, shop)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}

	return s.issue(user, shop)
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}

	if user.Status == model.UserStatusBanned {
		return nil, apperr.New(apperr.KindForbidden, apperr.CodeAccountBanned, "account is banned")
	}

	return s.issue(user, nil)
}

func (s *authServiceImpl) Me(ctx context.Context, p policy.Principal) (*model.User, error) {
	if !p.Authenticated() {
		return nil, apperr.Unauthenticated("authentication required")
	}

	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return user, nil
}

func (s *authServiceImpl) EnsureAdmin(ctx context.Context, req *dto.RegisterRequest) (bool, error) {
	normalizeRegister(req)
	if err := dto.Validate(req); err != nil {
		return false, err
	}

	user, err := s.newUser(ctx, req, model.RoleAdmin)
	if apperr.IsCode(err, apperr.CodeDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		return false, apperr.FromDB(err, "user")
	}
	return true, nil
}

func (s *authServiceImpl) newUser(ctx context.Context, req *dto.RegisterRequest, role string) (*model.User, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	if exists {
		return nil, apperr.Conflict(apperr.CodeDuplicate, "user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	return &model.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    email,
		Password: string(hash),
		Role:     role,
		Status:   model.UserStatusActive,
		Phone:    req.Phone,
	}, nil
}

func (s *authServiceImpl) issue(user *model.User, shop *model.Shop) (*dto.AuthResponse, error) {
	signed, err := s.tokens.Create(user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &dto.AuthResponse{Token: signed, User: user, Shop: shop}, nil
}

// normalizeRegister trims and lower-cases in place so validation sees the
// stored form.
func normalizeRegister(req *dto.RegisterRequest) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
