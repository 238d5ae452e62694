package service

import (
	"context"

	"emall-backend/internal/apperr"
	"emall-backend/internal/dto"
	"emall-backend/internal/model"
	"emall-backend/internal/policy"
	"emall-backend/internal/repository"

	"gorm.io/gorm"
)

type AddressService interface {
	List(ctx context.Context, p policy.Principal) ([]model.Address, error)
	Create(ctx context.Context, p policy.Principal, req *dto.AddressRequest) (*model.Address, error)
	SetDefault(ctx context.Context, p policy.Principal, addressID uint) error
	Delete(ctx context.Context, p policy.Principal, addressID uint) error
}

type addressServiceImpl struct {
	transactor  repository.Transactor
	addressRepo repository.AddressRepository
}

func NewAddressService(transactor repository.Transactor, addressRepo repository.AddressRepository) AddressService {
	return &addressServiceImpl{
		transactor:  transactor,
		addressRepo: addressRepo,
	}
}

func (s *addressServiceImpl) List(ctx context.Context, p policy.Principal) ([]model.Address, error) {
	if err := policy.Require(p, policy.ActionManageAddresses, policy.Resource{OwnerID: p.UserID}); err != nil {
		return nil, err
	}

	addresses, err := s.addressRepo.List(ctx, p.UserID)
	if err != nil {
		return nil, apperr.FromDB(err, "address")
	}
	return nonNil(addresses), nil
}

// Create stores a new address; at most one address per user is default.
func (s *addressServiceImpl) Create(ctx context.Context, p policy.Principal, req *dto.AddressRequest) (*model.Address, error) {
	if err := policy.Require(p, policy.ActionManageAddresses, policy.Resource{OwnerID: p.UserID}); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	address := &model.Address{
		UserID:    p.UserID,
		Title:     req.Title,
		FullName:  req.FullName,
		Phone:     req.Phone,
		City:      req.City,
		Address:   req.Address,
		IsDefault: req.IsDefault,
	}

	err := s.transactor.WithinTx(ctx, func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := s.addressRepo.ClearDefault(ctx, tx, p.UserID); err != nil {
				return err
			}
		}
		return s.addressRepo.Create(ctx, tx, address)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "address")
	}

	return address, nil
}

func (s *addressServiceImpl) SetDefault(ctx context.Context, p policy.Principal, addressID uint) error {
	if err := policy.Require(p, policy.ActionManageAddresses, policy.Resource{OwnerID: p.UserID}); err != nil {
		return err
	}

	err := s.transactor.WithinTx(ctx, func(tx *gorm.DB) error {
		if err := s.addressRepo.ClearDefault(ctx, tx, p.UserID); err != nil {
			return err
		}
		return s.addressRepo.SetDefault(ctx, tx, addressID, p.UserID)
	})

	return apperr.FromDB(err, "address")
}

func (s *addressServiceImpl) Delete(ctx context.Context, p policy.Principal, addressID uint) error {
	if err := policy.Require(p, policy.ActionManageAddresses, policy.Resource{OwnerID: p.UserID}); err != nil {
		return err
	}
	return apperr.FromDB(s.addressRepo.Delete(ctx, addressID, p.UserID), "address")
}
