package service

import (
	"errors"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAddressNotFound    = errors.New("address not found")
	ErrUnauthorizedAccess = errors.New("unauthorized access to address")
	ErrInvalidAddress     = errors.New("recipient, phone and address are required")
)

type AddressInput struct {
	Label       string
	Recipient   string
	Phone       string
	FullAddress string
	Lat         float64
	Lng         float64
	IsDefault   bool
}

func (in AddressInput) valid() bool {
	return strings.TrimSpace(in.Recipient) != "" &&
		strings.TrimSpace(in.Phone) != "" &&
		strings.TrimSpace(in.FullAddress) != ""
}

type AddressService interface {
	GetUserAddresses(userID uint) ([]model.Address, error)
	CreateAddress(userID uint, input AddressInput) (*model.Address, error)
	UpdateAddress(userID, addressID uint, input AddressInput) (*model.Address, error)
	DeleteAddress(userID, addressID uint) error
	SetDefaultAddress(userID, addressID uint) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{
		addressRepo: addressRepo,
	}
}

func (s *addressService) GetUserAddresses(userID uint) ([]model.Address, error) {
	logger.Debug("Fetching user addresses", map[string]interface{}{
		"user_id": userID,
	})

	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return addresses, nil
}

// CreateAddress stores a new address. The user's first address becomes the
// default regardless of input.IsDefault.
func (s *addressService) CreateAddress(userID uint, input AddressInput) (*model.Address, error) {
	if !input.valid() {
		return nil, ErrInvalidAddress
	}

	address := &model.Address{UserID: userID}
	input.applyTo(address)
	address.IsDefault = input.IsDefault

	if err := s.addressRepo.Create(address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Address created successfully", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    userID,
		"is_default": address.IsDefault,
	})
	return address, nil
}

func (s *addressService) UpdateAddress(userID, addressID uint, input AddressInput) (*model.Address, error) {
	if !input.valid() {
		return nil, ErrInvalidAddress
	}

	address, err := s.owned(userID, addressID)
	if err != nil {
		return nil, err
	}

	input.applyTo(address)
	if err := s.addressRepo.Update(address); err != nil {
		logger.Error("Failed to update address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return nil, err
	}

	// Unsetting the default happens only by choosing another one.
	if input.IsDefault && !address.IsDefault {
		if err := s.addressRepo.SetDefault(userID, addressID); err != nil {
			return nil, err
		}
		address.IsDefault = true
	}

	logger.Info("Address updated successfully", map[string]interface{}{
		"address_id": addressID,
	})
	return address, nil
}

func (s *addressService) DeleteAddress(userID, addressID uint) error {
	if _, err := s.owned(userID, addressID); err != nil {
		return err
	}

	if err := s.addressRepo.Delete(addressID); err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return err
	}

	logger.Info("Address deleted successfully", map[string]interface{}{
		"address_id": addressID,
		"user_id":    userID,
	})
	return nil
}

func (s *addressService) SetDefaultAddress(userID, addressID uint) error {
	if _, err := s.owned(userID, addressID); err != nil {
		return err
	}

	if err := s.addressRepo.SetDefault(userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAddressNotFound
		}
		return err
	}

	logger.Info("Default address set", map[string]interface{}{
		"address_id": addressID,
		"user_id":    userID,
	})
	return nil
}

func (s *addressService) owned(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Address not found", map[string]interface{}{
				"address_id": addressID,
			})
			return nil, ErrAddressNotFound
		}
		return nil, err
	}

	if address.UserID != userID {
		logger.Warn("Unauthorized access to address", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
			"owner_id":   address.UserID,
		})
		return nil, ErrUnauthorizedAccess
	}
	return address, nil
}

func (in AddressInput) applyTo(a *model.Address) {
	a.Label = strings.TrimSpace(in.Label)
	a.Recipient = strings.TrimSpace(in.Recipient)
	a.Phone = strings.TrimSpace(in.Phone)
	a.FullAddress = strings.TrimSpace(in.FullAddress)
	a.Lat = in.Lat
	a.Lng = in.Lng
}
