package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type AddressRequest struct {
	Label       string  `json:"label"`
	Recipient   string  `json:"recipient" binding:"required"`
	Phone       string  `json:"phone" binding:"required"`
	FullAddress string  `json:"full_address" binding:"required"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	IsDefault   bool    `json:"is_default"`
}

func (r AddressRequest) input() service.AddressInput {
	return service.AddressInput{
		Label:       r.Label,
		Recipient:   r.Recipient,
		Phone:       r.Phone,
		FullAddress: r.FullAddress,
		Lat:         r.Lat,
		Lng:         r.Lng,
		IsDefault:   r.IsDefault,
	}
}

// GetAddresses
// GET /api/v1/addresses
func (ctrl *AddressController) GetAddresses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	addresses, err := ctrl.addressService.GetUserAddresses(userID)
	if err != nil {
		apperrors.InternalError(c, "Failed to load addresses")
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses, "count": len(addresses)})
}

// CreateAddress
// POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Recipient, phone and address are required")
		return
	}

	address, err := ctrl.addressService.CreateAddress(userID, req.input())
	if err != nil {
		respondAddressError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"address": address})
}

// UpdateAddress
// PUT /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	addressID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Recipient, phone and address are required")
		return
	}

	address, err := ctrl.addressService.UpdateAddress(userID, addressID, req.input())
	if err != nil {
		respondAddressError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

// DeleteAddress
// DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	addressID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.DeleteAddress(userID, addressID); err != nil {
		respondAddressError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

// SetDefaultAddress
// PUT /api/v1/addresses/:id/default
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	addressID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.addressService.SetDefaultAddress(userID, addressID); err != nil {
		respondAddressError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default address updated"})
}

func respondAddressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.AddressNotFound, "Address not found")
	case errors.Is(err, service.ErrUnauthorizedAccess):
		apperrors.Forbidden(c, "This address belongs to another account")
	case errors.Is(err, service.ErrInvalidAddress):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Recipient, phone and address are required")
	default:
		middleware.GetLoggerFromContext(c).Error("Address request failed", err)
		apperrors.InternalError(c, "")
	}
}
