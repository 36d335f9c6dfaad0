package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ListReviews
// GET /api/v1/products/:id/reviews
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	result, err := ctrl.reviewService.ListForProduct(c.Param("id"))
	if err != nil {
		respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateReview
// POST /api/v1/products/:id/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid review data")
		return
	}

	review, err := ctrl.reviewService.Create(userID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

func respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrInvalidRating):
		apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
	case errors.Is(err, service.ErrEmptyComment):
		apperrors.BadRequest(c, apperrors.ReviewEmptyComment, "Please write a comment")
	default:
		middleware.GetLoggerFromContext(c).Error("Review request failed", err)
		apperrors.InternalError(c, "")
	}
}
