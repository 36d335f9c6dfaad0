package service

import (
	"errors"
	"math"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyComment  = errors.New("comment must not be empty")
)

// ProductReviews lists reviews newest first. Average is rounded to one decimal
// and is zero when there are no reviews.
type ProductReviews struct {
	Reviews []model.Review `json:"reviews"`
	Average float64        `json:"average_rating"`
	Count   int64          `json:"count"`
}

type ReviewService interface {
	ListForProduct(productID string) (*ProductReviews, error)
	Create(userID uint, productID string, rating int, comment string) (*model.Review, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

func (s *reviewService) ListForProduct(productID string) (*ProductReviews, error) {
	if _, err := findProduct(s.productRepo, productID); err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.FindByProductID(productID)
	if err != nil {
		return nil, err
	}
	avg, count, err := s.reviewRepo.AverageRating(productID)
	if err != nil {
		return nil, err
	}

	return &ProductReviews{
		Reviews: reviews,
		Average: math.Round(avg*10) / 10,
		Count:   count,
	}, nil
}

func (s *reviewService) Create(userID uint, productID string, rating int, comment string) (*model.Review, error) {
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}
	if _, err := findProduct(s.productRepo, productID); err != nil {
		return nil, err
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": productID,
		"user_id":    userID,
		"rating":     rating,
	})
	return review, nil
}
