package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/catalog"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product data")
	ErrInvalidSort     = errors.New("invalid sort mode")
)

// ProductQuery carries the list filters as received from the client. Nil
// fields disable their stage.
type ProductQuery struct {
	CategoryID *string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	Sort       string
}

// ProductList is one page of the filtered catalog. Bounds spans the whole
// catalog so clients can draw the price slider.
type ProductList struct {
	Products []model.Product    `json:"products"`
	Bounds   catalog.PriceRange `json:"price_bounds"`
	Total    int                `json:"total"`
	Empty    bool               `json:"empty"`
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  string
	ImageURLs   []string
	Sizes       []string
	Colors      []string
	Stock       int
	IsFeatured  bool
}

type ProductService interface {
	List(ctx context.Context, query ProductQuery) (*ProductList, error)
	Suggestions(ctx context.Context, search string, limit int) ([]model.Product, error)
	Featured(limit int) ([]model.Product, error)
	NewArrivals(limit int) ([]model.Product, error)
	GetByID(id string) (*model.Product, error)
	Create(input ProductInput) (*model.Product, error)
	Update(id string, input ProductInput) (*model.Product, error)
	Delete(id string) error
	Refresh(ctx context.Context) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	snapshot     *catalog.Snapshot
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	snapshot *catalog.Snapshot,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		snapshot:     snapshot,
	}
}

func (s *productService) List(ctx context.Context, query ProductQuery) (*ProductList, error) {
	sortMode, err := catalog.ParseSortMode(query.Sort)
	if err != nil {
		return nil, ErrInvalidSort
	}

	products, err := s.snapshot.Products(ctx)
	if err != nil {
		logger.Error("Failed to load catalog", err)
		return nil, err
	}

	bounds := catalog.Bounds(products)
	state := catalog.FilterState{
		CategoryID: query.CategoryID,
		Search:     query.Search,
		Sort:       sortMode,
	}
	if query.MinPrice != nil || query.MaxPrice != nil {
		r := bounds
		if query.MinPrice != nil {
			r = r.MoveMin(*query.MinPrice)
		}
		if query.MaxPrice != nil {
			r = r.MoveMax(*query.MaxPrice)
		}
		state.Price = &r
	}

	filtered := catalog.Apply(products, state)
	return &ProductList{
		Products: filtered,
		Bounds:   bounds,
		Total:    len(filtered),
		Empty:    len(filtered) == 0,
	}, nil
}

func (s *productService) Suggestions(ctx context.Context, search string, limit int) ([]model.Product, error) {
	products, err := s.snapshot.Products(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Suggestions(products, search, limit), nil
}

func (s *productService) Featured(limit int) ([]model.Product, error) {
	return s.productRepo.FindFeatured(limit)
}

func (s *productService) NewArrivals(limit int) ([]model.Product, error) {
	return s.productRepo.FindNewArrivals(limit)
}

func (s *productService) GetByID(id string) (*model.Product, error) {
	return findProduct(s.productRepo, id)
}

func findProduct(repo repository.ProductRepository, id string) (*model.Product, error) {
	product, err := repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) Create(input ProductInput) (*model.Product, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	product := &model.Product{}
	input.applyTo(product)
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	s.snapshot.Invalidate()

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return product, nil
}

func (s *productService) Update(id string, input ProductInput) (*model.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	input.applyTo(product)
	product.Category = nil
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	s.snapshot.Invalidate()

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})
	return product, nil
}

func (s *productService) Delete(id string) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.snapshot.Invalidate()

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *productService) Refresh(ctx context.Context) error {
	err := s.snapshot.Refresh(ctx)
	if errors.Is(err, catalog.ErrStaleFetch) {
		return nil
	}
	return err
}

func (s *productService) validate(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" || input.Price < 0 || input.Stock < 0 {
		return ErrInvalidProduct
	}
	if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (in ProductInput) applyTo(p *model.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.CategoryID = in.CategoryID
	p.ImageURLs = in.ImageURLs
	p.Sizes = in.Sizes
	p.Colors = in.Colors
	p.Stock = in.Stock
	p.IsFeatured = in.IsFeatured
}
