package service

import (
	"errors"
	"strings"
	"unicode"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category still has products")
	ErrInvalidCategory  = errors.New("invalid category data")
	ErrSlugTaken        = errors.New("category slug already exists")
)

type CategoryService interface {
	List() ([]model.Category, error)
	GetByID(id string) (*model.Category, error)
	Create(name, slug, imageURL string) (*model.Category, error)
	Update(id, name, slug, imageURL string) (*model.Category, error)
	Delete(id string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) List() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *categoryService) GetByID(id string) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Create(name, slug, imageURL string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidCategory
	}
	if slug = Slugify(orDefault(slug, name)); slug == "" {
		return nil, ErrInvalidCategory
	}
	if err := s.ensureSlugFree(slug, ""); err != nil {
		return nil, err
	}

	category := &model.Category{Name: name, Slug: slug, ImageURL: imageURL}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"slug":        slug,
	})
	return category, nil
}

func (s *categoryService) Update(id, name, slug, imageURL string) (*model.Category, error) {
	category, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		category.Name = name
	}
	if slug != "" {
		slug = Slugify(slug)
		if slug == "" {
			return nil, ErrInvalidCategory
		}
		if err := s.ensureSlugFree(slug, id); err != nil {
			return nil, err
		}
		category.Slug = slug
	}
	if imageURL != "" {
		category.ImageURL = imageURL
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(id string) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}

	n, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Warn("Refusing to delete category with products", map[string]interface{}{
			"category_id": id,
			"products":    n,
		})
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

func (s *categoryService) ensureSlugFree(slug, selfID string) error {
	existing, err := s.categoryRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrSlugTaken
	}
	return nil
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, strips diacritics and joins the remaining letter and
// digit runs with hyphens: "Áo Sơ Mi Nữ" becomes "ao-so-mi-nu".
func Slugify(s string) string {
	// đ has no decomposition
	s = strings.NewReplacer("đ", "d", "Đ", "D").Replace(s)
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			hyphen = false
			continue
		}
		hyphen = true
	}
	return b.String()
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
