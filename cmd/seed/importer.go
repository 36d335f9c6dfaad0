package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
)

const (
	categorySheet = "Categories"
	productSheet  = "Products"
)

// Categories sheet: name | slug | image_url
// Products sheet:   name | description | price | category_slug | image_urls | sizes | colors | stock | featured
// List cells are comma separated. The first row of each sheet is a header.

type seedProduct struct {
	Product      model.Product
	CategorySlug string
}

type seedCatalog struct {
	Categories []model.Category
	Products   []seedProduct
	Skipped    int
}

type importResult struct {
	CategoriesCreated  int
	CategoriesExisting int
	ProductsCreated    int
	ProductsSkipped    int
}

func readCatalogFromXLSX(filePath string) (*seedCatalog, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	return readCatalog(f)
}

func readCatalog(f *excelize.File) (*seedCatalog, error) {
	out := &seedCatalog{}

	if idx, _ := f.GetSheetIndex(categorySheet); idx >= 0 {
		rows, err := f.GetRows(categorySheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", categorySheet, err)
		}
		for i, row := range rows {
			if i == 0 || len(row) == 0 {
				continue
			}
			name := cell(row, 0)
			if name == "" {
				continue
			}
			slug := cell(row, 1)
			if slug == "" {
				slug = service.Slugify(name)
			}
			out.Categories = append(out.Categories, model.Category{
				Name:     name,
				Slug:     slug,
				ImageURL: cell(row, 2),
			})
		}
	}

	idx, _ := f.GetSheetIndex(productSheet)
	if idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", productSheet)
	}
	rows, err := f.GetRows(productSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", productSheet, err)
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		p, ok := parseProductRow(row)
		if !ok {
			out.Skipped++
			continue
		}
		out.Products = append(out.Products, p)
	}

	return out, nil
}

func parseProductRow(row []string) (seedProduct, bool) {
	name := cell(row, 0)
	if name == "" {
		return seedProduct{}, false
	}

	price, err := strconv.ParseFloat(cell(row, 2), 64)
	if err != nil || price < 0 {
		return seedProduct{}, false
	}

	stock := 0
	if s := cell(row, 7); s != "" {
		if stock, err = strconv.Atoi(s); err != nil || stock < 0 {
			return seedProduct{}, false
		}
	}

	featured, _ := strconv.ParseBool(cell(row, 8))

	return seedProduct{
		Product: model.Product{
			Name:        name,
			Description: cell(row, 1),
			Price:       price,
			ImageURLs:   list(cell(row, 4)),
			Sizes:       list(cell(row, 5)),
			Colors:      list(cell(row, 6)),
			Stock:       stock,
			IsFeatured:  featured,
		},
		CategorySlug: cell(row, 3),
	}, true
}

// importCatalog creates missing categories, then products. Products naming an
// unknown category are skipped.
func importCatalog(c *seedCatalog, categories repository.CategoryRepository, products repository.ProductRepository) (*importResult, error) {
	result := &importResult{ProductsSkipped: c.Skipped}
	ids := make(map[string]string)

	for _, category := range c.Categories {
		existing, err := categories.FindBySlug(category.Slug)
		if err == nil {
			ids[category.Slug] = existing.ID
			result.CategoriesExisting++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, fmt.Errorf("lookup category %s: %w", category.Slug, err)
		}

		category := category
		if err := categories.Create(&category); err != nil {
			return result, fmt.Errorf("create category %s: %w", category.Slug, err)
		}
		ids[category.Slug] = category.ID
		result.CategoriesCreated++
	}

	for _, sp := range c.Products {
		p := sp.Product
		if sp.CategorySlug != "" {
			id, ok := ids[sp.CategorySlug]
			if !ok {
				existing, err := categories.FindBySlug(sp.CategorySlug)
				if err != nil {
					result.ProductsSkipped++
					continue
				}
				id = existing.ID
				ids[sp.CategorySlug] = id
			}
			p.CategoryID = id
		}

		if err := products.Create(&p); err != nil {
			return result, fmt.Errorf("create product %s: %w", p.Name, err)
		}
		result.ProductsCreated++
	}

	return result, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func list(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
