// Package catalog is the thin product/identity collaborator around the
// order core: seller-scoped product CRUD and user registration/login.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/models"
	"storefront/internal/util"
)

type Service struct {
	DB *gorm.DB
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
}

func (in ProductInput) validate() error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name required", domain.ErrValidation)
	case !in.Price.IsPositive():
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.DB.WithContext(ctx).Preload("Images").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type ProductPage struct {
	Data []models.Product `json:"data"`
	Meta PageMeta         `json:"meta"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func (s *Service) List(ctx context.Context, page, size int) (*ProductPage, error) {
	offset, limit := util.Paginate(page, size)

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Product
	if err := s.DB.WithContext(ctx).
		Preload("Images").
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	return &ProductPage{
		Data: items,
		Meta: PageMeta{
			Page:       page,
			Size:       limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	}, nil
}

func (s *Service) Create(ctx context.Context, sellerID uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		SellerID:    sellerID,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Update is scoped to the owning seller; anyone else gets NotFound.
// Stock edited here is the seller restocking, not an order mutation.
func (s *Service) Update(ctx context.Context, sellerID, id uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var p models.Product
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND seller_id = ?", id, sellerID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
			}
			return err
		}

		p.Name = in.Name
		p.Description = in.Description
		p.Price = in.Price
		p.Stock = in.Stock
		p.Category = in.Category
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, sellerID, id uint) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND seller_id = ?", id, sellerID).
		Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	return nil
}

// AddImage registers an already-stored image path for a product. Byte
// storage lives elsewhere; the catalog only keeps the path.
func (s *Service) AddImage(ctx context.Context, sellerID, productID uint, path string) (*models.ProductImage, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: image_path required", domain.ErrValidation)
	}

	var img models.ProductImage
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Where("id = ? AND seller_id = ?", productID, sellerID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
			}
			return err
		}
		img = models.ProductImage{ProductID: productID, ImagePath: path}
		return tx.Create(&img).Error
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}
