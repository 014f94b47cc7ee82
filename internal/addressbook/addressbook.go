// Package addressbook manages a user's saved shipping addresses and the
// single-default invariant: per user, the number of default addresses is
// always min(1, address count).
package addressbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/models"
)

type Service struct {
	DB *gorm.DB
}

type Input struct {
	Label         string `json:"label"`
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	IsDefault     bool   `json:"is_default"`
}

func (in Input) validate() error {
	switch {
	case in.Label == "":
		return fmt.Errorf("%w: label required", domain.ErrValidation)
	case in.RecipientName == "":
		return fmt.Errorf("%w: recipient_name required", domain.ErrValidation)
	case in.Phone == "":
		return fmt.Errorf("%w: phone required", domain.ErrValidation)
	case in.Street == "":
		return fmt.Errorf("%w: street required", domain.ErrValidation)
	case in.City == "":
		return fmt.Errorf("%w: city required", domain.ErrValidation)
	case in.PostalCode == "":
		return fmt.Errorf("%w: postal_code required", domain.ErrValidation)
	case in.Country == "":
		return fmt.Errorf("%w: country required", domain.ErrValidation)
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID uint) ([]models.CustomerAddress, error) {
	var out []models.CustomerAddress
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, label ASC").
		Find(&out).Error
	return out, err
}

func (s *Service) Get(ctx context.Context, userID, id uint) (*models.CustomerAddress, error) {
	var addr models.CustomerAddress
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: address %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *Service) Create(ctx context.Context, userID uint, in Input) (*models.CustomerAddress, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var addr *models.CustomerAddress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		addr, err = CreateTx(tx, userID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// CreateTx inserts an address inside an existing transaction, applying
// the default rules. The order engine uses it to persist a checkout
// address in the same unit of work as the order itself.
func CreateTx(tx *gorm.DB, userID uint, in Input) (*models.CustomerAddress, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var count int64
	if err := tx.Model(&models.CustomerAddress{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}

	isDefault := in.IsDefault
	if count == 0 {
		// The first address is always the default.
		isDefault = true
	} else if isDefault {
		if err := clearDefaults(tx, userID); err != nil {
			return nil, err
		}
	}

	addr := models.CustomerAddress{
		UserID:        userID,
		Label:         in.Label,
		RecipientName: in.RecipientName,
		Phone:         in.Phone,
		Street:        in.Street,
		City:          in.City,
		State:         in.State,
		PostalCode:    in.PostalCode,
		Country:       in.Country,
		IsDefault:     isDefault,
	}
	if err := tx.Create(&addr).Error; err != nil {
		return nil, err
	}
	if err := verifyInvariant(tx, userID); err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *Service) Update(ctx context.Context, userID, id uint, in Input) (*models.CustomerAddress, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var addr models.CustomerAddress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: address %d", domain.ErrNotFound, id)
			}
			return err
		}

		addr.Label = in.Label
		addr.RecipientName = in.RecipientName
		addr.Phone = in.Phone
		addr.Street = in.Street
		addr.City = in.City
		addr.State = in.State
		addr.PostalCode = in.PostalCode
		addr.Country = in.Country
		now := time.Now().UTC()
		addr.UpdatedAt = &now

		switch {
		case in.IsDefault && !addr.IsDefault:
			if err := clearDefaults(tx, userID); err != nil {
				return err
			}
			addr.IsDefault = true
		case !in.IsDefault && addr.IsDefault:
			// Dropping the default flag is only possible if another
			// address can take over; the lowest id wins.
			var count int64
			if err := tx.Model(&models.CustomerAddress{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count > 1 {
				addr.IsDefault = false
				if err := promoteLowest(tx, userID, addr.ID); err != nil {
					return err
				}
			}
		}

		if err := tx.Save(&addr).Error; err != nil {
			return err
		}
		return verifyInvariant(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var addr models.CustomerAddress
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: address %d", domain.ErrNotFound, id)
			}
			return err
		}

		if err := tx.Delete(&addr).Error; err != nil {
			return err
		}

		if addr.IsDefault {
			if err := promoteLowest(tx, userID, 0); err != nil {
				return err
			}
		}
		return verifyInvariant(tx, userID)
	})
}

func (s *Service) SetDefault(ctx context.Context, userID, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var addr models.CustomerAddress
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: address %d", domain.ErrNotFound, id)
			}
			return err
		}

		if err := clearDefaults(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(&addr).UpdateColumn("is_default", true).Error; err != nil {
			return err
		}
		return verifyInvariant(tx, userID)
	})
}

func clearDefaults(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.CustomerAddress{}).
		Where("user_id = ? AND is_default", userID).
		UpdateColumn("is_default", false).Error
}

// promoteLowest makes the lowest-id address of the user (excluding
// exceptID) the default, if any remain.
func promoteLowest(tx *gorm.DB, userID, exceptID uint) error {
	var next models.CustomerAddress
	q := tx.Where("user_id = ?", userID)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Order("id ASC").First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Model(&next).UpdateColumn("is_default", true).Error
}

// verifyInvariant aborts the transaction if the default bookkeeping ever
// drifts. Hitting this is a bug, not a user error.
func verifyInvariant(tx *gorm.DB, userID uint) error {
	var total, defaults int64
	if err := tx.Model(&models.CustomerAddress{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.CustomerAddress{}).Where("user_id = ? AND is_default", userID).Count(&defaults).Error; err != nil {
		return err
	}

	want := int64(0)
	if total > 0 {
		want = 1
	}
	if defaults != want {
		return fmt.Errorf("%w: user %d has %d default addresses over %d total",
			domain.ErrInvariant, userID, defaults, total)
	}
	return nil
}
