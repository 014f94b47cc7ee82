package order

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/models"
)

const numberAttempts = 5

// nextOrderNumber produces an ORD<YYYYMMDD>-<4 digits> number that is
// free at the time of the check. The date+random scheme alone cannot
// guarantee uniqueness, so collisions are retried and, failing that, the
// suffix falls back to a UUID fragment; a unique index on order_number
// backstops the race.
func nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	date := now.Format("20060102")

	for i := 0; i < numberAttempts; i++ {
		candidate := fmt.Sprintf("ORD%s-%04d", date, rand.Intn(10000))
		var count int64
		if err := tx.Model(&models.Order{}).
			Where("order_number = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}

	return fmt.Sprintf("ORD%s-%s", date, uuid.NewString()[:8]), nil
}
