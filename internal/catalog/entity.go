// AngelaMos | 2026
// entity.go

package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/selfmode/selfmode-api/internal/user"
)

const (
	LevelBasic = "BASIC"
	LevelPlus  = "PLUS"
	LevelMax   = "MAX"
)

// FeatureList maps a JSONB array column to a string slice.
type FeatureList []string

func (f FeatureList) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *FeatureList) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	case nil:
		*f = nil
		return nil
	default:
		return fmt.Errorf("scan feature list: unsupported type %T", src)
	}
}

type Package struct {
	ID                  string        `db:"id"`
	Category            string        `db:"category"`
	Level               string        `db:"level"`
	AgeGroup            user.AgeGroup `db:"age_group"`
	PriceAmount         string        `db:"price_amount"`
	PriceCurrency       string        `db:"price_currency"`
	OriginalPriceAmount *string       `db:"original_price_amount"`
	Duration            string        `db:"duration"`
	Features            FeatureList   `db:"features"`
	IsPopular           bool          `db:"is_popular"`
	IsActive            bool          `db:"is_active"`
	CreatedAt           time.Time     `db:"created_at"`
}
