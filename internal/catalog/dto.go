// AngelaMos | 2026
// dto.go

package catalog

import (
	"github.com/selfmode/selfmode-api/internal/user"
)

type PriceResponse struct {
	Amount         string  `json:"amount"`
	Currency       string  `json:"currency"`
	OriginalAmount *string `json:"originalAmount,omitempty"`
}

type PackageResponse struct {
	ID        string        `json:"id"`
	Category  string        `json:"category"`
	Level     string        `json:"level"`
	AgeGroup  user.AgeGroup `json:"ageGroup"`
	Price     PriceResponse `json:"price"`
	Duration  string        `json:"duration"`
	Features  []string      `json:"features"`
	IsPopular bool          `json:"isPopular"`
}

type CatalogResponse struct {
	Packages []PackageResponse `json:"packages"`
}

type FilteredCatalogResponse struct {
	AgeGroup user.AgeGroup     `json:"ageGroup"`
	Packages []PackageResponse `json:"packages"`
}

func ToPackageResponse(p *Package) PackageResponse {
	return PackageResponse{
		ID:       p.ID,
		Category: p.Category,
		Level:    p.Level,
		AgeGroup: p.AgeGroup,
		Price: PriceResponse{
			Amount:         p.PriceAmount,
			Currency:       p.PriceCurrency,
			OriginalAmount: p.OriginalPriceAmount,
		},
		Duration:  p.Duration,
		Features:  p.Features,
		IsPopular: p.IsPopular,
	}
}

func ToPackageResponseList(packages []Package) []PackageResponse {
	out := make([]PackageResponse, 0, len(packages))
	for i := range packages {
		out = append(out, ToPackageResponse(&packages[i]))
	}
	return out
}
