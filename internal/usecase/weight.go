package usecase

import (
	"strings"

	"github.com/shopspring/decimal"

	"qwintry-bot/internal/domain"
)

var weightSuffixes = []string{"кг", "kg", "кило"}

// ParseWeight accepts "2.5", "2,5", "2.5 кг" and similar. The result is
// positive and not above max.
func ParseWeight(input string, max decimal.Decimal) (decimal.Decimal, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, suf := range weightSuffixes {
		if strings.HasSuffix(s, suf) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suf))
			break
		}
	}
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || strings.ContainsAny(s, "eE \t") {
		return decimal.Zero, domain.ErrInvalidWeight
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidWeight
	}
	if !d.IsPositive() || d.GreaterThan(max) {
		return decimal.Zero, domain.ErrWeightOutOfRange
	}
	return d, nil
}
