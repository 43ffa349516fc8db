//go:build !integration

package usecase_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/usecase"
)

func TestParseWeight(t *testing.T) {
	max := decimal.NewFromInt(50)
	cases := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"2.5", "2.5", nil},
		{"2,5", "2.5", nil},
		{" 2.50 ", "2.5", nil},
		{"3 кг", "3", nil},
		{"0.1kg", "0.1", nil},
		{"50", "50", nil},
		{"50.01", "", domain.ErrWeightOutOfRange},
		{"0", "", domain.ErrWeightOutOfRange},
		{"-1", "", domain.ErrWeightOutOfRange},
		{"abc", "", domain.ErrInvalidWeight},
		{"", "", domain.ErrInvalidWeight},
		{"1e1", "", domain.ErrInvalidWeight},
		{"2 5", "", domain.ErrInvalidWeight},
		{"2 5 кг", "", domain.ErrInvalidWeight},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := usecase.ParseWeight(tc.in, max)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseWeight(%q) err = %v, want %v", tc.in, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWeight(%q) unexpected error: %v", tc.in, err)
			}
			if got.String() != tc.want {
				t.Fatalf("ParseWeight(%q) = %s, want %s", tc.in, got.String(), tc.want)
			}
		})
	}
}
