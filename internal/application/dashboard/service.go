package dashboard

import (
	"context"

	"swarna-backend/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// Summary is the data behind the back-office dashboard tiles.
type Summary struct {
	OpenRepledges        int64           `json:"open_repledges"`
	ClosedRepledges      int64           `json:"closed_repledges"`
	Banks                int64           `json:"banks"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding"`
	InterestPaid         decimal.Decimal `json:"interest_paid"`
}

func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	db := s.DB.WithContext(ctx)
	out := &Summary{}

	if err := db.Model(&domain.Repledge{}).Where("status = ?", domain.RepledgeStatusOpen).Count(&out.OpenRepledges).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Repledge{}).Where("status = ?", domain.RepledgeStatusClosed).Count(&out.ClosedRepledges).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Bank{}).Count(&out.Banks).Error; err != nil {
		return nil, err
	}

	var principal decimal.NullDecimal
	row := db.Model(&domain.Repledge{}).
		Select("SUM(principal)").
		Where("status = ?", domain.RepledgeStatusOpen).
		Row()
	if err := row.Scan(&principal); err != nil {
		return nil, err
	}
	out.PrincipalOutstanding = principal.Decimal

	var interest decimal.NullDecimal
	row = db.Model(&domain.RepledgeSettlement{}).
		Select("SUM(calculated_interest)").
		Row()
	if err := row.Scan(&interest); err != nil {
		return nil, err
	}
	out.InterestPaid = interest.Decimal

	return out, nil
}
