package banks

import (
	"context"
	"errors"

	"swarna-backend/internal/domain"

	"gorm.io/gorm"
)

var ErrCodeTaken = errors.New("Bank code already exists")

type Service struct {
	DB *gorm.DB
}

type CreateBankInput struct {
	Name   string
	Code   string
	Branch string
}

func (s *Service) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	var banks []domain.Bank
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

func (s *Service) CreateBank(ctx context.Context, in CreateBankInput) (*domain.Bank, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Bank{}).Where("code = ?", in.Code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCodeTaken
	}

	bank := &domain.Bank{
		Name:   in.Name,
		Code:   in.Code,
		Branch: in.Branch,
	}
	if err := s.DB.WithContext(ctx).Create(bank).Error; err != nil {
		return nil, err
	}
	return bank, nil
}
