package repledge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"swarna-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// Ref identifies a repledge either by its id or by the originating loan number.
type Ref struct {
	RepledgeID uuid.UUID
	LoanNo     string
}

// CreateRepledgeInput is the intake payload recorded when the bank loan is taken.
type CreateRepledgeInput struct {
	RepledgeNo   string
	LoanNo       string
	BankID       uuid.UUID
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	StartDate    time.Time
}

// CloseCommitRequest is the single atomic write that settles a repledge:
// insert the settlement record and flip the status to closed as one unit.
type CloseCommitRequest struct {
	RepledgeID         uuid.UUID
	EndDate            time.Time
	PaymentMethod      string
	CalculationMethod  CalculationMethod
	DurationDays       int
	FinalInterestRate  decimal.Decimal
	CalculatedInterest decimal.Decimal
	TotalPayable       decimal.Decimal
	CommitToken        uuid.UUID
}

// Store is the data-store surface the close workflow depends on.
type Store interface {
	GetRepledge(ctx context.Context, ref Ref) (*domain.Repledge, error)
	CloseRepledge(ctx context.Context, req CloseCommitRequest) (*domain.RepledgeSettlement, error)
}

func (s *Service) GetRepledge(ctx context.Context, ref Ref) (*domain.Repledge, error) {
	q := s.DB.WithContext(ctx).Preload("Bank")
	if ref.RepledgeID != uuid.Nil {
		q = q.Where("repledge_id = ?", ref.RepledgeID)
	} else if ref.LoanNo != "" {
		q = q.Where("loan_no = ?", ref.LoanNo)
	} else {
		return nil, ErrNotFound
	}

	var rp domain.Repledge
	if err := q.First(&rp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rp, nil
}

func (s *Service) ListOpenRepledges(ctx context.Context) ([]domain.Repledge, error) {
	var repledges []domain.Repledge
	err := s.DB.WithContext(ctx).
		Preload("Bank").
		Where("status = ?", domain.RepledgeStatusOpen).
		Order(`"createdAt" DESC`).
		Find(&repledges).Error
	if err != nil {
		return nil, err
	}
	return repledges, nil
}

func (s *Service) CreateRepledge(ctx context.Context, in CreateRepledgeInput) (*domain.Repledge, error) {
	if !in.Principal.IsPositive() {
		return nil, ErrInvalidPrincipal
	}
	if in.InterestRate.IsNegative() {
		return nil, ErrInvalidRate
	}

	var out *domain.Repledge
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bank domain.Bank
		if err := tx.Where("bank_id = ?", in.BankID).First(&bank).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBankNotFound
			}
			return err
		}

		rp := &domain.Repledge{
			RepledgeNo:   in.RepledgeNo,
			LoanNo:       in.LoanNo,
			BankID:       bank.BankID,
			Principal:    in.Principal,
			InterestRate: in.InterestRate,
			StartDate:    in.StartDate,
			Status:       domain.RepledgeStatusOpen,
		}
		if err := tx.Create(rp).Error; err != nil {
			return err
		}
		rp.Bank = &bank
		out = rp
		return nil
	})
	return out, err
}

// CloseRepledge applies the settlement as one transaction: reload the row,
// reject if already closed, insert the settlement and audit event, then flip
// the status. A retried request carrying the commit token of a settlement
// that already landed returns that settlement instead of failing.
func (s *Service) CloseRepledge(ctx context.Context, req CloseCommitRequest) (*domain.RepledgeSettlement, error) {
	var out *domain.RepledgeSettlement

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rp domain.Repledge
		if err := tx.Where("repledge_id = ?", req.RepledgeID).First(&rp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if rp.Status == domain.RepledgeStatusClosed {
			if req.CommitToken != uuid.Nil {
				var existing domain.RepledgeSettlement
				err := tx.Where("repledge_id = ? AND commit_token = ?", rp.RepledgeID, req.CommitToken).
					First(&existing).Error
				if err == nil {
					// Same logical commit: the first attempt landed.
					out = &existing
					return nil
				}
			}
			return ErrAlreadyClosed
		}

		settlement := &domain.RepledgeSettlement{
			RepledgeID:         rp.RepledgeID,
			EndDate:            req.EndDate,
			PaymentMethod:      req.PaymentMethod,
			CalculationMethod:  string(req.CalculationMethod),
			DurationDays:       req.DurationDays,
			FinalInterestRate:  req.FinalInterestRate,
			CalculatedInterest: req.CalculatedInterest,
			TotalPayable:       req.TotalPayable,
			CommitToken:        req.CommitToken,
		}
		if err := tx.Create(settlement).Error; err != nil {
			return err
		}

		eventDataBytes, _ := json.Marshal(map[string]interface{}{
			"payment_method":      req.PaymentMethod,
			"calculation_method":  string(req.CalculationMethod),
			"duration_days":       req.DurationDays,
			"calculated_interest": req.CalculatedInterest,
			"total_payable":       req.TotalPayable,
		})
		if err := tx.Create(&domain.RepledgeEvent{
			RepledgeID: rp.RepledgeID,
			EventType:  "CLOSED",
			EventData:  datatypes.JSON(eventDataBytes),
		}).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.Repledge{}).
			Where("repledge_id = ? AND status = ?", rp.RepledgeID, domain.RepledgeStatusOpen).
			Update("status", domain.RepledgeStatusClosed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to a concurrent close; roll everything back.
			return ErrAlreadyClosed
		}

		out = settlement
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("repledge_id", req.RepledgeID.String()).
		Str("total_payable", req.TotalPayable.StringFixed(2)).
		Msg("Repledge closed")
	return out, nil
}
