package postgres

import (
	"context"
	stderrors "errors"

	errors "github.com/frahmantamala/fintrack/internal"
	creditcardDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/creditcard"
	sipDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/sip"
	"github.com/frahmantamala/fintrack/internal/sip"
	"gorm.io/gorm"
)

type SIPRepository struct {
	db *gorm.DB
}

func NewSIPRepository(db *gorm.DB) sip.RepositoryAPI {
	return &SIPRepository{db: db}
}

func (r *SIPRepository) ListByUser(ctx context.Context, userID int64) ([]*sip.SIP, error) {
	var rows []*sipDatamodel.SIP
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return sip.FromDataModelSlice(rows), nil
}

func (r *SIPRepository) GetByID(ctx context.Context, userID, id int64) (*sip.SIP, error) {
	var row sipDatamodel.SIP
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrSIPNotFound
		}
		return nil, err
	}
	return sip.FromDataModel(&row), nil
}

func (r *SIPRepository) Create(ctx context.Context, s *sip.SIP) error {
	row := sip.ToDataModel(s)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	s.ID, s.CreatedAt, s.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

// Update writes every column so a cleared end date is persisted as NULL.
func (r *SIPRepository) Update(ctx context.Context, s *sip.SIP) error {
	row := sip.ToDataModel(s)
	res := r.db.WithContext(ctx).Model(row).Where("user_id = ?", s.UserID).Select("*").Omit("id", "user_id", "created_at").Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrSIPNotFound
	}
	s.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *SIPRepository) Delete(ctx context.Context, userID, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&sipDatamodel.SIP{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrSIPNotFound
	}
	return nil
}

func (r *SIPRepository) CardOwnedBy(ctx context.Context, userID, cardID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&creditcardDatamodel.CreditCard{}).Where("id = ? AND user_id = ?", cardID, userID).Count(&count).Error
	return count > 0, err
}
