package implementation

import (
	"context"
	"errors"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionTitleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewSessionTitleRepository(db *gorm.DB) contract.SessionTitleRepository {
	return &SessionTitleRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *SessionTitleRepositoryImpl) Upsert(ctx context.Context, title *entity.SessionTitle) error {
	m := r.mapper.SessionTitleToModel(title)
	// INSERT ... ON CONFLICT (session_id) DO UPDATE — the store's row-level
	// atomicity is the only serialization point per session id.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*title = *r.mapper.SessionTitleToEntity(m)
	return nil
}

func (r *SessionTitleRepositoryImpl) FindBySessionId(ctx context.Context, sessionId uuid.UUID) (*entity.SessionTitle, error) {
	var m model.SessionTitle
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionTitleToEntity(&m), nil
}

func (r *SessionTitleRepositoryImpl) Delete(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.SessionTitle{}).Error
}

func (r *SessionTitleRepositoryImpl) Count(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SessionTitle{}).
		Where("session_id = ?", sessionId).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
