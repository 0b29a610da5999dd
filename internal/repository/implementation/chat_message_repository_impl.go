package implementation

import (
	"context"
	"errors"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.ChatMessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ChatMessageToEntity(m)
	return nil
}

func (r *ChatMessageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ChatMessage{}).Error
}

func (r *ChatMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	var m model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatMessageToEntity(&m), nil
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatMessageToEntity(m)
	}
	return entities, nil
}

func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatMessageRepositoryImpl) ListSessionActivity(ctx context.Context) ([]contract.SessionActivity, error) {
	var rows []contract.SessionActivity
	// Ascending by last activity: the stalest session comes first. This
	// mirrors the sidebar ordering the product shipped with.
	err := r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Select("session_id, MAX(created_at) AS last_activity").
		Group("session_id").
		Order("last_activity ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
