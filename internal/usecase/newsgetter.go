package usecase

import (
	"context"

	"feedreader/internal/domain"
)

// NewsStorage определяет интерфейс для получения записей из хранилища.
type NewsStorage interface {
	GetNews(ctx context.Context, n int) ([]domain.Item, error)
}

// NewsGetterUseCase отдает сохраненные записи для API.
type NewsGetterUseCase struct {
	storage NewsStorage
}

func NewNewsGetterUseCase(s NewsStorage) *NewsGetterUseCase {
	return &NewsGetterUseCase{storage: s}
}

// GetNews возвращает не более limit последних записей.
func (us *NewsGetterUseCase) GetNews(ctx context.Context, limit int) ([]domain.Item, error) {
	return us.storage.GetNews(ctx, limit)
}
