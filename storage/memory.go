package storage

import (
	"context"
	"sort"
	"sync"

	"feedreader/internal/domain"
)

// MemoryNewsDB хранит записи в памяти процесса. Ссылка записи уникальна,
// как и в таблице news.
type MemoryNewsDB struct {
	mu               sync.RWMutex
	items            []domain.Item
	links            map[string]struct{}
	defaultNewsLimit int
}

func NewMemoryNewsDB(defaultNewsLimit int) *MemoryNewsDB {
	return &MemoryNewsDB{
		links:            make(map[string]struct{}),
		defaultNewsLimit: defaultNewsLimit,
	}
}

func (db *MemoryNewsDB) SaveNews(ctx context.Context, feedURL string, channel *domain.Channel) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	saved := 0
	for _, item := range channel.Items {
		if _, ok := db.links[item.Link]; ok {
			continue
		}
		item.FeedURL = feedURL
		db.links[item.Link] = struct{}{}
		db.items = append(db.items, item)
		saved++
	}
	return saved, nil
}

func (db *MemoryNewsDB) GetNews(ctx context.Context, n int) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := n
	if limit <= 0 {
		limit = db.defaultNewsLimit
	}
	db.mu.RLock()
	items := make([]domain.Item, len(db.items))
	copy(items, db.items)
	db.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PubDate.After(items[j].PubDate)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (db *MemoryNewsDB) Close() {}
