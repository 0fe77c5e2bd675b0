package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/dmitrijs2005/clickstore/internal/server/models"
)

// MemoryRepository keeps cart lines in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]models.CartItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[int64]models.CartItem)}
}

func (r *MemoryRepository) Create(_ context.Context, item *models.CartItem) (*models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = time.Now()
	r.items[item.ID] = *item
	return item, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, userID int64, ownerToken string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CartItem, 0)
	for _, it := range r.items {
		if it.UserID == userID && it.OwnerToken == ownerToken {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id, userID int64, ownerToken string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok || it.UserID != userID || it.OwnerToken != ownerToken {
		return nil, common.ErrorNotFound
	}
	return &it, nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id, userID int64, ownerToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok || it.UserID != userID || it.OwnerToken != ownerToken {
		return common.ErrorNotFound
	}
	delete(r.items, id)
	return nil
}

// DeleteByUser drops every line of userID, mirroring the cascading foreign
// key of the SQL schema.
func (r *MemoryRepository) DeleteByUser(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, it := range r.items {
		if it.UserID == userID {
			delete(r.items, id)
		}
	}
}
