package recommend

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

var _ engagementRepo = &engagementRepoMock{}

type engagementRepoMock struct {
	EngagementByIDsFunc func(ctx context.Context, itemType domain.ItemType, ids []uuid.UUID) (map[uuid.UUID]domain.Engagement, error)

	calls struct {
		EngagementByIDs []struct {
			Ctx      context.Context
			ItemType domain.ItemType
			Ids      []uuid.UUID
		}
	}
	lockEngagementByIDs sync.RWMutex
}

func (mock *engagementRepoMock) EngagementByIDs(ctx context.Context, itemType domain.ItemType, ids []uuid.UUID) (map[uuid.UUID]domain.Engagement, error) {
	if mock.EngagementByIDsFunc == nil {
		panic("engagementRepoMock.EngagementByIDsFunc: method is nil but engagementRepo.EngagementByIDs was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		ItemType domain.ItemType
		Ids      []uuid.UUID
	}{
		Ctx:      ctx,
		ItemType: itemType,
		Ids:      ids,
	}
	mock.lockEngagementByIDs.Lock()
	mock.calls.EngagementByIDs = append(mock.calls.EngagementByIDs, callInfo)
	mock.lockEngagementByIDs.Unlock()
	return mock.EngagementByIDsFunc(ctx, itemType, ids)
}

func (mock *engagementRepoMock) EngagementByIDsCalls() []struct {
	Ctx      context.Context
	ItemType domain.ItemType
	Ids      []uuid.UUID
} {
	mock.lockEngagementByIDs.RLock()
	calls := mock.calls.EngagementByIDs
	mock.lockEngagementByIDs.RUnlock()
	return calls
}
