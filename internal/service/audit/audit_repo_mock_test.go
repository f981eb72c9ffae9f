package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

var _ auditRepo = &auditRepoMock{}

type auditRepoMock struct {
	ListFunc            func(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error)
	GetByActorFunc      func(ctx context.Context, actorID uuid.UUID, limit int, offset int) ([]domain.AuditLogEntry, int, error)
	StatsFunc           func(ctx context.Context, now time.Time) (domain.AuditStats, error)
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int, error)
	LogFunc             func(ctx context.Context, e domain.AuditLogEntry) error

	calls struct {
		List []struct {
			Ctx context.Context
			F   domain.AuditFilter
		}
		GetByActor []struct {
			Ctx     context.Context
			ActorID uuid.UUID
			Limit   int
			Offset  int
		}
		Stats []struct {
			Ctx context.Context
			Now time.Time
		}
		DeleteOlderThan []struct {
			Ctx    context.Context
			Cutoff time.Time
		}
		Log []struct {
			Ctx context.Context
			E   domain.AuditLogEntry
		}
	}
	lockList            sync.RWMutex
	lockGetByActor      sync.RWMutex
	lockStats           sync.RWMutex
	lockDeleteOlderThan sync.RWMutex
	lockLog             sync.RWMutex
}

func (mock *auditRepoMock) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error) {
	if mock.ListFunc == nil {
		panic("auditRepoMock.ListFunc: method is nil but auditRepo.List was just called")
	}
	callInfo := struct {
		Ctx context.Context
		F   domain.AuditFilter
	}{
		Ctx: ctx,
		F:   f,
	}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, f)
}

func (mock *auditRepoMock) ListCalls() []struct {
	Ctx context.Context
	F   domain.AuditFilter
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *auditRepoMock) GetByActor(ctx context.Context, actorID uuid.UUID, limit int, offset int) ([]domain.AuditLogEntry, int, error) {
	if mock.GetByActorFunc == nil {
		panic("auditRepoMock.GetByActorFunc: method is nil but auditRepo.GetByActor was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		ActorID uuid.UUID
		Limit   int
		Offset  int
	}{
		Ctx:     ctx,
		ActorID: actorID,
		Limit:   limit,
		Offset:  offset,
	}
	mock.lockGetByActor.Lock()
	mock.calls.GetByActor = append(mock.calls.GetByActor, callInfo)
	mock.lockGetByActor.Unlock()
	return mock.GetByActorFunc(ctx, actorID, limit, offset)
}

func (mock *auditRepoMock) GetByActorCalls() []struct {
	Ctx     context.Context
	ActorID uuid.UUID
	Limit   int
	Offset  int
} {
	mock.lockGetByActor.RLock()
	calls := mock.calls.GetByActor
	mock.lockGetByActor.RUnlock()
	return calls
}

func (mock *auditRepoMock) Stats(ctx context.Context, now time.Time) (domain.AuditStats, error) {
	if mock.StatsFunc == nil {
		panic("auditRepoMock.StatsFunc: method is nil but auditRepo.Stats was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Now time.Time
	}{
		Ctx: ctx,
		Now: now,
	}
	mock.lockStats.Lock()
	mock.calls.Stats = append(mock.calls.Stats, callInfo)
	mock.lockStats.Unlock()
	return mock.StatsFunc(ctx, now)
}

func (mock *auditRepoMock) StatsCalls() []struct {
	Ctx context.Context
	Now time.Time
} {
	mock.lockStats.RLock()
	calls := mock.calls.Stats
	mock.lockStats.RUnlock()
	return calls
}

func (mock *auditRepoMock) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	if mock.DeleteOlderThanFunc == nil {
		panic("auditRepoMock.DeleteOlderThanFunc: method is nil but auditRepo.DeleteOlderThan was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Cutoff time.Time
	}{
		Ctx:    ctx,
		Cutoff: cutoff,
	}
	mock.lockDeleteOlderThan.Lock()
	mock.calls.DeleteOlderThan = append(mock.calls.DeleteOlderThan, callInfo)
	mock.lockDeleteOlderThan.Unlock()
	return mock.DeleteOlderThanFunc(ctx, cutoff)
}

func (mock *auditRepoMock) DeleteOlderThanCalls() []struct {
	Ctx    context.Context
	Cutoff time.Time
} {
	mock.lockDeleteOlderThan.RLock()
	calls := mock.calls.DeleteOlderThan
	mock.lockDeleteOlderThan.RUnlock()
	return calls
}

func (mock *auditRepoMock) Log(ctx context.Context, e domain.AuditLogEntry) error {
	if mock.LogFunc == nil {
		panic("auditRepoMock.LogFunc: method is nil but auditRepo.Log was just called")
	}
	callInfo := struct {
		Ctx context.Context
		E   domain.AuditLogEntry
	}{
		Ctx: ctx,
		E:   e,
	}
	mock.lockLog.Lock()
	mock.calls.Log = append(mock.calls.Log, callInfo)
	mock.lockLog.Unlock()
	return mock.LogFunc(ctx, e)
}

func (mock *auditRepoMock) LogCalls() []struct {
	Ctx context.Context
	E   domain.AuditLogEntry
} {
	mock.lockLog.RLock()
	calls := mock.calls.Log
	mock.lockLog.RUnlock()
	return calls
}
