package scheduler

import (
	"context"
	"sync"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

var _ backupTotals = &backupTotalsMock{}

type backupTotalsMock struct {
	TotalsFunc func(ctx context.Context) (domain.BackupTotals, error)

	calls struct {
		Totals []struct {
			Ctx context.Context
		}
	}
	lockTotals sync.RWMutex
}

func (mock *backupTotalsMock) Totals(ctx context.Context) (domain.BackupTotals, error) {
	if mock.TotalsFunc == nil {
		panic("backupTotalsMock.TotalsFunc: method is nil but backupTotals.Totals was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockTotals.Lock()
	mock.calls.Totals = append(mock.calls.Totals, callInfo)
	mock.lockTotals.Unlock()
	return mock.TotalsFunc(ctx)
}

func (mock *backupTotalsMock) TotalsCalls() []struct {
	Ctx context.Context
} {
	mock.lockTotals.RLock()
	calls := mock.calls.Totals
	mock.lockTotals.RUnlock()
	return calls
}
