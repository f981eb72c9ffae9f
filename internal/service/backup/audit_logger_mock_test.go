package backup

import (
	"context"
	"sync"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

var _ auditLogger = &auditLoggerMock{}

type auditLoggerMock struct {
	LogFunc func(ctx context.Context, e domain.AuditLogEntry) error

	calls struct {
		Log []struct {
			Ctx context.Context
			E   domain.AuditLogEntry
		}
	}
	lockLog sync.RWMutex
}

func (mock *auditLoggerMock) Log(ctx context.Context, e domain.AuditLogEntry) error {
	if mock.LogFunc == nil {
		panic("auditLoggerMock.LogFunc: method is nil but auditLogger.Log was just called")
	}
	callInfo := struct {
		Ctx context.Context
		E   domain.AuditLogEntry
	}{Ctx: ctx, E: e}
	mock.lockLog.Lock()
	mock.calls.Log = append(mock.calls.Log, callInfo)
	mock.lockLog.Unlock()
	return mock.LogFunc(ctx, e)
}

func (mock *auditLoggerMock) LogCalls() []struct {
	Ctx context.Context
	E   domain.AuditLogEntry
} {
	mock.lockLog.RLock()
	calls := mock.calls.Log
	mock.lockLog.RUnlock()
	return calls
}
