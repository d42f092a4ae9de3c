package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appctx "retailops/internal/core/context"
	"retailops/internal/core/id"
	"retailops/internal/domain/audit"
)

// AuditLog implements audit.Log in memory. Payloads are kept uncompressed.
type AuditLog struct{ s *Store }

var _ audit.Log = (*AuditLog)(nil)

func (l *AuditLog) LogChange(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) error {
	payload, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.auditEntries = append(l.s.auditEntries, audit.Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     appctx.GetUserID(ctx),
		Changes:    payload,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

func (l *AuditLog) History(_ context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	var out []audit.Entry
	for i := len(l.s.auditEntries) - 1; i >= 0 && len(out) < limit; i-- {
		e := l.s.auditEntries[i]
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}
