package sqlite

import (
	"context"
	"time"

	"github.com/rollshift/rollshift-server/internal/domain"
)

// RecordingExecutor implements [domain.ActionExecutor] by writing action
// records to SQLite. This is the naive implementation used until a real
// scheduler integration is available.
type RecordingExecutor struct {
	Records *ActionRecordRepo
	Now     func() time.Time
}

func (e *RecordingExecutor) Execute(ctx context.Context, rolloutID domain.RolloutID, step int, action domain.DeploymentAction) (domain.ActionResult, error) {
	rec := domain.ActionRecord{
		RolloutID: rolloutID,
		App:       action.App,
		Kind:      action.Kind,
		Step:      step,
		State:     domain.ActionStateExecuted,
		UpdatedAt: e.now(),
	}
	if err := e.Records.Put(ctx, rec); err != nil {
		return domain.ActionResult{State: domain.ActionStateFailed}, err
	}
	return domain.ActionResult{State: domain.ActionStateExecuted}, nil
}

func (e *RecordingExecutor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
