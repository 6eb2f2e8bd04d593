package sqlite_test

import (
	"testing"

	"github.com/rollshift/rollshift-server/internal/domain"
	"github.com/rollshift/rollshift-server/internal/domain/actionrecordrepotest"
	"github.com/rollshift/rollshift-server/internal/domain/rolloutrepotest"
	"github.com/rollshift/rollshift-server/internal/domain/staterepotest"
	"github.com/rollshift/rollshift-server/internal/infrastructure/sqlite"
)

func TestStateRepo(t *testing.T) {
	staterepotest.Run(t, func(t *testing.T) domain.StateRepository {
		db := sqlite.OpenTestDB(t)
		return &sqlite.StateRepo{DB: db}
	})
}

func TestRolloutRepo(t *testing.T) {
	rolloutrepotest.Run(t, func(t *testing.T) domain.RolloutRepository {
		db := sqlite.OpenTestDB(t)
		return &sqlite.RolloutRepo{DB: db}
	})
}

func TestActionRecordRepo(t *testing.T) {
	actionrecordrepotest.Run(t, func(t *testing.T) domain.ActionRecordRepository {
		db := sqlite.OpenTestDB(t)
		return &sqlite.ActionRecordRepo{DB: db}
	})
}
