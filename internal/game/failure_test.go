package game

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/jacl-coder/HomeDefense-Server/internal/models"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage/mock"
)

var errDisk = errors.New("disk on fire")

func newMockEngine(t *testing.T, opts ...Option) (*Engine, *mock.MockHomeStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mock.NewMockHomeStore(ctrl)
	opts = append([]Option{WithClock(fixedClock), WithDice(fixedDice(0))}, opts...)
	engine, err := NewEngine(store, opts...)
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	return engine, store
}

func TestCommandStoreUnavailable(t *testing.T) {
	engine, store := newMockEngine(t)
	store.EXPECT().GetHome(gomock.Any(), "h").Return(models.Home{}, storage.Unavailable("get home", errDisk))

	_, err := engine.UpgradeWeapon(context.Background(), "h")
	if !errors.Is(err, storage.ErrUnavailable) || !errors.Is(err, errDisk) {
		t.Fatalf("expected unavailable error wrapping the cause, got %v", err)
	}
}

func TestCommandUpdateFailureReturnsUnchangedHome(t *testing.T) {
	engine, store := newMockEngine(t)
	home := homeWith("h", func(h *models.Home) { h.Resources = 500 })
	store.EXPECT().GetHome(gomock.Any(), "h").Return(home, nil)
	store.EXPECT().UpdateHome(gomock.Any(), "h", gomock.Any(), home.Version).
		Return(models.Home{}, storage.Unavailable("update home", errDisk))

	res, err := engine.UpgradeWeapon(context.Background(), "h")
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if res.Applied || res.Home != home {
		t.Fatalf("expected unchanged home on failure, got %+v", res)
	}
}

func TestCommandConflictRetriesThenGivesUp(t *testing.T) {
	engine, store := newMockEngine(t, WithMaxRetries(2))
	home := homeWith("h", func(h *models.Home) { h.Resources = 500 })
	store.EXPECT().GetHome(gomock.Any(), "h").Return(home, nil).Times(3)
	store.EXPECT().UpdateHome(gomock.Any(), "h", gomock.Any(), home.Version).
		Return(models.Home{}, storage.ErrConflict).Times(3)

	_, err := engine.UpgradeWeapon(context.Background(), "h")
	if !errors.Is(err, ErrTooManyConflicts) || !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrTooManyConflicts wrapping ErrConflict, got %v", err)
	}
}

func TestCommandConflictRevalidates(t *testing.T) {
	engine, store := newMockEngine(t)
	before := homeWith("h", func(h *models.Home) { h.Resources = 50 })
	// 另一个写入者已经花掉了资源
	after := before
	after.Resources = 0
	after.Version = 2

	gomock.InOrder(
		store.EXPECT().GetHome(gomock.Any(), "h").Return(before, nil),
		store.EXPECT().UpdateHome(gomock.Any(), "h", gomock.Any(), int64(1)).Return(models.Home{}, storage.ErrConflict),
		store.EXPECT().GetHome(gomock.Any(), "h").Return(after, nil),
	)

	res, err := engine.UpgradeWeapon(context.Background(), "h")
	if err != nil {
		t.Fatalf("UpgradeWeapon returned error: %v", err)
	}
	if res.Applied || res.Reason != ReasonUnaffordable || res.Home != after {
		t.Fatalf("expected unaffordable after re-read, got %+v", res)
	}
}

func TestCombatLogFailureSkipsUpdate(t *testing.T) {
	engine, store := newMockEngine(t)
	home := homeWith("h", nil)
	store.EXPECT().ListActiveHomes(gomock.Any()).Return([]models.Home{home}, nil)
	store.EXPECT().AppendAttackLog(gomock.Any(), gomock.Any()).Return(models.AttackLog{}, storage.Unavailable("append attack log", errDisk))
	// 未设置 UpdateHome 期望，调用它会让测试失败

	summary, err := engine.RunCombatTick(context.Background())
	if err != nil {
		t.Fatalf("RunCombatTick returned error: %v", err)
	}
	if summary.FailedCount != 1 || !errors.Is(summary.Results[0].Err, storage.ErrUnavailable) {
		t.Fatalf("expected one failed home, got %+v", summary)
	}
	if summary.Results[0].Error == "" {
		t.Errorf("expected error message in result")
	}
}

func TestCombatPartialFailure(t *testing.T) {
	engine, store := newMockEngine(t)
	homes := []models.Home{homeWith("bad", nil), homeWith("good", nil)}
	store.EXPECT().ListActiveHomes(gomock.Any()).Return(homes, nil)
	store.EXPECT().AppendAttackLog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.AttackLog) (models.AttackLog, error) {
			if entry.HomeID == "bad" {
				return models.AttackLog{}, errDisk
			}
			entry.ID = "log-1"
			return entry, nil
		}).Times(2)
	store.EXPECT().UpdateHome(gomock.Any(), "good", gomock.Any(), int64(1)).
		DoAndReturn(func(_ context.Context, _ string, patch models.HomePatch, _ int64) (models.Home, error) {
			next := patch.Apply(homes[1])
			next.Version = 2
			return next, nil
		})

	summary, err := engine.RunCombatTick(context.Background())
	if err != nil {
		t.Fatalf("RunCombatTick returned error: %v", err)
	}
	if summary.ProcessedCount != 2 || summary.FailedCount != 1 {
		t.Fatalf("expected 2 processed and 1 failed, got %+v", summary)
	}
	if summary.Results[0].Err == nil || summary.Results[1].Err != nil {
		t.Fatalf("expected only the bad home to fail, got %+v", summary.Results)
	}
	if summary.Results[1].RemainingShield != 45 {
		t.Errorf("expected good home to be resolved, got %+v", summary.Results[1])
	}
}

func TestCombatUpdateFailureAfterLog(t *testing.T) {
	engine, store := newMockEngine(t)
	home := homeWith("h", nil)
	store.EXPECT().ListActiveHomes(gomock.Any()).Return([]models.Home{home}, nil)
	store.EXPECT().AppendAttackLog(gomock.Any(), gomock.Any()).Return(models.AttackLog{ID: "log-1"}, nil)
	store.EXPECT().UpdateHome(gomock.Any(), "h", gomock.Any(), home.Version).Return(models.Home{}, storage.ErrConflict)

	summary, _ := engine.RunCombatTick(context.Background())
	if summary.FailedCount != 1 || !errors.Is(summary.Results[0].Err, storage.ErrConflict) {
		t.Fatalf("expected failed update to be reported, got %+v", summary)
	}
}

func TestCombatListFailure(t *testing.T) {
	engine, store := newMockEngine(t)
	store.EXPECT().ListActiveHomes(gomock.Any()).Return(nil, storage.Unavailable("list active homes", errDisk))

	if _, err := engine.RunCombatTick(context.Background()); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// recorderStore 组合两个 mock，模拟支持事务写入的存储
type recorderStore struct {
	*mock.MockHomeStore
	*mock.MockAttackRecorder
}

func TestCombatRecorderRetriesOnConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	homes := mock.NewMockHomeStore(ctrl)
	recorder := mock.NewMockAttackRecorder(ctrl)
	engine, err := NewEngine(recorderStore{homes, recorder}, WithClock(fixedClock), WithDice(fixedDice(0)))
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}

	stale := homeWith("h", nil)
	fresh := stale
	fresh.Shield = 20
	fresh.Version = 2

	homes.EXPECT().ListActiveHomes(gomock.Any()).Return([]models.Home{stale}, nil)
	gomock.InOrder(
		recorder.EXPECT().RecordAttack(gomock.Any(), "h", gomock.Any(), int64(1), gomock.Any()).
			Return(models.Home{}, models.AttackLog{}, storage.ErrConflict),
		homes.EXPECT().GetHome(gomock.Any(), "h").Return(fresh, nil),
		recorder.EXPECT().RecordAttack(gomock.Any(), "h", gomock.Any(), int64(2), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, patch models.HomePatch, _ int64, entry models.AttackLog) (models.Home, models.AttackLog, error) {
				next := patch.Apply(fresh)
				next.Version = 3
				return next, entry, nil
			}),
	)

	summary, err := engine.RunCombatTick(context.Background())
	if err != nil {
		t.Fatalf("RunCombatTick returned error: %v", err)
	}
	if summary.FailedCount != 0 || summary.Results[0].RemainingShield != 15 {
		t.Fatalf("expected combat recomputed on fresh state, got %+v", summary.Results[0])
	}
}

func TestRegenFailureIsReported(t *testing.T) {
	engine, store := newMockEngine(t)
	home := homeWith("h", func(h *models.Home) { h.Shield = 10 })
	store.EXPECT().ListActiveHomes(gomock.Any()).Return([]models.Home{home}, nil)
	store.EXPECT().UpdateHome(gomock.Any(), "h", gomock.Any(), home.Version).Return(models.Home{}, storage.Unavailable("update home", errDisk))

	summary, err := engine.RunRegenTick(context.Background())
	if err != nil {
		t.Fatalf("RunRegenTick returned error: %v", err)
	}
	if summary.FailedCount != 1 || summary.Results[0].Status != RegenFailed {
		t.Fatalf("expected failed regen result, got %+v", summary)
	}
}
