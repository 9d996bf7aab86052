package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xvierd/flowboard/internal/domain"
)

// Set FLOWBOARD_TEST_POSTGRES to a database URL to run these tests.
func newTestPgStore(t *testing.T) *PgStore {
	t.Helper()
	dsn := os.Getenv("FLOWBOARD_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("FLOWBOARD_TEST_POSTGRES not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgres() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPgStore_CRUD(t *testing.T) {
	store := newTestPgStore(t)
	ctx := context.Background()
	scope := "test/users/" + uuid.NewString()

	id, err := store.Create(ctx, scope, mustTask(t, "Postgres task", domain.TypeDaily))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Update(ctx, scope, id, domain.StatusPatch(domain.StatusInProgress)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	tasks, err := store.List(ctx, scope)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != domain.StatusInProgress || tasks[0].Type != domain.TypeDaily {
		t.Errorf("List() = %+v", tasks)
	}

	if err := store.Delete(ctx, scope, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, scope, id); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("second Delete() error = %v, want ErrTaskNotFound", err)
	}
}

func TestPgStore_SubscribeSeesOtherClients(t *testing.T) {
	watcher := newTestPgStore(t)
	writer := newTestPgStore(t)
	ctx := context.Background()
	scope := "test/users/" + uuid.NewString()

	rec := &recorder{}
	sub, err := watcher.Subscribe(scope, rec.onChange, rec.onError)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Unsubscribe()

	if _, err := writer.Create(ctx, scope, mustTask(t, "From elsewhere", domain.TypeProject)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	waitFor(t, func() bool {
		last := rec.last()
		return len(last) == 1 && last[0].Title == "From elsewhere"
	})
}
