package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"

	"github.com/Joseda-hg/taskboard/internal/model"
)

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	created, err := store.CreateUser(ctx, UserInput{Name: "bob", PasswordHash: "hash", Email: "b@x.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected user ID to be set")
	}

	if _, err := store.CreateUser(ctx, UserInput{Name: "bobby", PasswordHash: "hash2", Email: "b@x.com"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	var count int
	if err := store.DB.QueryRow("SELECT COUNT(*) FROM users WHERE user_email = ?", "b@x.com").Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 row, got %d", count)
	}
}

func TestGetUserByEmail(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	created := mustCreateUser(t, store, "alice@x.com")

	got, err := store.GetUserByEmail(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if diff := deep.Equal(got, created); diff != nil {
		t.Fatalf("user mismatch: %v", diff)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@x.com")
	mustCreateUser(t, store, "bob@x.com")

	updated, err := store.UpdateUser(ctx, alice.ID, UserInput{Name: "alicia", PasswordHash: "new", Email: "alicia@x.com"})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	want := model.User{ID: alice.ID, Name: "alicia", PasswordHash: "new", Email: "alicia@x.com"}
	if diff := deep.Equal(updated, want); diff != nil {
		t.Fatalf("updated user mismatch: %v", diff)
	}

	if _, err := store.UpdateUser(ctx, alice.ID, UserInput{Name: "alicia", PasswordHash: "new", Email: "bob@x.com"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when taking another user's email, got %v", err)
	}
	if _, err := store.UpdateUser(ctx, 9999, UserInput{Name: "ghost", PasswordHash: "x", Email: "ghost@x.com"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestSectionRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := mustCreateUser(t, store, "bob@x.com")

	created, err := store.CreateSection(ctx, user.ID, "Work")
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	if created.UserID != user.ID || created.Title != "Work" {
		t.Fatalf("unexpected section %+v", created)
	}

	updated, err := store.UpdateSection(ctx, user.ID, created.ID, "Home")
	if err != nil {
		t.Fatalf("update section: %v", err)
	}

	sections, err := store.ListSections(ctx, user.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if diff := deep.Equal(sections, []model.Section{updated}); diff != nil {
		t.Fatalf("sections mismatch: %v", diff)
	}

	if err := store.DeleteSection(ctx, user.ID, created.ID); err != nil {
		t.Fatalf("delete section: %v", err)
	}
	if err := store.DeleteSection(ctx, user.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := store.UpdateSection(ctx, user.ID, created.ID, "Again"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update after delete, got %v", err)
	}

	sections, err = store.ListSections(ctx, user.ID)
	if err != nil {
		t.Fatalf("list sections after delete: %v", err)
	}
	if len(sections) != 0 {
		t.Fatalf("expected no sections, got %d", len(sections))
	}
}

func TestSectionsAreScopedToOwner(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@x.com")
	bob := mustCreateUser(t, store, "bob@x.com")
	section := mustCreateSection(t, store, alice.ID, "Alice only")

	if _, err := store.UpdateSection(ctx, bob.ID, section.ID, "Hijacked"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating another user's section, got %v", err)
	}
	if err := store.DeleteSection(ctx, bob.ID, section.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another user's section, got %v", err)
	}

	sections, err := store.ListSections(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 0 {
		t.Fatalf("expected bob to see no sections, got %d", len(sections))
	}
}

func TestTaskLifecycle(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := mustCreateUser(t, store, "bob@x.com")
	todo := mustCreateSection(t, store, user.ID, "Todo")
	done := mustCreateSection(t, store, user.ID, "Done")

	created, err := store.CreateTask(ctx, TaskInput{Title: "Write tests", SectionID: todo.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.Description != nil {
		t.Fatalf("expected nil description, got %q", *created.Description)
	}

	description := "Add coverage"
	moved, err := store.UpdateTask(ctx, user.ID, created.ID, TaskInput{Title: "Write more tests", Description: &description, SectionID: done.ID})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}

	got, err := store.GetTask(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if diff := deep.Equal(got, moved); diff != nil {
		t.Fatalf("task mismatch: %v", diff)
	}
	if got.SectionID != done.ID || got.Description == nil || *got.Description != description {
		t.Fatalf("unexpected task after update %+v", got)
	}

	tasks, err := store.ListTasks(ctx, user.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}

	if err := store.DeleteTask(ctx, user.ID, created.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := store.GetTask(ctx, user.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteTask(ctx, user.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTasksAreScopedToOwner(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@x.com")
	bob := mustCreateUser(t, store, "bob@x.com")
	aliceSection := mustCreateSection(t, store, alice.ID, "Alice")
	bobSection := mustCreateSection(t, store, bob.ID, "Bob")

	task, err := store.CreateTask(ctx, TaskInput{Title: "Secret", SectionID: aliceSection.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := store.GetTask(ctx, bob.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound reading another user's task, got %v", err)
	}
	if _, err := store.UpdateTask(ctx, bob.ID, task.ID, TaskInput{Title: "Stolen", SectionID: bobSection.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating another user's task, got %v", err)
	}
	if err := store.DeleteTask(ctx, bob.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another user's task, got %v", err)
	}

	unchanged, err := store.GetTask(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if diff := deep.Equal(unchanged, task); diff != nil {
		t.Fatalf("task changed: %v", diff)
	}
}

func TestCreateTaskRequiresExistingSection(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	_, err := store.CreateTask(context.Background(), TaskInput{Title: "Orphan", SectionID: 424242})
	if err == nil {
		t.Fatalf("expected foreign key violation")
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		t.Fatalf("expected a raw store error, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := mustCreateUser(t, store, "bob@x.com")
	section := mustCreateSection(t, store, user.ID, "Work")
	task, err := store.CreateTask(ctx, TaskInput{Title: "Ship", SectionID: section.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	deleted, err := store.DeleteUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if deleted.ID != user.ID {
		t.Fatalf("expected deleted user %d, got %d", user.ID, deleted.ID)
	}
	if _, err := store.DeleteUser(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := store.GetUser(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted user, got %v", err)
	}

	var remaining int
	if err := store.DB.QueryRow("SELECT (SELECT COUNT(*) FROM sections WHERE id_section = ?) + (SELECT COUNT(*) FROM tasks WHERE id_task = ?)", section.ID, task.ID).Scan(&remaining); err != nil {
		t.Fatalf("count remaining rows: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected cascade to remove section and task, %d rows remain", remaining)
	}
}

func TestDeleteSectionCascadesTasks(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	user := mustCreateUser(t, store, "bob@x.com")
	section := mustCreateSection(t, store, user.ID, "Work")
	task, err := store.CreateTask(ctx, TaskInput{Title: "Ship", SectionID: section.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := store.DeleteSection(ctx, user.ID, section.ID); err != nil {
		t.Fatalf("delete section: %v", err)
	}
	if _, err := store.GetTask(ctx, user.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected task to be removed with its section, got %v", err)
	}
}

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"sqlite":     DialectSQLite,
		" SQLite ":   DialectSQLite,
		"postgres":   DialectPostgres,
		"postgresql": DialectPostgres,
		"pgx":        DialectPostgres,
	}
	for input, want := range cases {
		got, err := ParseDialect(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", input, want, got)
		}
	}
	if _, err := ParseDialect("mysql"); err == nil {
		t.Fatalf("expected error for mysql")
	}
}

func TestRebind(t *testing.T) {
	query := "UPDATE tasks SET title_task = ? WHERE id_task = ? AND " + ownedSections

	sqliteStore := &Store{dialect: DialectSQLite}
	if got := sqliteStore.rebind(query); got != query {
		t.Fatalf("expected sqlite query unchanged, got %q", got)
	}

	pgStore := &Store{dialect: DialectPostgres}
	want := "UPDATE tasks SET title_task = $1 WHERE id_task = $2 AND id_section IN (SELECT id_section FROM sections WHERE id_user = $3)"
	if got := pgStore.rebind(query); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db, DialectSQLite), func() {
		_ = db.Close()
	}
}

func mustCreateUser(t *testing.T, store *Store, email string) model.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), UserInput{Name: "user", PasswordHash: "hash", Email: email})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func mustCreateSection(t *testing.T, store *Store, userID int64, title string) model.Section {
	t.Helper()
	section, err := store.CreateSection(context.Background(), userID, title)
	if err != nil {
		t.Fatalf("create section %s: %v", title, err)
	}
	return section
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	if _, err := Open(DialectSQLite, ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
	if _, err := Open(Dialect("mysql"), "x"); err == nil {
		t.Fatalf("expected error for unsupported dialect")
	}
}

func TestOpenFileEnablesForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.db")
	db, err := Open(DialectSQLite, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := NewStore(db, DialectSQLite)
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	var enabled int
	if err := store.DB.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("expected foreign keys enabled, got %d", enabled)
	}

	// Applying the schema again on reopen must be harmless.
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := Open(DialectSQLite, path)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	_ = reopened.Close()
}
