package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/indexes"
	"github.com/staffhub/staffhub/internal/domain/models"
	"github.com/staffhub/staffhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreate_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email:        "  Ada@Example.COM ",
		Name:         "  Ada Lovelace  ",
		PasswordHash: "x",
		MaxCapacity:  100,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Email != "ada@example.com" {
		t.Errorf("email: got %q, want normalized lowercase", created.Email)
	}
	if created.Name != "Ada Lovelace" {
		t.Errorf("name: got %q, want trimmed", created.Name)
	}
	if created.Role != models.RoleEngineer {
		t.Errorf("role: got %q, want default engineer", created.Role)
	}
	if created.Seniority != models.SeniorityJunior {
		t.Errorf("seniority: got %q, want default junior", created.Seniority)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := userstore.New(db)

	first := models.User{Email: "ada@example.com", Name: "Ada", PasswordHash: "x", MaxCapacity: 100}
	if _, err := store.Create(ctx, first); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same address in a different case must still collide.
	second := models.User{Email: "ADA@example.com", Name: "Other Ada", PasswordHash: "x", MaxCapacity: 100}
	_, err := store.Create(ctx, second)
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := []struct {
		name string
		user models.User
	}{
		{"bad role", models.User{Email: "a@b.com", Name: "A", Role: "admin", MaxCapacity: 100}},
		{"bad seniority", models.User{Email: "a@b.com", Name: "A", Seniority: "principal", MaxCapacity: 100}},
		{"capacity too high", models.User{Email: "a@b.com", Name: "A", MaxCapacity: 150}},
		{"capacity negative", models.User{Email: "a@b.com", Name: "A", MaxCapacity: -1}},
	}
	for _, tc := range cases {
		if _, err := store.Create(ctx, tc.user); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}
}

func TestGetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{
		Email: "ada@example.com", Name: "Ada", PasswordHash: "x", MaxCapacity: 100,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Lookup normalizes the address before matching.
	got, err := store.GetByEmail(ctx, " ADA@Example.com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("name: got %q, want %q", got.Name, "Ada")
	}

	_, err = store.GetByEmail(ctx, "nobody@example.com")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestList_RoleFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []models.User{
		{Email: "zoe@example.com", Name: "Zoe", Role: models.RoleEngineer, MaxCapacity: 100},
		{Email: "ada@example.com", Name: "Ada", Role: models.RoleEngineer, MaxCapacity: 100},
		{Email: "grace@example.com", Name: "Grace", Role: models.RoleManager, MaxCapacity: 100},
	}
	for _, u := range seed {
		if _, err := store.Create(ctx, u); err != nil {
			t.Fatalf("Create %s failed: %v", u.Email, err)
		}
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 users, got %d", len(all))
	}
	// Sorted by folded name: Ada, Grace, Zoe.
	if all[0].Name != "Ada" || all[2].Name != "Zoe" {
		t.Errorf("unexpected order: %q, %q, %q", all[0].Name, all[1].Name, all[2].Name)
	}

	engineers, err := store.List(ctx, "engineer")
	if err != nil {
		t.Fatalf("List(engineer) failed: %v", err)
	}
	if len(engineers) != 2 {
		t.Errorf("expected 2 engineers, got %d", len(engineers))
	}

	managers, err := store.List(ctx, "Manager")
	if err != nil {
		t.Fatalf("List(Manager) failed: %v", err)
	}
	if len(managers) != 1 {
		t.Errorf("expected 1 manager, got %d", len(managers))
	}
}
