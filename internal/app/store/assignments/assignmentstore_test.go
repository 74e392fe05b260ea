package assignmentstore_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	assignmentstore "github.com/staffhub/staffhub/internal/app/store/assignments"
	"github.com/staffhub/staffhub/internal/domain/models"
	"github.com/staffhub/staffhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func dates(months int) (time.Time, time.Time) {
	now := time.Now().UTC()
	return now, now.AddDate(0, months, 0)
}

func TestAvailableCapacity_NoAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)

	got, err := store.AvailableCapacity(ctx, eng.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("AvailableCapacity failed: %v", err)
	}
	if got != 100 {
		t.Errorf("available: got %d, want 100", got)
	}
}

func TestAvailableCapacity_UnknownEngineer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.AvailableCapacity(ctx, primitive.NewObjectID(), time.Now().UTC())
	if !errors.Is(err, assignmentstore.ErrEngineerNotFound) {
		t.Errorf("expected ErrEngineerNotFound, got %v", err)
	}
}

func TestAvailableCapacity_SumsActiveAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")

	start, end := dates(3)
	fixtures.CreateAssignment(ctx, eng.ID, proj.ID, 60, start, end)

	got, err := store.AvailableCapacity(ctx, eng.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("AvailableCapacity failed: %v", err)
	}
	if got != 40 {
		t.Errorf("available: got %d, want 40", got)
	}
}

func TestAvailableCapacity_ExcludesEndedAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")

	// Ended last month; must not count no matter the allocation.
	now := time.Now().UTC()
	fixtures.CreateAssignment(ctx, eng.ID, proj.ID, 80, now.AddDate(0, -4, 0), now.AddDate(0, -1, 0))

	got, err := store.AvailableCapacity(ctx, eng.ID, now)
	if err != nil {
		t.Fatalf("AvailableCapacity failed: %v", err)
	}
	if got != 100 {
		t.Errorf("available: got %d, want 100", got)
	}
}

func TestAvailableCapacity_CountsFutureAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")

	// Starts next month. It has not begun, but its end date is in the
	// future, so it already counts against capacity.
	now := time.Now().UTC()
	fixtures.CreateAssignment(ctx, eng.ID, proj.ID, 30, now.AddDate(0, 1, 0), now.AddDate(0, 4, 0))

	got, err := store.AvailableCapacity(ctx, eng.ID, now)
	if err != nil {
		t.Fatalf("AvailableCapacity failed: %v", err)
	}
	if got != 70 {
		t.Errorf("available: got %d, want 70", got)
	}
}

func TestAvailableCapacity_NotClampedWhenOverCommitted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 50)
	proj := fixtures.CreateProject(ctx, "Billing Rework")

	// Seed data that is already over capacity (fixtures bypass the check).
	start, end := dates(3)
	fixtures.CreateAssignment(ctx, eng.ID, proj.ID, 80, start, end)

	got, err := store.AvailableCapacity(ctx, eng.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("AvailableCapacity failed: %v", err)
	}
	if got != -30 {
		t.Errorf("available: got %d, want -30", got)
	}
}

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)

	created, err := store.Create(ctx, assignmentstore.CreateParams{
		EngineerID:           eng.ID,
		ProjectID:            proj.ID,
		AllocationPercentage: 60,
		StartDate:            start,
		EndDate:              end,
		Role:                 "Developer",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if created.AllocationPercentage != 60 {
		t.Errorf("allocation: got %d, want 60", created.AllocationPercentage)
	}

	// References come back resolved, not as raw ids.
	if created.Engineer.Name != "Ada Lovelace" {
		t.Errorf("engineer name: got %q, want %q", created.Engineer.Name, "Ada Lovelace")
	}
	if created.Engineer.Email != "ada@example.com" {
		t.Errorf("engineer email: got %q", created.Engineer.Email)
	}
	if created.Project.Name != "Billing Rework" {
		t.Errorf("project name: got %q, want %q", created.Project.Name, "Billing Rework")
	}
}

func TestCreate_RejectsManager(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mgr := fixtures.CreateManager(ctx, "Grace Hopper", "grace@example.com")
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)

	_, err := store.Create(ctx, assignmentstore.CreateParams{
		EngineerID:           mgr.ID,
		ProjectID:            proj.ID,
		AllocationPercentage: 10,
		StartDate:            start,
		EndDate:              end,
		Role:                 "Developer",
	})
	if !errors.Is(err, assignmentstore.ErrNotAnEngineer) {
		t.Errorf("expected ErrNotAnEngineer, got %v", err)
	}

	// The role check runs before any capacity math; nothing persists.
	count, countErr := db.Collection("assignments").CountDocuments(ctx, bson.M{})
	if countErr != nil {
		t.Fatalf("CountDocuments failed: %v", countErr)
	}
	if count != 0 {
		t.Errorf("expected no assignments persisted, found %d", count)
	}
}

func TestCreate_UnknownProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	start, end := dates(3)

	_, err := store.Create(ctx, assignmentstore.CreateParams{
		EngineerID:           eng.ID,
		ProjectID:            primitive.NewObjectID(),
		AllocationPercentage: 10,
		StartDate:            start,
		EndDate:              end,
		Role:                 "Developer",
	})
	if !errors.Is(err, assignmentstore.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestCreate_CapacityScenario(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)

	// Existing 60% assignment leaves 40% headroom.
	if _, err := store.Create(ctx, assignmentstore.CreateParams{
		EngineerID: eng.ID, ProjectID: proj.ID,
		AllocationPercentage: 60, StartDate: start, EndDate: end, Role: "Developer",
	}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	available, err := store.AvailableCapacity(ctx, eng.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("AvailableCapacity failed: %v", err)
	}
	if available != 40 {
		t.Fatalf("available: got %d, want 40", available)
	}

	// Requesting 50% must fail, and the message must report the 40.
	_, err = store.Create(ctx, assignmentstore.CreateParams{
		EngineerID: eng.ID, ProjectID: proj.ID,
		AllocationPercentage: 50, StartDate: start, EndDate: end, Role: "Developer",
	})
	var capErr *assignmentstore.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if capErr.Available != 40 {
		t.Errorf("CapacityError.Available: got %d, want 40", capErr.Available)
	}
	if !strings.Contains(capErr.Error(), "40%") {
		t.Errorf("error message should report headroom, got %q", capErr.Error())
	}

	// The failed create must not persist.
	count, countErr := db.Collection("assignments").CountDocuments(ctx, bson.M{})
	if countErr != nil {
		t.Fatalf("CountDocuments failed: %v", countErr)
	}
	if count != 1 {
		t.Fatalf("expected 1 assignment after rejected create, found %d", count)
	}

	// Exactly 40% fits; capacity then reports zero.
	if _, err := store.Create(ctx, assignmentstore.CreateParams{
		EngineerID: eng.ID, ProjectID: proj.ID,
		AllocationPercentage: 40, StartDate: start, EndDate: end, Role: "Developer",
	}); err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	available, err = store.AvailableCapacity(ctx, eng.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("AvailableCapacity failed: %v", err)
	}
	if available != 0 {
		t.Errorf("available after filling capacity: got %d, want 0", available)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Update(ctx, primitive.NewObjectID(), assignmentstore.Patch{})
	if !errors.Is(err, assignmentstore.ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestUpdate_AllocationRecheck(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)

	// Two assignments: 60% + 30%.
	first := fixtures.CreateAssignment(ctx, eng.ID, proj.ID, 60, start, end)
	fixtures.CreateAssignment(ctx, eng.ID, proj.ID, 30, start, end)

	// Raising the 60% one to 70% fits (30 other + 70 = 100).
	alloc := 70
	updated, err := store.Update(ctx, first.ID, assignmentstore.Patch{AllocationPercentage: &alloc})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.AllocationPercentage != 70 {
		t.Errorf("allocation: got %d, want 70", updated.AllocationPercentage)
	}

	// Raising it to 80% exceeds capacity (30 other + 80 = 110); the
	// error reports the remaining headroom of 70.
	alloc = 80
	_, err = store.Update(ctx, first.ID, assignmentstore.Patch{AllocationPercentage: &alloc})
	var capErr *assignmentstore.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if capErr.Available != 70 {
		t.Errorf("CapacityError.Available: got %d, want 70", capErr.Available)
	}

	// The stored record is unchanged after the rejected update.
	detail, err := store.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if detail.AllocationPercentage != 70 {
		t.Errorf("stored allocation after rejected update: got %d, want 70", detail.AllocationPercentage)
	}
}

func TestUpdate_ExplicitZeroStillRechecks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)
	a := fixtures.CreateAssignment(ctx, eng.ID, proj.ID, 60, start, end)

	// Setting an allocation to an explicit 0 is a present field: it goes
	// through the re-check (trivially passing) and is applied.
	zero := 0
	updated, err := store.Update(ctx, a.ID, assignmentstore.Patch{AllocationPercentage: &zero})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.AllocationPercentage != 0 {
		t.Errorf("allocation: got %d, want 0", updated.AllocationPercentage)
	}

	available, err := store.AvailableCapacity(ctx, eng.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("AvailableCapacity failed: %v", err)
	}
	if available != 100 {
		t.Errorf("available: got %d, want 100", available)
	}
}

func TestUpdate_OmittedAllocationSkipsCheck(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 50)
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)

	// Over-committed seed data: role-only updates must still go through.
	a := fixtures.CreateAssignment(ctx, eng.ID, proj.ID, 80, start, end)

	role := "Tech Lead"
	updated, err := store.Update(ctx, a.ID, assignmentstore.Patch{Role: &role})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Role != "Tech Lead" {
		t.Errorf("role: got %q, want %q", updated.Role, "Tech Lead")
	}
	if updated.AllocationPercentage != 80 {
		t.Errorf("allocation: got %d, want 80 (unchanged)", updated.AllocationPercentage)
	}
}

func TestDelete_FreesAllocationImmediately(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)
	a := fixtures.CreateAssignment(ctx, eng.ID, proj.ID, 60, start, end)

	if err := store.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Capacity is derived, never cached: the very next check sees 100.
	available, err := store.AvailableCapacity(ctx, eng.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("AvailableCapacity failed: %v", err)
	}
	if available != 100 {
		t.Errorf("available after delete: got %d, want 100", available)
	}

	// A full allocation now fits.
	if _, err := store.Create(ctx, assignmentstore.CreateParams{
		EngineerID: eng.ID, ProjectID: proj.ID,
		AllocationPercentage: 100, StartDate: start, EndDate: end, Role: "Developer",
	}); err != nil {
		t.Errorf("Create after delete failed: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Delete(ctx, primitive.NewObjectID())
	if !errors.Is(err, assignmentstore.ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestGetByID_ResolvesReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)

	created, err := store.Create(ctx, assignmentstore.CreateParams{
		EngineerID: eng.ID, ProjectID: proj.ID,
		AllocationPercentage: 25, StartDate: start, EndDate: end, Role: "Developer",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	detail, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if detail.Engineer.ID != eng.ID || detail.Engineer.Name != "Ada Lovelace" {
		t.Errorf("engineer not resolved: %+v", detail.Engineer)
	}
	if detail.Project.ID != proj.ID || detail.Project.Name != "Billing Rework" {
		t.Errorf("project not resolved: %+v", detail.Project)
	}
}

func TestListByEngineer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ada := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	alan := fixtures.CreateEngineer(ctx, "Alan Turing", "alan@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)

	fixtures.CreateAssignment(ctx, ada.ID, proj.ID, 40, start, end)
	fixtures.CreateAssignment(ctx, ada.ID, proj.ID, 20, start, end)
	fixtures.CreateAssignment(ctx, alan.ID, proj.ID, 50, start, end)

	mine, err := store.ListByEngineer(ctx, ada.ID)
	if err != nil {
		t.Fatalf("ListByEngineer failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(mine))
	}
	for _, d := range mine {
		if d.EngineerID != ada.ID {
			t.Errorf("unexpected engineer %v in results", d.EngineerID)
		}
		if d.Engineer.Email != "ada@example.com" {
			t.Errorf("engineer not resolved in list: %+v", d.Engineer)
		}
		if d.Project.Name != "Billing Rework" {
			t.Errorf("project not resolved in list: %+v", d.Project)
		}
	}

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 assignments, got %d", len(all))
	}
}

func TestCapacityInvariant_SerialWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eng := fixtures.CreateEngineer(ctx, "Ada Lovelace", "ada@example.com", 100)
	proj := fixtures.CreateProject(ctx, "Billing Rework")
	start, end := dates(3)

	// A mix of creates and updates, some rejected; the active sum must
	// never exceed max capacity afterwards.
	for _, alloc := range []int{30, 30, 30, 30, 30} {
		_, _ = store.Create(ctx, assignmentstore.CreateParams{
			EngineerID: eng.ID, ProjectID: proj.ID,
			AllocationPercentage: alloc, StartDate: start, EndDate: end, Role: "Developer",
		})
	}

	var active []models.Assignment
	cur, err := db.Collection("assignments").Find(ctx, bson.M{
		"engineer_id": eng.ID,
		"end_date":    bson.M{"$gte": time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if err := cur.All(ctx, &active); err != nil {
		t.Fatalf("cursor failed: %v", err)
	}

	sum := 0
	for _, a := range active {
		sum += a.AllocationPercentage
	}
	if sum > eng.MaxCapacity {
		t.Errorf("capacity invariant violated: sum %d > max %d", sum, eng.MaxCapacity)
	}
	if sum != 90 {
		t.Errorf("expected 3 of 5 creates to land (sum 90), got %d", sum)
	}
}
