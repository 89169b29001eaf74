package bootstrap

import (
	"testing"

	userstore "github.com/studypointin/studypoint/internal/app/store/users"
	"github.com/studypointin/studypoint/internal/domain/models"
	"github.com/studypointin/studypoint/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	appCfg := AppConfig{
		AdminEmail:    "admin@test.com",
		AdminPassword: "correct horse battery",
		AdminName:     "Site Admin",
	}

	if err := ensureAdmin(ctx, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	users := userstore.New(db)
	u, err := users.GetByEmail(ctx, "admin@test.com")
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if u.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", u.Role)
	}
	if u.Status != "active" {
		t.Errorf("expected status 'active', got %q", u.Status)
	}
	if _, err := users.Authenticate(ctx, "admin@test.com", "correct horse battery"); err != nil {
		t.Errorf("expected the configured password to authenticate: %v", err)
	}
}

func TestEnsureAdmin_SkipsExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	users := userstore.New(db)
	existing := models.User{FullName: "Existing Admin", Email: "admin@test.com", Role: "admin"}
	if _, err := users.Create(ctx, existing, "original-password"); err != nil {
		t.Fatalf("failed to create existing user: %v", err)
	}

	deps := DBDeps{MongoDatabase: db}
	appCfg := AppConfig{
		AdminEmail:    "admin@test.com",
		AdminPassword: "different-password",
		AdminName:     "Someone Else",
	}

	if err := ensureAdmin(ctx, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	// The existing account and its password must be left alone.
	if _, err := users.Authenticate(ctx, "admin@test.com", "original-password"); err != nil {
		t.Errorf("existing password no longer authenticates: %v", err)
	}
}

func TestEnsureAdmin_NoConfigIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}

	if err := ensureAdmin(ctx, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	users := userstore.New(db)
	n, err := users.Count(ctx, bson.M{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no users to be created, got %d", n)
	}
}
