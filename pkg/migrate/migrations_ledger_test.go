package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/garrisonhq/garrison-backend/pkg/migrate"
)

func TestMigrationsDirectoryIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestTransactionsMigrationEnforcesLedgerConstraints(t *testing.T) {
	content := readMigration(t, "*_create_transactions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transactions",
		"CHECK (quantity > 0)",
		"REFERENCES asset_types(id) ON DELETE RESTRICT",
		"REFERENCES bases(id) ON DELETE RESTRICT",
		"transactions_base_attribution",
		"transactions_transfer_group",
		"idx_transactions_transfer_group",
		"DROP TABLE IF EXISTS transactions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsersMigrationPinsScopedRolesToABase(t *testing.T) {
	content := readMigration(t, "*_create_users.sql")

	checks := []string{
		"CREATE TYPE user_role_enum",
		"users_home_base_for_scoped_roles",
		"CONSTRAINT users_email_key UNIQUE (email)",
		"DROP TABLE IF EXISTS users",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
