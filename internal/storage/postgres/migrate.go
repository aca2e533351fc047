package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/cory-johannsen/colony/migrations"
)

// Migration directions accepted by Migrate.
const (
	Up   = "up"
	Down = "down"
)

// MigrationResult describes the schema after a Migrate call.
type MigrationResult struct {
	Version uint
	Dirty   bool
	// Changed is false when the schema was already at the target.
	Changed bool
}

// Migrate applies the embedded turn report migrations to the database at dsn.
// steps limits how many migrations run; 0 runs all of them in direction.
//
// Precondition: direction is Up or Down; steps >= 0.
// Postcondition: Returns the resulting schema version, or a non-nil error.
func Migrate(dsn, direction string, steps int) (MigrationResult, error) {
	if direction != Up && direction != Down {
		return MigrationResult{}, fmt.Errorf("invalid direction %q: must be 'up' or 'down'", direction)
	}
	if steps < 0 {
		return MigrationResult{}, fmt.Errorf("steps must be >= 0, got %d", steps)
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return MigrationResult{}, fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch {
	case direction == Up && steps > 0:
		err = m.Steps(steps)
	case direction == Up:
		err = m.Up()
	case steps > 0:
		err = m.Steps(-steps)
	default:
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationResult{}, fmt.Errorf("migrating %s: %w", direction, err)
	}

	res := MigrationResult{Changed: err == nil}
	res.Version, res.Dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("reading schema version: %w", err)
	}
	return res, nil
}
