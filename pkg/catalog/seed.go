package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/borgmon/lightwalker/pkg/db"
	"github.com/borgmon/lightwalker/pkg/logging"
)

// SeedResult reports what Seed wrote.
type SeedResult struct {
	RoleModels int
	Templates  int
	Skipped    bool
}

// Seed loads the built-in role models and templates. Without reset an
// already-seeded catalog is left alone; with reset the built-in rows are
// replaced. User preferences are never touched.
func Seed(ctx context.Context, database *db.DB, reset bool) (SeedResult, error) {
	logger := logging.Component("catalog")

	if !reset {
		var count int
		if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM role_models`).Scan(&count); err != nil {
			return SeedResult{}, fmt.Errorf("failed to count role models: %w", err)
		}
		if count > 0 {
			logger.Debug().Int("role_models", count).Msg("Catalog already seeded")
			return SeedResult{Skipped: true}, nil
		}
	}

	var result SeedResult
	err := database.Transaction(ctx, func(tx *sql.Tx) error {
		if reset {
			for _, stmt := range []string{`DELETE FROM role_models`, `DELETE FROM activity_templates`} {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to clear catalog: %w", err)
				}
			}
		}

		for _, t := range DefaultTemplates {
			if err := upsertTemplate(ctx, tx, t); err != nil {
				return fmt.Errorf("template %s: %w", t.ID, err)
			}
			result.Templates++
		}
		for _, rm := range DefaultRoleModels {
			if err := createRoleModel(ctx, tx, &rm); err != nil {
				return fmt.Errorf("role model %s: %w", rm.Slug, err)
			}
			result.RoleModels++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	logger.Info().
		Int("role_models", result.RoleModels).
		Int("templates", result.Templates).
		Bool("reset", reset).
		Msg("Catalog seeded")
	return result, nil
}
