package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes creates the composite indexes the owner-filtered, sorted list
// queries force. If one of these is missing, those queries fail with an
// index-required error instead of degrading silently.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"characters", "idx_characters_user_created", "user_id, created_at"},
		{"campaigns", "idx_campaigns_user_created", "user_id, created_at"},
		{"users", "idx_users_email", "email"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?
		`, idx.table, idx.name).Scan(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
