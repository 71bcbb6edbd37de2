// Package schema: safe database initialization — create only missing tables, never drop or overwrite.

package schema

import (
	"database/sql"
	"fmt"
	"log"
)

// tableDDL lists core tables in dependency order with their create statements.
var tableDDL = []struct {
	name string
	ddl  string
}{
	{"institutions", `
		CREATE TABLE institutions (
			institution_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			domain VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"users", `
		CREATE TABLE users (
			user_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			full_name VARCHAR(255) NOT NULL DEFAULT '',
			role ENUM('user','officer','admin') NOT NULL DEFAULT 'user',
			institution_id BIGINT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			FOREIGN KEY (institution_id) REFERENCES institutions(institution_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"categories", `
		CREATE TABLE categories (
			category_id VARCHAR(30) PRIMARY KEY,
			institution_id BIGINT NULL,
			name VARCHAR(100) NOT NULL,
			description TEXT,
			parent_id VARCHAR(30) NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_categories_institution_name (institution_id, name),
			FOREIGN KEY (institution_id) REFERENCES institutions(institution_id) ON DELETE CASCADE,
			FOREIGN KEY (parent_id) REFERENCES categories(category_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"resolver_levels", `
		CREATE TABLE resolver_levels (
			level_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			institution_id BIGINT NOT NULL,
			name VARCHAR(100) NOT NULL,
			level_order INT NOT NULL,
			escalation_time_seconds BIGINT NOT NULL,
			UNIQUE KEY uq_levels_institution_order (institution_id, level_order),
			FOREIGN KEY (institution_id) REFERENCES institutions(institution_id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"category_resolvers", `
		CREATE TABLE category_resolvers (
			resolver_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			category_id VARCHAR(30) NOT NULL,
			level_id BIGINT NOT NULL,
			officer_id BIGINT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			UNIQUE KEY uq_resolver_triple (category_id, level_id, officer_id),
			FOREIGN KEY (category_id) REFERENCES categories(category_id) ON DELETE CASCADE,
			FOREIGN KEY (level_id) REFERENCES resolver_levels(level_id) ON DELETE CASCADE,
			FOREIGN KEY (officer_id) REFERENCES users(user_id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"complaints", `
		CREATE TABLE complaints (
			complaint_id CHAR(36) PRIMARY KEY,
			institution_id BIGINT NULL,
			submitted_by BIGINT NOT NULL,
			category_id VARCHAR(30) NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			status ENUM('pending','in_progress','escalated','resolved','closed') NOT NULL DEFAULT 'pending',
			priority ENUM('low','medium','high','urgent') NOT NULL DEFAULT 'medium',
			current_level_id BIGINT NULL,
			assigned_officer_id BIGINT NULL,
			escalation_deadline TIMESTAMP NULL,
			max_level_notified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_complaints_deadline (status, escalation_deadline),
			FOREIGN KEY (institution_id) REFERENCES institutions(institution_id) ON DELETE CASCADE,
			FOREIGN KEY (submitted_by) REFERENCES users(user_id),
			FOREIGN KEY (category_id) REFERENCES categories(category_id) ON DELETE SET NULL,
			FOREIGN KEY (current_level_id) REFERENCES resolver_levels(level_id) ON DELETE SET NULL,
			FOREIGN KEY (assigned_officer_id) REFERENCES users(user_id) ON DELETE SET NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"assignments", `
		CREATE TABLE assignments (
			assignment_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			complaint_id CHAR(36) NOT NULL,
			officer_id BIGINT NOT NULL,
			level_id BIGINT NOT NULL,
			reason ENUM('initial','escalation','manual') NOT NULL,
			assigned_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			ended_at TIMESTAMP NULL,
			KEY idx_assignments_complaint (complaint_id, assigned_at),
			FOREIGN KEY (complaint_id) REFERENCES complaints(complaint_id) ON DELETE CASCADE,
			FOREIGN KEY (officer_id) REFERENCES users(user_id) ON DELETE CASCADE,
			FOREIGN KEY (level_id) REFERENCES resolver_levels(level_id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"notifications", `
		CREATE TABLE notifications (
			notification_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			complaint_id CHAR(36) NULL,
			type VARCHAR(40) NOT NULL,
			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			KEY idx_notifications_user (user_id, is_read),
			FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
			FOREIGN KEY (complaint_id) REFERENCES complaints(complaint_id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"comments", `
		CREATE TABLE comments (
			comment_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			complaint_id CHAR(36) NOT NULL,
			author_id BIGINT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (complaint_id) REFERENCES complaints(complaint_id) ON DELETE CASCADE,
			FOREIGN KEY (author_id) REFERENCES users(user_id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// InitializeDatabase ensures core tables exist. Checks INFORMATION_SCHEMA.TABLES
// and creates only missing tables, in dependency order. Does not drop or
// recreate tables; does not remove data.
func InitializeDatabase(db *sql.DB) {
	for _, t := range tableDDL {
		exists, err := tableExists(db, t.name)
		if err != nil {
			log.Fatalf("[SCHEMA] Failed to check if table %s exists: %v", t.name, err)
		}
		if exists {
			log.Printf("[SCHEMA] %s table exists", t.name)
			continue
		}
		if _, err := db.Exec(t.ddl); err != nil {
			log.Fatalf("[SCHEMA] Failed to create table %s: %v", t.name, err)
		}
		log.Printf("[SCHEMA] created %s table", t.name)
	}
}

// tableExists checks INFORMATION_SCHEMA.TABLES for the current database.
func tableExists(db *sql.DB, name string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
	`
	if err := db.QueryRow(query, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query information_schema: %w", err)
	}
	return count > 0, nil
}
