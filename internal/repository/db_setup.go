package repository

import (
	"database/sql"
	"log"

	"taskboard/pkg/crypto"
)

func CreateTableIfNotExists(db *sql.DB) {
	query := `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    role VARCHAR(255) NOT NULL DEFAULT 'user',
    board_data JSONB NOT NULL DEFAULT '{"boards": [], "activeBoardId": null}',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `

	_, err := db.Exec(query)
	if err != nil {
		log.Fatalf("Error creating table: %v", err)
	}
}

func CreateAdminUser(db *sql.DB) {
	hashedPassword, err := crypto.HashPassword("admin")
	if err != nil {
		log.Fatalf("Error hashing password: %v", err)
	}

	query := "INSERT INTO users (name, email, password, role) VALUES ($1, $2, $3, 'Admin')"
	_, err = db.Exec(query, "admin", "admin@mail.com", hashedPassword)
	if err != nil {
		log.Fatalf("Error inserting admin user: %v", err)
	}
}

func DeleteAllTable(db *sql.DB) {
	query := `DROP TABLE IF EXISTS users;`

	_, err := db.Exec(query)
	if err != nil {
		log.Fatalf("Error deleting table: %v", err)
	}
}
