package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "Admin"
)

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	BoardData BoardData `json:"boardData"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BoardData is the per-user board document stored in the board_data JSONB
// column. Boards hold columns, columns hold ordered tasks.
type BoardData struct {
	Boards        []Board `json:"boards" validate:"dive"`
	ActiveBoardID *string `json:"activeBoardId"`
}

type Board struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name" validate:"required"`
	Columns []Column `json:"columns" validate:"dive"`
}

type Column struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Tasks []Task `json:"tasks" validate:"dive"`
}

type Task struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	ColumnID    string `json:"columnId"`
}

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrColumnNotFound = errors.New("column not found")
)

// DefaultBoardData is the shape every user record starts with.
func DefaultBoardData() BoardData {
	return BoardData{Boards: []Board{}, ActiveBoardID: nil}
}

// Value implements driver.Valuer so BoardData can be written to the JSONB
// column directly. The document is passed as text; pq would encode a []byte
// as bytea, which Postgres rejects for jsonb columns.
func (b BoardData) Value() (driver.Value, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for reading the JSONB column.
func (b *BoardData) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	case nil:
		*b = DefaultBoardData()
		return nil
	default:
		return errors.New("unsupported type for BoardData")
	}
}
