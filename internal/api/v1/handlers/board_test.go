package handlers

import (
	"testing"

	"taskboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardPayload() map[string]interface{} {
	return map[string]interface{}{
		"activeBoardId": "b1",
		"boards": []map[string]interface{}{
			{
				"id":   "b1",
				"name": "Roadmap",
				"columns": []map[string]interface{}{
					{"id": "c1", "name": "Todo", "tasks": []map[string]interface{}{
						{"id": "t1", "title": "Ship v1", "description": "", "columnId": "c1"},
					}},
					{"id": "c2", "name": "Done", "tasks": []map[string]interface{}{}},
				},
			},
		},
	}
}

func TestSaveAndGetBoardsRoundTrip(t *testing.T) {
	app := createTestApp()
	stubBoardStore(t, 101)
	token := mintToken(t, 101, models.RoleUser)

	status, _ := doJSON(t, app, "POST", "/api/boards", boardPayload(), token)
	require.Equal(t, 200, status)

	status, result := doJSON(t, app, "GET", "/api/boards", nil, token)
	require.Equal(t, 200, status)

	data := result["data"].(map[string]interface{})
	assert.Equal(t, "b1", data["activeBoardId"])
	boards := data["boards"].([]interface{})
	require.Len(t, boards, 1)
	board := boards[0].(map[string]interface{})
	assert.Equal(t, "Roadmap", board["name"])
	columns := board["columns"].([]interface{})
	require.Len(t, columns, 2)
}

func TestSaveBoardsLastWriterWins(t *testing.T) {
	app := createTestApp()
	stubBoardStore(t, 102)
	token := mintToken(t, 102, models.RoleUser)

	status, _ := doJSON(t, app, "POST", "/api/boards", boardPayload(), token)
	require.Equal(t, 200, status)

	second := boardPayload()
	second["boards"].([]map[string]interface{})[0]["name"] = "Renamed"
	status, _ = doJSON(t, app, "POST", "/api/saveBoards", second, token)
	require.Equal(t, 200, status)

	status, result := doJSON(t, app, "GET", "/api/boards", nil, token)
	require.Equal(t, 200, status)
	data := result["data"].(map[string]interface{})
	board := data["boards"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Renamed", board["name"])
}

func TestSaveBoardsRejectsMalformedPayload(t *testing.T) {
	app := createTestApp()
	stubBoardStore(t, 103)
	token := mintToken(t, 103, models.RoleUser)

	// A board without an id fails boundary validation.
	status, _ := doJSON(t, app, "POST", "/api/boards", map[string]interface{}{
		"activeBoardId": nil,
		"boards": []map[string]interface{}{
			{"name": "No ID"},
		},
	}, token)
	assert.Equal(t, 400, status)

	// Missing boards entirely fails too.
	status, _ = doJSON(t, app, "POST", "/api/boards", map[string]interface{}{
		"activeBoardId": nil,
	}, token)
	assert.Equal(t, 400, status)
}

func TestBoardsUnknownUser(t *testing.T) {
	app := createTestApp()
	stubBoardStore(t, 104)
	// Valid token for a user with no stored document.
	token := mintToken(t, 9104, models.RoleUser)

	status, result := doJSON(t, app, "GET", "/api/boards", nil, token)
	assert.Equal(t, 404, status)
	assert.Equal(t, "User not found", result["message"])

	status, _ = doJSON(t, app, "POST", "/api/boards", boardPayload(), token)
	assert.Equal(t, 404, status)
}

func TestListBoardsLegacyShape(t *testing.T) {
	app := createTestApp()
	stubBoardStore(t, 105)
	token := mintToken(t, 105, models.RoleUser)

	status, _ := doJSON(t, app, "POST", "/api/boards", boardPayload(), token)
	require.Equal(t, 200, status)

	// GET /tasks returns just the boards array.
	status, result := doJSON(t, app, "GET", "/tasks", nil, token)
	require.Equal(t, 200, status)
	boards := result["data"].([]interface{})
	require.Len(t, boards, 1)
	assert.Equal(t, "b1", boards[0].(map[string]interface{})["id"])
}

// Same round trip against a real users table, exercising the JSONB column.
func TestSaveAndGetBoardsRoundTripPostgres(t *testing.T) {
	requireDB(t)
	app := createTestApp()

	_, token := registerAndLogin(t, app, "frank")

	status, _ := doJSON(t, app, "POST", "/api/boards", boardPayload(), token)
	require.Equal(t, 200, status)

	status, result := doJSON(t, app, "GET", "/api/boards", nil, token)
	require.Equal(t, 200, status)

	data := result["data"].(map[string]interface{})
	assert.Equal(t, "b1", data["activeBoardId"])
	boards := data["boards"].([]interface{})
	require.Len(t, boards, 1)
}
