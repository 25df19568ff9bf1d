package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/sgjt/gestao-forms/database"
	"github.com/sgjt/gestao-forms/model"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	// unique shared memory name per test
	db, err := database.Open("file:mem_" + uuid.Must(uuid.NewV4()).String() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestForm(t *testing.T, s *FormStore, title string, owner model.Directorate, audience ...model.Directorate) model.Form {
	t.Helper()
	f, err := s.Create(context.Background(), model.Form{
		Title:               title,
		CreatedBy:           "user-1",
		Directorate:         owner,
		AllowedDirectorates: audience,
	})
	require.NoError(t, err)
	return f
}
