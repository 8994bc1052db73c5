package photos

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery       = `(?s)^INSERT\s+INTO\s+guest_photos\s*\(guest_id,\s*photo_url,\s*storage_key,\s*caption,\s*location,\s*is_approved\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*FALSE\)\s*RETURNING\s+id,\s*is_approved,\s*created_at\s*$`
	getByIDQuery      = `(?s)^SELECT\s+id,\s*guest_id,.*FROM\s+guest_photos\s+WHERE\s+id\s*=\s*\$1$`
	listApprovedQuery = `(?s)^SELECT\s+.*FROM\s+guest_photos\s+WHERE\s+is_approved\s*=\s*TRUE\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC\s+LIMIT\s+\$1\s+OFFSET\s+\$2$`
	listPendingQuery  = `(?s)^SELECT\s+.*FROM\s+guest_photos\s+WHERE\s+is_approved\s*=\s*FALSE\s+ORDER\s+BY\s+created_at\s+ASC,\s*id\s+ASC$`
	setApprovedQuery  = `^UPDATE\s+guest_photos\s+SET\s+is_approved\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`
)

var columns = []string{"id", "guest_id", "photo_url", "storage_key", "caption", "location", "is_approved", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 6, 14, 18, 30, 0, 0, time.UTC)
	caption := "First dance"
	mock.ExpectQuery(insertQuery).
		WithArgs("g-1", "http://cdn/g-1/1-abc.jpg", "g-1/1-abc.jpg", "First dance", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_approved", "created_at"}).AddRow("p-1", false, created))

	p := &models.GuestPhoto{
		GuestID:    "g-1",
		PhotoURL:   "http://cdn/g-1/1-abc.jpg",
		StorageKey: "g-1/1-abc.jpg",
		Caption:    &caption,
	}
	got, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "p-1", got.ID)
	assert.False(t, got.IsApproved)
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UnknownGuest(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Create(context.Background(), &models.GuestPhoto{GuestID: "g-x"})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("conn reset"))

	_, err := repo.Create(context.Background(), &models.GuestPhoto{GuestID: "g-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: conn reset")
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getByIDQuery).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("p-1", "g-1", "url", "key", nil, "Garden", true, time.Now()))

	got, err := repo.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Nil(t, got.Caption)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Garden", *got.Location)
	assert.True(t, got.IsApproved)
	assert.Equal(t, "key", got.StorageKey)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getByIDQuery).WithArgs("p-x").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "p-x")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListApproved(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	newer := time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(listApprovedQuery).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("p-2", "g-1", "u2", "k2", "cake", nil, true, newer).
			AddRow("p-1", "g-2", "u1", "k1", nil, nil, true, older))

	got, err := repo.ListApproved(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p-2", got[0].ID)
	assert.Equal(t, "cake", *got[0].Caption)
	assert.Equal(t, "p-1", got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListApproved_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listApprovedQuery).WithArgs(10, 20).WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.ListApproved(context.Background(), 10, 20)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListApproved_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listApprovedQuery).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("p-1", "g-1", "u", "k", nil, nil, "not-a-bool", time.Now()))

	_, err := repo.ListApproved(context.Background(), 50, 0)
	require.Error(t, err)
}

func TestListPending(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listPendingQuery).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("p-3", "g-1", "u", "k", nil, nil, false, time.Now()))

	got, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsApproved)
}

func TestSetApproved(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(setApprovedQuery).
		WithArgs("p-1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetApproved(context.Background(), "p-1", true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetApproved_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(setApprovedQuery).
		WithArgs("p-x", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetApproved(context.Background(), "p-x", false)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetApproved_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(setApprovedQuery).WillReturnError(errors.New("boom"))

	err := repo.SetApproved(context.Background(), "p-1", true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
