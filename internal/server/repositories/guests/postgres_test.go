package guests

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
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
	selectByEmailQuery = `(?s)^SELECT\s+id,\s*email,\s*first_name,\s*last_name,\s*household_group,\s*plus_one_allowed,\s*created_at\s+FROM\s+guests\s+WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)\s*$`
	insertQuery        = `(?s)^INSERT\s+INTO\s+guests\s*\(email,\s*first_name,\s*last_name,\s*household_group,\s*plus_one_allowed\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at\s*$`
	listQuery          = `(?s)^SELECT\s+id,.*FROM\s+guests\s+ORDER\s+BY\s+last_name,\s*first_name\s*$`
)

var guestColumns = []string{"id", "email", "first_name", "last_name", "household_group", "plus_one_allowed", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(guestColumns).
		AddRow("g-1", "Ada@Example.com", "Ada", "Lovelace", "family", true, created)
	mock.ExpectQuery(selectByEmailQuery).
		WithArgs("ada@example.com").
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "g-1", got.ID)
	assert.Equal(t, "Ada Lovelace", got.DisplayName())
	require.NotNil(t, got.HouseholdGroup)
	assert.Equal(t, "family", *got.HouseholdGroup)
	assert.True(t, got.PlusOneAllowed)
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail_NullHousehold(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(guestColumns).
		AddRow("g-2", "bob@example.com", "Bob", "", nil, false, time.Now())
	mock.ExpectQuery(selectByEmailQuery).WithArgs("bob@example.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, got.HouseholdGroup)
	assert.Equal(t, "Bob", got.DisplayName())
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmailQuery).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByEmailQuery).
		WithArgs("ada@example.com").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByEmail(context.Background(), "ada@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().UTC()
	household := "college"
	mock.ExpectQuery(insertQuery).
		WithArgs("c@example.com", "Cara", "Diaz", "college", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("g-3", created))

	g := &models.Guest{Email: "c@example.com", FirstName: "Cara", LastName: "Diaz", HouseholdGroup: &household}
	got, err := repo.Create(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, "g-3", got.ID)
	assert.Equal(t, created, got.CreatedAt)
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Guest{Email: "c@example.com"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("boom"))

	_, err := repo.Create(context.Background(), &models.Guest{Email: "c@example.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Contains(t, err.Error(), "db error: boom")
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(guestColumns).
		AddRow("g-1", "a@example.com", "Ada", "Lovelace", nil, false, time.Now()).
		AddRow("g-2", "b@example.com", "Bob", "Marley", "band", true, time.Now())
	mock.ExpectQuery(listQuery).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].HouseholdGroup)
	assert.Equal(t, "band", *got[1].HouseholdGroup)
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQuery).WillReturnError(errors.New("nope"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
}
