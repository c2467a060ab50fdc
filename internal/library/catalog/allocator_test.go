package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LIBRIS-backend/internal/library/catalog"
)

const (
	maxAccessionQuery = `SELECT accession_number FROM book_copies`
	batchInsertQuery  = `INSERT INTO book_copies`
	rangeSelectQuery  = `SELECT copy_id, book_id, tenant_id, accession_number`
)

func copyRows(accessions ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"copy_id", "book_id", "tenant_id", "accession_number",
		"status", "purchase_date", "price", "condition_notes", "created_at",
	})
	for i, acc := range accessions {
		rows.AddRow(int64(i+1), int64(1), "tenant-a", acc, "available", nil, nil, nil, time.Now())
	}
	return rows
}

func dupKeyErr() error {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
}

func TestReserveAndInsertCopiesRetriesOnDuplicateKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// First cycle loses the race on the unique key, second cycle re-reads
	// the advanced max and succeeds.
	mock.ExpectQuery(maxAccessionQuery).
		WillReturnRows(sqlmock.NewRows([]string{"accession_number"}).AddRow("LIB-000002"))
	mock.ExpectExec(batchInsertQuery).WillReturnError(dupKeyErr())

	mock.ExpectQuery(maxAccessionQuery).
		WillReturnRows(sqlmock.NewRows([]string{"accession_number"}).AddRow("LIB-000003"))
	mock.ExpectExec(batchInsertQuery).WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery(rangeSelectQuery).WillReturnRows(copyRows("LIB-000004"))

	store := catalog.NewStore(db)
	copies, err := store.ReserveAndInsertCopies(context.Background(), 1, "tenant-a", 1, catalog.CopyMeta{})

	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.Equal(t, "LIB-000004", copies[0].AccessionNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveAndInsertCopiesExhaustionIsTransient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 3; i++ {
		mock.ExpectQuery(maxAccessionQuery).
			WillReturnRows(sqlmock.NewRows([]string{"accession_number"}).AddRow("LIB-000009"))
		mock.ExpectExec(batchInsertQuery).WillReturnError(dupKeyErr())
	}

	store := catalog.NewStore(db)
	_, err = store.ReserveAndInsertCopies(context.Background(), 1, "tenant-a", 2, catalog.CopyMeta{})

	var api *catalog.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, catalog.CodeTransient, api.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveAndInsertCopiesNonDuplicateErrorFailsFast(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(maxAccessionQuery).
		WillReturnRows(sqlmock.NewRows([]string{"accession_number"}).AddRow("LIB-000001"))
	mock.ExpectExec(batchInsertQuery).WillReturnError(boom)

	store := catalog.NewStore(db)
	_, err = store.ReserveAndInsertCopies(context.Background(), 1, "tenant-a", 1, catalog.CopyMeta{})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var api *catalog.APIError
	assert.False(t, errors.As(err, &api))
	assert.NoError(t, mock.ExpectationsWereMet())
}
