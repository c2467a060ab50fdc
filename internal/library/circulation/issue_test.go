package circulation_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LIBRIS-backend/internal/library/circulation"
)

const (
	lockCopyQuery     = `SELECT book_id, status, price FROM book_copies`
	borrowerQuery     = `SELECT is_active FROM students`
	overdueCountQuery = `due_date`
	activeCountQuery  = `FROM loans WHERE tenant_id`
	insertLoanQuery   = `INSERT INTO loans`
	flipCopyQuery     = `UPDATE book_copies SET status = 'issued'`
	recountQuery      = `UPDATE books b`
)

func testLoan() *circulation.Loan {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &circulation.Loan{
		LoanULID:   "01HTESTULID0000000000000000",
		CopyID:     5,
		BorrowerID: "stu-1",
		TenantID:   "tenant-a",
		IssueDate:  now,
		DueDate:    now.AddDate(0, 0, 14),
		Status:     circulation.LoanActive,
	}
}

func expectIssueGates(mock sqlmock.Sqlmock, copyStatus string) {
	mock.ExpectBegin()
	mock.ExpectQuery(lockCopyQuery).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "status", "price"}).AddRow(int64(1), copyStatus, nil))
}

func TestExecIssueFlipsCopyAndCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectIssueGates(mock, "available")
	mock.ExpectQuery(borrowerQuery).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(1))
	mock.ExpectQuery(overdueCountQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(activeCountQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(insertLoanQuery).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(flipCopyQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(recountQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	loan := testLoan()
	store := circulation.NewStore(db)
	err = store.ExecIssue(context.Background(), loan, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(7), loan.LoanID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecIssueLosesFlipRaceAsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// All gates pass on the snapshot read, but a concurrent issuer flipped
	// the copy first: the conditional UPDATE touches zero rows and the
	// whole transaction rolls back.
	expectIssueGates(mock, "available")
	mock.ExpectQuery(borrowerQuery).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(1))
	mock.ExpectQuery(overdueCountQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(activeCountQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(insertLoanQuery).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(flipCopyQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	store := circulation.NewStore(db)
	err = store.ExecIssue(context.Background(), testLoan(), 3)

	var api *circulation.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, circulation.CodeConflict, api.Code)
	assert.Equal(t, "copy not available", api.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecIssueRejectsUnavailableCopy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectIssueGates(mock, "issued")
	mock.ExpectRollback()

	store := circulation.NewStore(db)
	err = store.ExecIssue(context.Background(), testLoan(), 3)

	var api *circulation.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, circulation.CodeConflict, api.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecIssueEnforcesLoanLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectIssueGates(mock, "available")
	mock.ExpectQuery(borrowerQuery).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(1))
	mock.ExpectQuery(overdueCountQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(activeCountQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	store := circulation.NewStore(db)
	err = store.ExecIssue(context.Background(), testLoan(), 3)

	var api *circulation.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, circulation.CodePolicyViolation, api.Code)
	assert.Equal(t, "loan limit reached", api.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}
