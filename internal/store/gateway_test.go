package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notes []string

func (n *notes) Report(msg string) { *n = append(*n, msg) }

func newMock(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewGateway(db, nil), mock
}

func TestFetchMapsRows(t *testing.T) {
	g, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT SPACE_ID, STATUS FROM PARKING_SPACE ORDER BY SPACE_ID")).
		WillReturnRows(sqlmock.NewRows([]string{"SPACE_ID", "STATUS"}).
			AddRow([]byte("S1"), "Available").
			AddRow("S2", "Occupied"))

	var n notes
	recs := g.Fetch(context.Background(), &n, "SELECT SPACE_ID, STATUS FROM PARKING_SPACE ORDER BY SPACE_ID")

	require.Len(t, recs, 2)
	assert.Equal(t, "S1", recs[0]["SPACE_ID"])
	assert.Equal(t, "Occupied", recs[1].String("STATUS"))
	assert.Empty(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchFailureReportsAndReturnsEmpty(t *testing.T) {
	g, mock := newMock(t)
	mock.ExpectQuery("SELECT").WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'parking.USERS' doesn't exist"})

	var n notes
	recs := g.Fetch(context.Background(), &n, "SELECT * FROM USERS WHERE USER_ID = ?", "U1")

	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.Equal(t, notes{"Database Query Error: Table 'parking.USERS' doesn't exist"}, n)
}

func TestFetchNoRowsIsEmptyWithoutReport(t *testing.T) {
	g, mock := newMock(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"USER_ID"}))

	var n notes
	assert.Empty(t, g.Fetch(context.Background(), &n, "SELECT USER_ID FROM USERS"))
	assert.Empty(t, n)
}

func TestConnectionFailureIsReported(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	require.NoError(t, db.Close())
	g := NewGateway(db, nil)

	var n notes
	assert.Empty(t, g.Fetch(context.Background(), &n, "SELECT 1"))
	assert.False(t, g.Execute(context.Background(), &n, "DELETE FROM USERS"))
	assert.False(t, g.Call(context.Background(), &n, "sp_ReleaseReservation", "R1").OK)
	require.Len(t, n, 3)
	for _, msg := range n {
		assert.Contains(t, msg, "Error connecting to database:")
	}
}

func TestExecuteCommits(t *testing.T) {
	g, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM USERS WHERE USER_ID = ?")).
		WithArgs("U1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var n notes
	assert.True(t, g.Execute(context.Background(), &n, "DELETE FROM USERS WHERE USER_ID = ?", "U1"))
	assert.Empty(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteFailureRollsBack(t *testing.T) {
	g, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO USERS").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'U1' for key 'PRIMARY'"})
	mock.ExpectRollback()

	var n notes
	assert.False(t, g.Execute(context.Background(), &n, "INSERT INTO USERS (USER_ID) VALUES (?)", "U1"))
	assert.Equal(t, notes{"Database Command Error: Duplicate entry 'U1' for key 'PRIMARY'"}, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteGuardedStopsBeforeCommand(t *testing.T) {
	g, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	guard := func(ctx context.Context, tx *sql.Tx) error {
		return errors.New("Cannot delete user. User has pending payments.")
	}
	var n notes
	assert.False(t, g.ExecuteGuarded(context.Background(), &n, guard, "DELETE FROM USERS WHERE USER_ID = ?", "U3"))
	assert.Equal(t, notes{"Database Command Error: Cannot delete user. User has pending payments."}, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallStoredProcedureParsesMessage(t *testing.T) {
	g, mock := newMock(t)
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	end := start.Add(8 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("CALL sp_BookReservation(?,?,?,?)")).
		WithArgs("U1", "S1", start, end).
		WillReturnRows(sqlmock.NewRows([]string{"message"}).AddRow("Reservation booked."))
	mock.ExpectCommit()

	var n notes
	out := g.Call(context.Background(), &n, "sp_BookReservation", "U1", "S1", start, end)

	require.True(t, out.OK)
	msg, ok := out.Message()
	assert.True(t, ok)
	assert.Equal(t, "Reservation booked.", msg)
	assert.Empty(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallWithoutResultSetSignalsSuccess(t *testing.T) {
	g, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("CALL sp_Touch()")).WillReturnRows(sqlmock.NewRows([]string{"message"}))
	mock.ExpectCommit()

	out := g.Call(context.Background(), nil, "sp_Touch")
	assert.True(t, out.OK)
	assert.Nil(t, out.Record)
	_, ok := out.Message()
	assert.False(t, ok)
}

func TestCallRejectionIsReportedVerbatim(t *testing.T) {
	g, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("CALL sp_BookReservation").
		WillReturnError(&mysql.MySQLError{Number: 1644, Message: "Parking space S1 is already booked for an overlapping period."})
	mock.ExpectRollback()

	var n notes
	out := g.Call(context.Background(), &n, "sp_BookReservation", "U2", "S1", time.Now(), time.Now().Add(time.Hour))
	assert.False(t, out.OK)
	assert.Equal(t, notes{"Procedure Error (sp_BookReservation): Parking space S1 is already booked for an overlapping period."}, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallPrefersRegisteredProcedure(t *testing.T) {
	g, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	var got []any
	g.Register("sp_ReleaseReservation", func(ctx context.Context, tx *sql.Tx, args ...any) (Record, error) {
		got = args
		return Record{"message": "released"}, nil
	})
	out := g.Call(context.Background(), nil, "sp_ReleaseReservation", "R1")
	msg, ok := out.Message()
	assert.True(t, ok)
	assert.Equal(t, "released", msg)
	assert.Equal(t, []any{"R1"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallRejectsUnsafeName(t *testing.T) {
	g, _ := newMock(t)
	var n notes
	out := g.Call(context.Background(), &n, "sp_x(); DROP TABLE USERS; --")
	assert.False(t, out.OK)
	require.Len(t, n, 1)
	assert.Contains(t, n[0], "invalid procedure name")
}

func TestRecordAccessors(t *testing.T) {
	ts := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	r := Record{"AMOUNT": "500.00", "N": int64(3), "T": ts, "S": "2024-01-01 17:00:00", "F": 12.5}
	assert.Equal(t, int64(50000), int64(r.Money("AMOUNT")))
	assert.Equal(t, int64(1250), int64(r.Money("F")))
	assert.Equal(t, int64(3), r.Int64("N"))
	assert.Equal(t, ts, r.Time("T"))
	assert.Equal(t, 17, r.Time("S").Hour())
	assert.True(t, r.Time("missing").IsZero())
	assert.Equal(t, "", r.String("missing"))
	assert.False(t, r.Has("missing"))
}
