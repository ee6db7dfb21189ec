package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gcclean/trash-service/internal/model"
)

type statement struct {
	query string
	args  []interface{}
}

// recordingConn is a database/sql driver connection that records every
// statement and answers with a fixed result.
type recordingConn struct {
	mu           sync.Mutex
	statements   []statement
	columns      []string
	rows         [][]driver.Value
	rowsAffected int64
}

func (c *recordingConn) Connect(context.Context) (driver.Conn, error) { return c, nil }
func (c *recordingConn) Driver() driver.Driver                        { return nil }
func (c *recordingConn) Close() error                                 { return nil }

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements are not supported")
}

func (c *recordingConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions are not supported")
}

func (c *recordingConn) record(query string, args []driver.NamedValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := make([]interface{}, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	c.statements = append(c.statements, statement{query: query, args: values})
}

func (c *recordingConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.record(query, args)
	return &fixedRows{columns: c.columns, rows: c.rows}, nil
}

func (c *recordingConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.record(query, args)
	return driver.RowsAffected(c.rowsAffected), nil
}

func (c *recordingConn) last(t *testing.T) statement {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.statements)
	return c.statements[len(c.statements)-1]
}

type fixedRows struct {
	columns []string
	rows    [][]driver.Value
	next    int
}

func (r *fixedRows) Columns() []string { return r.columns }
func (r *fixedRows) Close() error      { return nil }

func (r *fixedRows) Next(dest []driver.Value) error {
	if r.next >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.next])
	r.next++
	return nil
}

func openRecording(t *testing.T, conn *recordingConn) *gorm.DB {
	t.Helper()
	sqlDB := sql.OpenDB(conn)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return db
}

func TestUpdateFiltersByOwner(t *testing.T) {
	conn := &recordingConn{columns: []string{"id"}}
	repo := NewTrashRepository(openRecording(t, conn))
	id, owner := uuid.New(), uuid.New()

	_, err := repo.Update(context.Background(), id, owner, model.Row{
		model.ColTrashType: "Paper",
		model.ColQuantity:  4,
		model.ColFloor:     "2",
		model.ColRoom:      "201",
		model.ColTime:      time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		model.ColPhotoURLs: []string{},
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	stmt := conn.last(t)
	assert.Contains(t, stmt.query, "WHERE id = $7 AND user_id = $8")
	require.Len(t, stmt.args, 8)
	assert.Equal(t, "[]", stmt.args[5])
	assert.Equal(t, id.String(), stmt.args[6])
	assert.Equal(t, owner.String(), stmt.args[7])
}

func TestGetFiltersByOwner(t *testing.T) {
	id, owner := uuid.New(), uuid.New()
	conn := &recordingConn{columns: []string{"id", "user_id"}}
	repo := NewTrashRepository(openRecording(t, conn))

	_, err := repo.Get(context.Background(), id, owner)
	require.ErrorIs(t, err, model.ErrNotFound)

	conn.rows = [][]driver.Value{{id.String(), owner.String()}}
	row, err := repo.Get(context.Background(), id, owner)
	require.NoError(t, err)
	assert.Equal(t, id.String(), row[model.ColID])

	stmt := conn.last(t)
	assert.Contains(t, stmt.query, "WHERE id = $1 AND user_id = $2")
	assert.Equal(t, []interface{}{id.String(), owner.String()}, stmt.args)
}

func TestDeleteFiltersByOwner(t *testing.T) {
	conn := &recordingConn{}
	repo := NewTrashRepository(openRecording(t, conn))
	id, owner := uuid.New(), uuid.New()

	err := repo.Delete(context.Background(), id, owner)
	require.ErrorIs(t, err, model.ErrNotFound)

	stmt := conn.last(t)
	assert.Contains(t, stmt.query, "WHERE id = $1 AND user_id = $2")
	assert.Equal(t, []interface{}{id.String(), owner.String()}, stmt.args)

	conn.rowsAffected = 1
	require.NoError(t, repo.Delete(context.Background(), id, owner))
}
