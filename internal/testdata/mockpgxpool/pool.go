package mockpgxpool

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

type Pool struct {
	mock.Mock
}

func (m *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	callArgs := []any{ctx, sql}
	callArgs = append(callArgs, args...)
	mockArgs := m.Called(callArgs...)
	return mockArgs.Get(0).(pgconn.CommandTag), mockArgs.Error(1)
}

func (m *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	callArgs := []any{ctx, sql}
	callArgs = append(callArgs, args...)
	return m.Called(callArgs...).Get(0).(pgx.Row)
}

type Row struct {
	mock.Mock
}

var _ pgx.Row = &Row{}

func (m *Row) Scan(dest ...any) error {
	callArgs := []any{}
	callArgs = append(callArgs, dest...)
	return m.Called(callArgs...).Error(0)
}
