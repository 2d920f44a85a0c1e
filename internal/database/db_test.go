package database

import (
	"context"
	"errors"
	"testing"
)

type stubDB struct {
	DB
	tx       *stubTx
	beginErr error
}

func (d *stubDB) Begin(context.Context) (Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}

type stubTx struct {
	Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *stubTx) Commit(context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *stubTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

func TestWithTx(t *testing.T) {
	boom := errors.New("boom")

	cases := []struct {
		name         string
		fnErr        error
		commitErr    error
		wantErr      error
		wantCommit   bool
		wantRollback bool
	}{
		{name: "commits", wantCommit: true},
		{name: "fn error rolls back", fnErr: boom, wantErr: boom, wantRollback: true},
		{name: "commit error rolls back", commitErr: boom, wantErr: boom, wantCommit: true, wantRollback: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := &stubTx{commitErr: tc.commitErr}
			err := WithTx(context.Background(), &stubDB{tx: tx}, func(Tx) error { return tc.fnErr })
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tx.committed != tc.wantCommit {
				t.Fatalf("committed = %v, want %v", tx.committed, tc.wantCommit)
			}
			if tx.rolledBack != tc.wantRollback {
				t.Fatalf("rolledBack = %v, want %v", tx.rolledBack, tc.wantRollback)
			}
		})
	}
}

func TestWithTxBeginFailure(t *testing.T) {
	boom := errors.New("no connection")
	called := false
	err := WithTx(context.Background(), &stubDB{beginErr: boom}, func(Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, boom) || called {
		t.Fatalf("err = %v called = %v", err, called)
	}
	if err := WithTx(context.Background(), nil, func(Tx) error { return nil }); !errors.Is(err, ErrNilDB) {
		t.Fatalf("nil db err = %v", err)
	}
}
