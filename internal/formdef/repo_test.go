package formdef

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"
)

func newSQLRepo(t *testing.T) (*SQLRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &SQLRepo{DB: db, Dialect: ormdriver.PostgresDialect{}, TablePrefix: "formd_"}, mock
}

func formRows() *sqlmock.Rows {
	return sqlmock.NewRows(formColumns).
		AddRow(7, "Contact", "POST", "/submit",
			[]byte(`[{"type":"text","name":"email","label":"Email","required":true}]`),
			[]byte(`{"rows":[]}`), true, testTime(), testTime())
}

func TestSQLRepoGet(t *testing.T) {
	repo, mock := newSQLRepo(t)
	mock.ExpectQuery(`SELECT .* FROM "formd_forms"`).
		WithArgs(int64(7)).
		WillReturnRows(formRows())

	def, err := repo.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if def.ID != 7 || def.Title != "Contact" || len(def.Fields) != 1 {
		t.Fatalf("unexpected def: %+v", def)
	}
	if def.Fields[0].Name != "email" || !def.Fields[0].Required {
		t.Fatalf("fields not decoded: %+v", def.Fields)
	}
	if string(def.Configuration) != `{"rows":[]}` {
		t.Fatalf("configuration not decoded: %s", def.Configuration)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestSQLRepoGetNotFound(t *testing.T) {
	repo, mock := newSQLRepo(t)
	mock.ExpectQuery(`SELECT .* FROM "formd_forms"`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(formColumns))

	_, err := repo.Get(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSQLRepoList(t *testing.T) {
	repo, mock := newSQLRepo(t)
	mock.ExpectQuery(`SELECT .* FROM "formd_forms"`).
		WillReturnRows(formRows())

	defs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 1 || defs[0].ID != 7 {
		t.Fatalf("unexpected defs: %+v", defs)
	}
}

func TestSQLRepoDeleteNotFound(t *testing.T) {
	repo, mock := newSQLRepo(t)
	mock.ExpectQuery(`SELECT .* FROM "formd_forms"`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(formColumns))

	if err := repo.Delete(context.Background(), 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSQLRepoCountForms(t *testing.T) {
	repo, mock := newSQLRepo(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS cnt FROM "formd_forms"`).
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(4))

	n, err := repo.CountForms(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Fatalf("want 4, got %d", n)
	}
}
