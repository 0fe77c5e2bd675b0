package sessions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/dmitrijs2005/clickstore/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ        = `(?s)^INSERT\s+INTO\s+sessions\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`
	findQ          = `(?s)^SELECT\s+id,\s*user_id,\s*expires_at,\s*last_seen_at,\s*created_at\s+FROM\s+sessions\s+WHERE\s+token_hash\s*=\s*\$1\s*$`
	touchQ         = `(?s)^UPDATE\s+sessions\s+SET\s+last_seen_at\s*=\s*\$2,\s*expires_at\s*=\s*\$3\s+WHERE\s+token_hash\s*=\s*\$1\s*$`
	deleteQ        = `(?s)^DELETE\s+FROM\s+sessions\s+WHERE\s+token_hash\s*=\s*\$1\s*$`
	deleteByUserQ  = `(?s)^DELETE\s+FROM\s+sessions\s+WHERE\s+user_id\s*=\s*\$1\s*$`
	deleteExpiredQ = `(?s)^DELETE\s+FROM\s+sessions\s+WHERE\s+expires_at\s*<=\s*\$1\s*$`
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	s := &models.Session{ID: "sid", TokenHash: "h1", UserID: 1, ExpiresAt: now.Add(time.Hour), LastSeenAt: now, CreatedAt: now}

	mock.ExpectExec(insertQ).
		WithArgs("sid", "h1", int64(1), s.ExpiresAt, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Session{ID: "sid", TokenHash: "h1", UserID: 1})
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	expires := now.Add(10 * time.Minute)
	rows := sqlmock.NewRows([]string{"id", "user_id", "expires_at", "last_seen_at", "created_at"}).
		AddRow("sid", int64(1), expires, now, now)

	mock.ExpectQuery(findQ).WithArgs("h1").WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "h1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != 1 || got.TokenHash != "h1" || !got.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQ).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFind_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQ).WithArgs("h1").WillReturnError(errors.New("db err"))

	_, err := repo.Find(context.Background(), "h1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestTouch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(touchQ).WithArgs("h1", now, now.Add(time.Hour)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(touchQ).WithArgs("h1", now, now.Add(time.Hour)).WillReturnError(errors.New("db err"))

	if err := repo.Touch(context.Background(), "h1", now, now.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Touch(context.Background(), "h1", now, now.Add(time.Hour)); err == nil {
		t.Fatal("expected error")
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs("h1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQ).WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteQ).WithArgs("h1").WillReturnError(errors.New("db err"))

	if err := repo.Delete(context.Background(), "h1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("deleting a missing session must not fail: %v", err)
	}
	err := repo.Delete(context.Background(), "h1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDeleteByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteByUserQ).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteByUser(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(deleteExpiredQ).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(deleteExpiredQ).WithArgs(now).WillReturnError(errors.New("db err"))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil || n != 4 {
		t.Fatalf("got %d, %v", n, err)
	}
	if _, err := repo.DeleteExpired(context.Background(), now); err == nil {
		t.Fatal("expected error")
	}
}
