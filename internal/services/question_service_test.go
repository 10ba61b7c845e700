package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpeer/askpeer-be/internal/models"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCreateQuestion(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewQuestionService(db)

	mock.ExpectExec(`INSERT INTO questions`).
		WithArgs(int64(5), "How do I center a div", "I tried margin auto", nil).
		WillReturnResult(sqlmock.NewResult(12, 1))

	id, err := svc.CreateQuestion(context.Background(), 5, "How do I center a div", "I tried margin auto", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuestion(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewQuestionService(db)

	created := time.Now()
	mock.ExpectQuery(`SELECT q.id, q.user_id, u.username`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "username", "title", "description", "tag", "created_at"}).
			AddRow(7, 5, "alice", "title", "desc", "css", created))

	q, err := svc.GetQuestion(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), q.ID)
	assert.Equal(t, int64(5), q.UserID)
	assert.Equal(t, "alice", q.Username)
	require.NotNil(t, q.Tag)
	assert.Equal(t, "css", *q.Tag)
}

func TestGetQuestionNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewQuestionService(db)

	mock.ExpectQuery(`SELECT q.id, q.user_id, u.username`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := svc.GetQuestion(context.Background(), 404)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestGetAllQuestionsPreservesOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewQuestionService(db)

	created := time.Now()
	mock.ExpectQuery(`SELECT q.id, q.user_id, u.username`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "username", "title", "description", "tag", "created_at"}).
			AddRow(2, 1, "alice", "newest", "d", nil, created).
			AddRow(1, 2, "bob", "oldest", "d", nil, created.Add(-time.Hour)))

	questions, err := svc.GetAllQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "newest", questions[0].Title)
	assert.Equal(t, "oldest", questions[1].Title)
	assert.Nil(t, questions[0].Tag)
}

func TestUpdateQuestionByOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewQuestionService(db)

	mock.ExpectQuery(`SELECT user_id FROM questions`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))
	mock.ExpectExec(`UPDATE questions SET`).
		WithArgs("new title", "new desc", nil, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.UpdateQuestion(context.Background(), 1, 5, "new title", "new desc", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A foreign caller gets Forbidden and no UPDATE statement runs.
func TestUpdateQuestionForbidden(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewQuestionService(db)

	mock.ExpectQuery(`SELECT user_id FROM questions`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))

	err := svc.UpdateQuestion(context.Background(), 1, 6, "t", "d", nil)
	assert.True(t, errors.Is(err, models.ErrForbidden))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuestionNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewQuestionService(db)

	mock.ExpectQuery(`SELECT user_id FROM questions`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	err := svc.UpdateQuestion(context.Background(), 404, 6, "t", "d", nil)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDeleteQuestionByOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewQuestionService(db)

	mock.ExpectQuery(`SELECT user_id FROM questions`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))
	mock.ExpectExec(`DELETE FROM questions`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.DeleteQuestion(context.Background(), 1, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteQuestionForbidden(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewQuestionService(db)

	mock.ExpectQuery(`SELECT user_id FROM questions`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))

	err := svc.DeleteQuestion(context.Background(), 1, 9)
	assert.True(t, errors.Is(err, models.ErrForbidden))
	assert.NoError(t, mock.ExpectationsWereMet())
}
