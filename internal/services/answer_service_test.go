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

func TestCreateAnswer(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAnswerService(db)

	mock.ExpectQuery(`SELECT id FROM questions`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(`INSERT INTO answers`).
		WithArgs(int64(3), int64(5), "use flexbox").
		WillReturnResult(sqlmock.NewResult(21, 1))

	id, err := svc.CreateAnswer(context.Background(), 3, 5, "use flexbox")
	require.NoError(t, err)
	assert.Equal(t, int64(21), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Answering a question that does not exist fails before any insert.
func TestCreateAnswerQuestionMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAnswerService(db)

	mock.ExpectQuery(`SELECT id FROM questions`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := svc.CreateAnswer(context.Background(), 404, 5, "use flexbox")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAnswersForQuestion(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAnswerService(db)

	created := time.Now()
	mock.ExpectQuery(`SELECT id FROM questions`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`SELECT a.id, a.question_id, a.user_id`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "question_id", "user_id", "username", "content", "created_at"}).
			AddRow(1, 3, 5, "alice", "first", created).
			AddRow(2, 3, 6, "bob", "second", created))

	answers, err := svc.GetAnswersForQuestion(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "first", answers[0].Content)
	assert.Equal(t, "bob", answers[1].Username)
}

func TestGetAnswersForQuestionMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAnswerService(db)

	mock.ExpectQuery(`SELECT id FROM questions`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := svc.GetAnswersForQuestion(context.Background(), 404)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestUpdateAnswerByOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAnswerService(db)

	mock.ExpectQuery(`SELECT user_id FROM answers`).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))
	mock.ExpectExec(`UPDATE answers SET`).
		WithArgs("use grid instead", int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.UpdateAnswer(context.Background(), 21, 5, "use grid instead"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAnswerForbidden(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAnswerService(db)

	mock.ExpectQuery(`SELECT user_id FROM answers`).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))

	err := svc.UpdateAnswer(context.Background(), 21, 6, "hijacked")
	assert.True(t, errors.Is(err, models.ErrForbidden))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAnswerNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAnswerService(db)

	mock.ExpectQuery(`SELECT user_id FROM answers`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	err := svc.UpdateAnswer(context.Background(), 404, 6, "content")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDeleteAnswerByOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAnswerService(db)

	mock.ExpectQuery(`SELECT user_id FROM answers`).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))
	mock.ExpectExec(`DELETE FROM answers`).
		WithArgs(int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.DeleteAnswer(context.Background(), 21, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAnswerForbidden(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAnswerService(db)

	mock.ExpectQuery(`SELECT user_id FROM answers`).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))

	err := svc.DeleteAnswer(context.Background(), 21, 9)
	assert.True(t, errors.Is(err, models.ErrForbidden))
	assert.NoError(t, mock.ExpectationsWereMet())
}
