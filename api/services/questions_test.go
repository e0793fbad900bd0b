package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/algolovers/newsletter-console-services/db"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func hint(s string) *string { return &s }

func TestCreateOrUpdateQuestions(t *testing.T) {
	request := models.GroupQuestionsRequest{
		GroupID: testGroupID,
		Questions: []models.QuestionRequest{
			{Question: "Name", QuestionType: models.QuestionTypeText, QuestionIndex: 0, Options: []string{"ignored"}},
			{Question: "Colours", QuestionType: models.QuestionTypeCheckbox, Hint: hint("any"), QuestionIndex: 1,
				Options: []string{"red", "blue", "red", "green", "blue"}},
		},
	}

	tests := []struct {
		name        string
		user        *models.User
		request     models.GroupQuestionsRequest
		setup       func(env *testEnv)
		wantStatus  int
		wantSuccess bool
		wantMessage string
		wantSaved   bool
	}{
		{
			name:    "editor replaces questions",
			user:    editor(),
			request: request,
			setup: func(env *testEnv) {
				env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)
				env.db.On("ReplaceQuestions", anyCtx(), testGroupID, mock.Anything).Return(nil)
				env.notifier.On("Publish", anyCtx(), mock.Anything).Return(nil)
			},
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: "Questions updated successfully",
			wantSaved:   true,
		},
		{
			name:    "group not found",
			user:    editor(),
			request: request,
			setup: func(env *testEnv) {
				env.db.On("GetGroup", anyCtx(), testGroupID).Return(nil, nil)
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "The provided group was not found",
		},
		{
			name:    "user is not a member",
			user:    &models.User{ID: "stranger", EmailAddress: "stranger@example.com"},
			request: request,
			setup: func(env *testEnv) {
				env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)
			},
			wantStatus:  http.StatusForbidden,
			wantMessage: "You are not part of this group",
		},
		{
			name:    "member without edit access",
			user:    viewer(),
			request: request,
			setup: func(env *testEnv) {
				env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)
			},
			wantStatus:  http.StatusForbidden,
			wantMessage: "You do not have edit access to update questions, try requesting access from the group owner",
		},
		{
			name: "multiple option question without options",
			user: editor(),
			request: models.GroupQuestionsRequest{
				GroupID: testGroupID,
				Questions: []models.QuestionRequest{
					{Question: "Name", QuestionType: models.QuestionTypeText},
					{Question: "Pick", QuestionType: models.QuestionTypeDropdown, QuestionIndex: 1},
				},
			},
			setup: func(env *testEnv) {
				env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Options not found for question",
		},
		{
			name:    "store failure",
			user:    editor(),
			request: request,
			setup: func(env *testEnv) {
				env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)
				env.db.On("ReplaceQuestions", anyCtx(), testGroupID, mock.Anything).Return(errors.New("deadlock detected"))
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "deadlock detected",
			wantSaved:   true,
		},
		{
			name:    "group deleted before the write",
			user:    editor(),
			request: request,
			setup: func(env *testEnv) {
				env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)
				env.db.On("ReplaceQuestions", anyCtx(), testGroupID, mock.Anything).Return(db.ErrNotFound)
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "The provided group was not found",
			wantSaved:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setup(env)

			status, result := env.svc.CreateOrUpdateQuestions(context.Background(), tt.request, tt.user)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantMessage, result.Message)
			assert.Nil(t, result.Data)

			if tt.wantSaved {
				env.db.AssertCalled(t, "ReplaceQuestions", anyCtx(), testGroupID, mock.Anything)
			} else {
				env.db.AssertNotCalled(t, "ReplaceQuestions", mock.Anything, mock.Anything, mock.Anything)
			}
			env.db.AssertNotCalled(t, "SaveGroup", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateOrUpdateQuestions_NormalisesOptions(t *testing.T) {
	env := newTestEnv(t)

	var saved []models.Question
	env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)
	env.db.On("ReplaceQuestions", anyCtx(), testGroupID, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(2).([]models.Question)
	}).Return(nil)
	env.notifier.On("Publish", anyCtx(), mock.Anything).Return(nil)

	status, _ := env.svc.CreateOrUpdateQuestions(context.Background(), models.GroupQuestionsRequest{
		GroupID: testGroupID,
		Questions: []models.QuestionRequest{
			{Question: "Name", QuestionType: models.QuestionTypeText, Options: []string{"x"}},
			{Question: "Colours", QuestionType: models.QuestionTypeCheckbox, QuestionIndex: 1,
				Options: []string{"red", "blue", "red", "green", "blue"}},
		},
	}, editor())
	require.Equal(t, http.StatusOK, status)

	require.Len(t, saved, 2)
	assert.Equal(t, []string{}, saved[0].Options)
	assert.Equal(t, []string{"red", "blue", "green"}, saved[1].Options)
	// Old questions are replaced, not merged
	for _, q := range saved {
		assert.NotEqual(t, "Second", q.Question)
	}
}

func TestCreateOrUpdateQuestions_EmptyListClearsQuestions(t *testing.T) {
	env := newTestEnv(t)

	env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)
	env.db.On("ReplaceQuestions", anyCtx(), testGroupID, mock.MatchedBy(func(q []models.Question) bool {
		return len(q) == 0
	})).Return(nil)
	env.notifier.On("Publish", anyCtx(), mock.Anything).Return(nil)

	status, result := env.svc.CreateOrUpdateQuestions(context.Background(),
		models.GroupQuestionsRequest{GroupID: testGroupID}, editor())
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, result.Success)
	env.db.AssertExpectations(t)
}

func TestGetQuestions(t *testing.T) {
	t.Run("viewer reads questions ordered by index", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)

		status, result := env.svc.GetQuestions(context.Background(), models.GroupRequest{GroupID: testGroupID}, viewer())
		require.Equal(t, http.StatusOK, status)
		assert.True(t, result.Success)
		assert.Equal(t, "Questions fetched successfully", result.Message)

		questions, ok := result.Data.([]models.Question)
		require.True(t, ok)
		require.Len(t, questions, 2)
		assert.Equal(t, "First", questions[0].Question)
		assert.Equal(t, "Second", questions[1].Question)
	})

	t.Run("email match ignores case", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)

		user := viewer()
		user.EmailAddress = "Viewer@Example.com"
		status, _ := env.svc.GetQuestions(context.Background(), models.GroupRequest{GroupID: testGroupID}, user)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("non member is refused", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.On("GetGroup", anyCtx(), testGroupID).Return(testGroup(), nil)

		status, result := env.svc.GetQuestions(context.Background(), models.GroupRequest{GroupID: testGroupID},
			&models.User{ID: "x", EmailAddress: "x@example.com"})
		assert.Equal(t, http.StatusForbidden, status)
		assert.False(t, result.Success)
		assert.Equal(t, "You are not part of this group", result.Message)
	})

	t.Run("missing group", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.On("GetGroup", anyCtx(), testGroupID).Return(nil, nil)

		status, result := env.svc.GetQuestions(context.Background(), models.GroupRequest{GroupID: testGroupID}, viewer())
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "The provided group was not found", result.Message)
	})
}
