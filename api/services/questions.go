package services

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/algolovers/newsletter-console-services/db"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/rs/zerolog"
)

const (
	msgGroupNotFound    = "The provided group was not found"
	msgNotGroupMember   = "You are not part of this group"
	msgNoEditAccess     = "You do not have edit access to update questions, try requesting access from the group owner"
	msgOptionsNotFound  = "Options not found for question"
	msgQuestionsUpdated = "Questions updated successfully"
	msgQuestionsFetched = "Questions fetched successfully"
)

// CreateOrUpdateQuestions replaces all questions of a group on behalf of a member with edit access.
func (svc *Service) CreateOrUpdateQuestions(ctx context.Context, req models.GroupQuestionsRequest, user *models.User) (int, models.Result) {
	logger := zerolog.Ctx(ctx).With().Str("group_id", req.GroupID).Logger()

	// Access is checked against the stored membership, never a cached copy
	group, status, result := svc.memberGroup(ctx, svc.Groups.Load, req.GroupID, user)
	if group == nil {
		return status, result
	}

	if !group.Member(user.EmailAddress).HasEditAccess {
		logger.Warn().Str("user", user.EmailAddress).Msg("Access denied: member lacks edit access")
		return http.StatusForbidden, models.NewResult(false, nil, msgNoEditAccess)
	}

	questions, ok := buildQuestions(req.Questions)
	if !ok {
		logger.Warn().Msg("Rejected questions: multiple option question without options")
		return http.StatusBadRequest, models.NewResult(false, nil, msgOptionsNotFound)
	}

	if err := svc.Groups.ReplaceQuestions(ctx, group.ID, questions); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return http.StatusNotFound, models.NewResult(false, nil, msgGroupNotFound)
		}
		logger.Error().Err(err).Msg("Database error saving questions")
		return http.StatusInternalServerError, models.NewResult(false, nil, errorMessage(err))
	}

	logger.Info().Int("question_count", len(questions)).Msg("Successfully updated questions")
	return http.StatusOK, models.NewResult(true, nil, msgQuestionsUpdated)
}

// GetQuestions returns the questions of a group to one of its members, ordered by index.
func (svc *Service) GetQuestions(ctx context.Context, req models.GroupRequest, user *models.User) (int, models.Result) {
	group, status, result := svc.memberGroup(ctx, svc.Groups.FindByID, req.GroupID, user)
	if group == nil {
		return status, result
	}

	questions := append([]models.Question{}, group.Questions...)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].QuestionIndex < questions[j].QuestionIndex
	})

	zerolog.Ctx(ctx).Debug().Str("group_id", group.ID).Int("question_count", len(questions)).Msg("Successfully retrieved questions")
	return http.StatusOK, models.NewResult(true, questions, msgQuestionsFetched)
}

type groupLoader func(ctx context.Context, groupID string) (*models.Group, error)

// memberGroup loads a group the user belongs to. When it returns a nil group the status and result
// describe why.
func (svc *Service) memberGroup(ctx context.Context, load groupLoader, groupID string, user *models.User) (*models.Group, int, models.Result) {
	logger := zerolog.Ctx(ctx)

	group, err := load(ctx, groupID)
	if err != nil {
		logger.Error().Err(err).Str("group_id", groupID).Msg("Database error retrieving group")
		return nil, http.StatusInternalServerError, models.NewResult(false, nil, errorMessage(err))
	}
	if group == nil {
		logger.Debug().Str("group_id", groupID).Msg("Group not found")
		return nil, http.StatusNotFound, models.NewResult(false, nil, msgGroupNotFound)
	}

	if group.Member(user.EmailAddress) == nil {
		logger.Warn().Str("group_id", groupID).Str("user", user.EmailAddress).Msg("Access denied: user is not a group member")
		return nil, http.StatusForbidden, models.NewResult(false, nil, msgNotGroupMember)
	}

	return group, http.StatusOK, models.Result{}
}

// buildQuestions converts requests into questions. It reports false when a multiple option question
// has no options.
func buildQuestions(requests []models.QuestionRequest) ([]models.Question, bool) {
	questions := make([]models.Question, 0, len(requests))
	for _, req := range requests {
		q := models.Question{
			Question:      req.Question,
			QuestionType:  req.QuestionType,
			Hint:          req.Hint,
			QuestionIndex: req.QuestionIndex,
			Options:       []string{},
		}

		if req.QuestionType.IsMultipleOption() {
			if len(req.Options) == 0 {
				return nil, false
			}
			q.Options = uniqueOptions(req.Options)
		}

		questions = append(questions, q)
	}
	return questions, true
}

// uniqueOptions removes duplicate options, keeping the first occurrence of each.
func uniqueOptions(options []string) []string {
	seen := make(map[string]struct{}, len(options))
	unique := make([]string, 0, len(options))
	for _, o := range options {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		unique = append(unique, o)
	}
	return unique
}
