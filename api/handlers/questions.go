package handlers

import (
	"net/http"

	services "github.com/algolovers/newsletter-console-services/api/services"
	"github.com/algolovers/newsletter-console-services/models"
)

// @Summary Create or update the questions of a group
// @Description Replaces every question of the group. Requires membership with edit access. CHECKBOX and DROPDOWN questions need at least one option.
// @Tags questions
// @Accept json
// @Produce json
// @Param request body models.GroupQuestionsRequest true "Group questions"
// @Success 200 {object} models.Result
// @Failure 400 {object} models.Result
// @Failure 401 {object} models.Result
// @Failure 403 {object} models.Result
// @Failure 404 {object} models.Result
// @Failure 500 {object} models.Result
// @Router /questions/createOrUpdateQuestions [post]
func CreateOrUpdateQuestions(svc *services.Service) http.HandlerFunc {
	return handleRequest(svc, func(svc *services.Service, r *http.Request, req models.GroupQuestionsRequest, user *models.User) (int, models.Result) {
		return svc.CreateOrUpdateQuestions(r.Context(), req, user)
	})
}

// @Summary Get the questions of a group
// @Description Returns the questions of a group the caller belongs to, ordered by questionIndex.
// @Tags questions
// @Accept json
// @Produce json
// @Param request body models.GroupRequest true "Group"
// @Success 200 {object} models.Result{data=[]models.Question}
// @Failure 400 {object} models.Result
// @Failure 401 {object} models.Result
// @Failure 403 {object} models.Result
// @Failure 404 {object} models.Result
// @Failure 500 {object} models.Result
// @Router /questions/getQuestions [post]
func GetQuestions(svc *services.Service) http.HandlerFunc {
	return handleRequest(svc, func(svc *services.Service, r *http.Request, req models.GroupRequest, user *models.User) (int, models.Result) {
		return svc.GetQuestions(r.Context(), req, user)
	})
}
