package handlers

import (
	"net/http"

	services "github.com/algolovers/newsletter-console-services/api/services"
	"github.com/algolovers/newsletter-console-services/models"
)

// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body models.CreateGroupRequest true "Group"
// @Success 200 {object} models.Result{data=models.Group}
// @Failure 400 {object} models.Result
// @Failure 401 {object} models.Result
// @Failure 500 {object} models.Result
// @Router /groups/createGroup [post]
func CreateGroup(svc *services.Service) http.HandlerFunc {
	return handleRequest(svc, func(svc *services.Service, r *http.Request, req models.CreateGroupRequest, user *models.User) (int, models.Result) {
		return svc.CreateGroup(r.Context(), req, user)
	})
}

// @Summary Get a group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body models.GroupRequest true "Group"
// @Success 200 {object} models.Result{data=models.Group}
// @Failure 401 {object} models.Result
// @Failure 403 {object} models.Result
// @Failure 404 {object} models.Result
// @Router /groups/getGroup [post]
func GetGroup(svc *services.Service) http.HandlerFunc {
	return handleRequest(svc, func(svc *services.Service, r *http.Request, req models.GroupRequest, user *models.User) (int, models.Result) {
		return svc.GetGroup(r.Context(), req, user)
	})
}

// @Summary Delete a group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body models.GroupRequest true "Group"
// @Success 200 {object} models.Result
// @Failure 401 {object} models.Result
// @Failure 403 {object} models.Result
// @Failure 404 {object} models.Result
// @Router /groups/deleteGroup [post]
func DeleteGroup(svc *services.Service) http.HandlerFunc {
	return handleRequest(svc, func(svc *services.Service, r *http.Request, req models.GroupRequest, user *models.User) (int, models.Result) {
		return svc.DeleteGroup(r.Context(), req, user)
	})
}

// @Summary Add a member to a group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body models.GroupMemberRequest true "Member"
// @Success 200 {object} models.Result{data=models.Group}
// @Failure 400 {object} models.Result
// @Failure 403 {object} models.Result
// @Failure 404 {object} models.Result
// @Router /groups/addMember [post]
func AddMember(svc *services.Service) http.HandlerFunc {
	return handleRequest(svc, func(svc *services.Service, r *http.Request, req models.GroupMemberRequest, user *models.User) (int, models.Result) {
		return svc.AddMember(r.Context(), req, user)
	})
}

// @Summary Remove a member from a group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body models.GroupMemberRequest true "Member"
// @Success 200 {object} models.Result{data=models.Group}
// @Failure 400 {object} models.Result
// @Failure 403 {object} models.Result
// @Failure 404 {object} models.Result
// @Router /groups/removeMember [post]
func RemoveMember(svc *services.Service) http.HandlerFunc {
	return handleRequest(svc, func(svc *services.Service, r *http.Request, req models.GroupMemberRequest, user *models.User) (int, models.Result) {
		return svc.RemoveMember(r.Context(), req, user)
	})
}

// @Summary Grant or revoke a member's edit access
// @Tags groups
// @Accept json
// @Produce json
// @Param request body models.GroupMemberRequest true "Member"
// @Success 200 {object} models.Result{data=models.Group}
// @Failure 400 {object} models.Result
// @Failure 403 {object} models.Result
// @Failure 404 {object} models.Result
// @Router /groups/setEditAccess [post]
func SetEditAccess(svc *services.Service) http.HandlerFunc {
	return handleRequest(svc, func(svc *services.Service, r *http.Request, req models.GroupMemberRequest, user *models.User) (int, models.Result) {
		return svc.SetEditAccess(r.Context(), req, user)
	})
}
