package services

import (
	"context"
	"net/http"

	"github.com/algolovers/newsletter-console-services/models"
	"github.com/rs/zerolog"
)

const (
	msgNotGroupOwner     = "Only the group owner can manage this group"
	msgUserNotFound      = "The provided user was not found"
	msgAlreadyMember     = "The user is already part of this group"
	msgMemberNotFound    = "The user is not part of this group"
	msgOwnerNotRemovable = "The group owner cannot be removed from the group"
	msgOwnerKeepsAccess  = "The group owner always has edit access"
)

// CreateGroup creates a group owned by the user, who joins it with edit access.
func (svc *Service) CreateGroup(ctx context.Context, req models.CreateGroupRequest, user *models.User) (int, models.Result) {
	logger := zerolog.Ctx(ctx)

	group := &models.Group{
		GroupName:    req.GroupName,
		GroupOwner:   *user,
		GroupMembers: []models.GroupMember{{User: *user, HasEditAccess: true}},
		Questions:    []models.Question{},
	}

	if err := svc.Groups.Save(ctx, group); err != nil {
		logger.Error().Err(err).Msg("Database error creating group")
		return http.StatusInternalServerError, models.NewResult(false, nil, errorMessage(err))
	}

	logger.Info().Str("group_id", group.ID).Msg("Successfully created group")
	return http.StatusOK, models.NewResult(true, group, "Group created successfully")
}

// GetGroup returns a group to one of its members.
func (svc *Service) GetGroup(ctx context.Context, req models.GroupRequest, user *models.User) (int, models.Result) {
	group, status, result := svc.memberGroup(ctx, svc.Groups.FindByID, req.GroupID, user)
	if group == nil {
		return status, result
	}
	return http.StatusOK, models.NewResult(true, group, "Group fetched successfully")
}

// DeleteGroup removes a group owned by the user.
func (svc *Service) DeleteGroup(ctx context.Context, req models.GroupRequest, user *models.User) (int, models.Result) {
	group, status, result := svc.ownedGroup(ctx, req.GroupID, user)
	if group == nil {
		return status, result
	}

	if err := svc.Groups.Delete(ctx, group); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("group_id", group.ID).Msg("Database error deleting group")
		return http.StatusInternalServerError, models.NewResult(false, nil, errorMessage(err))
	}

	zerolog.Ctx(ctx).Info().Str("group_id", group.ID).Msg("Successfully deleted group")
	return http.StatusOK, models.NewResult(true, nil, "Group deleted successfully")
}

// AddMember adds an existing user to a group owned by the caller.
func (svc *Service) AddMember(ctx context.Context, req models.GroupMemberRequest, user *models.User) (int, models.Result) {
	logger := zerolog.Ctx(ctx)

	group, status, result := svc.ownedGroup(ctx, req.GroupID, user)
	if group == nil {
		return status, result
	}

	if group.Member(req.EmailAddress) != nil {
		return http.StatusBadRequest, models.NewResult(false, nil, msgAlreadyMember)
	}

	member, err := svc.DB.GetUserByEmail(ctx, req.EmailAddress)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving user")
		return http.StatusInternalServerError, models.NewResult(false, nil, errorMessage(err))
	}
	if member == nil {
		return http.StatusNotFound, models.NewResult(false, nil, msgUserNotFound)
	}

	group.GroupMembers = append(group.GroupMembers, models.GroupMember{User: *member, HasEditAccess: req.HasEditAccess})
	return svc.saveMembership(ctx, group, "Member added successfully")
}

// RemoveMember removes a member other than the owner from a group owned by the caller.
func (svc *Service) RemoveMember(ctx context.Context, req models.GroupMemberRequest, user *models.User) (int, models.Result) {
	group, status, result := svc.ownedGroup(ctx, req.GroupID, user)
	if group == nil {
		return status, result
	}

	member := group.Member(req.EmailAddress)
	if member == nil {
		return http.StatusNotFound, models.NewResult(false, nil, msgMemberNotFound)
	}
	if member.User.ID == group.GroupOwner.ID {
		return http.StatusBadRequest, models.NewResult(false, nil, msgOwnerNotRemovable)
	}

	members := make([]models.GroupMember, 0, len(group.GroupMembers)-1)
	for _, m := range group.GroupMembers {
		if m.User.ID != member.User.ID {
			members = append(members, m)
		}
	}
	group.GroupMembers = members
	return svc.saveMembership(ctx, group, "Member removed successfully")
}

// SetEditAccess grants or revokes a member's edit access in a group owned by the caller.
func (svc *Service) SetEditAccess(ctx context.Context, req models.GroupMemberRequest, user *models.User) (int, models.Result) {
	group, status, result := svc.ownedGroup(ctx, req.GroupID, user)
	if group == nil {
		return status, result
	}

	member := group.Member(req.EmailAddress)
	if member == nil {
		return http.StatusNotFound, models.NewResult(false, nil, msgMemberNotFound)
	}
	if member.User.ID == group.GroupOwner.ID && !req.HasEditAccess {
		return http.StatusBadRequest, models.NewResult(false, nil, msgOwnerKeepsAccess)
	}

	member.HasEditAccess = req.HasEditAccess
	return svc.saveMembership(ctx, group, "Edit access updated successfully")
}

func (svc *Service) saveMembership(ctx context.Context, group *models.Group, message string) (int, models.Result) {
	if err := svc.Groups.Save(ctx, group); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("group_id", group.ID).Msg("Database error saving group members")
		return http.StatusInternalServerError, models.NewResult(false, nil, errorMessage(err))
	}
	return http.StatusOK, models.NewResult(true, group, message)
}

// ownedGroup loads a group owned by the user from the store, so the write that follows starts from
// the stored members and questions. When it returns a nil group the status and result describe why.
func (svc *Service) ownedGroup(ctx context.Context, groupID string, user *models.User) (*models.Group, int, models.Result) {
	logger := zerolog.Ctx(ctx)

	group, err := svc.Groups.Load(ctx, groupID)
	if err != nil {
		logger.Error().Err(err).Str("group_id", groupID).Msg("Database error retrieving group")
		return nil, http.StatusInternalServerError, models.NewResult(false, nil, errorMessage(err))
	}
	if group == nil {
		return nil, http.StatusNotFound, models.NewResult(false, nil, msgGroupNotFound)
	}

	if !group.IsOwner(user) {
		logger.Warn().Str("group_id", groupID).Str("user", user.EmailAddress).Msg("Access denied: user is not the group owner")
		return nil, http.StatusForbidden, models.NewResult(false, nil, msgNotGroupOwner)
	}

	return group, http.StatusOK, models.Result{}
}
