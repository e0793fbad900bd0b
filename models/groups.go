package models

import (
	"strings"
	"time"
)

// Group is a set of members sharing a questionnaire.
type Group struct {
	ID           string        `json:"id"`
	GroupName    string        `json:"groupName"`
	GroupOwner   User          `json:"groupOwner"`
	GroupMembers []GroupMember `json:"groupMembers"`
	Questions    []Question    `json:"questions"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// GroupMember links a user to a group.
type GroupMember struct {
	User          User `json:"user"`
	HasEditAccess bool `json:"hasEditAccess"`
}

// Member returns the membership of the user with the given email address, or nil.
func (g *Group) Member(emailAddress string) *GroupMember {
	for i := range g.GroupMembers {
		if strings.EqualFold(g.GroupMembers[i].User.EmailAddress, emailAddress) {
			return &g.GroupMembers[i]
		}
	}
	return nil
}

// IsOwner reports whether the user owns the group.
func (g *Group) IsOwner(u *User) bool {
	return u != nil && g.GroupOwner.ID == u.ID
}

// GroupRequest identifies a group.
type GroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

// CreateGroupRequest creates a group owned by the caller.
type CreateGroupRequest struct {
	GroupName string `json:"groupName" validate:"required,max=255"`
}

// GroupMemberRequest adds a member to a group or changes a member's access.
type GroupMemberRequest struct {
	GroupID       string `json:"groupId" validate:"required"`
	EmailAddress  string `json:"emailAddress" validate:"required,email"`
	HasEditAccess bool   `json:"hasEditAccess"`
}
