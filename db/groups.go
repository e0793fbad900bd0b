package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/algolovers/newsletter-console-services/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type groupRow struct {
	ID        string    `db:"id"`
	GroupName string    `db:"group_name"`
	CreatedAt time.Time `db:"created_at"`
	Owner     userRow   `db:"owner"`
}

type memberRow struct {
	userRow
	HasEditAccess bool `db:"has_edit_access"`
}

type questionRow struct {
	ID            string         `db:"id"`
	Question      string         `db:"question"`
	QuestionType  string         `db:"question_type"`
	Hint          sql.NullString `db:"hint"`
	QuestionIndex int            `db:"question_index"`
	Options       pq.StringArray `db:"options"`
}

func (r questionRow) toModel() models.Question {
	q := models.Question{
		ID:            r.ID,
		Question:      r.Question,
		QuestionType:  models.QuestionType(r.QuestionType),
		QuestionIndex: r.QuestionIndex,
		Options:       []string(r.Options),
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	if r.Hint.Valid {
		hint := r.Hint.String
		q.Hint = &hint
	}
	return q
}

// GetGroup retrieves a group with its owner, members and questions, or nil if none exists.
func (n *NewsletterDB) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	if _, err := uuid.Parse(groupID); err != nil {
		return nil, nil
	}

	var row groupRow
	err := n.DB.GetContext(ctx, &row, `
		SELECT g.id, g.group_name, g.created_at,
			u.id AS "owner.id",
			u.email_address AS "owner.email_address",
			u.display_name AS "owner.display_name",
			u.authorities AS "owner.authorities",
			u.account_validity_code AS "owner.account_validity_code",
			u.created_at AS "owner.created_at"
		FROM groups g
		JOIN users u ON u.id = g.owner_id
		WHERE g.id = $1`, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving group: %w", err)
	}

	group := &models.Group{
		ID:           row.ID,
		GroupName:    row.GroupName,
		GroupOwner:   row.Owner.toModel(),
		CreatedAt:    row.CreatedAt,
		GroupMembers: []models.GroupMember{},
		Questions:    []models.Question{},
	}

	var members []memberRow
	err = n.DB.SelectContext(ctx, &members, `
		SELECT u.id, u.email_address, u.display_name, u.authorities, u.account_validity_code, u.created_at,
			m.has_edit_access
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at, u.email_address`, groupID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving group members: %w", err)
	}
	for _, m := range members {
		group.GroupMembers = append(group.GroupMembers, models.GroupMember{
			User:          m.userRow.toModel(),
			HasEditAccess: m.HasEditAccess,
		})
	}

	var questions []questionRow
	err = n.DB.SelectContext(ctx, &questions, `
		SELECT id, question, question_type, hint, question_index, options
		FROM questions
		WHERE group_id = $1
		ORDER BY question_index, id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving questions: %w", err)
	}
	for _, q := range questions {
		group.Questions = append(group.Questions, q.toModel())
	}

	return group, nil
}

// SaveGroup persists the group, its membership and its questions in one transaction.
// The stored members and questions are replaced by the ones on the group.
func (n *NewsletterDB) SaveGroup(ctx context.Context, group *models.Group) (err error) {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	for i := range group.Questions {
		if group.Questions[i].ID == "" {
			group.Questions[i].ID = uuid.NewString()
		}
	}

	tx, err := n.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = n.execQuery(ctx, tx, `
		INSERT INTO groups (id, group_name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET group_name = EXCLUDED.group_name, owner_id = EXCLUDED.owner_id`,
		group.ID, group.GroupName, group.GroupOwner.ID, group.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving group: %w", err)
	}

	if err = n.replaceMembers(ctx, tx, group); err != nil {
		return err
	}

	if err = n.replaceQuestions(ctx, tx, group.ID, group.Questions); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	n.Log.Debug().Str("group_id", group.ID).Msg("group saved")
	return nil
}

func (n *NewsletterDB) replaceMembers(ctx context.Context, tx *sqlx.Tx, group *models.Group) error {
	userIDs := make([]string, 0, len(group.GroupMembers))
	for _, m := range group.GroupMembers {
		userIDs = append(userIDs, m.User.ID)
	}

	err := n.execQuery(ctx, tx, `DELETE FROM group_members WHERE group_id = $1 AND NOT (user_id::text = ANY($2))`,
		group.ID, pq.Array(userIDs))
	if err != nil {
		return fmt.Errorf("error removing group members: %w", err)
	}

	for _, m := range group.GroupMembers {
		err = n.execQuery(ctx, tx, `
			INSERT INTO group_members (group_id, user_id, has_edit_access)
			VALUES ($1, $2, $3)
			ON CONFLICT (group_id, user_id) DO UPDATE SET has_edit_access = EXCLUDED.has_edit_access`,
			group.ID, m.User.ID, m.HasEditAccess)
		if err != nil {
			return fmt.Errorf("error saving group member: %w", err)
		}
	}
	return nil
}

// ReplaceQuestions swaps the questions of a group for the given ones in one transaction.
// Membership is left untouched. A missing group yields ErrNotFound.
func (n *NewsletterDB) ReplaceQuestions(ctx context.Context, groupID string, questions []models.Question) (err error) {
	if _, err := uuid.Parse(groupID); err != nil {
		return ErrNotFound
	}
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
	}

	tx, err := n.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Lock the group row so concurrent replacements apply one after the other
	var locked string
	err = tx.GetContext(ctx, &locked, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("error locking group: %w", err)
	}

	if err = n.replaceQuestions(ctx, tx, groupID, questions); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	n.Log.Debug().Str("group_id", groupID).Int("question_count", len(questions)).Msg("questions replaced")
	return nil
}

func (n *NewsletterDB) replaceQuestions(ctx context.Context, tx *sqlx.Tx, groupID string, questions []models.Question) error {
	if err := n.execQuery(ctx, tx, `DELETE FROM questions WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("error removing questions: %w", err)
	}

	for _, q := range questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		err := n.execQuery(ctx, tx, `
			INSERT INTO questions (id, group_id, question, question_type, hint, question_index, options)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.ID, groupID, q.Question, string(q.QuestionType), q.Hint, q.QuestionIndex, pq.Array(options))
		if err != nil {
			return fmt.Errorf("error saving question: %w", err)
		}
	}
	return nil
}

// DeleteGroup removes a group. Members and questions are removed with it.
func (n *NewsletterDB) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := n.DB.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, groupID); err != nil {
		return fmt.Errorf("error deleting group: %w", err)
	}
	n.Log.Debug().Str("group_id", groupID).Msg("group deleted")
	return nil
}
