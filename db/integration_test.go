package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/algolovers/newsletter-console-services/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer starts a disposable postgres and returns its connection string
func setupPostgresContainer(t *testing.T) (string, func()) {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("could not start container: %s", err)
	}

	host, _ := pgC.Host(ctx)
	port, _ := pgC.MappedPort(ctx, "5432/tcp")

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		pgC.Terminate(ctx)
	}
}

func TestNewsletterDB_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	dsn, cleanup := setupPostgresContainer(t)
	defer cleanup()

	logger := zerolog.Nop()
	var n *NewsletterDB
	var err error
	// the port can be open before postgres accepts connections
	for i := 0; i < 10; i++ {
		if n, err = NewNewsletterDB("postgres", dsn, &logger); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	defer n.Close()

	require.NoError(t, n.Migrate())

	ctx := context.Background()
	owner := &models.User{EmailAddress: "owner@example.com", DisplayName: "Owner",
		Authorities: []models.Authority{models.AuthorityUser}, AccountValidityCode: "c1"}
	member := &models.User{EmailAddress: "member@example.com", DisplayName: "Member",
		Authorities: []models.Authority{models.AuthorityUser}}
	require.NoError(t, n.CreateUser(ctx, owner))
	require.NoError(t, n.CreateUser(ctx, member))

	found, err := n.GetUserByEmail(ctx, "OWNER@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, owner.ID, found.ID)

	hint := "pick any"
	group := &models.Group{
		GroupName:  "Weekly",
		GroupOwner: *owner,
		GroupMembers: []models.GroupMember{
			{User: *owner, HasEditAccess: true},
			{User: *member},
		},
		Questions: []models.Question{
			{Question: "Colours", QuestionType: models.QuestionTypeCheckbox, Hint: &hint, QuestionIndex: 1, Options: []string{"red", "blue"}},
			{Question: "Name", QuestionType: models.QuestionTypeText, QuestionIndex: 0},
		},
	}
	require.NoError(t, n.SaveGroup(ctx, group))

	stored, err := n.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, owner.ID, stored.GroupOwner.ID)
	assert.Len(t, stored.GroupMembers, 2)
	require.Len(t, stored.Questions, 2)
	assert.Equal(t, "Name", stored.Questions[0].Question)
	assert.Equal(t, []string{"red", "blue"}, stored.Questions[1].Options)

	// Replace questions and drop the member
	group.GroupMembers = group.GroupMembers[:1]
	group.Questions = []models.Question{{Question: "Only", QuestionType: models.QuestionTypeDate}}
	require.NoError(t, n.SaveGroup(ctx, group))

	stored, err = n.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, stored.GroupMembers, 1)
	require.Len(t, stored.Questions, 1)
	assert.Equal(t, "Only", stored.Questions[0].Question)

	require.NoError(t, n.UpdateValidityCode(ctx, owner.ID, "c2"))
	found, err = n.GetUserByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "c2", found.AccountValidityCode)

	require.NoError(t, n.DeleteGroup(ctx, group.ID))
	stored, err = n.GetGroup(ctx, group.ID)
	assert.NoError(t, err)
	assert.Nil(t, stored)
}
