package services

import (
	"context"

	"github.com/algolovers/newsletter-console-services/internal/events"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/stretchr/testify/mock"
)

type MockNewsletterDB struct {
	mock.Mock
}

type MockNotifier struct {
	mock.Mock
}

type MockCache struct {
	mock.Mock
}

func (m *MockNewsletterDB) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	args := m.Called(ctx, groupID)
	group, _ := args.Get(0).(*models.Group)
	return group, args.Error(1)
}

func (m *MockNewsletterDB) SaveGroup(ctx context.Context, group *models.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockNewsletterDB) DeleteGroup(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MockNewsletterDB) ReplaceQuestions(ctx context.Context, groupID string, questions []models.Question) error {
	args := m.Called(ctx, groupID, questions)
	return args.Error(0)
}

func (m *MockNewsletterDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockNewsletterDB) GetUserByEmail(ctx context.Context, emailAddress string) (*models.User, error) {
	args := m.Called(ctx, emailAddress)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockNewsletterDB) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockNewsletterDB) UpdateValidityCode(ctx context.Context, userID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockNotifier) Publish(ctx context.Context, event events.GroupEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) Close() {
	m.Called()
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
