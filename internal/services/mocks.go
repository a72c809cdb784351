package services

import (
	"context"
	"time"

	"github.com/RibirX/ribir-bot/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockVCSClient fakes the forge client for service tests.
type MockVCSClient struct {
	mock.Mock
}

func (m *MockVCSClient) GetPR(ctx context.Context, prNumber int) (models.PullRequest, error) {
	args := m.Called(ctx, prNumber)
	return args.Get(0).(models.PullRequest), args.Error(1)
}

func (m *MockVCSClient) UpdatePRBody(ctx context.Context, prNumber int, body string) error {
	args := m.Called(ctx, prNumber, body)
	return args.Error(0)
}

func (m *MockVCSClient) AddLabelsToPR(ctx context.Context, prNumber int, labels []string) error {
	args := m.Called(ctx, prNumber, labels)
	return args.Error(0)
}

func (m *MockVCSClient) ListMergedPRsSince(ctx context.Context, base string, since time.Time) ([]models.PullRequest, error) {
	args := m.Called(ctx, base, since)
	return args.Get(0).([]models.PullRequest), args.Error(1)
}

func (m *MockVCSClient) CreateComment(ctx context.Context, prNumber int, body string) error {
	args := m.Called(ctx, prNumber, body)
	return args.Error(0)
}

func (m *MockVCSClient) AddReaction(ctx context.Context, commentID int64, content string) error {
	args := m.Called(ctx, commentID, content)
	return args.Error(0)
}

func (m *MockVCSClient) CreateRelease(ctx context.Context, tag, name, body string, prerelease bool) error {
	args := m.Called(ctx, tag, name, body, prerelease)
	return args.Error(0)
}

// MockGitService fakes the local git operations.
type MockGitService struct {
	mock.Mock
}

func (m *MockGitService) GetCurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) FetchTags(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGitService) ResolveReleaseTag(ctx context.Context, version string, prefixes []string) (string, error) {
	args := m.Called(ctx, version, prefixes)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) GetTagDate(ctx context.Context, tag string) (string, error) {
	args := m.Called(ctx, tag)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) AddFileToStaging(ctx context.Context, file string) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockGitService) CreateCommit(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockGitService) Push(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPRGenerator fakes the AI answer for PR updates.
type MockPRGenerator struct {
	mock.Mock
}

func (m *MockPRGenerator) GeneratePRContent(ctx context.Context, prompt string) (models.BotResponse, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(models.BotResponse), args.Error(1)
}

// MockHighlightsGenerator fakes the AI answer for release highlights.
type MockHighlightsGenerator struct {
	mock.Mock
}

func (m *MockHighlightsGenerator) GenerateHighlights(ctx context.Context, prompt string) ([]models.Highlight, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).([]models.Highlight), args.Error(1)
}
