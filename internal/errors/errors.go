package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeAI            ErrorType = "AI"
	TypeVCS           ErrorType = "VCS"
	TypeGit           ErrorType = "GIT"
	TypeChangelog     ErrorType = "CHANGELOG"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if stderr, ok := e.Context["stderr"].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Git errors
var (
	ErrGetBranch = NewAppError(TypeGit, "Failed to get current branch", nil).
			WithSuggestion("Make sure you are in a git repository: git status")

	ErrNoBranch = NewAppError(TypeGit, "No branch detected", nil).
			WithSuggestion("Create a branch first: git checkout -b <branch-name>")

	ErrGetRepoRoot = NewAppError(TypeGit, "Failed to get repository root", nil).
			WithSuggestion("Make sure you are inside a git repository")

	ErrGetRepoURL = NewAppError(TypeGit, "Failed to get repository URL", nil).
			WithSuggestion("Add a remote: git remote add origin <url>")

	ErrExtractRepoInfo = NewAppError(TypeGit, "Failed to extract repository info", nil)

	ErrTagNotFound = NewAppError(TypeGit, "No matching release tag found in repository history", nil).
			WithSuggestion("Fetch tags from the remote: git fetch --tags")

	ErrGetTagDate = NewAppError(TypeGit, "Failed to get tag date", nil)

	ErrFetchTags = NewAppError(TypeGit, "Failed to fetch tags from remote", nil).
			WithSuggestion("Check your network connection and remote access")

	ErrAddFile = NewAppError(TypeGit, "Failed to add file to staging", nil).
			WithSuggestion("Check if the file exists and you have write permissions")

	ErrCreateCommit = NewAppError(TypeGit, "Failed to create commit", nil).
			WithSuggestion("Ensure git user is configured:\n   git config --global user.name \"Your Name\"\n   git config --global user.email \"your@email.com\"")

	ErrPush = NewAppError(TypeGit, "Failed to push to remote", nil).
		WithSuggestion("Verify remote is configured: git remote -v")

	ErrNotReleaseBranch = NewAppError(TypeGit, "Current branch is not a release branch", nil).
				WithSuggestion("Release commands must run on a release-X.Y.x branch")
)

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "Gemini API key is missing", nil).
				WithSuggestion("Set GEMINI_API_KEY or run: ribir-bot config set gemini_api_key <key>")

	ErrTokenMissing = NewAppError(TypeConfiguration, "GitHub token is missing", nil).
			WithSuggestion("Set GITHUB_TOKEN or run: ribir-bot config set github_token <token>")

	ErrRepoNotConfigured = NewAppError(TypeConfiguration, "Repository owner/name not configured", nil).
				WithSuggestion("Run inside a git clone with an origin remote, or set owner/repo in the config")

	ErrProjectConfigInvalid = NewAppError(TypeConfiguration, "Invalid .ribir-bot.toml", nil).
				WithSuggestion("Check the TOML syntax and the documented keys")
)

// VCS errors
var (
	ErrRepositoryNotFound = NewAppError(TypeVCS, "repository not found", nil).
				WithSuggestion("Check repository URL and access permissions")

	ErrPRNotFound = NewAppError(TypeVCS, "pull request not found", nil).
			WithSuggestion("Check the PR number: gh pr list")

	ErrGitHubTokenInvalid = NewAppError(TypeVCS, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token at: https://github.com/settings/tokens")

	ErrGitHubInsufficientPerms = NewAppError(TypeVCS, "GitHub token has insufficient permissions", nil).
					WithSuggestion("Token needs 'repo' scope.\nRegenerate at: https://github.com/settings/tokens")

	ErrGitHubRateLimit = NewAppError(TypeVCS, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes or use a personal access token for higher limits")

	ErrUpdatePR = NewAppError(TypeVCS, "failed to update pull request", nil).
			WithSuggestion("Check your GitHub token has 'repo' permissions")

	ErrCreateRelease = NewAppError(TypeVCS, "failed to create release", nil).
				WithSuggestion("Check your GitHub token has 'repo' permissions")
)

// AI errors
var (
	ErrAIGeneration = NewAppError(TypeAI, "AI generation failed", nil).
			WithSuggestion("Try again or check your API key configuration")

	ErrInvalidAIOutput = NewAppError(TypeAI, "invalid AI output format", nil).
				WithSuggestion("This is likely a temporary issue, please try again")

	ErrAllModelsFailed = NewAppError(TypeAI, "all configured models failed", nil).
				WithSuggestion("Check the model list in your config and your API quota")

	ErrGeminiAPIKeyInvalid = NewAppError(TypeAI, "Gemini API key is invalid", nil).
				WithSuggestion("Get a valid API key at: https://aistudio.google.com/app/apikey")

	ErrGeminiQuotaExceeded = NewAppError(TypeAI, "Gemini API quota exceeded", nil).
				WithSuggestion("Wait for quota to reset or upgrade your Gemini plan")

	ErrEmptySummary = NewAppError(TypeAI, "AI returned an empty summary", nil).
			WithSuggestion("Rerun with extra context: @pr-bot regenerate <context>")

	ErrNoChangelogBullets = NewAppError(TypeAI, "AI changelog has no entry bullets", nil).
				WithSuggestion("Rerun with extra context: @pr-bot changelog <context>")
)

// Changelog errors
var (
	ErrChangelogNotFound = NewAppError(TypeChangelog, "changelog file not found", nil).
				WithSuggestion("Run from the repository root, or set changelog_path in .ribir-bot.toml")

	ErrNoReleases = NewAppError(TypeChangelog, "changelog has no releases", nil).
			WithSuggestion("Add a '## [version] - date' heading first")

	ErrReleaseNotFound = NewAppError(TypeChangelog, "release not found in changelog", nil)

	ErrNoPrereleases = NewAppError(TypeChangelog, "no prereleases found to merge", nil).
				WithSuggestion("Merge expects alpha/beta/rc releases with the same major.minor.patch")

	ErrInvalidVersion = NewAppError(TypeChangelog, "version is not valid semver", nil).
				WithSuggestion("Use a version like 0.5.0 or 0.5.0-rc.1")

	ErrVerifyMismatch = NewAppError(TypeChangelog, "changelog does not survive a parse/render round trip", nil).
				WithSuggestion("Check for malformed release or section headings")

	ErrMarkersMissing = NewAppError(TypeChangelog, "changelog markers not found in PR body", nil).
				WithSuggestion("The PR template should include the RIBIR_CHANGELOG markers")

	ErrHighlightsMissing = NewAppError(TypeChangelog, "highlights markers not found in release PR body", nil)

	ErrHighlightCount = NewAppError(TypeChangelog, "release needs between 3 and 5 highlights", nil).
				WithSuggestion("Regenerate: ribir-bot release highlights --regenerate")
)

// Internal errors
var (
	ErrRenderPrompt = NewAppError(TypeInternal, "Failed to render prompt template", nil)
)
