package models

import "time"

type (
	// PullRequest contains the information the bots need from a pull request.
	PullRequest struct {
		Number       int
		Title        string
		Body         string
		Author       string
		BaseBranch   string
		HeadBranch   string
		MergedAt     *time.Time
		Commits      []Commit
		ChangedFiles []string
	}

	// Commit represents a commit included in a PR.
	Commit struct {
		Message string
	}

	// Comment is an issue comment on a pull request.
	Comment struct {
		ID     int64
		Body   string
		Author string
	}

	// BotResponse is the structured AI output for a pull request.
	BotResponse struct {
		Summary       string      `json:"summary"`
		Changelog     string      `json:"changelog"`
		SkipChangelog bool        `json:"skip_changelog"`
		Usage         *TokenUsage `json:"-"`
	}

	// Highlight is a single release highlight item.
	Highlight struct {
		Emoji       string `json:"emoji"`
		Description string `json:"description"`
	}
)

type TokenUsage struct {
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	TotalTokens  int    `json:"total_tokens"`
	Model        string `json:"model,omitempty"`
}
