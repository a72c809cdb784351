package regex

import "regexp"

var (
	// Commit and changelog entry patterns
	ConventionalHead = regexp.MustCompile(`^(feat|feature|fix|fixed|change|changed|perf|performance|docs|doc|documentation|breaking|break|internal|chore|refactor|revert|test|build|ci|style)(\(([^)]+)\))?(!)?:\s*(.+)`)
	BreakingChange   = regexp.MustCompile(`BREAKING[ -]CHANGE:\s*(.+)`)
	EntryLine        = regexp.MustCompile(`^-\s+(.+)`)
	PRMeta           = regexp.MustCompile(`\(#(\d+)(?:\s+@([A-Za-z0-9-]+))?\)\s*$`)
	PRPlaceholder    = regexp.MustCompile(`#pr\b`)

	// Version patterns
	SemVer        = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?$`)
	ReleaseBranch = regexp.MustCompile(`^release-(\d+)\.(\d+)\.x$`)

	// Changelog structure patterns
	ReleaseHeading = regexp.MustCompile(`^##\s+\\?\[?([^\]\s\\]+)\\?\]?(?:\s+-\s+(\d{4}-\d{2}-\d{2}))?\s*$`)
	SectionHeading = regexp.MustCompile(`^###\s+(.+?)\s*$`)

	// PR body patterns
	MarkdownCheckbox = regexp.MustCompile(`^\s*[-*+]\s+\[([ xX])]\s+(.+)`)
	GitHubPR         = regexp.MustCompile(`\(#(\d+)\)`)

	// Comment command patterns
	BotMention = regexp.MustCompile(`(?m)^\s*@pr-bot\s+(\S+)(?:\s+(.*))?$`)
	BotLogin   = regexp.MustCompile(`\[bot]$`)

	// Git and repo patterns
	SSHRepo   = regexp.MustCompile(`git@([^:]+):([^/]+)/(.+)\.git$`)
	HTTPSRepo = regexp.MustCompile(`https://([^/]+)/([^/]+)/(.+?)(?:\.git)?$`)

	// AI and JSON parsing
	MarkdownJSONBlock = regexp.MustCompile("(?s)```(?:json)?\n?(.*?)```")
	HTMLScript        = regexp.MustCompile(`(?is)<script.*?(?:</script>|$)`)
	HTMLIframe        = regexp.MustCompile(`(?is)<iframe.*?(?:</iframe>|$)`)
	JavascriptURI     = regexp.MustCompile(`(?i)javascript:`)
)
