package services

import (
	"context"
	"strings"

	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/regex"
)

// BotCommand is a parsed "@pr-bot ..." comment.
type BotCommand struct {
	Name    string
	Context string
}

// ParseBotCommand recognizes the first "@pr-bot <command> [context]" line
// in a comment body.
func ParseBotCommand(body string) (BotCommand, bool) {
	m := regex.BotMention.FindStringSubmatch(body)
	if m == nil {
		return BotCommand{}, false
	}
	return BotCommand{
		Name:    strings.ToLower(m[1]),
		Context: strings.TrimSpace(m[2]),
	}, true
}

const commandHelp = `Hi! I understand these commands:

| Command | Effect |
| ------- | ------ |
| ` + "`@pr-bot regenerate [context]`" + ` | Rewrite the summary and the changelog entries |
| ` + "`@pr-bot summary [context]`" + ` | Rewrite the summary only |
| ` + "`@pr-bot changelog [context]`" + ` | Rewrite the changelog entries only |
| ` + "`@pr-bot help`" + ` | Show this table |

The optional free text after the command is passed to the model as extra
context, e.g. ` + "`@pr-bot changelog this is a user-facing fix`" + `.`

// commentVCSClient is the slice of the forge client comment handling needs.
type commentVCSClient interface {
	CreateComment(ctx context.Context, prNumber int, body string) error
	AddReaction(ctx context.Context, commentID int64, content string) error
}

type CommentService struct {
	vcs       commentVCSClient
	prService *PRService
}

func NewCommentService(vcsClient commentVCSClient, prService *PRService) *CommentService {
	return &CommentService{
		vcs:       vcsClient,
		prService: prService,
	}
}

type CommentOptions struct {
	PRNumber  int
	CommentID int64
	Body      string
}

// HandleComment reacts to a "@pr-bot" comment on a pull request. Comments
// without a bot mention are ignored.
func (s *CommentService) HandleComment(ctx context.Context, opts CommentOptions) error {
	ctx = logger.With(ctx, "pr", opts.PRNumber, "comment_id", opts.CommentID)
	log := logger.FromContext(ctx)

	cmd, ok := ParseBotCommand(opts.Body)
	if !ok {
		log.Debug("comment has no bot command, ignoring")
		return nil
	}

	// Acknowledge before doing the slow work; a failed reaction is not
	// worth aborting for.
	if opts.CommentID != 0 {
		if err := s.vcs.AddReaction(ctx, opts.CommentID, "rocket"); err != nil {
			log.Warn("failed to react to comment", "error", err)
		}
	}

	var mode UpdateMode
	switch cmd.Name {
	case "regenerate":
		mode = ModeRegenerate
	case "summary":
		mode = ModeSummaryOnly
	case "changelog":
		mode = ModeChangelogOnly
	case "help":
		return s.vcs.CreateComment(ctx, opts.PRNumber, commandHelp)
	default:
		log.Info("unknown bot command", "command", cmd.Name)
		return s.vcs.CreateComment(ctx, opts.PRNumber, commandHelp)
	}

	_, err := s.prService.UpdatePR(ctx, PRUpdateOptions{
		PRNumber: opts.PRNumber,
		Mode:     mode,
		Context:  cmd.Context,
	})
	return err
}
