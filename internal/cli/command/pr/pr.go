package pr

import (
	"context"
	"fmt"

	cfg "github.com/RibirX/ribir-bot/internal/config"
	"github.com/RibirX/ribir-bot/internal/i18n"
	"github.com/RibirX/ribir-bot/internal/services"
	"github.com/RibirX/ribir-bot/internal/ui"
	"github.com/urfave/cli/v3"
)

type CommandFactory struct {
	factory *services.Factory
}

func NewCommandFactory(factory *services.Factory) *CommandFactory {
	return &CommandFactory{factory: factory}
}

func (c *CommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "pr",
		Usage: t.GetMessage("pr_command_description", 0, nil),
		Commands: []*cli.Command{
			c.newUpdateCommand(t),
			c.newCommentCommand(t),
		},
	}
}

func (c *CommandFactory) newUpdateCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: t.GetMessage("pr_update_command_description", 0, nil),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "pr",
				Usage:    "pull request number",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "mode",
				Value: "auto",
				Usage: "auto, regenerate, summary or changelog",
			},
			&cli.StringFlag{
				Name:  "context",
				Usage: "extra context passed to the model",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print the new body instead of editing the PR",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mode, err := services.ParseMode(cmd.String("mode"))
			if err != nil {
				return err
			}

			service, err := c.factory.PRService(ctx)
			if err != nil {
				return err
			}

			prNumber := int(cmd.Int("pr"))
			spinner := ui.NewSmartSpinner(t.GetMessage("updating_pr", 0, map[string]interface{}{
				"Number": prNumber,
			}))
			spinner.Start()

			result, err := service.UpdatePR(ctx, services.PRUpdateOptions{
				PRNumber: prNumber,
				Mode:     mode,
				Context:  cmd.String("context"),
				DryRun:   cmd.Bool("dry-run"),
			})
			if err != nil {
				spinner.Error(err.Error())
				return err
			}

			if cmd.Bool("dry-run") {
				spinner.Stop()
				fmt.Println(result.Body)
				ui.PrintDim(t.GetMessage("dry_run_notice", 0, nil))
				return nil
			}

			spinner.Success(t.GetMessage("pr_updated", 0, map[string]interface{}{
				"Number": prNumber,
			}))
			return nil
		},
	}
}

func (c *CommandFactory) newCommentCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "comment",
		Usage: t.GetMessage("pr_comment_command_description", 0, nil),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "pr",
				Usage:    "pull request number",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "comment-id",
				Usage: "id of the triggering comment, used for the acknowledgement reaction",
			},
			&cli.StringFlag{
				Name:     "body",
				Usage:    "comment body containing the @pr-bot command",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, err := c.factory.CommentService(ctx)
			if err != nil {
				return err
			}

			return service.HandleComment(ctx, services.CommentOptions{
				PRNumber:  int(cmd.Int("pr")),
				CommentID: int64(cmd.Int("comment-id")),
				Body:      cmd.String("body"),
			})
		},
	}
}
