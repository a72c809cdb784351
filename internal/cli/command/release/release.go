package release

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
		Name:  "release",
		Usage: t.GetMessage("release_command_description", 0, nil),
		Commands: []*cli.Command{
			c.newHighlightsCommand(t),
			c.newStableCommand(t),
			c.newArchiveCommand(t),
			c.newVerifyCommand(t),
		},
	}
}

func (c *CommandFactory) newHighlightsCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "highlights",
		Usage: "generate release highlights into the release PR body",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "pr",
				Usage:    "release pull request number",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "target version, derived from the release branch when omitted",
			},
			&cli.BoolFlag{
				Name:  "regenerate",
				Usage: "replace highlights already present in the PR body",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print the highlights instead of editing the PR",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, err := c.factory.ReleaseService(ctx)
			if err != nil {
				return err
			}

			prNumber := int(cmd.Int("pr"))
			spinner := ui.NewSmartSpinner(t.GetMessage("generating_highlights", 0, map[string]interface{}{
				"Number": prNumber,
			}))
			spinner.Start()

			highlights, err := service.GenerateHighlights(ctx, services.HighlightsOptions{
				PRNumber:   prNumber,
				Version:    cmd.String("version"),
				Regenerate: cmd.Bool("regenerate"),
				DryRun:     cmd.Bool("dry-run"),
			})
			if err != nil {
				spinner.Error(err.Error())
				return err
			}

			spinner.Success(t.GetMessage("highlights_written", 0, map[string]interface{}{
				"Count": len(highlights),
			}))
			for _, h := range highlights {
				fmt.Printf("  %s %s\n", h.Emoji, h.Description)
			}
			return nil
		},
	}
}

func (c *CommandFactory) newStableCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "stable",
		Usage: "merge prereleases, insert highlights and publish the GitHub release",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "version",
				Aliases:  []string{"v"},
				Usage:    "stable version to publish",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "pr",
				Usage: "release PR whose body holds the highlights",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print the result instead of committing and releasing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, err := c.factory.ReleaseService(ctx)
			if err != nil {
				return err
			}

			version := cmd.String("version")
			spinner := ui.NewSmartSpinner(t.GetMessage("publishing_release", 0, map[string]interface{}{
				"Version": version,
			}))
			spinner.Start()

			result, err := service.Stable(ctx, services.StableOptions{
				Version:  version,
				PRNumber: int(cmd.Int("pr")),
				DryRun:   cmd.Bool("dry-run"),
			})
			if err != nil {
				spinner.Error(err.Error())
				return err
			}

			if cmd.Bool("dry-run") {
				spinner.Stop()
				fmt.Println(result.Section)
				ui.PrintDim(t.GetMessage("dry_run_notice", 0, nil))
				return nil
			}

			spinner.Success(t.GetMessage("release_published", 0, map[string]interface{}{
				"Tag": result.Tag,
			}))
			return nil
		},
	}
}

func (c *CommandFactory) newArchiveCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "archive the changelog for a finished series and reset CHANGELOG.md",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "version",
				Aliases:  []string{"v"},
				Usage:    "series to archive, e.g. 0.4",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "write",
				Usage: "write, commit and push the archive",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, err := c.factory.ReleaseService(ctx)
			if err != nil {
				return err
			}

			path, err := service.Archive(ctx, services.ArchiveOptions{
				Series: cmd.String("version"),
				Write:  cmd.Bool("write"),
			})
			if err != nil {
				return err
			}

			if !cmd.Bool("write") {
				ui.PrintDim(t.GetMessage("dry_run_notice", 0, nil))
				return nil
			}
			ui.PrintSuccess(t.GetMessage("changelog_archived", 0, map[string]interface{}{
				"Path": path,
			}))
			return nil
		},
	}
}

func (c *CommandFactory) newVerifyCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "check the version matches the current release branch",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "version",
				Aliases:  []string{"v"},
				Usage:    "version to check against the branch",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, err := c.factory.ReleaseService(ctx)
			if err != nil {
				return err
			}

			if err := service.VerifyBranch(ctx, cmd.String("version")); err != nil {
				ui.PrintError(err.Error())
				return err
			}
			ui.PrintSuccess(t.GetMessage("verify_passed", 0, nil))
			return nil
		},
	}
}
