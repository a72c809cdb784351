package changelog

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
		Name:  "changelog",
		Usage: t.GetMessage("changelog_command_description", 0, nil),
		Commands: []*cli.Command{
			c.newCollectCommand(t),
			c.newMergeCommand(t),
			c.newVerifyCommand(t),
			c.newStampCommand(t),
		},
	}
}

func (c *CommandFactory) newCollectCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: t.GetMessage("collect_command_description", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "version",
				Aliases:  []string{"v"},
				Usage:    "version for the new release block",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "release date (YYYY-MM-DD), defaults to today",
			},
			&cli.BoolFlag{
				Name:  "write",
				Usage: "write the result back to the changelog file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, err := c.factory.ChangelogService(ctx)
			if err != nil {
				return err
			}

			version := cmd.String("version")
			spinner := ui.NewSmartSpinner(t.GetMessage("collecting_entries", 0, map[string]interface{}{
				"Version": version,
			}))
			spinner.Start()

			result, err := service.Collect(ctx, services.CollectOptions{
				Version: version,
				Date:    cmd.String("date"),
				Write:   cmd.Bool("write"),
			})
			if err != nil {
				spinner.Error(err.Error())
				return err
			}

			spinner.Success(t.GetMessage("entries_collected", result.Entries, map[string]interface{}{
				"Count": result.Entries,
				"PRs":   result.PRs,
			}))

			if !cmd.Bool("write") {
				fmt.Println(result.Content)
				ui.PrintDim(t.GetMessage("dry_run_notice", 0, nil))
			}
			return nil
		},
	}
}

func (c *CommandFactory) newMergeCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "merge",
		Usage: t.GetMessage("merge_command_description", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "version",
				Aliases:  []string{"v"},
				Usage:    "stable version absorbing its prereleases",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "write",
				Usage: "write the result back to the changelog file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, err := c.factory.ChangelogService(ctx)
			if err != nil {
				return err
			}

			version := cmd.String("version")
			spinner := ui.NewSmartSpinner(t.GetMessage("merging_prereleases", 0, map[string]interface{}{
				"Version": version,
			}))
			spinner.Start()

			content, err := service.Merge(ctx, services.MergeOptions{
				Version: version,
				Write:   cmd.Bool("write"),
			})
			if err != nil {
				spinner.Error(err.Error())
				return err
			}

			if cmd.Bool("write") {
				spinner.Success(t.GetMessage("changelog_written", 0, map[string]interface{}{
					"Path": c.factory.ProjectConfig().ChangelogPath,
				}))
			} else {
				spinner.Stop()
				fmt.Println(content)
				ui.PrintDim(t.GetMessage("dry_run_notice", 0, nil))
			}
			return nil
		},
	}
}

func (c *CommandFactory) newVerifyCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: t.GetMessage("verify_command_description", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, err := c.factory.ChangelogService(ctx)
			if err != nil {
				return err
			}

			if err := service.Verify(ctx); err != nil {
				ui.PrintError(err.Error())
				return err
			}
			ui.PrintSuccess(t.GetMessage("verify_passed", 0, nil))
			return nil
		},
	}
}

func (c *CommandFactory) newStampCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "stamp",
		Usage: t.GetMessage("stamp_command_description", 0, nil),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "pr",
				Usage:    "PR number replacing the #pr placeholders",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "write",
				Usage: "write the result back to the changelog file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			service, err := c.factory.ChangelogService(ctx)
			if err != nil {
				return err
			}

			prNumber := int(cmd.Int("pr"))
			content, count, err := service.Stamp(ctx, services.StampOptions{
				PRNumber: prNumber,
				Write:    cmd.Bool("write"),
			})
			if err != nil {
				return err
			}

			ui.PrintSuccess(t.GetMessage("lines_stamped", count, map[string]interface{}{
				"Count":  count,
				"Number": prNumber,
			}))
			if !cmd.Bool("write") {
				fmt.Println(content)
				ui.PrintDim(t.GetMessage("dry_run_notice", 0, nil))
			}
			return nil
		},
	}
}
