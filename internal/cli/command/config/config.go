package config

import (
	"context"
	"fmt"
	"strings"

	cfg "github.com/RibirX/ribir-bot/internal/config"
	"github.com/RibirX/ribir-bot/internal/i18n"
	"github.com/RibirX/ribir-bot/internal/ui"
	"github.com/urfave/cli/v3"
)

type CommandFactory struct{}

func NewCommandFactory() *CommandFactory {
	return &CommandFactory{}
}

func (c *CommandFactory) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config_command_description", 0, nil),
		Commands: []*cli.Command{
			c.newShowCommand(t, config),
			c.newSetCommand(t, config),
			c.newInitCommand(t, config),
		},
	}
}

func (c *CommandFactory) newShowCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "print the stored configuration",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("%s (%s)\n", t.GetMessage("current_config", 0, nil), config.PathFile)
			fmt.Printf("  language:       %s\n", config.Language)
			fmt.Printf("  github_owner:   %s\n", config.Owner)
			fmt.Printf("  github_repo:    %s\n", config.Repo)
			fmt.Printf("  github_token:   %s\n", maskSecret(config.GithubToken))
			fmt.Printf("  gemini_api_key: %s\n", maskSecret(config.GeminiAPIKey))
			fmt.Printf("  gemini_models:  %s\n", strings.Join(config.Models, ", "))
			return nil
		},
	}
}

func (c *CommandFactory) newSetCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "set a configuration value",
		ArgsUsage: "<key> <value>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 2 {
				return fmt.Errorf("usage: ribir-bot config set <key> <value>")
			}

			key, value := args.Get(0), args.Get(1)
			switch key {
			case "language":
				config.Language = value
			case "github_token":
				config.GithubToken = value
			case "gemini_api_key":
				config.GeminiAPIKey = value
			case "github_owner":
				config.Owner = value
			case "github_repo":
				config.Repo = value
			case "gemini_models":
				config.Models = splitList(value)
			default:
				return fmt.Errorf("%s", t.GetMessage("config_key_unknown", 0, map[string]interface{}{
					"Key": key,
				}))
			}

			if err := cfg.SaveConfig(config); err != nil {
				return err
			}
			ui.PrintSuccess(t.GetMessage("config_value_set", 0, map[string]interface{}{
				"Key": key,
			}))
			return nil
		},
	}
}

func (c *CommandFactory) newInitCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "write the configuration file with its current values",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := cfg.SaveConfig(config); err != nil {
				return err
			}
			ui.PrintSuccess(t.GetMessage("config_initialized", 0, map[string]interface{}{
				"Path": config.PathFile,
			}))
			return nil
		},
	}
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
