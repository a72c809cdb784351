package main

import (
	"context"
	"fmt"
	"log"
	"os"

	changelogcmd "github.com/RibirX/ribir-bot/internal/cli/command/changelog"
	configcmd "github.com/RibirX/ribir-bot/internal/cli/command/config"
	prcmd "github.com/RibirX/ribir-bot/internal/cli/command/pr"
	releasecmd "github.com/RibirX/ribir-bot/internal/cli/command/release"
	"github.com/RibirX/ribir-bot/internal/cli/registry"
	cfg "github.com/RibirX/ribir-bot/internal/config"
	"github.com/RibirX/ribir-bot/internal/git"
	"github.com/RibirX/ribir-bot/internal/i18n"
	"github.com/RibirX/ribir-bot/internal/logger"
	"github.com/RibirX/ribir-bot/internal/services"
	"github.com/RibirX/ribir-bot/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Error initializing the cli: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func initializeApp() (*cli.Command, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not resolve the user home directory: %w", err)
	}

	cfgApp, err := cfg.LoadConfig(homeDir)
	if err != nil {
		return nil, err
	}

	translations, err := i18n.NewTranslations(cfgApp.Language)
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	projectCfg, err := cfg.LoadProjectConfig(workDir)
	if err != nil {
		return nil, err
	}

	gitService := git.NewGitService()
	factory := services.NewFactory(cfgApp, projectCfg, gitService)

	registerCommand := registry.NewRegistry(cfgApp, translations)

	if err := registerCommand.Register("changelog", changelogcmd.NewCommandFactory(factory)); err != nil {
		return nil, err
	}
	if err := registerCommand.Register("pr", prcmd.NewCommandFactory(factory)); err != nil {
		return nil, err
	}
	if err := registerCommand.Register("release", releasecmd.NewCommandFactory(factory)); err != nil {
		return nil, err
	}
	if err := registerCommand.Register("config", configcmd.NewCommandFactory()); err != nil {
		return nil, err
	}

	app := &cli.Command{
		Name:                  "ribir-bot",
		Usage:                 "AI changelog and release automation for the Ribir repositories",
		Version:               version.FullVersion(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "debug logging with source locations",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "info level logging",
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: "override the configured language",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Initialize(cmd.Bool("debug"), cmd.Bool("verbose"))
			if lang := cmd.String("lang"); lang != "" {
				if err := translations.SetLanguage(lang); err != nil {
					return ctx, err
				}
				cfgApp.Language = lang
			}
			return ctx, nil
		},
		Commands: registerCommand.CreateCommands(),
	}

	return app, nil
}
