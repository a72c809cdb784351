package i18n

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type Translations struct {
	bundle   *i18n.Bundle
	localize *i18n.Localizer
}

func NewTranslations(defaultLang string) (*Translations, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	bundle.MustParseMessageFileBytes([]byte(defaultMessages), "default.en.toml")

	files, err := filepath.Glob("locales/active.*.toml")
	if err != nil {
		return nil, fmt.Errorf("error reading locales: %w", err)
	}

	for _, file := range files {
		if _, err := bundle.LoadMessageFile(file); err != nil {
			return nil, fmt.Errorf("error loading locale file %s: %w", file, err)
		}
	}

	localize := i18n.NewLocalizer(bundle, defaultLang)

	return &Translations{
		bundle:   bundle,
		localize: localize,
	}, nil
}

func (t *Translations) SetLanguage(lang string) error {
	for _, tag := range t.bundle.LanguageTags() {
		if tag.String() == lang {
			t.localize = i18n.NewLocalizer(t.bundle, lang)
			return nil
		}
	}
	return fmt.Errorf("language '%s' not supported", lang)
}

func (t *Translations) GetMessage(messageID string, count int, templateData map[string]interface{}) string {
	localized, err := t.localize.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID: messageID,
		},
		PluralCount:  count,
		TemplateData: templateData,
	})
	if err != nil {
		return "Translation missing: " + messageID
	}
	return localized
}

var defaultMessages = `
	[changelog_command_description]
	other = "Maintain CHANGELOG.md: collect entries from merged PRs, merge prereleases, verify and stamp"

	[collect_command_description]
	other = "Collect changelog entries from PRs merged since the latest release"

	[merge_command_description]
	other = "Fold alpha/beta/rc sections into the stable release"

	[verify_command_description]
	other = "Check the changelog survives a parse and render round trip"

	[stamp_command_description]
	other = "Replace #pr placeholders in the newest release with the PR number"

	[pr_command_description]
	other = "AI summary and changelog entries for pull requests"

	[pr_update_command_description]
	other = "Generate the summary and changelog for a PR and update its body"

	[pr_comment_command_description]
	other = "Handle a @pr-bot command from a PR comment"

	[release_command_description]
	other = "Release workflow: highlights, stable promotion, changelog archiving"

	[config_command_description]
	other = "Show or change the stored configuration"

	[collecting_entries]
	other = "Collecting entries for {{.Version}}..."

	[merging_prereleases]
	other = "Merging prereleases into {{.Version}}..."

	[updating_pr]
	other = "Updating PR #{{.Number}}..."

	[generating_highlights]
	other = "Generating highlights for PR #{{.Number}}..."

	[publishing_release]
	other = "Publishing release {{.Version}}..."

	[changelog_written]
	other = "Changelog written to {{.Path}}"

	[dry_run_notice]
	other = "Dry run, nothing written. Pass --write to persist."

	[verify_passed]
	other = "Changelog verification passed"

	[entries_collected]
	one = "{{.Count}} entry collected from {{.PRs}} merged PRs"
	other = "{{.Count}} entries collected from {{.PRs}} merged PRs"

	[lines_stamped]
	one = "{{.Count}} line stamped with #{{.Number}}"
	other = "{{.Count}} lines stamped with #{{.Number}}"

	[pr_updated]
	other = "PR #{{.Number}} updated"

	[highlights_written]
	other = "{{.Count}} highlights written to the release PR"

	[release_published]
	other = "Release {{.Tag}} published"

	[changelog_archived]
	other = "Changelog archived to {{.Path}}"

	[current_config]
	other = "Current configuration"

	[config_value_set]
	other = "{{.Key}} updated"

	[config_key_unknown]
	other = "Unknown config key: {{.Key}}"

	[config_initialized]
	other = "Configuration written to {{.Path}}"
	`
