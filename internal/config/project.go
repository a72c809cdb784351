package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/RibirX/ribir-bot/internal/errors"
)

// ProjectFileName is the repo-level configuration file, looked up in the
// working directory.
const ProjectFileName = ".ribir-bot.toml"

// ProjectConfig holds per-repository settings. Everything has a default so
// the file is optional.
type ProjectConfig struct {
	ChangelogPath string   `toml:"changelog_path"`
	ArchiveDir    string   `toml:"archive_dir"`
	BaseBranch    string   `toml:"base_branch"`
	Scopes        []string `toml:"scopes"`
	TagPrefixes   []string `toml:"tag_prefixes"`
}

func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		ChangelogPath: "CHANGELOG.md",
		ArchiveDir:    "changelogs",
		BaseBranch:    "master",
		Scopes: []string{
			"core", "gpu", "macros", "widgets", "themes",
			"painter", "cli", "text", "tools",
		},
		// Tag forms tried when resolving a released version, in order.
		TagPrefixes: []string{"v", "ribir-v", ""},
	}
}

// LoadProjectConfig reads .ribir-bot.toml from dir. A missing file is not an
// error; defaults apply.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	cfg := DefaultProjectConfig()

	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.ErrProjectConfigInvalid.WithError(err).WithContext("path", path)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.ErrProjectConfigInvalid.WithError(err).WithContext("path", path)
	}

	fillProjectDefaults(cfg)
	return cfg, nil
}

func fillProjectDefaults(cfg *ProjectConfig) {
	def := DefaultProjectConfig()
	if cfg.ChangelogPath == "" {
		cfg.ChangelogPath = def.ChangelogPath
	}
	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = def.ArchiveDir
	}
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = def.BaseBranch
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = def.Scopes
	}
	if len(cfg.TagPrefixes) == 0 {
		cfg.TagPrefixes = def.TagPrefixes
	}
}
