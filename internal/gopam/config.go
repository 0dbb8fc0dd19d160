package gopam

import (
	"io/ioutil"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// FormatVersion is gopam's on-disk config format identifier, analogous to
// opam's "opam-version" field.
const FormatVersion = "1.0"

// GlobalConfig is the root-owned configuration: format version, the
// ordered repository list, the current switch alias, and the worker count
// used by the action executor.
type GlobalConfig struct {
	FormatVersion string       `toml:"format-version"`
	Repos         []Repository `toml:"repos"`
	CurrentAlias  Alias        `toml:"current-alias"`
	Workers       int          `toml:"workers"`
}

// readGlobalConfig loads and validates the global config file.
func readGlobalConfig(path string) (*GlobalConfig, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg GlobalConfig
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}

func writeGlobalConfig(path string, cfg *GlobalConfig) error {
	b, err := toml.Marshal(*cfg)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}

// RepoByName returns the configured repository named n, preserving
// priority-order semantics (a name is unique across the configured list).
func (c *GlobalConfig) RepoByName(n RepoName) (Repository, bool) {
	for _, r := range c.Repos {
		if r.Name == n {
			return r, true
		}
	}
	return Repository{}, false
}

// removeRepo deletes the repo matching n by value; it is the caller's job
// (remote rm) to have already confirmed existence.
func (c *GlobalConfig) removeRepo(n RepoName) {
	out := c.Repos[:0]
	for _, r := range c.Repos {
		if r.Name != n {
			out = append(out, r)
		}
	}
	c.Repos = out
}

// --- AliasMap persistence ---

type rawAliasMap struct {
	Aliases []AliasEntry `toml:"alias"`
}

func readAliasMap(path string) (AliasMap, error) {
	if ok, _ := isRegular(path); !ok {
		return AliasMap{}, nil
	}
	b, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AliasMap{}, nil
		}
		return nil, err
	}
	var raw rawAliasMap
	if err := toml.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return AliasMap(raw.Aliases), nil
}

func writeAliasMap(path string, m AliasMap) error {
	raw := rawAliasMap{Aliases: []AliasEntry(m)}
	b, err := toml.Marshal(raw)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}
