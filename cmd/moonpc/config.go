package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// projectConfig is the shape of a ".moonp.toml" project config file,
// adapted from the teacher's BurntSushi/toml use in server/config.go:
// defaults for moonp.Options that CLI flags override when explicitly set.
type projectConfig struct {
	LintGlobalVariable bool `toml:"lint_global_variable"`
	ImplicitReturnRoot bool `toml:"implicit_return_root"`
	ReserveLineNumber  bool `toml:"reserve_line_number"`
	UseSpaceOverTab    bool `toml:"use_space_over_tab"`
	LineOffset         int  `toml:"line_offset"`
}

// loadProjectConfig reads path if it exists. A missing file is not an
// error; it simply yields the zero-value projectConfig.
func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
