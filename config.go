package main

import (
	"strings"

	"github.com/koron/dl-kaoriya-vim/internal/config"
	gh "github.com/koron/dl-kaoriya-vim/internal/host/github"
	"github.com/koron/dl-kaoriya-vim/internal/model"
)

const (
	appName  = "dl-kaoriya-vim"
	appUsage = "Download the latest KaoriYa Vim from the GitHub release"
)

func archChoices() string {
	var names []string
	for _, a := range model.Arches() {
		names = append(names, string(a))
	}
	return strings.Join(names, ",")
}

// loadConfig reads the settings file named by --config, falling back to
// DLKV_CONFIG and then the user config directory.
func loadConfig(path string) (*config.Config, error) {
	if strings.TrimSpace(path) == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

func userAgent(cfg *config.Config) string {
	if ua := strings.TrimSpace(cfg.UserAgent); ua != "" {
		return ua
	}
	return gh.UserAgent(version)
}
