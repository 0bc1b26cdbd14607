package main

import (
	"context"
	"fmt"
	"io"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
	urfave "github.com/urfave/cli"

	"github.com/koron/dl-kaoriya-vim/internal/cli"
	"github.com/koron/dl-kaoriya-vim/internal/fetch"
	"github.com/koron/dl-kaoriya-vim/internal/filter"
	gh "github.com/koron/dl-kaoriya-vim/internal/host/github"
	"github.com/koron/dl-kaoriya-vim/internal/logger"
	"github.com/koron/dl-kaoriya-vim/internal/model"
)

// queryError marks a failed release lookup; it is the only error reported
// as "release not found".
type queryError struct {
	reason string
	err    error
}

func (e *queryError) Error() string { return e.err.Error() }
func (e *queryError) Unwrap() error { return e.err }

func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	err := app.Run(append([]string{appName}, args...))
	if err == nil {
		return cli.ExitOK
	}

	var ue *cli.UsageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "usage: %s [-h] [-c] [-p] [-f] [-n FILENAME] [-a {%s}] [--auth TOKEN]\n", appName, archChoices())
		fmt.Fprintf(stderr, "%s: error: %s\n", appName, ue.Msg)
		return cli.ExitUsage
	}
	var qe *queryError
	if errors.As(err, &qe) {
		fmt.Fprintf(stderr, "GitHub release not found. (%s)\n", qe.reason)
		return cli.ExitFailure
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return cli.ExitFailure
}

func newApp(stdout, stderr io.Writer) *urfave.App {
	app := urfave.NewApp()
	app.Name = appName
	app.HelpName = appName
	app.Usage = appUsage
	app.Version = version
	app.Writer = stdout
	app.ErrWriter = stderr
	app.UseShortOptionHandling = true
	app.Flags = flags()
	app.OnUsageError = func(_ *urfave.Context, err error, _ bool) error {
		return cli.Usagef("%v", err)
	}
	app.Action = func(c *urfave.Context) error {
		return action(c, stdout, stderr)
	}
	return app
}

func flags() []urfave.Flag {
	return []urfave.Flag{
		urfave.BoolFlag{Name: "check, c", Usage: "only check the information of the latest release"},
		urfave.BoolFlag{Name: "noprogress, p", Usage: "don't show the progress"},
		urfave.BoolFlag{Name: "force, f", Usage: "overwrite the download file"},
		urfave.StringFlag{Name: "filename, n", Usage: "filename to save"},
		urfave.StringFlag{Name: "arch, a", Value: string(model.ArchAll), Usage: "architecture to download {" + archChoices() + "}"},
		urfave.StringFlag{Name: "auth", EnvVar: "AUTH_TOKEN", Usage: "GitHub API `TOKEN` (environment variable AUTH_TOKEN can be also used)"},
		urfave.StringFlag{Name: "config", Usage: "config file `PATH` (default: $DLKV_CONFIG or ~/.config/dl-kaoriya-vim/config.yaml)"},
		urfave.StringFlag{Name: "log-level", Usage: "diagnostic log `LEVEL` (debug/info/warn/error)"},
	}
}

func action(c *urfave.Context, stdout, stderr io.Writer) error {
	if c.NArg() > 0 {
		return cli.Usagef("unrecognized arguments: %s", c.Args().First())
	}
	arch, err := model.ParseArch(c.String("arch"))
	if err != nil {
		return cli.Usagef("argument -a/--arch: %v", err)
	}
	opts := filter.Options{
		Arch:     arch,
		Filename: c.String("filename"),
		Force:    c.Bool("force"),
	}
	if err := opts.Validate(); err != nil {
		return cli.Usagef("%v", err)
	}

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if l := c.String("log-level"); l != "" {
		level = l
	}
	log, err := logger.New(stderr, level)
	if err != nil {
		return err
	}
	log.WithField("config", cfg.Path()).WithField("repo", cfg.Repo).Debug("config loaded")
	opts.SkipMarker = cfg.SkipMarker
	opts.Dir = cfg.DestDir

	client := gh.NewClient(gh.Options{
		APIBase:   gh.APIBaseFromEnv(cfg.APIBase),
		Token:     c.String("auth"),
		UserAgent: userAgent(cfg),
		Timeout:   cfg.TimeoutDuration(),
		Log:       log,
	})
	rel, err := client.LatestRelease(context.Background(), cfg.Repo)
	if err != nil {
		return classifyQueryError(err)
	}

	fmt.Fprintln(stdout, "Last release:", rel.Name)
	fmt.Fprintln(stdout, "Created at:", rel.CreatedAt)
	if c.Bool("check") {
		return nil
	}

	f := &fetch.Fetcher{
		Out:          stdout,
		NoProgress:   c.Bool("noprogress"),
		PollInterval: cfg.PollIntervalDuration(),
		Log:          log,
	}
	return downloadAssets(rel.Assets, opts, f, stdout, log)
}

// downloadAssets decides each candidate just before fetching it, so an
// earlier download in this run counts as an existing file for later ones.
func downloadAssets(assets []model.Asset, opts filter.Options, f *fetch.Fetcher, stdout io.Writer, log logrus.FieldLogger) error {
	candidates := filter.Candidates(assets, opts)
	log.WithField("assets", len(assets)).WithField("candidates", len(candidates)).Debug("assets filtered")

	for _, asset := range candidates {
		t := filter.Decide(asset, opts, filter.FileExists)
		if !t.Download() {
			fmt.Fprintln(stdout, "File exists:", t.Path)
			continue
		}

		fmt.Fprintln(stdout, "Downloading from:", asset.BrowserDownloadURL)
		fmt.Fprintln(stdout, "Downloading to:", t.Path)
		if err := f.Fetch(t); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
	}
	return nil
}

func classifyQueryError(err error) error {
	var se *gh.StatusError
	if errors.As(err, &se) {
		return &queryError{reason: se.Reason, err: err}
	}
	var te *gh.TransportError
	if errors.As(err, &te) {
		return &queryError{reason: te.Err.Error(), err: err}
	}
	return err
}
