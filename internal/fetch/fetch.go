package fetch

import (
	"io"
	"net/http"
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
	"go.bug.st/downloader/v2"

	"github.com/koron/dl-kaoriya-vim/internal/filter"
	"github.com/koron/dl-kaoriya-vim/internal/logger"
)

const DefaultPollInterval = 100 * time.Millisecond

// Fetcher downloads release assets one at a time.
type Fetcher struct {
	HTTP         *http.Client
	Out          io.Writer
	NoProgress   bool
	PollInterval time.Duration
	Log          logrus.FieldLogger
	Now          func() time.Time
}

func (f *Fetcher) log() logrus.FieldLogger {
	if f.Log == nil {
		return logger.Discard()
	}
	return f.Log
}

func (f *Fetcher) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

// Fetch streams t.Asset to t.Path and stamps the file with the asset's
// updated_at time. A transfer that fails midway leaves the partial file.
func (f *Fetcher) Fetch(t filter.Target) error {
	updated, err := t.Asset.UpdatedTime()
	if err != nil {
		return err
	}
	log := f.log().WithField("asset", t.Asset.Name).WithField("path", t.Path)

	if t.Force {
		// The downloader resumes into shorter files and keeps equal-sized
		// ones, so a forced overwrite starts from an empty path.
		if err := os.Remove(t.Path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove %s", t.Path)
		}
	}

	cfg := downloader.Config{}
	if f.HTTP != nil {
		cfg.HttpClient = *f.HTTP
	}
	start := time.Now()
	d, err := downloader.DownloadWithConfig(t.Path, t.Asset.BrowserDownloadURL, cfg)
	if err != nil {
		return errors.Wrapf(err, "download %s", t.Asset.BrowserDownloadURL)
	}
	if code := d.Resp.StatusCode; code < 200 || code > 299 {
		_ = d.Close()
		_ = os.Remove(t.Path)
		return errors.Errorf("download %s: %s", t.Asset.BrowserDownloadURL, d.Resp.Status)
	}

	var poll func(int64)
	if f.NoProgress {
		poll = func(int64) {}
	} else {
		poll = NewProgress(f.Out, d.Size()).Update
	}
	interval := f.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if err := d.RunAndPoll(poll, interval); err != nil {
		return errors.Wrapf(err, "download %s", t.Asset.BrowserDownloadURL)
	}
	log.WithField("bytes", d.Completed()).WithField("elapsed", time.Since(start)).Debug("download finished")

	// An empty remote file counts as already complete and is never created.
	if _, err := os.Stat(t.Path); os.IsNotExist(err) {
		if err := os.WriteFile(t.Path, nil, 0o644); err != nil {
			return errors.Wrapf(err, "create %s", t.Path)
		}
	}
	// The downloader drops write errors, so a short file is the only sign
	// of a failed write.
	fi, err := os.Stat(t.Path)
	if err != nil {
		return errors.Wrapf(err, "stat %s", t.Path)
	}
	want := d.Size()
	if want < 0 {
		want = d.Completed()
	}
	if fi.Size() != want {
		return errors.Errorf("download %s: wrote %d of %d bytes", t.Asset.BrowserDownloadURL, fi.Size(), want)
	}

	if err := os.Chtimes(t.Path, f.now(), updated); err != nil {
		return errors.Wrapf(err, "set timestamp on %s", t.Path)
	}
	log.WithField("mtime", updated).Debug("timestamp set")
	return nil
}
