package model

import (
	"strings"
	"time"

	"emperror.dev/errors"
)

// TimestampLayout is the UTC timestamp format GitHub uses for release fields.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Release is the subset of the GitHub release payload that dl-kaoriya-vim uses.
type Release struct {
	Name      string  `json:"name"`
	TagName   string  `json:"tag_name"`
	CreatedAt string  `json:"created_at"`
	Assets    []Asset `json:"assets"`
}

// Asset is the subset of the GitHub release asset payload that dl-kaoriya-vim uses.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	UpdatedAt          string `json:"updated_at"`
	Size               int64  `json:"size"`
}

// UpdatedTime parses UpdatedAt as a UTC timestamp.
func (a Asset) UpdatedTime() (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, a.UpdatedAt, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "asset %s: parse updated_at %q", a.Name, a.UpdatedAt)
	}
	return t, nil
}

// Arch selects platform specific assets by substring.
type Arch string

const (
	ArchAll   Arch = "all"
	ArchWin32 Arch = "win32"
	ArchWin64 Arch = "win64"
)

// Arches returns the accepted selectors in help order.
func Arches() []Arch {
	return []Arch{ArchAll, ArchWin32, ArchWin64}
}

// ParseArch validates a selector given on the command line.
func ParseArch(s string) (Arch, error) {
	for _, a := range Arches() {
		if string(a) == s {
			return a, nil
		}
	}
	choices := make([]string, 0, len(Arches()))
	for _, a := range Arches() {
		choices = append(choices, "'"+string(a)+"'")
	}
	return "", errors.Errorf("invalid choice: '%s' (choose from %s)", s, strings.Join(choices, ", "))
}
