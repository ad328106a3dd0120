package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
	"github.com/ericfisherdev/tootgroup/internal/domain/port/driven"
)

// ErrContentTransform marks a failure to re-host the media of a single status.
// It aborts the repost of that status only.
var ErrContentTransform = errors.New("content transform failed")

// MediaUploader is the slice of the MastodonClient port the rehoster needs.
type MediaUploader interface {
	UploadMedia(ctx context.Context, filename string, data io.Reader, description string) (string, error)
}

// MediaRehoster downloads the attachments of a status and uploads them again
// to the group's instance. Instances do not accept media IDs owned by another
// account, so a repost needs fresh uploads.
type MediaRehoster struct {
	fetcher  driven.MediaFetcher
	uploader MediaUploader
	tempDir  string
}

// NewMediaRehoster creates a MediaRehoster. tempDir holds the short-lived
// local copy of each file; an empty tempDir means os.TempDir().
func NewMediaRehoster(fetcher driven.MediaFetcher, uploader MediaUploader, tempDir string) *MediaRehoster {
	return &MediaRehoster{
		fetcher:  fetcher,
		uploader: uploader,
		tempDir:  tempDir,
	}
}

// Rehost re-uploads every attachment in order and returns the new media IDs.
// The first failure aborts and is returned wrapped in ErrContentTransform.
func (r *MediaRehoster) Rehost(ctx context.Context, attachments []model.Attachment) ([]string, error) {
	if len(attachments) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(attachments))
	for _, a := range attachments {
		id, err := r.rehostOne(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("%w: rehost %s: %w", ErrContentTransform, a.SourceURL, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (r *MediaRehoster) rehostOne(ctx context.Context, a model.Attachment) (string, error) {
	data, err := r.fetcher.FetchBytes(ctx, a.SourceURL)
	if err != nil {
		return "", err
	}

	filename := FilenameFromURL(a.SourceURL)
	f, err := os.CreateTemp(r.tempDir, "tootgroup-*-"+filename)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil {
			slog.Warn("failed to remove temp media file", "path", f.Name(), "error", rmErr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind temp file: %w", err)
	}

	id, err := r.uploader.UploadMedia(ctx, filename, f, a.Description)
	if err != nil {
		return "", err
	}

	slog.Debug("media rehosted", "source", a.SourceURL, "media_id", id, "bytes", len(data))
	return id, nil
}

// FilenameFromURL derives an upload filename from the last path segment of
// rawURL, without any query string or fragment.
func FilenameFromURL(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	} else {
		name = path.Base(rawURL)
		name, _, _ = strings.Cut(name, "?")
		name, _, _ = strings.Cut(name, "#")
	}

	name = strings.ReplaceAll(name, "*", "_")
	if name == "" || name == "." || name == "/" {
		return "media"
	}
	return name
}
