package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceKind identifies where an importable form document lives.
type SourceKind int

const (
	SourceKindFile SourceKind = iota
	SourceKindFS
	SourceKindURL
)

// Source locates a form document: a builder JSON export or an OpenAPI
// document.
type Source struct {
	Kind     SourceKind
	Location string
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return Source{Kind: SourceKindFile, Location: filepath.Clean(path)}
}

// SourceFromFS returns a Source naming a file inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return Source{Kind: SourceKindFS, Location: name}
}

// SourceFromURL validates raw and returns an HTTP(S) Source.
func SourceFromURL(raw string) (Source, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Source{}, fmt.Errorf("builder: invalid source URL %q", raw)
	}
	return Source{Kind: SourceKindURL, Location: raw}, nil
}

// ParseSource treats http:// and https:// locations as URLs and anything
// else as a file path.
func ParseSource(raw string) (Source, error) {
	location := strings.TrimSpace(raw)
	if location == "" {
		return Source{}, errors.New("builder: source is empty")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return SourceFromURL(location)
	}
	return SourceFromFile(location), nil
}

// Loader reads sources from disk, an fs.FS or over HTTP.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS enables SourceKindFS sources.
func WithFS(files fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient overrides the client used for URL sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client != nil {
			l.http = client
		}
	}
}

// WithTimeout bounds each HTTP fetch.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// NewLoader constructs a Loader.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{http: http.DefaultClient}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load returns the raw bytes of src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Location == "" {
		return nil, errors.New("builder: source location is required")
	}
	switch src.Kind {
	case SourceKindFile:
		return os.ReadFile(src.Location)
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("builder: filesystem is not configured")
		}
		return fs.ReadFile(l.fs, src.Location)
	case SourceKindURL:
		return l.fetch(ctx, src.Location)
	default:
		return nil, fmt.Errorf("builder: unsupported source kind %d", src.Kind)
	}
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("builder: fetch %s: %w", location, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("builder: fetch %s: unexpected status %s", location, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
