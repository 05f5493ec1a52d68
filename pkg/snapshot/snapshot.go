package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shouni/go-http-kit/httpkit"
)

var (
	ErrEmptyFrame    = errors.New("snapshot source returned no data")
	ErrFrameTooLarge = errors.New("snapshot exceeds size limit")
)

const maxFrameBytes = 20 * 1024 * 1024

// IGrabber fetches still frames from a camera's snapshot endpoint or from a
// file on disk.
type IGrabber interface {
	FromURL(ctx context.Context, url string) ([]byte, string, error)
	FromFile(path string) ([]byte, error)
}

type grabber struct {
	client   httpkit.Doer
	maxBytes int64
}

// New builds a grabber on an httpkit client. Cameras sit on private networks,
// so the SSRF guard is off.
func New() IGrabber {
	timeout := 5 * time.Second
	if d, err := time.ParseDuration(os.Getenv("SNAPSHOT_HTTP_TIMEOUT")); err == nil && d > 0 {
		timeout = d
	}
	return NewWithClient(httpkit.New(timeout, httpkit.WithSkipNetworkValidation(true)))
}

func NewWithClient(client httpkit.Doer) IGrabber {
	return &grabber{client: client, maxBytes: maxFrameBytes}
}

func (g *grabber) FromURL(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build snapshot request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("grab snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("grab snapshot: unexpected status %d", resp.StatusCode)
	}

	// One byte past the limit tells a full frame from a cut one.
	data, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read snapshot: %w", err)
	}
	if int64(len(data)) > g.maxBytes {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrFrameTooLarge, g.maxBytes)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyFrame
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func (g *grabber) FromFile(path string) ([]byte, error) {
	if path == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	return data, nil
}
