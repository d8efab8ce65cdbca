package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/blackjack-go/internal/model"
)

// DefaultArtURL serves one PNG per card code plus back.png
const DefaultArtURL = "https://deckofcardsapi.com/static/img"

// fetchWorkers bounds concurrent downloads
const fetchWorkers = 8

// FetchCardArt downloads every card face and the card back into dir,
// skipping files that already exist. A non-200 response is logged and
// skipped; transport and filesystem errors abort the fetch.
func FetchCardArt(ctx context.Context, client *http.Client, dir, baseURL string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create card dir: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")

	codes := []string{BackCode}
	for _, c := range model.AllCards() {
		codes = append(codes, c.Code())
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)

	for _, code := range codes {
		path := filepath.Join(dir, code+".png")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		g.Go(func() error {
			return fetchOne(ctx, client, baseURL+"/"+code+".png", path, logger)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("card art ready", slog.String("dir", dir))
	return nil
}

func fetchOne(ctx context.Context, client *http.Client, url, path string, logger *slog.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("card art unavailable",
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
		)
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	logger.Debug("downloaded card art", slog.String("path", path))
	return nil
}
