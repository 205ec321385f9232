package tileset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"tilekit/internal/monitoring"
	"tilekit/internal/terrain"
)

// Opener resolves a base name against candidate extensions, trying them in
// order. filesystem.FileSystem implements it.
type Opener interface {
	OpenWithExts(name string, exts ...string) (io.ReadCloser, error)
}

// Decoder turns an image stream into a cell bitmap.
type Decoder func(io.Reader) (*terrain.Bitmap, error)

type loadConfig struct {
	decode   Decoder
	workers  int
	monitor  *monitoring.LoadMonitor
	progress func(done, total int)
	logger   *slog.Logger
}

type LoadOption func(*loadConfig)

// WithDecoder replaces terrain.Decode.
func WithDecoder(d Decoder) LoadOption {
	return func(c *loadConfig) { c.decode = d }
}

// WithWorkers loads up to n templates at once. n <= 1 loads sequentially.
func WithWorkers(n int) LoadOption {
	return func(c *loadConfig) { c.workers = n }
}

// WithMonitor records decodes, cache hits and failures in m.
func WithMonitor(m *monitoring.LoadMonitor) LoadOption {
	return func(c *loadConfig) { c.monitor = m }
}

// WithProgress calls fn after each template, cached or not. Calls are
// serialized.
func WithProgress(fn func(done, total int)) LoadOption {
	return func(c *loadConfig) { c.progress = fn }
}

func WithLogger(logger *slog.Logger) LoadOption {
	return func(c *loadConfig) { c.logger = logger }
}

// LoadTiles decodes the bitmap of every template that is not cached yet.
// Calling it again only decodes what is still missing. The first template
// whose image cannot be opened or decoded aborts the call with its error;
// bitmaps cached before that point stay cached.
func (ts *TileSet) LoadTiles(files Opener, opts ...LoadOption) error {
	config := loadConfig{
		decode:  terrain.Decode,
		workers: 1,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.monitor == nil {
		config.monitor = monitoring.NewLoadMonitor()
	}

	ids := ts.templateOrder
	var (
		progressMu sync.Mutex
		done       int
	)
	step := func() {
		if config.progress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		done++
		config.progress(done, len(ids))
	}

	if config.workers <= 1 {
		for _, id := range ids {
			if err := ts.loadTemplate(files, &config, ts.templates[id]); err != nil {
				return err
			}
			step()
		}
		return nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(config.workers)
	for _, id := range ids {
		t := ts.templates[id]
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := ts.loadTemplate(files, &config, t); err != nil {
				return err
			}
			step()
			return nil
		})
	}
	return g.Wait()
}

func (ts *TileSet) loadTemplate(files Opener, config *loadConfig, t TileTemplate) error {
	_, cached, err := ts.bitmaps.getOrLoad(t.ID, func() (*terrain.Bitmap, error) {
		timer := config.monitor.StartDecode()

		rc, err := files.OpenWithExts(t.Image, ts.extensions...)
		if err != nil {
			timer.Fail()
			return nil, fmt.Errorf("template %d: %w", t.ID, err)
		}
		defer rc.Close()

		bmp, err := config.decode(rc)
		if err != nil {
			timer.Fail()
			return nil, fmt.Errorf("template %d (%s): %w", t.ID, t.Image, err)
		}
		timer.EndDecode(bitmapBytes(bmp))
		return bmp, nil
	})
	if err != nil {
		config.logger.Warn("template bitmap failed", "id", t.ID, "image", t.Image, "error", err)
		return err
	}

	if cached {
		config.monitor.CacheHit()
		return nil
	}
	config.logger.Debug("template bitmap loaded", "id", t.ID, "image", t.Image)
	return nil
}

func bitmapBytes(b *terrain.Bitmap) int {
	n := 0
	for _, c := range b.Cells {
		n += len(c)
	}
	return n
}
