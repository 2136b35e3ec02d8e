package persona

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const Default = "You are an IT consulting assistant for Azayd IT Consulting.\n" +
	"Respond professionally and concisely about our IT services."

var ErrEmptyPersona = errors.New("persona file is empty")

// Persona holds the preamble sent ahead of every remote prompt. When backed
// by a file, Watch keeps it current.
type Persona struct {
	mu     sync.RWMutex
	text   string
	path   string
	logger *slog.Logger
	onLoad func(string)
}

func New(path string, logger *slog.Logger) (*Persona, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Persona{
		text:   Default,
		path:   strings.TrimSpace(path),
		logger: logger.With("component", "persona"),
	}
	if p.path == "" {
		return p, nil
	}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Persona) Text() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text
}

func (p *Persona) Path() string {
	return p.path
}

func (p *Persona) reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("read persona file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return ErrEmptyPersona
	}
	p.mu.Lock()
	p.text = text
	onLoad := p.onLoad
	p.mu.Unlock()
	if onLoad != nil {
		onLoad(text)
	}
	return nil
}

// Watch reloads the persona file whenever it changes, until ctx is done.
// A failed reload keeps the previous text.
func (p *Persona) Watch(ctx context.Context) error {
	if p.path == "" {
		<-ctx.Done()
		return nil
	}
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fileWatcher.Close()

	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(p.path)
	if err := fileWatcher.Add(dir); err != nil {
		return fmt.Errorf("watch path %s: %w", dir, err)
	}
	p.logger.Info("persona watcher started", "path", p.path)

	target := filepath.Clean(p.path)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("persona watcher stopped")
			return nil
		case event, ok := <-fileWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := p.reload(); err != nil {
				p.logger.Warn("persona reload failed", "path", p.path, "error", err)
				continue
			}
			p.logger.Info("persona reloaded", "path", p.path, "op", event.Op.String())
		case err, ok := <-fileWatcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				p.logger.Error("file watcher error", "error", err)
			}
		}
	}
}
