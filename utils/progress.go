package utils

import (
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Progress reports how far a long-running export has got. Implementations
// are safe for concurrent Add calls.
type Progress interface {
	Start(total int, description string)
	Add(n int)
	Finish()
}

// NewProgress returns a terminal progress bar, or a log-line reporter when
// running in CI or when quiet is set.
func NewProgress(logger *Logger, quiet bool) Progress {
	if quiet || os.Getenv("CI") != "" {
		return &LogProgress{logger: logger}
	}
	return &BarProgress{}
}

// BarProgress draws a progress bar on stderr.
type BarProgress struct {
	bar *progressbar.ProgressBar
}

func (p *BarProgress) Start(total int, description string) {
	if total < 1 {
		total = -1
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *BarProgress) Add(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

func (p *BarProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// LogProgress writes "Progress: x/total (pct%)" lines through the logger.
type LogProgress struct {
	logger *Logger

	mu          sync.Mutex
	total, done int
	description string
}

func (p *LogProgress) Start(total int, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if total < 1 {
		total = 1
	}
	p.total, p.done, p.description = total, 0, description
}

func (p *LogProgress) Add(n int) {
	p.mu.Lock()
	p.done += n
	done, total := p.done, p.total
	p.mu.Unlock()

	if p.logger != nil {
		p.logger.Debug("[progress] %s: %d/%d (%.2f%%)", p.description, done, total,
			float64(done)/float64(total)*100)
	}
}

// Done returns the number of completed units.
func (p *LogProgress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *LogProgress) Finish() {
	if p.logger != nil {
		p.logger.Info("[progress] %s: finished %d/%d", p.description, p.Done(), p.total)
	}
}
