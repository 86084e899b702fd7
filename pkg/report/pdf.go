package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Renderer turns an HTML document into PDF bytes
type Renderer interface {
	PDF(ctx context.Context, html string) ([]byte, error)
}

// RodRenderer prints pages with a headless Chrome driven by rod.
// The browser is started on first use and shared by all requests.
type RodRenderer struct {
	bin    string
	logger *log.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// NewRodRenderer creates a renderer. bin overrides the Chrome binary; empty lets rod find or download one.
func NewRodRenderer(bin string, logger *log.Logger) *RodRenderer {
	return &RodRenderer{bin: bin, logger: logger}
}

func (r *RodRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true).Leakless(false)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	r.logger.Println("Headless browser started for PDF rendering")
	r.browser = browser
	return browser, nil
}

// PDF renders html in a fresh tab and prints it
func (r *RodRenderer) PDF(ctx context.Context, html string) ([]byte, error) {
	browser, err := r.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return io.ReadAll(stream)
}

// Close shuts the browser down if it was started
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}
