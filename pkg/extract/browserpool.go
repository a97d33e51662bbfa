package extract

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
)

// BrowserInstance is one pooled headless browser.
type BrowserInstance struct {
	Browser  *rod.Browser
	Launcher *launcher.Launcher
	Created  time.Time
	InUse    bool
}

// poolWaiter is one caller queued for an instance. abandoned is set
// under the pool mutex when the caller's context expires, so a handoff
// already in flight can be reclaimed instead of stranding the instance.
type poolWaiter struct {
	ch        chan *BrowserInstance
	abandoned bool
}

// BrowserPool is a bounded pool of headless browsers. Instances older
// than maxAge are recycled; callers past the pool size wait on a queue.
type BrowserPool struct {
	instances []*BrowserInstance
	mu        sync.Mutex
	maxSize   int
	maxAge    time.Duration
	waitQueue chan *poolWaiter
	done      chan struct{}
	closed    bool
	log       logger.Logger
}

// NewBrowserPool creates the pool and starts its background cleanup.
func NewBrowserPool(maxSize int, maxAge time.Duration) *BrowserPool {
	pool := &BrowserPool{
		instances: make([]*BrowserInstance, 0, maxSize),
		maxSize:   maxSize,
		maxAge:    maxAge,
		waitQueue: make(chan *poolWaiter, 100),
		done:      make(chan struct{}),
		log:       logger.GetLogger().WithField("component", "browser_pool"),
	}
	pool.log.Info("Browser pool created", logger.Fields{
		"max_size":        maxSize,
		"max_age_minutes": maxAge.Minutes(),
	})
	go pool.backgroundCleanup()
	return pool
}

// Get returns an idle instance, creating one while the pool has room,
// otherwise waiting until an instance is returned or ctx expires.
func (p *BrowserPool) Get(ctx context.Context) (*BrowserInstance, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.New("browser pool is closed")
	}
	for _, instance := range p.instances {
		if !instance.InUse && time.Since(instance.Created) < p.maxAge {
			instance.InUse = true
			p.mu.Unlock()
			return instance, nil
		}
	}
	if len(p.instances) < p.maxSize {
		instance, err := p.createInstance()
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		instance.InUse = true
		p.instances = append(p.instances, instance)
		p.mu.Unlock()
		return instance, nil
	}
	p.mu.Unlock()

	p.log.Debug("Browser pool full, waiting for an instance")
	w := &poolWaiter{ch: make(chan *BrowserInstance, 1)}
	select {
	case p.waitQueue <- w:
		select {
		case instance := <-w.ch:
			return instance, nil
		case <-ctx.Done():
			p.abandonWaiter(w)
			return nil, ctx.Err()
		}
	default:
		return nil, errors.New("browser pool full and wait queue full")
	}
}

// Put returns an instance to the pool. Expired instances are destroyed;
// otherwise the next live waiter gets it immediately.
func (p *BrowserPool) Put(instance *BrowserInstance) {
	if instance == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.putLocked(instance)
}

func (p *BrowserPool) putLocked(instance *BrowserInstance) {
	if p.closed || time.Since(instance.Created) >= p.maxAge {
		p.removeInstance(instance)
		go p.cleanupInstance(instance)
		return
	}

	for {
		select {
		case w := <-p.waitQueue:
			if w.abandoned {
				continue
			}
			instance.InUse = true
			w.ch <- instance
			return
		default:
			instance.InUse = false
			return
		}
	}
}

// abandonWaiter marks w dead after its context expired and reclaims an
// instance that was handed to it concurrently, so the pool never
// shrinks on a lost handoff.
func (p *BrowserPool) abandonWaiter(w *poolWaiter) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w.abandoned = true
	select {
	case instance := <-w.ch:
		p.putLocked(instance)
	default:
	}
}

// Close destroys every instance and rejects further Gets.
func (p *BrowserPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.done)
	instances := p.instances
	p.instances = nil
	p.mu.Unlock()

	for _, instance := range instances {
		p.cleanupInstance(instance)
	}
	p.log.Info("Browser pool closed")
}

func (p *BrowserPool) createInstance() (*BrowserInstance, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, err
	}
	p.log.Debug("Browser instance created")
	return &BrowserInstance{
		Browser:  browser,
		Launcher: l,
		Created:  time.Now(),
	}, nil
}

func (p *BrowserPool) removeInstance(instance *BrowserInstance) {
	for i, candidate := range p.instances {
		if candidate == instance {
			p.instances = append(p.instances[:i], p.instances[i+1:]...)
			return
		}
	}
}

func (p *BrowserPool) cleanupInstance(instance *BrowserInstance) {
	if instance.Browser != nil {
		if err := instance.Browser.Close(); err != nil {
			p.log.Warn("Failed to close browser", logger.Fields{"error": err.Error()})
		}
	}
	if instance.Launcher != nil {
		instance.Launcher.Cleanup()
	}
}

// backgroundCleanup periodically recycles idle expired instances.
func (p *BrowserPool) backgroundCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			var expired []*BrowserInstance
			for _, instance := range p.instances {
				if !instance.InUse && time.Since(instance.Created) >= p.maxAge {
					expired = append(expired, instance)
				}
			}
			for _, instance := range expired {
				p.removeInstance(instance)
			}
			p.mu.Unlock()
			for _, instance := range expired {
				p.cleanupInstance(instance)
			}
		case <-p.done:
			return
		}
	}
}
