package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
)

// stripJS removes boilerplate elements before the page text is read.
const stripJS = `() => {
	const selectors = ['script','style','nav','header','footer','aside',
		'.advert','.ad','.ads','.sponsored','.newsletter','.cookie','.banner'];
	for (const s of selectors) {
		document.querySelectorAll(s).forEach(el => el.remove());
	}
}`

// readJS returns the text of the first known content container.
const readJS = `() => {
	const sels = ['article','.post-content','.entry-content','.content','.main-content','main'];
	for (const s of sels) {
		const el = document.querySelector(s);
		if (el && el.innerText && el.innerText.trim().length > 0) return el.innerText;
	}
	return document.body ? document.body.innerText : '';
}`

// metaJS is the in-browser fallback for blocked pages: title, meta
// description, and whatever body text rendered anyway.
const metaJS = `() => {
	const title = document.title || '';
	const md = document.querySelector('meta[name="description"]') ||
		document.querySelector('meta[property="og:description"]');
	const desc = md ? (md.content || '') : '';
	const body = document.body ? document.body.innerText : '';
	return 'Title: ' + title + '; Description: ' + desc + '\n' + body;
}`

// HeadlessBrowser renders the page in a pooled browser and reads the
// main container text. Image, font and media requests are blocked to
// keep page loads cheap. A 403 on navigation triggers the in-browser
// readability and metadata fallback before failing.
type HeadlessBrowser struct {
	pool    *BrowserPool
	timeout time.Duration
	log     logger.Logger
}

// NewHeadlessBrowser creates the browser extractor over a shared pool.
func NewHeadlessBrowser(pool *BrowserPool, timeout time.Duration) *HeadlessBrowser {
	return &HeadlessBrowser{
		pool:    pool,
		timeout: timeout,
		log:     logger.GetLogger().WithField("component", "headless_browser"),
	}
}

func (e *HeadlessBrowser) Method() string { return MethodBrowser }

func (e *HeadlessBrowser) Extract(ctx context.Context, src Source) (string, error) {
	taskCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	instance, err := e.pool.Get(taskCtx)
	if err != nil {
		return "", fmt.Errorf("get browser instance: %w", err)
	}
	defer e.pool.Put(instance)

	page, err := e.setupPage(taskCtx, instance)
	if err != nil {
		return "", err
	}
	defer func() {
		if page != nil {
			_ = page.Close()
		}
	}()

	if err := e.blockHeavyResources(page); err != nil {
		e.log.Warn("Failed to block resource loading", logger.Fields{"error": err.Error()})
	}

	var blockedStatus int64
	wait := page.EachEvent(func(ev *proto.NetworkResponseReceived) {
		if ev.Type == proto.NetworkResourceTypeDocument && ev.Response.URL == src.URL {
			if ev.Response.Status >= 400 {
				blockedStatus = int64(ev.Response.Status)
			}
		}
	})
	defer wait()

	if err := page.Navigate(src.URL); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}
	if err := e.waitForPageLoad(taskCtx, page); err != nil {
		return "", err
	}

	if blockedStatus == 403 {
		e.log.Info("Navigation answered 403, using in-browser metadata fallback", logger.Fields{
			"url": src.URL,
		})
		return e.evalText(page, metaJS)
	}
	if blockedStatus >= 400 {
		return "", fmt.Errorf("navigation http %d", blockedStatus)
	}

	if _, err := page.Eval(stripJS); err != nil {
		e.log.Warn("Boilerplate strip failed", logger.Fields{"error": err.Error()})
	}
	return e.evalText(page, readJS)
}

func (e *HeadlessBrowser) setupPage(ctx context.Context, instance *BrowserInstance) (*rod.Page, error) {
	if instance == nil || instance.Browser == nil {
		return nil, errors.New("browser instance is nil")
	}
	var page *rod.Page
	err := rod.Try(func() {
		page = instance.Browser.MustPage().Context(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1366,
		Height:            768,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	return page, nil
}

func (e *HeadlessBrowser) blockHeavyResources(page *rod.Page) error {
	router := page.HijackRequests()
	err := router.Add("*", "", func(hijack *rod.Hijack) {
		switch hijack.Request.Type() {
		case proto.NetworkResourceTypeImage,
			proto.NetworkResourceTypeFont,
			proto.NetworkResourceTypeMedia:
			hijack.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		default:
			hijack.ContinueRequest(&proto.FetchContinueRequest{})
		}
	})
	if err != nil {
		return err
	}
	go router.Run()
	return nil
}

func (e *HeadlessBrowser) waitForPageLoad(ctx context.Context, page *rod.Page) error {
	waitDone := make(chan error, 1)
	go func() {
		waitDone <- page.WaitLoad()
	}()
	select {
	case err := <-waitDone:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *HeadlessBrowser) evalText(page *rod.Page, js string) (string, error) {
	result, err := page.Eval(js)
	if err != nil {
		return "", fmt.Errorf("read page text: %w", err)
	}
	text := strings.TrimSpace(result.Value.Str())
	if text == "" {
		return "", ErrNoContent
	}
	return squeezeText(text), nil
}
