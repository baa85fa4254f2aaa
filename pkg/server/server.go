// Package server renders Newton fractals for remote clients, either as PNG
// images over plain HTTP or as raw RGBA frames over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/willbeason/newton-fractal/pkg/output"
	"github.com/willbeason/newton-fractal/pkg/render"
)

// ErrTooLarge is returned for requests wider or taller than the server allows.
var ErrTooLarge = errors.New("requested image too large")

// Request asks for one render. Zero fields take the server's defaults.
type Request struct {
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	N       int    `json:"n,omitempty"`
	MaxIter int    `json:"max_iter,omitempty"`
	Palette string `json:"palette,omitempty"`
}

// Frame precedes every binary RGBA frame on a websocket. A Frame with Error
// set is sent instead of a frame for a rejected request.
type Frame struct {
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	N         int     `json:"n,omitempty"`
	MaxIter   int     `json:"max_iter,omitempty"`
	Palette   string  `json:"palette,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type Server struct {
	log      *logrus.Logger
	defaults render.Params
	palette  string
	workers  int
	maxSide  int
	renders  int
	origins  []string

	// pixels bounds the pixels being rendered at once, and with them the
	// frame buffers held in memory.
	pixels *semaphore.Weighted

	// Set by tests. testHookQueued runs after a websocket request is queued,
	// testHookRender while a render holds its share of pixels.
	testHookQueued func(Request)
	testHookRender func(render.Params)
}

type Option func(*Server)

// WithWorkers sets the goroutines each render uses; zero means one per CPU.
func WithWorkers(n int) Option {
	return func(s *Server) { s.workers = n }
}

// WithMaxSide limits the width and height clients may ask for.
func WithMaxSide(n int) Option {
	return func(s *Server) { s.maxSide = n }
}

// WithConcurrentRenders lets n renders of the largest allowed size run at
// once. Smaller renders take a proportional share, so more of them fit.
func WithConcurrentRenders(n int) Option {
	return func(s *Server) { s.renders = n }
}

// WithOriginPatterns lists the browser origins allowed to open websockets
// from other hosts.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) { s.origins = patterns }
}

func New(log *logrus.Logger, defaults render.Params, palette string, opts ...Option) *Server {
	s := &Server{
		log:      log,
		defaults: defaults,
		palette:  palette,
		maxSide:  4096,
		renders:  2,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pixels = semaphore.NewWeighted(int64(max(1, s.renders)) * int64(s.maxSide) * int64(s.maxSide))

	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /render.png", s.handlePNG)
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

type resolved struct {
	params  render.Params
	name    string
	palette render.PaletteFunc
}

// resolve fills req in from the defaults and rejects anything the kernel
// must not see.
func (s *Server) resolve(req Request) (resolved, error) {
	r := resolved{params: s.defaults, name: s.palette}
	if req.Width != 0 {
		r.params.Width = req.Width
	}
	if req.Height != 0 {
		r.params.Height = req.Height
	}
	if req.N != 0 {
		r.params.N = req.N
	}
	if req.MaxIter != 0 {
		r.params.MaxIter = req.MaxIter
	}
	if req.Palette != "" {
		r.name = req.Palette
	}

	if err := r.params.Validate(); err != nil {
		return resolved{}, err
	}
	if r.params.Width > s.maxSide || r.params.Height > s.maxSide {
		return resolved{}, fmt.Errorf("%w: %dx%d exceeds %d pixels per side",
			ErrTooLarge, r.params.Width, r.params.Height, s.maxSide)
	}

	palette, err := render.LookupPalette(r.name)
	if err != nil {
		return resolved{}, err
	}
	r.palette = palette

	return r, nil
}

// render waits for r's share of the pixel budget, then renders it. It fails
// only if ctx ends first.
func (s *Server) render(ctx context.Context, r resolved) ([]byte, time.Duration, error) {
	weight := int64(r.params.Pixels())
	if err := s.pixels.Acquire(ctx, weight); err != nil {
		return nil, 0, err
	}
	defer s.pixels.Release(weight)

	if s.testHookRender != nil {
		s.testHookRender(r.params)
	}

	start := time.Now()
	buf := render.RenderWith(r.params, render.WithPalette(r.palette), render.WithWorkers(s.workers))
	elapsed := time.Since(start)

	s.log.WithFields(logrus.Fields{
		"width":    r.params.Width,
		"height":   r.params.Height,
		"n":        r.params.N,
		"max_iter": r.params.MaxIter,
		"palette":  r.name,
		"elapsed":  elapsed,
	}).Debug("rendered")

	return buf, elapsed, nil
}

func parseQuery(q url.Values) (Request, error) {
	req := Request{Palette: q.Get("palette")}

	ints := map[string]*int{
		"width":    &req.Width,
		"height":   &req.Height,
		"n":        &req.N,
		"max_iter": &req.MaxIter,
	}
	for key, dst := range ints {
		v := q.Get(key)
		if v == "" {
			continue
		}

		i, err := strconv.Atoi(v)
		if err != nil {
			return Request{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = i
	}

	return req, nil
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.resolve(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	buf, elapsed, err := s.render(r.Context(), res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	img := wrap(buf, res.params)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Ms", strconv.FormatFloat(ms(elapsed), 'f', 2, 64))
	if err := output.Encode(w, img, "png"); err != nil {
		s.log.WithError(err).Warn("writing png response")
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.origins,
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept")
		return
	}
	defer c.CloseNow()

	log := s.log.WithField("remote", r.RemoteAddr)
	log.Info("websocket client connected")
	defer log.Info("websocket client disconnected")

	ctx := r.Context()
	requests := make(chan Request, 1)
	go s.readRequests(ctx, c, requests)

	for req := range requests {
		if err := s.serveFrame(ctx, c, req); err != nil {
			log.WithError(err).Debug("websocket write")
			return
		}
	}

	c.Close(websocket.StatusNormalClosure, "")
}

// readRequests forwards requests from c until reading fails. Only the newest
// unserved request is kept: a client dragging a slider gets the frame for
// where it stopped, not one for every position it passed.
func (s *Server) readRequests(ctx context.Context, c *websocket.Conn, requests chan Request) {
	defer close(requests)

	for {
		var req Request
		if err := wsjson.Read(ctx, c, &req); err != nil {
			return
		}

		select {
		case <-requests:
		default:
		}
		requests <- req

		if s.testHookQueued != nil {
			s.testHookQueued(req)
		}
	}
}

func (s *Server) serveFrame(ctx context.Context, c *websocket.Conn, req Request) error {
	res, err := s.resolve(req)
	if err != nil {
		return wsjson.Write(ctx, c, Frame{Error: err.Error()})
	}

	buf, elapsed, err := s.render(ctx, res)
	if err != nil {
		return err
	}

	err = wsjson.Write(ctx, c, Frame{
		Width:     res.params.Width,
		Height:    res.params.Height,
		N:         res.params.N,
		MaxIter:   res.params.MaxIter,
		Palette:   res.name,
		ElapsedMS: ms(elapsed),
	})
	if err != nil {
		return err
	}

	return c.Write(ctx, websocket.MessageBinary, buf)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func wrap(buf []byte, p render.Params) *image.RGBA {
	return &image.RGBA{
		Pix:    buf,
		Stride: p.Width * render.BytesPerPixel,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}
