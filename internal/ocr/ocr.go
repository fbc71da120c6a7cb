// Package ocr extracts text from images. Recognition runs as a Job that
// exposes pull-based progress and can be cancelled.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"promptvault/internal/apperr"
)

// Languages lists the accepted recognition language codes.
var Languages = []Language{
	{"eng", "English"},
	{"vie", "Vietnamese"},
	{"chi_sim", "Chinese (Simplified)"},
	{"chi_tra", "Chinese (Traditional)"},
	{"jpn", "Japanese"},
	{"kor", "Korean"},
	{"fra", "French"},
	{"deu", "German"},
	{"spa", "Spanish"},
	{"por", "Portuguese"},
	{"ita", "Italian"},
	{"rus", "Russian"},
	{"tha", "Thai"},
	{"ara", "Arabic"},
}

const DefaultLanguage = "eng"

type Language struct {
	Code  string
	Label string
}

var ErrNotImage = fmt.Errorf("%w: please select an image file (PNG, JPG, etc.)", apperr.ErrValidation)

// ErrUnavailable means no recognition engine is compiled in.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Engine opens a recognizer for one language. Each Recognizer serves one
// job and is closed afterwards.
type Engine interface {
	Open(lang string) (Recognizer, error)
}

// Recognizer reports progress as a fraction in [0, 1].
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, progress func(float64)) (string, error)
	Close() error
}

type Result struct {
	Text string
	// Empty is set when recognition succeeded but found no text.
	Empty bool
}

type Adapter struct {
	engine Engine
}

func NewAdapter(e Engine) *Adapter {
	return &Adapter{engine: e}
}

func supported(lang string) bool {
	for _, l := range Languages {
		if l.Code == lang {
			return true
		}
	}
	return false
}

// IsImage sniffs content rather than trusting a file name. Any image/*
// type counts, TIFF and SVG included.
func IsImage(b []byte) bool {
	return strings.HasPrefix(mimetype.Detect(b).String(), "image/")
}

// Extract validates the input and starts recognition. Validation failures
// are returned before the engine is touched.
func (a *Adapter) Extract(ctx context.Context, image []byte, lang string) (*Job, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	if !supported(lang) {
		return nil, fmt.Errorf("%w: unsupported language %q", apperr.ErrValidation, lang)
	}
	if len(image) == 0 || !IsImage(image) {
		return nil, ErrNotImage
	}

	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		cancel:  cancel,
		updates: make(chan int, 1),
		done:    make(chan struct{}),
	}
	go j.run(ctx, a.engine, image, lang)
	return j, nil
}

// Job is one in-flight recognition.
type Job struct {
	cancel context.CancelFunc

	mu       sync.Mutex
	progress int
	updates  chan int
	closed   bool

	done   chan struct{}
	result Result
	err    error
}

func (j *Job) run(ctx context.Context, engine Engine, image []byte, lang string) {
	defer close(j.done)
	defer j.closeUpdates()
	defer j.cancel()

	rec, err := engine.Open(lang)
	if err != nil {
		j.err = fmt.Errorf("open ocr engine: %w", err)
		return
	}
	defer rec.Close()

	text, err := rec.Recognize(ctx, image, j.report)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		j.err = err
		return
	}

	j.report(1)
	text = strings.TrimSpace(text)
	j.result = Result{Text: text, Empty: text == ""}
}

// report records progress, ignoring values that would move it backwards.
func (j *Job) report(frac float64) {
	pct := int(frac*100 + 0.5)
	if pct > 100 {
		pct = 100
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed || pct <= j.progress {
		return
	}
	j.progress = pct

	// keep only the latest value for slow subscribers
	select {
	case <-j.updates:
	default:
	}
	j.updates <- pct
}

func (j *Job) closeUpdates() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	close(j.updates)
}

// Progress is the latest percentage, 0..100.
func (j *Job) Progress() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

// Updates delivers progress changes and is closed when the job ends.
// Intermediate values may be skipped; the sequence is non-decreasing.
func (j *Job) Updates() <-chan int {
	return j.updates
}

// Cancel aborts recognition. Wait then returns context.Canceled.
func (j *Job) Cancel() {
	j.cancel()
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job ends. Engine resources are released by then.
func (j *Job) Wait() (Result, error) {
	<-j.done
	return j.result, j.err
}
