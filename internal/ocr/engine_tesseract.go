//go:build tesseract

package ocr

import (
	"context"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// NewEngine returns the libtesseract-backed engine.
func NewEngine() (Engine, error) {
	return tesseractEngine{}, nil
}

type tesseractEngine struct{}

func (tesseractEngine) Open(lang string) (Recognizer, error) {
	c := gosseract.NewClient()
	if err := c.SetLanguage(lang); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &tesseractRecognizer{client: c}, nil
}

// tesseractRecognizer runs the blocking libtesseract call on its own
// goroutine. gosseract cannot abort that call: on cancellation Recognize
// returns ctx.Err() at once, but Close still waits for the call to finish
// before freeing the client, so the Job ends only after recognition does.
type tesseractRecognizer struct {
	client *gosseract.Client
	wg     sync.WaitGroup
}

func (r *tesseractRecognizer) Recognize(ctx context.Context, image []byte, progress func(float64)) (string, error) {
	if err := r.client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	progress(0.1)

	type out struct {
		text string
		err  error
	}
	ch := make(chan out, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		text, err := r.client.Text()
		ch <- out{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case o := <-ch:
		return o.text, o.err
	}
}

func (r *tesseractRecognizer) Close() error {
	r.wg.Wait()
	return r.client.Close()
}
