// SPDX-License-Identifier: EPL-2.0

package audingest

import "context"

// Result is the outcome of an asynchronous decode.
type Result struct {
	Samples []float32
	Err     error
}

// DecodeFileAsync decodes path on a new goroutine. The channel receives
// exactly one Result and is then closed. It is buffered, so an abandoned
// channel does not keep the goroutine alive.
//
// ctx is only checked before decoding starts; a running decode is not
// interrupted.
func (p *Pipeline) DecodeFileAsync(ctx context.Context, path string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)

		if err := ctx.Err(); err != nil {
			ch <- Result{Err: err}
			return
		}
		samples, err := p.DecodeFile(path)
		ch <- Result{Samples: samples, Err: err}
	}()
	return ch
}

// DecodeFileContext is DecodeFile that stops waiting when ctx is done. The
// decode itself runs to completion in the background and its result is dropped.
func (p *Pipeline) DecodeFileContext(ctx context.Context, path string) ([]float32, error) {
	select {
	case res := <-p.DecodeFileAsync(ctx, path):
		return res.Samples, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
