package label

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Settlement estado de las imágenes cuando termina la espera.
type Settlement struct {
	Loaded   map[string][]byte
	Failed   map[string]error
	Pending  []string
	TimedOut bool
}

// AwaitAssets carga todas las imágenes en paralelo y compite "todas resueltas" contra
// timeout. Cada imagen se resuelve por carga o por error (incluido un panic); una imagen
// colgada nunca bloquea más allá del tope.
func AwaitAssets(ctx context.Context, assets []Asset, timeout time.Duration) Settlement {
	if timeout <= 0 {
		timeout = DefaultAssetTimeout
	}
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var mu sync.Mutex
	loaded := make(map[string][]byte, len(assets))
	failed := make(map[string]error)

	var wg conc.WaitGroup
	for _, a := range assets {
		a := a
		wg.Go(func() {
			var data []byte
			var err error
			if a.Load == nil {
				err = fmt.Errorf("imagen %s sin cargador", a.Name)
			} else if r := panics.Try(func() { data, err = a.Load(loadCtx) }); r != nil {
				err = r.AsError()
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[a.Name] = err
				return
			}
			loaded[a.Name] = data
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timedOut := false
	select {
	case <-done:
	case <-loadCtx.Done():
		timedOut = true
	}

	mu.Lock()
	defer mu.Unlock()
	s := Settlement{
		Loaded: make(map[string][]byte, len(loaded)),
		Failed: make(map[string]error, len(failed)),
	}
	for k, v := range loaded {
		s.Loaded[k] = v
	}
	for k, v := range failed {
		s.Failed[k] = v
	}
	for _, a := range assets {
		_, ok1 := loaded[a.Name]
		_, ok2 := failed[a.Name]
		if !ok1 && !ok2 {
			s.Pending = append(s.Pending, a.Name)
		}
	}
	sort.Strings(s.Pending)
	s.TimedOut = timedOut && len(s.Pending) > 0
	return s
}
