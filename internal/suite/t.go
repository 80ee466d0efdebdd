package suite

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLoadTimeout означает, что загрузчик не вызвал done за отведенное время.
var ErrLoadTimeout = errors.New("load did not complete in time")

// T хранит состояние одной выполняемой проверки.
type T struct {
	ctx          context.Context
	env          *Env
	loadTimeout  time.Duration
	expectations []Expectation
	captures     map[string]string
}

func newT(ctx context.Context, env *Env, loadTimeout time.Duration) *T {
	return &T{
		ctx:         ctx,
		env:         env,
		loadTimeout: loadTimeout,
		captures:    make(map[string]string),
	}
}

func (t *T) Context() context.Context { return t.ctx }

func (t *T) Env() *Env { return t.env }

// Expect начинает проверку значения.
func (t *T) Expect(actual any) *Matcher {
	return &Matcher{t: t, actual: actual}
}

// Capture запоминает значение, снятое в BeforeEach, для использования в самой проверке.
func (t *T) Capture(name, value string) {
	t.captures[name] = value
}

func (t *T) Captured(name string) string {
	return t.captures[name]
}

// LoadFeed вызывает загрузчик и ждет done. Ожидание ограничено loadTimeout
// и контекстом проверки; повторный вызов done игнорируется.
func (t *T) LoadFeed(index int) error {
	done := make(chan error, 1)
	t.env.Loader.LoadFeed(t.ctx, index, func(err error) {
		select {
		case done <- err:
		default:
		}
	})

	timer := time.NewTimer(t.loadTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("loadFeed(%d): %w", index, err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: loadFeed(%d) after %s", ErrLoadTimeout, index, t.loadTimeout)
	case <-t.ctx.Done():
		return fmt.Errorf("loadFeed(%d): %w", index, t.ctx.Err())
	}
}

func (t *T) failed() bool {
	for _, e := range t.expectations {
		if !e.Passed {
			return true
		}
	}
	return false
}
