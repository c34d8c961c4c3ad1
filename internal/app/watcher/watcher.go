// Package watcher собирает ядро: открывает хост, создаёт три объекта
// обратного вызова, регистрирует их и держит до отмены контекста.
package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"UIAWatcher/internal/app/router"
	"UIAWatcher/internal/config"
	"UIAWatcher/internal/debounce"
	"UIAWatcher/internal/uia"
	"UIAWatcher/internal/uia/com"
	"UIAWatcher/internal/uia/host"
	"UIAWatcher/internal/uia/text"
)

// Host - операции хоста, нужные для регистрации обработчиков.
type Host interface {
	RegisterFocusChanged(h *com.Object) error
	RegisterPropertyChanged(h *com.Object, props ...uia.PropertyID) error
	RegisterAutomationEvent(id uia.EventID, h *com.Object) error
	RemoveAllEventHandlers() error
	Close()
}

// Options позволяют подменить платформенные зависимости (в тестах).
type Options struct {
	Out         io.Writer
	OpenHost    func() (Host, error)
	OpenSession func() (uia.Session, error)
	ThreadID    func() uint32
}

type Watcher struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	opts   Options

	outMu sync.Mutex
}

func New(cfg *config.Config, logger *zap.SugaredLogger, opts Options) *Watcher {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.OpenHost == nil {
		opts.OpenHost = func() (Host, error) {
			a, err := host.Open(logger)
			if err != nil {
				return nil, err
			}
			return a, nil
		}
	}
	if opts.OpenSession == nil {
		opts.OpenSession = host.OpenSession
	}
	if opts.ThreadID == nil {
		opts.ThreadID = host.CurrentThreadID
	}
	return &Watcher{cfg: cfg, logger: logger, opts: opts}
}

// Run регистрирует обработчики и блокируется до отмены ctx. Ошибки
// регистрации прерывают запуск; по завершении все обработчики снимаются.
func (w *Watcher) Run(ctx context.Context) error {
	// COM-сессия хоста живёт в закреплённом системном потоке
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h, err := w.opts.OpenHost()
	if err != nil {
		return fmt.Errorf("open ui automation: %w", err)
	}
	defer h.Close()
	w.logger.Infow("UI Automation initialized")

	sessions := text.NewThreadSessions(w.opts.ThreadID, w.opts.OpenSession)
	defer sessions.Close()

	queue := debounce.New(w.cfg.Debounce, w.println, debounce.WithQueueSize(w.cfg.QueueSize))
	defer queue.Close()

	rt := router.New(text.New(sessions, w.cfg.MaxTextLen, w.logger), queue, w, w.logger)

	handlers := []*com.Object{
		com.New(uia.IID_IUIAutomationFocusChangedEventHandler, rt),
		com.New(uia.IID_IUIAutomationPropertyChangedEventHandler, rt),
		com.New(uia.IID_IUIAutomationEventHandler, rt),
	}
	// Свои ссылки отпускаем после RemoveAllEventHandlers; хост отпускает свои сам.
	defer func() {
		for _, o := range handlers {
			o.Release()
		}
	}()
	focus, property, textChanged := handlers[0], handlers[1], handlers[2]

	if err := h.RegisterFocusChanged(focus); err != nil {
		return fmt.Errorf("register focus handler: %w", err)
	}
	w.logger.Infow("Focus handler registered")

	if err := h.RegisterPropertyChanged(property, uia.PropertyValueValue); err != nil {
		w.removeAll(h)
		return fmt.Errorf("register property handler: %w", err)
	}
	w.logger.Infow("Value property handler registered")

	if err := h.RegisterAutomationEvent(uia.EventTextChanged, textChanged); err != nil {
		w.removeAll(h)
		return fmt.Errorf("register text changed handler: %w", err)
	}
	w.logger.Infow("TextChanged handler registered")

	w.logger.Infow("Watching input (Ctrl+C to stop)",
		"debounce", w.cfg.Debounce.String(),
		"maxTextLen", w.cfg.MaxTextLen,
	)
	<-ctx.Done()

	w.removeAll(h)
	w.logger.Infow("Watcher stopped", "cause", context.Cause(ctx))
	return nil
}

func (w *Watcher) removeAll(h Host) {
	if err := h.RemoveAllEventHandlers(); err != nil {
		w.logger.Warnw("Failed to remove event handlers", "error", err)
	}
}

// Write сериализует вывод немедленных и отложенных сообщений в одну консоль.
func (w *Watcher) Write(p []byte) (int, error) {
	w.outMu.Lock()
	defer w.outMu.Unlock()
	return w.opts.Out.Write(p)
}

func (w *Watcher) println(line string) {
	_, _ = fmt.Fprintln(w, line)
}
