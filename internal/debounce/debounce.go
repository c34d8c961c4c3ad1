// Package debounce схлопывает серию быстрых сообщений в одно «устоявшееся»,
// которое выводится после периода тишины.
package debounce

import (
	"sync"
	"time"
)

const (
	// DefaultInterval - период тишины, после которого сообщение выводится.
	DefaultInterval = 200 * time.Millisecond
	// DefaultQueueSize - ёмкость очереди между отправителями и воркером.
	DefaultQueueSize = 64
)

// Event - одно неизменяемое сообщение в очереди.
type Event struct {
	Message string
}

// Channel - асинхронная очередь с единственным фоновым воркером.
//
// Воркер и очередь создаются лениво, ровно один раз, при первом Submit,
// сколько бы потоков ни пришло одновременно. Для каждой серии отправок с
// промежутками меньше интервала выводится ровно одно сообщение - последнее,
// через интервал после последней отправки. Ожидающее сообщение при Close теряется.
type Channel struct {
	interval time.Duration
	size     int
	emit     func(string)

	once   sync.Once
	mu     sync.RWMutex
	closed bool
	ch     chan Event
	done   chan struct{}
}

// Option настраивает Channel.
type Option func(*Channel)

// WithQueueSize задаёт ёмкость очереди.
func WithQueueSize(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.size = n
		}
	}
}

// New создаёт канал; emit вызывается из воркера для каждого устоявшегося сообщения.
func New(interval time.Duration, emit func(string), opts ...Option) *Channel {
	if interval <= 0 {
		interval = DefaultInterval
	}
	c := &Channel{
		interval: interval,
		size:     DefaultQueueSize,
		emit:     emit,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit ставит сообщение в очередь и никогда не ждёт воркера. Порядок
// отправок из одной горутины сохраняется. Если очередь заполнена (воркер
// завис в emit), самое старое сообщение вытесняется: важен только последний
// ввод серии. После Close сообщения отбрасываются.
func (c *Channel) Submit(message string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	c.once.Do(c.start)
	ev := Event{Message: message}
	for {
		select {
		case c.ch <- ev:
			return
		default:
		}
		select {
		case <-c.ch:
		default:
		}
	}
}

// Close закрывает очередь; воркер завершается, не выводя ожидающее сообщение.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.ch == nil {
		close(c.done)
		return
	}
	close(c.ch)
}

// Done закрывается, когда воркер завершился (или так и не был запущен и канал закрыт).
func (c *Channel) Done() <-chan struct{} { return c.done }

func (c *Channel) start() {
	c.ch = make(chan Event, c.size)
	go c.run(c.ch)
}

func (c *Channel) run(ch <-chan Event) {
	defer close(c.done)
	for {
		last, ok := <-ch
		if !ok {
			return
		}
		if !c.settle(ch, &last) {
			return
		}
		if c.emit != nil {
			c.emit(last.Message)
		}
	}
}

// settle ждёт тишины длиной в интервал, заменяя last каждым новым сообщением.
// Возвращает false, если очередь закрыта.
func (c *Channel) settle(ch <-chan Event, last *Event) bool {
	for {
		t := time.NewTimer(c.interval)
		select {
		case ev, ok := <-ch:
			t.Stop()
			if !ok {
				return false
			}
			*last = ev
		case <-t.C:
			return true
		}
	}
}
