package text

import (
	"sync"

	"UIAWatcher/internal/uia"
)

// ThreadSessions кэширует по одной сессии хоста на системный поток.
// Сессия создаётся лениво при первой потребности и живёт, пока жив кэш;
// между потоками сессии не передаются.
type ThreadSessions struct {
	threadID func() uint32
	open     func() (uia.Session, error)

	mu       sync.Mutex
	byThread map[uint32]*threadSession
	closed   bool
}

type threadSession struct {
	s     uia.Session
	users int
	// retired - кэш закрыт, сессию освобождает последний пользователь.
	retired bool
}

func NewThreadSessions(threadID func() uint32, open func() (uia.Session, error)) *ThreadSessions {
	return &ThreadSessions{
		threadID: threadID,
		open:     open,
		byThread: make(map[uint32]*threadSession),
	}
}

// Session возвращает сессию текущего потока, создавая её при первом вызове.
// Вызывающий обязан вызвать done после последнего обращения к сессии:
// закрытие кэша не освобождает сессию, пока она используется.
func (t *ThreadSessions) Session() (uia.Session, func(), error) {
	id := t.threadID()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, nil, errClosed
	}
	ts, ok := t.byThread[id]
	if !ok {
		s, err := t.open()
		if err != nil {
			return nil, nil, err
		}
		ts = &threadSession{s: s}
		t.byThread[id] = ts
	}
	ts.users++

	var once sync.Once
	return ts.s, func() { once.Do(func() { t.done(ts) }) }, nil
}

func (t *ThreadSessions) done(ts *threadSession) {
	t.mu.Lock()
	ts.users--
	release := ts.retired && ts.users == 0
	t.mu.Unlock()
	if release {
		ts.s.Release()
	}
}

// Len возвращает число созданных сессий.
func (t *ThreadSessions) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byThread)
}

// Close освобождает свободные сессии; занятые освобождаются по завершении
// последнего использования. Последующие вызовы Session возвращают ошибку.
func (t *ThreadSessions) Close() {
	t.mu.Lock()
	var idle []uia.Session
	for _, ts := range t.byThread {
		if ts.users == 0 {
			idle = append(idle, ts.s)
		} else {
			ts.retired = true
		}
	}
	t.byThread = map[uint32]*threadSession{}
	t.closed = true
	t.mu.Unlock()
	for _, s := range idle {
		s.Release()
	}
}
