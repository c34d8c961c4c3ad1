// Package text извлекает текущий текст элемента: сначала через шаблон Value,
// затем через Text, а если сам элемент ничего не отдал - у первого подходящего потомка.
package text

import (
	"errors"
	"unicode/utf8"

	"go.uber.org/zap"

	"UIAWatcher/internal/uia"
)

// DefaultMaxLength - предел длины текста, запрашиваемого через шаблон Text.
const DefaultMaxLength = 4096

// SessionProvider выдаёт сессию запросов хоста для текущего потока и функцию,
// завершающую её использование.
type SessionProvider interface {
	Session() (uia.Session, func(), error)
}

// Retriever - конвейер извлечения текста: поверхностное чтение и
// одноуровневый откат к потомку.
type Retriever struct {
	sessions SessionProvider
	maxLen   int
	logger   *zap.SugaredLogger
}

func New(sessions SessionProvider, maxLen int, logger *zap.SugaredLogger) *Retriever {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Retriever{sessions: sessions, maxLen: maxLen, logger: logger}
}

// Shallow читает текст самого элемента. Непустое значение шаблона Value
// выигрывает; иначе берётся текст документа через шаблон Text. Ошибки хоста
// означают «здесь текста нет».
func (r *Retriever) Shallow(el uia.Element) string {
	if el == nil {
		return ""
	}
	v, err := el.CurrentValue()
	if err == nil && v != "" {
		return v
	}
	if err != nil && !errors.Is(err, uia.ErrPatternUnavailable) {
		r.logger.Debugw("Value pattern read failed", "error", err)
	}

	t, err := el.DocumentText(r.maxLen)
	if err != nil {
		if !errors.Is(err, uia.ErrPatternUnavailable) {
			r.logger.Debugw("Text pattern read failed", "error", err)
		}
		return ""
	}
	return truncate(t, r.maxLen)
}

// Deep возвращает текст элемента, а если он пуст - текст первого потомка,
// поддерживающего шаблон Text или Value. Откат ровно на один уровень,
// без повторов при ошибках хоста.
func (r *Retriever) Deep(el uia.Element) string {
	if el == nil {
		return ""
	}
	if t := r.Shallow(el); t != "" {
		return t
	}

	found, err := r.findTextDescendant(el)
	if err != nil {
		r.logger.Debugw("Descendant search yielded nothing", "error", err)
		return ""
	}
	defer found.Release()
	return r.Shallow(found)
}

func (r *Retriever) findTextDescendant(el uia.Element) (uia.Element, error) {
	if r.sessions == nil {
		return nil, uia.ErrNotFound
	}
	s, done, err := r.sessions.Session()
	if err != nil {
		return nil, err
	}
	defer done()

	condText, err := s.CreatePropertyCondition(uia.PropertyIsTextPatternAvailable, true)
	if err != nil {
		return nil, err
	}
	defer condText.Release()
	condValue, err := s.CreatePropertyCondition(uia.PropertyIsValuePatternAvailable, true)
	if err != nil {
		return nil, err
	}
	defer condValue.Release()
	cond, err := s.CreateOrCondition(condText, condValue)
	if err != nil {
		return nil, err
	}
	defer cond.Release()

	found, err := el.FindFirst(uia.TreeScopeDescendants, cond)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, uia.ErrNotFound
	}
	return found, nil
}

// truncate обрезает s до max символов.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
