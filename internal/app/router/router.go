// Package router решает по каждому событию хоста, относится ли оно к вводу
// текста, и передаёт извлечённый текст на печать или в очередь debounce.
package router

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"UIAWatcher/internal/uia"
)

// Метки пути захвата во входных сообщениях.
const (
	PathProperty    = "property"
	PathTextChanged = "text-changed"
)

// TextSource извлекает текст элемента с откатом к потомкам.
type TextSource interface {
	Deep(el uia.Element) string
}

// Submitter принимает сообщения для отложенного вывода.
type Submitter interface {
	Submit(message string)
}

// Router реализует все три поведения обработчиков; объект обратного вызова
// выбирает одно из них по своему интерфейсу. Состояния между событиями нет.
type Router struct {
	text     TextSource
	debounce Submitter
	logger   *zap.SugaredLogger

	outMu sync.Mutex
	out   io.Writer
}

func New(text TextSource, debounce Submitter, out io.Writer, logger *zap.SugaredLogger) *Router {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Router{text: text, debounce: debounce, out: out, logger: logger}
}

var (
	_ uia.FocusChangedHandler    = (*Router)(nil)
	_ uia.PropertyChangedHandler = (*Router)(nil)
	_ uia.AutomationEventHandler = (*Router)(nil)
)

// HandleFocusChangedEvent печатает переход фокуса в поле ввода и, если есть,
// его текущее содержимое. Вывод немедленный, без debounce.
func (r *Router) HandleFocusChangedEvent(sender uia.Element) {
	if sender == nil {
		return
	}
	ct, err := sender.ControlType()
	if err != nil {
		r.logger.Debugw("Focus event: control type unavailable", "error", err)
		return
	}
	if ct != uia.ControlTypeEdit && ct != uia.ControlTypeGroup {
		return
	}
	name, _ := sender.Name()
	r.println(FormatFocus(ct, name))
	if text := r.text.Deep(sender); text != "" {
		r.println(FormatCurrent(text))
	}
}

// HandlePropertyChangedEvent ставит в очередь новое значение поля ввода,
// если изменилось свойство Value, элемент - Edit/Group в фокусе и текст не пуст.
func (r *Router) HandlePropertyChangedEvent(sender uia.Element, id uia.PropertyID, newValue string) {
	if sender == nil || id != uia.PropertyValueValue {
		return
	}
	ct, err := sender.ControlType()
	if err != nil {
		r.logger.Debugw("Property event: control type unavailable", "error", err)
		return
	}
	if ct != uia.ControlTypeEdit && ct != uia.ControlTypeGroup {
		return
	}
	if !hasFocus(sender) {
		return
	}
	text := newValue
	if text == "" {
		text = r.text.Deep(sender)
	}
	if text == "" {
		return
	}
	name, _ := sender.Name()
	r.debounce.Submit(FormatInput(PathProperty, ct, name, text))
}

// HandleAutomationEvent обрабатывает только TextChanged от элемента Edit,
// Document или Group, находящегося в фокусе.
func (r *Router) HandleAutomationEvent(sender uia.Element, id uia.EventID) {
	if sender == nil || id != uia.EventTextChanged {
		return
	}
	if !hasFocus(sender) {
		return
	}
	ct, err := sender.ControlType()
	if err != nil {
		r.logger.Debugw("TextChanged event: control type unavailable", "error", err)
		return
	}
	switch ct {
	case uia.ControlTypeEdit, uia.ControlTypeDocument, uia.ControlTypeGroup:
	default:
		return
	}
	text := r.text.Deep(sender)
	if text == "" {
		return
	}
	name, _ := sender.Name()
	r.debounce.Submit(FormatInput(PathTextChanged, ct, name, text))
}

func (r *Router) println(line string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = fmt.Fprintln(r.out, line)
}

// hasFocus - ошибка хоста трактуется как «нет фокуса».
func hasFocus(el uia.Element) bool {
	focused, err := el.HasKeyboardFocus()
	return err == nil && focused
}

// FormatFocus - строка перехода фокуса в поле ввода.
func FormatFocus(ct uia.ControlType, name string) string {
	return fmt.Sprintf(">>> [Фокус] тип: %s, поле ввода: '%s'", ct, name)
}

// FormatCurrent - строка текущего содержимого поля после смены фокуса.
func FormatCurrent(text string) string {
	return "    Текущее содержимое: " + text
}

// FormatInput - строка изменения ввода с меткой пути захвата.
func FormatInput(path string, ct uia.ControlType, name, text string) string {
	return fmt.Sprintf("    [Ввод] (%s) тип: %s, '%s' изменено на: %s", path, ct, name, text)
}
