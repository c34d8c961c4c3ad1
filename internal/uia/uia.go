// Package uia описывает словарь хоста UI Automation, которым пользуется ядро:
// идентификаторы типов элементов, свойств, шаблонов и событий, а также узкие
// интерфейсы элемента, сессии запросов и обработчиков событий.
package uia

import (
	"errors"
	"fmt"
)

var (
	// ErrPatternUnavailable - элемент не поддерживает запрошенный шаблон (Value/Text).
	ErrPatternUnavailable = errors.New("uia: pattern unavailable")
	// ErrNotFound - поиск по дереву не нашёл подходящего потомка.
	ErrNotFound = errors.New("uia: element not found")
)

// ControlType - классификация элемента, назначенная хостом (UIA_*ControlTypeId).
type ControlType int32

const (
	ControlTypeEdit     ControlType = 50004
	ControlTypeGroup    ControlType = 50026
	ControlTypeDocument ControlType = 50030
)

func (c ControlType) String() string {
	switch c {
	case ControlTypeEdit:
		return "Edit"
	case ControlTypeGroup:
		return "Group"
	case ControlTypeDocument:
		return "Document"
	}
	return fmt.Sprintf("ControlType(%d)", int32(c))
}

// PropertyID - идентификатор свойства автоматизации (UIA_*PropertyId).
type PropertyID int32

const (
	PropertyIsTextPatternAvailable  PropertyID = 30040
	PropertyIsValuePatternAvailable PropertyID = 30043
	PropertyValueValue              PropertyID = 30045
)

// PatternID - идентификатор шаблона элемента (UIA_*PatternId).
type PatternID int32

const (
	PatternValue PatternID = 10002
	PatternText  PatternID = 10014
)

// EventID - идентификатор события автоматизации (UIA_*EventId).
type EventID int32

const EventTextChanged EventID = 20015

// TreeScope - область поиска/подписки в дереве элементов.
type TreeScope int32

const (
	TreeScopeElement     TreeScope = 0x1
	TreeScopeChildren    TreeScope = 0x2
	TreeScopeDescendants TreeScope = 0x4
	TreeScopeSubtree     TreeScope = TreeScopeElement | TreeScopeChildren | TreeScopeDescendants
)

// Condition - условие поиска, построенное сессией хоста.
type Condition interface {
	Release()
}

// Session - объект запросов хоста, из которого строятся условия поиска.
// Сессия привязана к потоку, который её создал, и не передаётся между потоками.
type Session interface {
	CreatePropertyCondition(id PropertyID, value bool) (Condition, error)
	CreateOrCondition(a, b Condition) (Condition, error)
	Release()
}

// Element - узел дерева хоста.
//
// Элемент-отправитель события только заимствуется на время обратного вызова:
// его нельзя сохранять после возврата. Элементы, полученные через FindFirst,
// принадлежат вызывающему и освобождаются через Release.
type Element interface {
	ControlType() (ControlType, error)
	Name() (string, error)
	HasKeyboardFocus() (bool, error)
	// CurrentValue читает значение через шаблон Value.
	CurrentValue() (string, error)
	// DocumentText читает текст всего документа через шаблон Text,
	// не более maxLength символов.
	DocumentText(maxLength int) (string, error)
	// FindFirst возвращает первого подходящего потомка в порядке обхода хоста.
	FindFirst(scope TreeScope, cond Condition) (Element, error)
	Release()
}

// FocusChangedHandler - поведение обработчика смены фокуса.
type FocusChangedHandler interface {
	HandleFocusChangedEvent(sender Element)
}

// PropertyChangedHandler - поведение обработчика изменения свойства.
// newValue - строковое представление нового значения, пустое если его нет.
type PropertyChangedHandler interface {
	HandlePropertyChangedEvent(sender Element, id PropertyID, newValue string)
}

// AutomationEventHandler - поведение обработчика произвольного события автоматизации.
type AutomationEventHandler interface {
	HandleAutomationEvent(sender Element, id EventID)
}
