// Package com реализует объект обратного вызова, который хост вызывает через
// COM ABI: согласование интерфейсов (QueryInterface) и ручной подсчёт ссылок.
package com

import (
	"sync"
	"sync/atomic"

	ole "github.com/go-ole/go-ole"
)

// Object - объект, предъявляемый хосту как реализация базового IUnknown и
// ровно одного интерфейса поведения.
//
// Счётчик ссылок начинается с 1 (ссылка создателя). Объект уничтожается ровно
// в тот момент, когда счётчик переходит в 0; после этого обращаться к нему нельзя.
type Object struct {
	iid      *ole.GUID
	behavior any

	refs atomic.Int32

	mu        sync.Mutex
	onDestroy []func()
}

// New создаёт объект с единственной ссылкой. Отсутствие поведения или IID -
// фатальная ошибка: процесс не может работать без обработчиков.
func New(iid *ole.GUID, behavior any) *Object {
	if iid == nil || behavior == nil {
		panic("com: handler object requires an interface id and a behavior")
	}
	o := &Object{iid: iid, behavior: behavior}
	o.refs.Store(1)
	return o
}

// IID возвращает идентификатор интерфейса поведения объекта.
func (o *Object) IID() *ole.GUID { return o.iid }

// Behavior возвращает реализацию поведения.
func (o *Object) Behavior() any { return o.behavior }

// Supports сообщает, отвечает ли объект на запрос интерфейса iid.
func (o *Object) Supports(iid *ole.GUID) bool {
	if iid == nil {
		return false
	}
	return ole.IsEqualGUID(iid, ole.IID_IUnknown) || ole.IsEqualGUID(iid, o.iid)
}

// QueryInterface возвращает сам объект и увеличивает счётчик, если интерфейс
// поддерживается; иначе (nil, false) без побочных эффектов.
func (o *Object) QueryInterface(iid *ole.GUID) (*Object, bool) {
	if !o.Supports(iid) {
		return nil, false
	}
	o.AddRef()
	return o, true
}

// AddRef атомарно увеличивает счётчик и возвращает новое значение.
func (o *Object) AddRef() uint32 {
	return uint32(o.refs.Add(1))
}

// Release атомарно уменьшает счётчик. При переходе в 0 объект уничтожается
// синхронно, в рамках этого вызова.
func (o *Object) Release() uint32 {
	n := o.refs.Add(-1)
	switch {
	case n == 0:
		o.destroy()
	case n < 0:
		panic("com: release of a destroyed object")
	}
	return uint32(n)
}

// Refs возвращает текущее значение счётчика.
func (o *Object) Refs() uint32 {
	n := o.refs.Load()
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// OnDestroy добавляет действие, выполняемое при уничтожении объекта
// (например, снятие экспортированной таблицы методов).
func (o *Object) OnDestroy(fn func()) {
	o.mu.Lock()
	o.onDestroy = append(o.onDestroy, fn)
	o.mu.Unlock()
}

func (o *Object) destroy() {
	o.mu.Lock()
	hooks := o.onDestroy
	o.onDestroy = nil
	o.mu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	o.behavior = nil
}
