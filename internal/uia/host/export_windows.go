//go:build windows && (amd64 || arm64)

package host

import (
	"sync"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"go.uber.org/zap"

	"UIAWatcher/internal/uia"
	"UIAWatcher/internal/uia/com"
)

// vtable повторяет раскладку IUnknown + один метод поведения.
type vtable struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
	Handle         uintptr
}

// exported - память, которую хост видит как COM-объект. Первое поле -
// указатель на таблицу методов.
type exported struct {
	vtbl   *vtable
	obj    *com.Object
	logger *zap.SugaredLogger
}

// Обратные вызовы создаются один раз на процесс: число syscall.NewCallback ограничено.
var (
	cbQueryInterface = syscall.NewCallback(queryInterface)
	cbAddRef         = syscall.NewCallback(addRef)
	cbRelease        = syscall.NewCallback(releaseRef)

	focusVtbl = &vtable{
		QueryInterface: cbQueryInterface,
		AddRef:         cbAddRef,
		Release:        cbRelease,
		Handle:         syscall.NewCallback(handleFocusChanged),
	}
	propertyVtbl = &vtable{
		QueryInterface: cbQueryInterface,
		AddRef:         cbAddRef,
		Release:        cbRelease,
		Handle:         syscall.NewCallback(handlePropertyChanged),
	}
	eventVtbl = &vtable{
		QueryInterface: cbQueryInterface,
		AddRef:         cbAddRef,
		Release:        cbRelease,
		Handle:         syscall.NewCallback(handleAutomationEvent),
	}
)

// exports удерживает экспортированные объекты от сборщика мусора, пока хост
// держит на них ссылки. Запись удаляется при уничтожении объекта.
var (
	exportMu sync.Mutex
	exports  = map[*com.Object]*exported{}
)

// export возвращает указатель, который можно передать хосту как интерфейс
// обработчика. Повторный экспорт того же объекта возвращает тот же указатель.
func export(obj *com.Object, logger *zap.SugaredLogger) uintptr {
	exportMu.Lock()
	defer exportMu.Unlock()
	if e, ok := exports[obj]; ok {
		return uintptr(unsafe.Pointer(e))
	}
	vt := vtableFor(obj.IID())
	if vt == nil {
		panic("host: no vtable for handler interface " + obj.IID().String())
	}
	e := &exported{vtbl: vt, obj: obj, logger: logger}
	exports[obj] = e
	obj.OnDestroy(func() {
		exportMu.Lock()
		delete(exports, obj)
		exportMu.Unlock()
	})
	return uintptr(unsafe.Pointer(e))
}

func vtableFor(iid *ole.GUID) *vtable {
	switch {
	case ole.IsEqualGUID(iid, uia.IID_IUIAutomationFocusChangedEventHandler):
		return focusVtbl
	case ole.IsEqualGUID(iid, uia.IID_IUIAutomationPropertyChangedEventHandler):
		return propertyVtbl
	case ole.IsEqualGUID(iid, uia.IID_IUIAutomationEventHandler):
		return eventVtbl
	}
	return nil
}

func fromThis(this uintptr) *exported { return (*exported)(unsafe.Pointer(this)) }

func queryInterface(this, riid, ppv uintptr) uintptr {
	if ppv == 0 {
		return ole.E_POINTER
	}
	out := (*uintptr)(unsafe.Pointer(ppv))
	if riid == 0 {
		*out = 0
		return ole.E_POINTER
	}
	if _, ok := fromThis(this).obj.QueryInterface((*ole.GUID)(unsafe.Pointer(riid))); !ok {
		*out = 0
		return ole.E_NOINTERFACE
	}
	*out = this
	return ole.S_OK
}

func addRef(this uintptr) uintptr {
	return uintptr(fromThis(this).obj.AddRef())
}

// releaseRef может уничтожить объект; после него this недействителен.
func releaseRef(this uintptr) uintptr {
	return uintptr(fromThis(this).obj.Release())
}

func handleFocusChanged(this, sender uintptr) (hr uintptr) {
	e := fromThis(this)
	defer e.recover(&hr)
	if h, ok := e.obj.Behavior().(uia.FocusChangedHandler); ok && sender != 0 {
		h.HandleFocusChangedEvent(borrowElement(sender))
	}
	return ole.S_OK
}

// handlePropertyChanged: VARIANT newValue передаётся по значению, что в
// ABI amd64/arm64 означает указатель на копию вызывающего.
func handlePropertyChanged(this, sender, propertyID, newValue uintptr) (hr uintptr) {
	e := fromThis(this)
	defer e.recover(&hr)
	if h, ok := e.obj.Behavior().(uia.PropertyChangedHandler); ok && sender != 0 {
		h.HandlePropertyChangedEvent(borrowElement(sender), uia.PropertyID(int32(propertyID)), variantString(newValue))
	}
	return ole.S_OK
}

func handleAutomationEvent(this, sender, eventID uintptr) (hr uintptr) {
	e := fromThis(this)
	defer e.recover(&hr)
	if h, ok := e.obj.Behavior().(uia.AutomationEventHandler); ok && sender != 0 {
		h.HandleAutomationEvent(borrowElement(sender), uia.EventID(int32(eventID)))
	}
	return ole.S_OK
}

// recover не даёт панике пересечь границу ABI: событие просто пропускается.
func (e *exported) recover(hr *uintptr) {
	if r := recover(); r != nil {
		if e.logger != nil {
			e.logger.Errorw("Event handler panicked", "panic", r)
		}
		*hr = ole.S_OK
	}
}

// variantString возвращает строку из VARIANT типа VT_BSTR; иначе пусто.
// VARIANT принадлежит вызывающему и здесь не освобождается.
func variantString(p uintptr) string {
	if p == 0 {
		return ""
	}
	v := (*ole.VARIANT)(unsafe.Pointer(p))
	if v.VT != ole.VT_BSTR {
		return ""
	}
	return ole.BstrToString(*(**uint16)(unsafe.Pointer(&v.Val)))
}
