//go:build windows && (amd64 || arm64)

package host

import (
	"errors"
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/lxn/win"
	"go.uber.org/zap"

	"UIAWatcher/internal/uia"
	"UIAWatcher/internal/uia/com"
)

const (
	clsctxInprocServer = 0x1
	sFalse             = 0x1
)

// session - обёртка IUIAutomation, используемая для построения условий поиска.
type session struct {
	unk uintptr
}

func (s *session) CreatePropertyCondition(id uia.PropertyID, value bool) (uia.Condition, error) {
	var b int64
	if value {
		b = -1 // VARIANT_TRUE
	}
	v := ole.NewVariant(ole.VT_BOOL, b)
	var out uintptr
	hr, _, _ := syscall.SyscallN(method(s.unk, slotCreatePropertyCondition), s.unk,
		uintptr(id), uintptr(unsafe.Pointer(&v)), uintptr(unsafe.Pointer(&out)))
	if err := check(hr); err != nil {
		return nil, err
	}
	return &condition{unk: out}, nil
}

func (s *session) CreateOrCondition(a, b uia.Condition) (uia.Condition, error) {
	ca, ok1 := a.(*condition)
	cb, ok2 := b.(*condition)
	if !ok1 || !ok2 {
		return nil, errors.New("host: condition from another host")
	}
	var out uintptr
	hr, _, _ := syscall.SyscallN(method(s.unk, slotCreateOrCondition), s.unk,
		ca.unk, cb.unk, uintptr(unsafe.Pointer(&out)))
	if err := check(hr); err != nil {
		return nil, err
	}
	return &condition{unk: out}, nil
}

func (s *session) Release() {
	release(s.unk)
	s.unk = 0
}

type condition struct {
	unk uintptr
}

func (c *condition) Release() {
	release(c.unk)
	c.unk = 0
}

// Automation - главная сессия процесса: корневой элемент и регистрация обработчиков.
// Создаётся и закрывается в одном закреплённом системном потоке.
type Automation struct {
	session
	root   uintptr
	logger *zap.SugaredLogger
}

// Open инициализирует COM (MTA) в текущем потоке и создаёт CUIAutomation.
func Open(logger *zap.SugaredLogger) (*Automation, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if err := coInitialize(); err != nil {
		return nil, fmt.Errorf("CoInitializeEx: %w", err)
	}
	unk, err := createAutomation()
	if err != nil {
		ole.CoUninitialize()
		return nil, err
	}
	var root uintptr
	hr, _, _ := syscall.SyscallN(method(unk, slotGetRootElement), unk, uintptr(unsafe.Pointer(&root)))
	if err := check(hr); err != nil {
		release(unk)
		ole.CoUninitialize()
		return nil, fmt.Errorf("GetRootElement: %w", err)
	}
	return &Automation{session: session{unk: unk}, root: root, logger: logger}, nil
}

// OpenSession создаёт отдельный экземпляр IUIAutomation для вызывающего потока.
// Ошибка инициализации COM игнорируется: потоки хоста уже инициализированы.
func OpenSession() (uia.Session, error) {
	_ = coInitialize()
	unk, err := createAutomation()
	if err != nil {
		return nil, err
	}
	return &session{unk: unk}, nil
}

// CurrentThreadID - идентификатор текущего системного потока.
func CurrentThreadID() uint32 { return win.GetCurrentThreadId() }

// RegisterFocusChanged подписывает h на смену фокуса во всей системе.
func (a *Automation) RegisterFocusChanged(h *com.Object) error {
	p := export(h, a.logger)
	hr, _, _ := syscall.SyscallN(method(a.unk, slotAddFocusChangedEventHandler), a.unk, 0, p)
	return check(hr)
}

// RegisterPropertyChanged подписывает h на изменения свойств props у всех потомков корня.
func (a *Automation) RegisterPropertyChanged(h *com.Object, props ...uia.PropertyID) error {
	if len(props) == 0 {
		return errors.New("host: no properties to watch")
	}
	ids := make([]int32, len(props))
	for i, p := range props {
		ids[i] = int32(p)
	}
	p := export(h, a.logger)
	hr, _, _ := syscall.SyscallN(method(a.unk, slotAddPropertyChangedEventHandlerNativeArray), a.unk,
		a.root, uintptr(uia.TreeScopeDescendants), 0, p,
		uintptr(unsafe.Pointer(&ids[0])), uintptr(len(ids)))
	runtime.KeepAlive(ids)
	return check(hr)
}

// RegisterAutomationEvent подписывает h на событие id у всех потомков корня.
func (a *Automation) RegisterAutomationEvent(id uia.EventID, h *com.Object) error {
	p := export(h, a.logger)
	hr, _, _ := syscall.SyscallN(method(a.unk, slotAddAutomationEventHandler), a.unk,
		uintptr(id), a.root, uintptr(uia.TreeScopeDescendants), 0, p)
	return check(hr)
}

// RemoveAllEventHandlers снимает все обработчики, зарегистрированные этим процессом.
func (a *Automation) RemoveAllEventHandlers() error {
	hr, _, _ := syscall.SyscallN(method(a.unk, slotRemoveAllEventHandlers), a.unk)
	return check(hr)
}

// Close освобождает корень и сессию и завершает COM в текущем потоке.
func (a *Automation) Close() {
	release(a.root)
	a.root = 0
	a.session.Release()
	ole.CoUninitialize()
}

func createAutomation() (uintptr, error) {
	var p unsafe.Pointer
	hr := win.CoCreateInstance(
		win.REFCLSID(unsafe.Pointer(uia.CLSID_CUIAutomation)),
		nil,
		clsctxInprocServer,
		win.REFIID(unsafe.Pointer(uia.IID_IUIAutomation)),
		&p,
	)
	if win.FAILED(hr) {
		return 0, fmt.Errorf("CoCreateInstance(CUIAutomation): %w", ole.NewError(uintptr(uint32(hr))))
	}
	return uintptr(p), nil
}

// coInitialize входит в MTA; S_FALSE (уже инициализирован) не ошибка.
func coInitialize() error {
	err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED)
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) && oleErr.Code() == sFalse {
		return nil
	}
	return err
}
