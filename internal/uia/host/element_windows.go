//go:build windows && (amd64 || arm64)

package host

import (
	"errors"
	"math"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"

	"UIAWatcher/internal/uia"
)

// element - обёртка IUIAutomationElement. Заимствованный элемент (отправитель
// события) не освобождается; найденный через FindFirst принадлежит нам.
type element struct {
	unk   uintptr
	owned bool
}

func borrowElement(p uintptr) *element { return &element{unk: p} }

func (e *element) ControlType() (uia.ControlType, error) {
	var v int32
	hr, _, _ := syscall.SyscallN(method(e.unk, slotElementCurrentControlType), e.unk, uintptr(unsafe.Pointer(&v)))
	if err := check(hr); err != nil {
		return 0, err
	}
	return uia.ControlType(v), nil
}

func (e *element) Name() (string, error) {
	var b *uint16
	hr, _, _ := syscall.SyscallN(method(e.unk, slotElementCurrentName), e.unk, uintptr(unsafe.Pointer(&b)))
	if err := check(hr); err != nil {
		return "", err
	}
	return takeBSTR(b), nil
}

func (e *element) HasKeyboardFocus() (bool, error) {
	var v int32 // BOOL
	hr, _, _ := syscall.SyscallN(method(e.unk, slotElementCurrentHasKeyboardFocus), e.unk, uintptr(unsafe.Pointer(&v)))
	if err := check(hr); err != nil {
		return false, err
	}
	return v != 0, nil
}

func (e *element) CurrentValue() (string, error) {
	p, err := e.pattern(uia.PatternValue, uia.IID_IUIAutomationValuePattern)
	if err != nil {
		return "", err
	}
	defer release(p)

	var b *uint16
	hr, _, _ := syscall.SyscallN(method(p, slotValueCurrentValue), p, uintptr(unsafe.Pointer(&b)))
	if err := check(hr); err != nil {
		return "", err
	}
	return takeBSTR(b), nil
}

func (e *element) DocumentText(maxLength int) (string, error) {
	if maxLength < 0 || maxLength > math.MaxInt32 {
		maxLength = math.MaxInt32
	}
	p, err := e.pattern(uia.PatternText, uia.IID_IUIAutomationTextPattern)
	if err != nil {
		return "", err
	}
	defer release(p)

	var rng uintptr
	hr, _, _ := syscall.SyscallN(method(p, slotTextDocumentRange), p, uintptr(unsafe.Pointer(&rng)))
	if err := check(hr); err != nil {
		return "", err
	}
	if rng == 0 {
		return "", uia.ErrPatternUnavailable
	}
	defer release(rng)

	var b *uint16
	hr, _, _ = syscall.SyscallN(method(rng, slotRangeGetText), rng, uintptr(int32(maxLength)), uintptr(unsafe.Pointer(&b)))
	if err := check(hr); err != nil {
		return "", err
	}
	return takeBSTR(b), nil
}

func (e *element) FindFirst(scope uia.TreeScope, cond uia.Condition) (uia.Element, error) {
	c, ok := cond.(*condition)
	if !ok {
		return nil, errors.New("host: condition from another host")
	}
	var found uintptr
	hr, _, _ := syscall.SyscallN(method(e.unk, slotElementFindFirst), e.unk,
		uintptr(scope), c.unk, uintptr(unsafe.Pointer(&found)))
	if err := check(hr); err != nil {
		return nil, err
	}
	if found == 0 {
		return nil, uia.ErrNotFound
	}
	return &element{unk: found, owned: true}, nil
}

func (e *element) Release() {
	if e.owned {
		release(e.unk)
		e.unk = 0
	}
}

// pattern запрашивает шаблон id сразу нужного интерфейса. Хост может вернуть
// S_OK с пустым указателем - это «шаблон не поддерживается».
func (e *element) pattern(id uia.PatternID, iid *ole.GUID) (uintptr, error) {
	var p uintptr
	hr, _, _ := syscall.SyscallN(method(e.unk, slotElementGetCurrentPatternAs), e.unk,
		uintptr(id), uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&p)))
	if err := check(hr); err != nil {
		return 0, err
	}
	if p == 0 {
		return 0, uia.ErrPatternUnavailable
	}
	return p, nil
}
