//go:build windows && (amd64 || arm64)

package host

import (
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/lxn/win"
)

// Номера слотов в таблицах методов интерфейсов UIAutomationClient.
const (
	slotRelease = 2

	// IUIAutomation
	slotGetRootElement                            = 5
	slotCreatePropertyCondition                   = 23
	slotCreateOrCondition                         = 28
	slotAddAutomationEventHandler                 = 32
	slotAddPropertyChangedEventHandlerNativeArray = 34
	slotAddFocusChangedEventHandler               = 39
	slotRemoveAllEventHandlers                    = 41

	// IUIAutomationElement
	slotElementFindFirst               = 5
	slotElementGetCurrentPatternAs     = 14
	slotElementCurrentControlType      = 21
	slotElementCurrentName             = 23
	slotElementCurrentHasKeyboardFocus = 26

	// IUIAutomationValuePattern
	slotValueCurrentValue = 4
	// IUIAutomationTextPattern
	slotTextDocumentRange = 7
	// IUIAutomationTextRange
	slotRangeGetText = 12
)

// method возвращает адрес метода slot из таблицы методов COM-объекта obj.
func method(obj uintptr, slot uintptr) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtbl + slot*unsafe.Sizeof(uintptr(0))))
}

// check превращает неуспешный HRESULT в ошибку.
func check(hr uintptr) error {
	if win.FAILED(win.HRESULT(int32(hr))) {
		return ole.NewError(hr)
	}
	return nil
}

func release(obj uintptr) {
	if obj == 0 {
		return
	}
	syscall.SyscallN(method(obj, slotRelease), obj)
}

// takeBSTR копирует BSTR в строку Go и освобождает его.
func takeBSTR(b *uint16) string {
	if b == nil {
		return ""
	}
	defer win.SysFreeString(b)
	return ole.BstrToString(b)
}
