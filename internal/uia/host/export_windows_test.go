//go:build windows && (amd64 || arm64)

package host

import (
	"syscall"
	"testing"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"go.uber.org/zap/zaptest"

	"UIAWatcher/internal/uia"
	"UIAWatcher/internal/uia/com"
)

const (
	slotQueryInterface = 0
	slotAddRef         = 1
	slotHandle         = 3
)

type focusRecorder struct {
	senders []uintptr
	panics  bool
}

func (f *focusRecorder) HandleFocusChangedEvent(sender uia.Element) {
	if f.panics {
		panic("handler failure")
	}
	f.senders = append(f.senders, sender.(*element).unk)
}

type propertyRecorder struct {
	ids    []uia.PropertyID
	values []string
}

func (p *propertyRecorder) HandlePropertyChangedEvent(_ uia.Element, id uia.PropertyID, newValue string) {
	p.ids = append(p.ids, id)
	p.values = append(p.values, newValue)
}

func exportedCount() int {
	exportMu.Lock()
	defer exportMu.Unlock()
	return len(exports)
}

func releaseExported(t *testing.T, p uintptr, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		syscall.SyscallN(method(p, slotRelease), p)
	}
}

func TestExportedQueryInterface(t *testing.T) {
	before := exportedCount()
	obj := com.New(uia.IID_IUIAutomationFocusChangedEventHandler, &focusRecorder{})
	p := export(obj, zaptest.NewLogger(t).Sugar())
	if again := export(obj, nil); again != p {
		t.Fatalf("expected repeated export to return the same pointer")
	}

	var out uintptr
	hr, _, _ := syscall.SyscallN(method(p, slotQueryInterface), p,
		uintptr(unsafe.Pointer(ole.IID_IUnknown)), uintptr(unsafe.Pointer(&out)))
	if hr != ole.S_OK || out != p || obj.Refs() != 2 {
		t.Fatalf("IUnknown: hr=%#x out=%#x refs=%d", hr, out, obj.Refs())
	}

	out = 0
	hr, _, _ = syscall.SyscallN(method(p, slotQueryInterface), p,
		uintptr(unsafe.Pointer(uia.IID_IUIAutomationFocusChangedEventHandler)), uintptr(unsafe.Pointer(&out)))
	if hr != ole.S_OK || out != p || obj.Refs() != 3 {
		t.Fatalf("own interface: hr=%#x out=%#x refs=%d", hr, out, obj.Refs())
	}

	out = 1
	hr, _, _ = syscall.SyscallN(method(p, slotQueryInterface), p,
		uintptr(unsafe.Pointer(ole.IID_IDispatch)), uintptr(unsafe.Pointer(&out)))
	if hr != ole.E_NOINTERFACE || out != 0 || obj.Refs() != 3 {
		t.Fatalf("foreign interface: hr=%#x out=%#x refs=%d", hr, out, obj.Refs())
	}

	hr, _, _ = syscall.SyscallN(method(p, slotQueryInterface), p,
		uintptr(unsafe.Pointer(ole.IID_IUnknown)), 0)
	if hr != ole.E_POINTER || obj.Refs() != 3 {
		t.Fatalf("null ppv: hr=%#x refs=%d", hr, obj.Refs())
	}

	out = 1
	hr, _, _ = syscall.SyscallN(method(p, slotQueryInterface), p, 0, uintptr(unsafe.Pointer(&out)))
	if hr != ole.E_POINTER || out != 0 || obj.Refs() != 3 {
		t.Fatalf("null riid: hr=%#x out=%#x refs=%d", hr, out, obj.Refs())
	}

	releaseExported(t, p, 3)
	if obj.Refs() != 0 || exportedCount() != before {
		t.Fatalf("expected destroyed object to leave the export table, refs=%d exported=%d", obj.Refs(), exportedCount())
	}
}

func TestExportedAddRefRelease(t *testing.T) {
	obj := com.New(uia.IID_IUIAutomationEventHandler, &focusRecorder{})
	p := export(obj, nil)

	n, _, _ := syscall.SyscallN(method(p, slotAddRef), p)
	if n != 2 {
		t.Fatalf("expected AddRef to return 2, got %d", n)
	}
	n, _, _ = syscall.SyscallN(method(p, slotRelease), p)
	if n != 1 {
		t.Fatalf("expected Release to return 1, got %d", n)
	}
	n, _, _ = syscall.SyscallN(method(p, slotRelease), p)
	if n != 0 || obj.Behavior() != nil {
		t.Fatalf("expected final Release to destroy the object, got %d", n)
	}
}

func TestExportedFocusHandler(t *testing.T) {
	rec := &focusRecorder{}
	obj := com.New(uia.IID_IUIAutomationFocusChangedEventHandler, rec)
	p := export(obj, zaptest.NewLogger(t).Sugar())
	defer releaseExported(t, p, 1)

	hr, _, _ := syscall.SyscallN(method(p, slotHandle), p, 0x1234)
	if hr != ole.S_OK || len(rec.senders) != 1 || rec.senders[0] != 0x1234 {
		t.Fatalf("expected dispatch to the behavior, hr=%#x senders=%v", hr, rec.senders)
	}
	hr, _, _ = syscall.SyscallN(method(p, slotHandle), p, 0)
	if hr != ole.S_OK || len(rec.senders) != 1 {
		t.Fatalf("expected null sender to be skipped, hr=%#x senders=%v", hr, rec.senders)
	}

	rec.panics = true
	hr, _, _ = syscall.SyscallN(method(p, slotHandle), p, 0x1234)
	if hr != ole.S_OK {
		t.Fatalf("expected S_OK after a handler panic, got %#x", hr)
	}
}

func TestExportedPropertyHandlerDecodesBSTR(t *testing.T) {
	rec := &propertyRecorder{}
	obj := com.New(uia.IID_IUIAutomationPropertyChangedEventHandler, rec)
	p := export(obj, zaptest.NewLogger(t).Sugar())
	defer releaseExported(t, p, 1)

	bstr := ole.SysAllocString("привет")
	defer ole.SysFreeString(bstr)
	v := ole.NewVariant(ole.VT_BSTR, int64(uintptr(unsafe.Pointer(bstr))))
	hr, _, _ := syscall.SyscallN(method(p, slotHandle), p, 0x1234,
		uintptr(uia.PropertyValueValue), uintptr(unsafe.Pointer(&v)))
	if hr != ole.S_OK {
		t.Fatalf("unexpected hr %#x", hr)
	}

	n := ole.NewVariant(ole.VT_I4, 42)
	syscall.SyscallN(method(p, slotHandle), p, 0x1234,
		uintptr(uia.PropertyValueValue), uintptr(unsafe.Pointer(&n)))

	if len(rec.values) != 2 || rec.values[0] != "привет" || rec.values[1] != "" {
		t.Fatalf("unexpected payloads %q", rec.values)
	}
	if rec.ids[0] != uia.PropertyValueValue {
		t.Fatalf("unexpected property id %d", rec.ids[0])
	}
}
