//go:build !windows || !(amd64 || arm64)

package host

import (
	"go.uber.org/zap"

	"UIAWatcher/internal/uia"
	"UIAWatcher/internal/uia/com"
)

// Automation - заглушка для платформ без UI Automation.
type Automation struct{}

func Open(*zap.SugaredLogger) (*Automation, error) { return nil, ErrUnavailable }

func OpenSession() (uia.Session, error) { return nil, ErrUnavailable }

func CurrentThreadID() uint32 { return 0 }

func (*Automation) RegisterFocusChanged(*com.Object) error { return ErrUnavailable }

func (*Automation) RegisterPropertyChanged(*com.Object, ...uia.PropertyID) error {
	return ErrUnavailable
}

func (*Automation) RegisterAutomationEvent(uia.EventID, *com.Object) error { return ErrUnavailable }

func (*Automation) RemoveAllEventHandlers() error { return ErrUnavailable }

func (*Automation) Close() {}
