// Package host связывает ядро с хостом Windows UI Automation: сессии
// IUIAutomation, обёртки элементов, экспорт объектов обратного вызова через
// таблицы методов и регистрацию обработчиков событий.
package host

import "errors"

// ErrUnavailable - хост UI Automation недоступен на этой платформе.
var ErrUnavailable = errors.New("host: windows ui automation unavailable on this platform")
