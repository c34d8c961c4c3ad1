package uia

import ole "github.com/go-ole/go-ole"

// Идентификаторы классов и интерфейсов UIAutomationClient.
var (
	CLSID_CUIAutomation = ole.NewGUID("{FF48DBA4-60EF-4201-AA87-54103EEF594E}")
	IID_IUIAutomation   = ole.NewGUID("{30CBE57D-D9D0-452A-AB13-7AC5AC4825EE}")

	IID_IUIAutomationValuePattern = ole.NewGUID("{A94CD8B1-0844-4CD6-9D2D-640537AB39E9}")
	IID_IUIAutomationTextPattern  = ole.NewGUID("{32EBA289-3583-42C9-9C59-3B6D9A1E9B6A}")

	IID_IUIAutomationFocusChangedEventHandler    = ole.NewGUID("{C270F6B5-5C69-4290-9745-7A7F97169468}")
	IID_IUIAutomationPropertyChangedEventHandler = ole.NewGUID("{40CD37D4-C756-4B0C-8C6F-BDDFEEB13B50}")
	IID_IUIAutomationEventHandler                = ole.NewGUID("{146C3C17-F12E-4E22-8C27-F894B9B79C69}")
)
