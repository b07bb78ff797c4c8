package out

import (
	"context"

	"github.com/gen2brain/beeep"

	analyticsout "focuslog/internal/modules/analytics/port/out"
)

// BeeepNotifier raises desktop notifications through the OS notification service.
type BeeepNotifier struct{}

func NewBeeepNotifier(appName string) analyticsout.Notifier {
	beeep.AppName = appName
	return BeeepNotifier{}
}

func (BeeepNotifier) Notify(_ context.Context, title, message string) error {
	return beeep.Alert(title, message, "")
}
