package notification

import (
	"ampquote/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.module",
	fx.Provide(NewMailer, NewService),
)

var WorkerModule = fx.Module("notification.worker",
	Module,
	fx.Invoke(registerHandlers),
)

func registerHandlers(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskname.NotificationLicenseLink, svc.HandleLicenseLinkTask)
}
