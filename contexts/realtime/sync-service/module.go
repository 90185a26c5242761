package syncservice

import (
	"log/slog"

	httpadapter "practicedesk/contexts/realtime/sync-service/adapters/http"
	application "practicedesk/contexts/realtime/sync-service/application"
	workers "practicedesk/contexts/realtime/sync-service/application/workers"
	"practicedesk/contexts/realtime/sync-service/ports"
)

type Module struct {
	Hub       *application.Hub
	Handler   httpadapter.Handler
	Consumer  workers.ChangeFeedConsumer
	Refresher application.Refresher
}

type Dependencies struct {
	Subscriber    ports.EventSubscriber
	SessionBuffer int
	ConsumerGroup string
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	logger := application.ResolveLogger(deps.Logger)
	hub := application.NewHub(deps.SessionBuffer, logger)
	return Module{
		Hub:     hub,
		Handler: httpadapter.Handler{Hub: hub},
		Consumer: workers.ChangeFeedConsumer{
			Subscriber:    deps.Subscriber,
			Hub:           hub,
			ConsumerGroup: deps.ConsumerGroup,
			Disabled:      deps.Subscriber == nil,
			Logger:        logger,
		},
		Refresher: application.Refresher{Logger: logger},
	}
}
