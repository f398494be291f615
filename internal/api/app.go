package api

import (
	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/metrics"
	"github.com/iglide21/BabyBuddy-sub001/internal/service"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Store() storage.Store
	Reconciler() *service.ProfileReconciler
	Metrics() *metrics.Collector
}

// Application is the App the server runs with.
type Application struct {
	logger     internal.Logger
	store      storage.Store
	reconciler *service.ProfileReconciler
	metrics    *metrics.Collector
}

func NewApplication(logger internal.Logger, store storage.Store, collector *metrics.Collector) *Application {
	return &Application{
		logger:     logger,
		store:      store,
		reconciler: service.NewProfileReconciler(),
		metrics:    collector,
	}
}

func (a *Application) Logger() internal.Logger                { return a.logger }
func (a *Application) Store() storage.Store                    { return a.store }
func (a *Application) Reconciler() *service.ProfileReconciler { return a.reconciler }
func (a *Application) Metrics() *metrics.Collector             { return a.metrics }
