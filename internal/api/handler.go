package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"usage-sync-backend/config"
	"usage-sync-backend/internal/source"
	"usage-sync-backend/internal/store"
	syncsvc "usage-sync-backend/internal/sync"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg     *config.Config
	store   store.Store
	source  source.Adapter
	sync    *syncsvc.Service
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, s store.Store, adapter source.Adapter, sync *syncsvc.Service, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   s,
		source:  adapter,
		sync:    sync,
		webpush: webpushOptions,
	}
}
