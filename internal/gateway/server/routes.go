package server

import (
	"net/http"

	"go.uber.org/zap"

	"hookforge/internal/gateway/handler"
	"hookforge/internal/gateway/middleware"
)

func NewMux(wizardHandler *handler.WizardHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	wizardHandler.Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.CORS(middleware.AccessLog(logger)(mux))
}
