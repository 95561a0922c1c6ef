package server

import (
	"net/http"

	"redesignstudio/internal/gateway/handler"
	"redesignstudio/internal/gateway/middleware"
)

func NewMux(studio *handler.StudioHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/state", studio.HandleState)
	mux.HandleFunc("/api/upload", studio.HandleUpload)
	mux.HandleFunc("/api/modify", studio.HandleModify)
	mux.HandleFunc("/api/history/select", studio.HandleSelectHistory)
	mux.HandleFunc("/api/designs", studio.HandleListDesigns)
	mux.HandleFunc("/api/designs/save", studio.HandleSaveDesign)
	mux.HandleFunc("/api/designs/load", studio.HandleLoadDesign)
	mux.HandleFunc("/api/designs/delete", studio.HandleDeleteDesign)
	mux.HandleFunc("/api/watch", studio.HandleWatch)

	return middleware.CORS(mux)
}
