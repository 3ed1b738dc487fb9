package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/itsatony/w4b_v3/server/sensorbridge/api/docs"
	"github.com/itsatony/w4b_v3/server/sensorbridge/api/middleware"
	"github.com/itsatony/w4b_v3/server/sensorbridge/api/resources"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/service"
	"github.com/swaggo/swag"
	nuts "github.com/vaudience/go-nuts"
)

const slowRequestThreshold = 2 * time.Second

type Router struct {
	router    *mux.Router
	resources *resources.Resources
}

func NewRouter(svc *service.Service, mon *monitoring.Service) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(svc, mon),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Timing(slowRequestThreshold))

	r.router.HandleFunc("/", r.resources.System.Welcome).Methods(http.MethodGet)
	r.router.HandleFunc("/health", r.resources.System.Health).Methods(http.MethodGet)
	r.router.HandleFunc("/metrics", r.resources.System.Metrics).Methods(http.MethodGet)
	r.router.HandleFunc("/swagger/doc.json", serveSwaggerDoc).Methods(http.MethodGet)

	// Readings
	r.router.HandleFunc("/view_data", r.resources.Readings.ViewData).Methods(http.MethodGet)
	r.router.HandleFunc("/save_data_from_chart", r.resources.Readings.SaveDataFromChart).Methods(http.MethodPost)
	r.router.HandleFunc("/save_data_to_database", r.resources.Readings.SaveDataToDatabase).Methods(http.MethodPost)

	// Fallback store
	r.router.HandleFunc("/write_data_to_json", r.resources.Fallback.WriteDataToJSON).Methods(http.MethodPost)

	// Connections
	r.router.HandleFunc("/close_database_connection", r.resources.Connections.CloseDatabaseConnection).Methods(http.MethodPost)
}

// Handler wraps the routes with CORS, access logging and panic recovery
func (r *Router) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))

	return handlers.CustomLoggingHandler(io.Discard, recovery(cors(r.router)), logRequest)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

func serveSwaggerDoc(w http.ResponseWriter, req *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		nuts.L.Errorf("[API] Failed to read swagger doc: %v", err)
		http.Error(w, "swagger doc unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func logRequest(_ io.Writer, params handlers.LogFormatterParams) {
	nuts.L.Infof("[API] %s %s %d %dB %s",
		params.Request.Method,
		params.URL.RequestURI(),
		params.StatusCode,
		params.Size,
		time.Since(params.TimeStamp),
	)
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	nuts.L.Errorf("[API] Recovered from panic: %s", fmt.Sprint(v...))
}
