package web

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/AliAsger25/TFWTest/internal/app"
	webui "github.com/AliAsger25/TFWTest/web"
)

// maxRequestBody caps inbound JSON payloads. Bills are small; anything past
// this is malformed or hostile.
const maxRequestBody = 1 << 20 // 1 MiB

// Handler holds the ApplicationService and serves the HTTP API plus the
// embedded frontend.
type Handler struct {
	svc        app.ApplicationService
	log        logrus.FieldLogger
	fileServer http.Handler
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log logrus.FieldLogger) http.Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}

	h := &Handler{
		svc:        svc,
		log:        log,
		fileServer: http.FileServer(http.FS(staticFS)),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(maxRequestBody))

	r.Get("/api/health", h.health)

	r.Route("/api/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Get("/", h.listProducts)
		r.Get("/search", h.searchProducts)
		r.Get("/{code}", h.getProduct)
		r.Put("/{code}", h.updateProduct)
		r.Delete("/{code}", h.deleteProduct)
	})

	r.Route("/api/bills", func(r chi.Router) {
		r.Post("/", h.createBill)
		r.Get("/", h.listBills)
		r.Get("/{invoiceNo}", h.getBill)
		r.Put("/{invoiceNo}", h.updateBill)
		r.Delete("/{invoiceNo}", h.deleteBill)
		r.Get("/{invoiceNo}/type", h.classifyBill)
		r.Get("/{invoiceNo}/view", h.billView)
	})

	// Embedded frontend shell, as the original served its static files from
	// the same process.
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/static", h.fileServer).ServeHTTP(w, req)
	})
	r.Get("/", h.index)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	r.URL.Path = "/index.html"
	h.fileServer.ServeHTTP(w, r)
}
