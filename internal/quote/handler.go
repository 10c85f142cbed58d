package quote

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"factoryflow/quote-service/internal/pricing"
	"factoryflow/quote-service/internal/scheduler"
	"factoryflow/quote-service/internal/settings"
)

// Version is reported by /health.
const Version = "1.0.0"

// StatusSource reports the connectivity status. *scheduler.Scheduler and
// scheduler.Fixed satisfy it.
type StatusSource interface {
	Status() scheduler.Status
}

// Handler holds shared dependencies of the HTTP routes.
type Handler struct {
	svc    *Service
	status StatusSource
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, status StatusSource) *Handler {
	return &Handler{svc: svc, status: status}
}

// NewRouter returns a gin engine with logging, recovery and every route.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts all quote-service routes on r.
//
// Routes:
//
//	GET  /health                               → liveness + demo-mode status
//	POST /quotes/preview                       → price a job without saving it
//	POST /quotes                               → price and save a job
//	POST /quotes/suggest                       → AI suggestion or estimate
//	GET  /jobs                                 → remote job history
//	GET  /jobs/local                           → jobs saved in demo mode
//	GET  /settings/pricing                     → pricing configuration
//	PUT  /settings/pricing/materials/:material → set a material price
//	POST /settings/pricing/reset               → restore default prices
//	PUT  /settings/pricing/advanced            → margin and rush fee
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.health)

	quotes := r.Group("/quotes")
	{
		quotes.POST("/preview", h.preview)
		quotes.POST("", h.submit)
		quotes.POST("/suggest", h.suggest)
	}

	jobs := r.Group("/jobs")
	{
		jobs.GET("", h.history)
		jobs.GET("/local", h.localHistory)
	}

	prices := r.Group("/settings/pricing")
	{
		prices.GET("", h.pricing)
		prices.PUT("/materials/:material", h.setMaterialPrice)
		prices.POST("/reset", h.resetPrices)
		prices.PUT("/advanced", h.setAdvanced)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"service": "quote-service",
		"version": Version,
	}
	if h.status != nil {
		st := h.status.Status()
		body["demoMode"] = st.DemoMode
		if st.Reason != "" {
			body["reason"] = st.Reason
		}
		if !st.CheckedAt.IsZero() {
			body["checkedAt"] = st.CheckedAt
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) preview(c *gin.Context) {
	var in pricing.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Preview(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) submit(c *gin.Context) {
	var in pricing.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		if sub != nil {
			// The quote was computed; only the save failed.
			c.JSON(http.StatusBadGateway, sub)
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) suggest(c *gin.Context) {
	var in pricing.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.svc.Suggest(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) history(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.History(c.Request.Context()))
}

func (h *Handler) localHistory(c *gin.Context) {
	jobs, err := h.svc.LocalHistory()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *Handler) pricing(c *gin.Context) {
	view, err := h.svc.Pricing()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) setMaterialPrice(c *gin.Context) {
	var body struct {
		Price *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price is required"})
		return
	}
	view, err := h.svc.SetMaterialPrice(c.Param("material"), *body.Price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) resetPrices(c *gin.Context) {
	view, err := h.svc.ResetMaterialPrices()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// setAdvanced decodes the body over the current options, so omitted fields
// keep their value.
func (h *Handler) setAdvanced(c *gin.Context) {
	current, err := h.svc.Pricing()
	if err != nil {
		writeError(c, err)
		return
	}
	opts := current.AdvancedOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.svc.SetAdvancedOptions(opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ─── Error mapping ────────────────────────────────────────────────────────────

func writeError(c *gin.Context, err error) {
	var ve *pricing.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg, "fields": ve.Fields})
	case errors.Is(err, settings.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[quote-service] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
