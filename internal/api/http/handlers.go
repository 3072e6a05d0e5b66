package http

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/catalogd/internal/domain/service"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/cache"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/ratelimit"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
	"github.com/GriffinCanCode/catalogd/internal/shared/utils"
)

// Version is reported by the root and health endpoints
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	engine  *service.Engine
	cache   *cache.Cache
	limiter *ratelimit.Limiter
	breaker *resilience.Breaker
	metrics *monitoring.Metrics
	logger  *logging.Logger
	remote  bool
}

// Deps are the collaborators handlers read from. Breaker is nil when no
// default remote is configured.
type Deps struct {
	Engine  *service.Engine
	Cache   *cache.Cache
	Limiter *ratelimit.Limiter
	Breaker *resilience.Breaker
	Metrics *monitoring.Metrics
	Logger  *logging.Logger
	// Remote reports whether default credentials are configured
	Remote bool
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		engine:  d.Engine,
		cache:   d.Cache,
		limiter: d.Limiter,
		breaker: d.Breaker,
		metrics: d.Metrics,
		logger:  d.Logger.Component("http"),
		remote:  d.Remote,
	}
}

// Root describes the service and its meta-tools
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "online",
		"service":            "catalogd",
		"version":            Version,
		"service_definition": h.engine.Definition(),
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	breaker := "disabled"
	if h.breaker != nil {
		breaker = h.breaker.State().String()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   Version,
		"catalogue": gin.H{"entries": h.engine.Catalogue().Len()},
		"index":     h.engine.SearchService().Stats(),
		"execution": gin.H{"mode": h.mode(), "breaker": breaker},
	})
}

func (h *Handlers) mode() string {
	if h.remote {
		return "execution"
	}
	return "documentation"
}

// toolSummary is the listing shape of one catalogue entry
type toolSummary struct {
	Name        string            `json:"name"`
	Domain      string            `json:"domain"`
	Resource    string            `json:"resource"`
	Operation   types.Operation   `json:"operation"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Summary     string            `json:"summary,omitempty"`
	DangerLevel types.DangerLevel `json:"dangerLevel,omitempty"`
}

// ListTools lists catalogue operations, optionally filtered by domain and operation
func (h *Handlers) ListTools(c *gin.Context) {
	domain := c.Query("domain")
	operation := types.Operation(c.Query("operation"))

	tools := make([]toolSummary, 0)
	domains := make(map[string]int)
	h.engine.Catalogue().Each(func(e types.Entry) {
		if domain != "" && e.Domain != domain {
			return
		}
		if operation != "" && e.Operation != operation {
			return
		}
		domains[e.Domain]++
		tools = append(tools, toolSummary{
			Name:        e.Name,
			Domain:      e.Domain,
			Resource:    e.Resource,
			Operation:   e.Operation,
			Method:      e.Method,
			Path:        e.Path,
			Summary:     e.Summary,
			DangerLevel: e.DangerLevel,
		})
	})
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	c.JSON(http.StatusOK, gin.H{
		"tools":   tools,
		"count":   len(tools),
		"domains": domains,
	})
}

// DescribeTool returns the full description of one catalogue operation
func (h *Handlers) DescribeTool(c *gin.Context) {
	name := c.Param("name")
	if err := utils.ValidateToolName(name, "name"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	desc := h.engine.Describe(name)
	if desc == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "tool not found: " + name,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tool": desc})
}

// SearchTools handles the search meta-operation
func (h *Handlers) SearchTools(c *gin.Context) { h.run(c, service.ToolSearch) }

// ValidateTool handles the validate meta-operation
func (h *Handlers) ValidateTool(c *gin.Context) { h.run(c, service.ToolValidate) }

// ResolveDependencies handles the resolveDependencies meta-operation
func (h *Handlers) ResolveDependencies(c *gin.Context) { h.run(c, service.ToolResolve) }

// ExecuteTool handles the execute meta-operation
func (h *Handlers) ExecuteTool(c *gin.Context) { h.run(c, service.ToolExecute) }

// EstimateCost handles the estimateCost meta-operation
func (h *Handlers) EstimateCost(c *gin.Context) { h.run(c, service.ToolEstimateCost) }

// run binds a JSON object and routes it through the engine. Argument
// errors answer 400; every other outcome, including remote failures, is a
// 200 carrying the result envelope.
func (h *Handlers) run(c *gin.Context, toolID string) {
	var params map[string]interface{}
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.engine.Execute(c.Request.Context(), toolID, params)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrUnknownTool) {
			status = http.StatusNotFound
		}
		h.logger.Debug("Meta-operation rejected",
			zap.String("tool", toolID),
			zap.Error(err))
		c.JSON(status, result)
		return
	}

	c.JSON(http.StatusOK, result)
}
