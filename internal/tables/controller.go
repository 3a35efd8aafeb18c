package tables

import (
	"net/http"

	"floorly/internal/shared/middleware"
	"floorly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type CreateTableRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
	Zone     string `json:"zone,omitempty" binding:"max=50"`
}

// Controller covers the static registry: creating and listing tables and
// groups. Everything status-aware (blocking, combining, assignment) goes
// through the floor engine instead.
type Controller struct {
	repo Repository
}

func NewController(repo Repository) *Controller {
	return &Controller{repo: repo}
}

// CreateTable handles POST /api/v1/tables
func (c *Controller) CreateTable(ctx *gin.Context) {
	orgID, ok := middleware.GetOrgID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "missing org scope", nil, nil)
		return
	}

	var req CreateTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	table := &Table{
		OrgID:    orgID,
		Name:     req.Name,
		Capacity: req.Capacity,
		Zone:     req.Zone,
	}
	if err := c.repo.CreateTable(ctx.Request.Context(), table); err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "failed to create table", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "table created", table, nil)
}

// ListTables handles GET /api/v1/tables
func (c *Controller) ListTables(ctx *gin.Context) {
	orgID, ok := middleware.GetOrgID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "missing org scope", nil, nil)
		return
	}

	list, err := c.repo.ListTables(ctx.Request.Context(), orgID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "failed to list tables", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "tables retrieved", list, nil)
}

// ListGroups handles GET /api/v1/groups
func (c *Controller) ListGroups(ctx *gin.Context) {
	orgID, ok := middleware.GetOrgID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "missing org scope", nil, nil)
		return
	}

	list, err := c.repo.ListGroups(ctx.Request.Context(), orgID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "failed to list groups", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "groups retrieved", list, nil)
}

// SetupTableRoutes configures table registry routes
func SetupTableRoutes(rg *gin.RouterGroup, controller *Controller) {
	tables := rg.Group("/tables")
	{
		tables.POST("", controller.CreateTable) // POST /api/v1/tables
		tables.GET("", controller.ListTables)   // GET /api/v1/tables
	}

	groups := rg.Group("/groups")
	{
		groups.GET("", controller.ListGroups) // GET /api/v1/groups
	}
}
