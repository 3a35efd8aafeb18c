package guests

import (
	"errors"
	"net/http"

	"floorly/internal/shared/middleware"
	"floorly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateGuestRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email,omitempty" binding:"omitempty,email"`
	Phone   string `json:"phone,omitempty" binding:"max=20"`
	VipTier string `json:"vip_tier,omitempty" binding:"omitempty,oneof=NONE SILVER GOLD"`
}

type Controller struct {
	repo Repository
}

func NewController(repo Repository) *Controller {
	return &Controller{repo: repo}
}

// CreateGuest handles POST /api/v1/guests
func (c *Controller) CreateGuest(ctx *gin.Context) {
	orgID, ok := middleware.GetOrgID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "missing org scope", nil, nil)
		return
	}

	var req CreateGuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	tier := VipTier(req.VipTier)
	if req.VipTier == "" {
		tier = TierNone
	}

	guest := &Guest{
		OrgID:   orgID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		VipTier: tier,
	}
	if err := c.repo.CreateGuest(ctx.Request.Context(), guest); err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "failed to create guest", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "guest created", guest, nil)
}

// GetGuest handles GET /api/v1/guests/:id
func (c *Controller) GetGuest(ctx *gin.Context) {
	orgID, ok := middleware.GetOrgID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "missing org scope", nil, nil)
		return
	}

	guestID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid guest ID", nil, nil)
		return
	}

	guest, err := c.repo.GetGuestByID(ctx.Request.Context(), orgID, guestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "guest not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "failed to load guest", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "guest retrieved", guest, nil)
}

// ListGuests handles GET /api/v1/guests
func (c *Controller) ListGuests(ctx *gin.Context) {
	orgID, ok := middleware.GetOrgID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "missing org scope", nil, nil)
		return
	}

	list, err := c.repo.ListGuests(ctx.Request.Context(), orgID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "failed to list guests", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "guests retrieved", list, nil)
}

// SetupGuestRoutes configures guest registry routes
func SetupGuestRoutes(rg *gin.RouterGroup, controller *Controller) {
	guests := rg.Group("/guests")
	{
		guests.POST("", controller.CreateGuest)   // POST /api/v1/guests
		guests.GET("", controller.ListGuests)     // GET /api/v1/guests
		guests.GET("/:id", controller.GetGuest)   // GET /api/v1/guests/:id
	}
}
