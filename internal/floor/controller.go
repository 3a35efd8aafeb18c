package floor

import (
	"net/http"
	"strconv"

	"floorly/internal/reservations"
	"floorly/internal/shared/middleware"
	"floorly/internal/shared/utils/response"
	"floorly/internal/waitlist"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func orgScope(ctx *gin.Context) (uuid.UUID, bool) {
	orgID, ok := middleware.GetOrgID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "missing org scope", nil, nil)
	}
	return orgID, ok
}

func pathID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid "+name, nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

//  RESERVATIONS

// CreateReservation handles POST /api/v1/reservations
func (c *Controller) CreateReservation(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}

	var req CreateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	reservation, err := c.service.CreateReservation(ctx.Request.Context(), orgID, req)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "reservation created", reservation, nil)
}

// GetReservation handles GET /api/v1/reservations/:id
func (c *Controller) GetReservation(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}
	reservationID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	reservation, err := c.service.GetReservation(ctx.Request.Context(), orgID, reservationID)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "reservation retrieved", reservation, nil)
}

// ListReservations handles GET /api/v1/reservations
func (c *Controller) ListReservations(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	query := reservations.ListQuery{
		Status:   ctx.Query("status"),
		GuestID:  ctx.Query("guest_id"),
		TableID:  ctx.Query("table_id"),
		DateFrom: ctx.Query("date_from"),
		DateTo:   ctx.Query("date_to"),
		Page:     page,
		Limit:    limit,
	}

	list, total, err := c.service.ListReservations(ctx.Request.Context(), orgID, query)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "reservations retrieved", gin.H{
		"reservations": list,
		"total":        total,
		"page":         page,
		"limit":        limit,
	}, nil)
}

// TransitionReservation handles POST /api/v1/reservations/:id/commands
func (c *Controller) TransitionReservation(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}
	reservationID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	reservation, err := c.service.Transition(ctx.Request.Context(), orgID, reservationID, reservations.Command(req.Command))
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "reservation updated", reservation, nil)
}

// EditReservation handles PATCH /api/v1/reservations/:id
func (c *Controller) EditReservation(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}
	reservationID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req EditReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	reservation, err := c.service.EditReservation(ctx.Request.Context(), orgID, reservationID, req)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "reservation updated", reservation, nil)
}

//  ASSIGNMENT AND WALK-INS

// AssignTable handles POST /api/v1/assignments
func (c *Controller) AssignTable(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}

	var req AssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.AssignTable(ctx.Request.Context(), orgID, req)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	if result.NoFit {
		response.RespondJSON(ctx, "success", http.StatusOK, "no table fits this party", result, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "table assigned", result, nil)
}

// SeatWalkIn handles POST /api/v1/walkins
func (c *Controller) SeatWalkIn(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}

	var req WalkInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.SeatWalkIn(ctx.Request.Context(), orgID, req)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	if result.NoFit {
		response.RespondJSON(ctx, "success", http.StatusOK, "no table fits this party; offer the waitlist", result, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "party seated", result, nil)
}

//  TABLES

// FloorStatus handles GET /api/v1/floor
func (c *Controller) FloorStatus(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}

	views, err := c.service.FloorStatus(ctx.Request.Context(), orgID)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "floor status retrieved", views, nil)
}

// TableStatus handles GET /api/v1/tables/:id/status
func (c *Controller) TableStatus(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}
	tableID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	view, err := c.service.TableStatus(ctx.Request.Context(), orgID, tableID)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "table status retrieved", view, nil)
}

// BlockTable handles POST /api/v1/tables/:id/block
func (c *Controller) BlockTable(ctx *gin.Context) {
	c.setBlocked(ctx, true)
}

// UnblockTable handles POST /api/v1/tables/:id/unblock
func (c *Controller) UnblockTable(ctx *gin.Context) {
	c.setBlocked(ctx, false)
}

func (c *Controller) setBlocked(ctx *gin.Context, blocked bool) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}
	tableID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var view *TableStatusView
	var err error
	if blocked {
		view, err = c.service.BlockTable(ctx.Request.Context(), orgID, tableID)
	} else {
		view, err = c.service.UnblockTable(ctx.Request.Context(), orgID, tableID)
	}
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "table updated", view, nil)
}

// CombineTables handles POST /api/v1/groups
func (c *Controller) CombineTables(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}

	var req CombineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	tableIDs := make([]uuid.UUID, 0, len(req.TableIDs))
	for _, raw := range req.TableIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid table ID", nil, nil)
			return
		}
		tableIDs = append(tableIDs, id)
	}

	group, err := c.service.CombineTables(ctx.Request.Context(), orgID, tableIDs)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "tables combined", group, nil)
}

// UncombineTables handles DELETE /api/v1/groups/:id
func (c *Controller) UncombineTables(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}
	groupID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.service.UncombineTables(ctx.Request.Context(), orgID, groupID); err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "group dissolved", nil, nil)
}

//  WAITLIST

// EnqueueWaitlist handles POST /api/v1/waitlist
func (c *Controller) EnqueueWaitlist(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}

	var req EnqueueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	entry, err := c.service.EnqueueWaitlist(ctx.Request.Context(), orgID, req)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "party added to waitlist", entry, nil)
}

// ListWaitlist handles GET /api/v1/waitlist
func (c *Controller) ListWaitlist(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}

	entries, err := c.service.ListWaitlist(ctx.Request.Context(), orgID)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	// Entries arrive FIFO, so position is just the queue index
	positioned := make([]waitlistEntryView, 0, len(entries))
	for i, entry := range entries {
		positioned = append(positioned, waitlistEntryView{Entry: entry, Position: i + 1})
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "waitlist retrieved", positioned, nil)
}

type waitlistEntryView struct {
	waitlist.Entry
	Position int `json:"position"`
}

// NotifyWaitlist handles POST /api/v1/waitlist/:id/notify
func (c *Controller) NotifyWaitlist(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}
	entryID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	entry, err := c.service.NotifyWaitlist(ctx.Request.Context(), orgID, entryID)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "party notified", entry, nil)
}

// SeatWaitlist handles POST /api/v1/waitlist/:id/seat
func (c *Controller) SeatWaitlist(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}
	entryID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req SeatWaitlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid request body", nil, err.Error())
		return
	}

	var preferred *uuid.UUID
	if req.PreferredTableID != nil {
		id, err := uuid.Parse(*req.PreferredTableID)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "invalid table ID", nil, nil)
			return
		}
		preferred = &id
	}

	result, err := c.service.SeatWaitlist(ctx.Request.Context(), orgID, entryID, preferred)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	if result.NoFit {
		response.RespondJSON(ctx, "success", http.StatusOK, "no table fits this party", result, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "party seated from waitlist", result, nil)
}

// LeaveWaitlist handles POST /api/v1/waitlist/:id/leave
func (c *Controller) LeaveWaitlist(ctx *gin.Context) {
	orgID, ok := orgScope(ctx)
	if !ok {
		return
	}
	entryID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	entry, err := c.service.LeaveWaitlist(ctx.Request.Context(), orgID, entryID)
	if err != nil {
		response.RespondFault(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "party removed from waitlist", entry, nil)
}
