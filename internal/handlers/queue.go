package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-queue-server/internal/middleware"
	"clinic-queue-server/internal/models"
	"clinic-queue-server/internal/utils"
)

// QueueHandler serves the authoritative server-side patient queue. Ordering
// here is by ticket number: the server is the ordering authority in remote
// mode and clients merge whatever it returns.
type QueueHandler struct {
	DB *gorm.DB
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(db *gorm.DB) *QueueHandler {
	return &QueueHandler{DB: db}
}

// queueOwner resolves the clinician whose queue the authenticated user
// operates on. Doctors own their queue, reception staff use their linked
// doctor's queue; everyone else has none.
func (h *QueueHandler) queueOwner(c *gin.Context) (string, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return "", false
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.InternalServerError(c, "Database error resolving user: "+err.Error())
		return "", false
	}

	owner := user.QueueOwnerID()
	if owner == "" {
		utils.Forbidden(c, "Queue access is limited to doctors and reception staff")
		return "", false
	}
	return owner, true
}

// ListQueue returns the full queue for the clinician, ordered by ticket
// number then creation time.
func (h *QueueHandler) ListQueue(c *gin.Context) {
	owner, ok := h.queueOwner(c)
	if !ok {
		return
	}

	var items []models.QueueItem
	if err := h.DB.Where("doctor_id = ?", owner).
		Order("ticket_number asc, created_at asc").
		Find(&items).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch queue: "+err.Error())
		return
	}

	utils.Success(c, items)
}

// AddToQueue appends a patient to the clinician's queue with the next ticket
// number and status waiting.
func (h *QueueHandler) AddToQueue(c *gin.Context) {
	owner, ok := h.queueOwner(c)
	if !ok {
		return
	}

	var req models.QueueIntake
	if !utils.BindAndValidate(c, &req) {
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Age = strings.TrimSpace(req.Age)
	if req.FirstName == "" || req.LastName == "" || req.Age == "" {
		utils.BadRequest(c, "First name, last name and age are required")
		return
	}

	arrivalTime := req.ArrivalTime
	if arrivalTime == "" {
		arrivalTime = time.Now().Format("15:04")
	}

	item := models.QueueItem{
		DoctorID:    owner,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Age:         req.Age,
		Address:     strings.TrimSpace(req.Address),
		Complaints:  strings.TrimSpace(req.Complaints),
		ArrivalTime: arrivalTime,
		Status:      models.QueueWaiting,
	}
	item.DeriveName()

	// Next ticket is max+1 within this clinician's queue. Tickets are never
	// reused or renumbered on removal.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var maxTicket int
		if err := tx.Model(&models.QueueItem{}).
			Where("doctor_id = ?", owner).
			Select("COALESCE(MAX(ticket_number), 0)").
			Scan(&maxTicket).Error; err != nil {
			return err
		}
		item.TicketNumber = maxTicket + 1
		return tx.Create(&item).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to add patient to queue: "+err.Error())
		return
	}

	utils.Created(c, item)
}

// UpdateQueueItem applies a partial update (status and/or detail fields) to
// one queue item and returns the updated record.
func (h *QueueHandler) UpdateQueueItem(c *gin.Context) {
	owner, ok := h.queueOwner(c)
	if !ok {
		return
	}

	var item models.QueueItem
	if err := h.DB.Where("id = ? AND doctor_id = ?", c.Param("id"), owner).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Queue item not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req models.QueueItemUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Status != nil {
		if !models.ValidQueueStatus(*req.Status) {
			utils.BadRequest(c, "Unknown queue status: "+string(*req.Status))
			return
		}
		item.Status = *req.Status
	}
	req.ApplyDetails(&item)

	if err := h.DB.Save(&item).Error; err != nil {
		utils.InternalServerError(c, "Failed to update queue item: "+err.Error())
		return
	}

	utils.Success(c, item)
}

// RemoveFromQueue deletes one queue item.
func (h *QueueHandler) RemoveFromQueue(c *gin.Context) {
	owner, ok := h.queueOwner(c)
	if !ok {
		return
	}

	var item models.QueueItem
	if err := h.DB.Where("id = ? AND doctor_id = ?", c.Param("id"), owner).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Queue item not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		utils.InternalServerError(c, "Failed to remove queue item: "+err.Error())
		return
	}

	utils.Success(c, nil)
}
