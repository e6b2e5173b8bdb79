package handlers

import (
	"errors"
	"net/http"
	"time"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	promoterResource = resource{module: "promoter-management", entity: "promoter"}
	scheduleResource = resource{module: "promoter-management", entity: "schedule"}
)

type PromoterRequest struct {
	Name          string `json:"name" binding:"required,notblank,max=100"`
	ContactNumber string `json:"contact_number" binding:"max=30"`
	Email         string `json:"email" binding:"omitempty,email,max=100"`
	Status        string `json:"status" binding:"omitempty,oneof=active inactive"`
}

type ScheduleRequest struct {
	PromoterID uint   `json:"promoter_id" binding:"required"`
	Date       string `json:"date" binding:"required,datetime=2006-01-02"`
	Notes      string `json:"notes" binding:"max=255"`
}

type ScheduleRangeParams struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// --- Promoters ---

func GetPromoters(c *gin.Context) {
	var p ListParams
	if !bindQuery(c, &p) {
		return
	}
	q := p.Query()

	db := scoped(c, promoterResource).Model(&models.Promoter{}).
		Scopes(database.Trashed(q.Trashed), database.Search(q.Search, "name", "email", "contact_number"))
	if p.Status != "" {
		db = db.Where("status = ?", p.Status)
	}

	page, err := database.FindPage[models.Promoter](db, q,
		database.Sort(q, []string{"id", "name", "status", "created_at"}, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promoters"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func GetPromoter(c *gin.Context) {
	showRecord[models.Promoter](c, promoterResource)
}

func CreatePromoter(c *gin.Context) {
	var input PromoterRequest
	if !bindJSON(c, &input) {
		return
	}

	promoter := models.Promoter{
		TenantID:      middleware.TenantID(c),
		Name:          input.Name,
		ContactNumber: input.ContactNumber,
		Email:         input.Email,
		Status:        statusOr(input.Status, models.StatusActive),
	}
	if err := database.DB.Create(&promoter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promoter"})
		return
	}

	recordAudit(c, promoterResource, models.AuditCreate, promoter.ID, nil, promoter)
	c.JSON(http.StatusCreated, promoter)
}

func UpdatePromoter(c *gin.Context) {
	promoter, ok := loadRecord[models.Promoter](c, scoped(c, promoterResource), promoterResource)
	if !ok {
		return
	}
	var input PromoterRequest
	if !bindJSON(c, &input) {
		return
	}

	before := *promoter
	promoter.Name = input.Name
	promoter.ContactNumber = input.ContactNumber
	promoter.Email = input.Email
	promoter.Status = statusOr(input.Status, promoter.Status)
	if err := database.DB.Save(promoter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update promoter"})
		return
	}

	recordAudit(c, promoterResource, models.AuditUpdate, promoter.ID, before, promoter)
	c.JSON(http.StatusOK, promoter)
}

func DeletePromoter(c *gin.Context) {
	deleteRecord[models.Promoter](c, promoterResource)
}

func RestorePromoter(c *gin.Context) {
	restoreRecord[models.Promoter](c, promoterResource)
}

// --- Schedules ---

// GetSchedules lists the calendar between from and to, defaulting to the current month.
func GetSchedules(c *gin.Context) {
	var p ScheduleRangeParams
	if !bindQuery(c, &p) {
		return
	}
	now := time.Now()
	if p.From == "" {
		p.From = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(models.DateLayout)
	}
	if p.To == "" {
		p.To = time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Format(models.DateLayout)
	}
	if p.To < p.From {
		fieldError(c, "to", "to must be on or after from")
		return
	}

	schedules := []models.PromoterSchedule{}
	err := scoped(c, scheduleResource).
		Preload("Promoter", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("schedule_date BETWEEN ? AND ?", p.From, p.To).
		Order("schedule_date ASC").
		Find(&schedules).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": p.From, "to": p.To, "data": schedules})
}

// AssignSchedule makes the promoter the promoter of the given date, replacing any previous one.
func AssignSchedule(c *gin.Context) {
	var input ScheduleRequest
	if !bindJSON(c, &input) {
		return
	}

	var promoter models.Promoter
	err := scoped(c, promoterResource).Where("status = ?", models.StatusActive).First(&promoter, input.PromoterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fieldError(c, "promoter_id", "the selected promoter is inactive or does not exist")
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promoter"})
		return
	}

	schedule := models.PromoterSchedule{
		TenantID:     middleware.TenantID(c),
		ScheduleDate: input.Date,
		PromoterID:   promoter.ID,
		Notes:        input.Notes,
	}
	err = database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "schedule_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"promoter_id", "notes", "updated_at"}),
	}).Create(&schedule).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save schedule"})
		return
	}

	// Re-read: on conflict the insert did not produce this row's ID.
	if err := scoped(c, scheduleResource).Where("schedule_date = ?", input.Date).First(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedule"})
		return
	}
	schedule.Promoter = &promoter

	recordAudit(c, scheduleResource, models.AuditUpdate, schedule.ID, nil, schedule)
	c.JSON(http.StatusOK, schedule)
}

func DeleteSchedule(c *gin.Context) {
	schedule, ok := loadRecord[models.PromoterSchedule](c, scoped(c, scheduleResource), scheduleResource)
	if !ok {
		return
	}
	if err := database.DB.Delete(schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule"})
		return
	}

	recordAudit(c, scheduleResource, models.AuditDelete, schedule.ID, schedule, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}

// GetPromoterOfTheDay answers today's scheduled promoter, 404 when nobody is scheduled.
func GetPromoterOfTheDay(c *gin.Context) {
	today := time.Now().Format(models.DateLayout)
	promoter, err := database.PromoterOfTheDay(database.DB.WithContext(c.Request.Context()), middleware.TenantID(c), today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promoter of the day"})
		return
	}
	if promoter == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No promoter is scheduled today", "date": today})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": today, "promoter": promoter})
}
