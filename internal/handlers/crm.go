package handlers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/crm"
	"github.com/ystore/marketplace/internal/models"
	"github.com/ystore/marketplace/internal/service/token"
)

// CRMHandler layers customer intelligence over the commerce tables. Nothing
// here is persisted beyond notes, tasks and leads: segments and funnel
// numbers are derived from users, orders and carts on every read.
type CRMHandler struct {
	DB *gorm.DB
}

type crmCustomer struct {
	ID                 uint       `json:"id"`
	Email              string     `json:"email"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone,omitempty"`
	City               string     `json:"city,omitempty"`
	TotalOrders        int        `json:"total_orders"`
	TotalSpent         float64    `json:"total_spent"`
	AvgOrderValue      float64    `json:"avg_order_value"`
	LastOrderDate      *time.Time `json:"last_order_date,omitempty"`
	DaysSinceLastOrder *int       `json:"days_since_last_order,omitempty"`
	Segment            string     `json:"segment"`
	NotesCount         int        `json:"notes_count"`
	TasksCount         int        `json:"tasks_count"`
	PendingTasks       int        `json:"pending_tasks"`
	HasAbandonedCart   bool       `json:"has_abandoned_cart"`
}

type customerStats struct {
	orders    int
	spent     float64
	lastOrder *time.Time
}

func (h *CRMHandler) orderStats() (map[uint]*customerStats, error) {
	var orders []models.Order
	if err := h.DB.Where("status <> ?", models.OrderCancelled).Find(&orders).Error; err != nil {
		return nil, err
	}

	stats := make(map[uint]*customerStats)
	for _, o := range orders {
		s := stats[o.UserID]
		if s == nil {
			s = &customerStats{}
			stats[o.UserID] = s
		}
		s.orders++
		s.spent += o.Total
		if s.lastOrder == nil || o.CreatedAt.After(*s.lastOrder) {
			last := o.CreatedAt
			s.lastOrder = &last
		}
	}
	return stats, nil
}

func (h *CRMHandler) buildCustomer(u *models.User, s *customerStats, now time.Time) crmCustomer {
	cust := crmCustomer{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		City:     u.City,
	}

	seg := crm.Stats{RegisteredAt: u.CreatedAt}
	if s != nil {
		cust.TotalOrders = s.orders
		cust.TotalSpent = math.Round(s.spent*100) / 100
		if s.orders > 0 {
			cust.AvgOrderValue = math.Round(s.spent/float64(s.orders)*100) / 100
		}
		cust.LastOrderDate = s.lastOrder
		if s.lastOrder != nil {
			days := int(now.Sub(*s.lastOrder).Hours() / 24)
			cust.DaysSinceLastOrder = &days
		}
		seg.TotalOrders = s.orders
		seg.TotalSpent = s.spent
		seg.LastOrder = s.lastOrder
	}
	cust.Segment = crm.Segment(seg, now)

	var notes, tasks, pending int64
	h.DB.Model(&models.CustomerNote{}).Where("customer_id = ?", u.ID).Count(&notes)
	h.DB.Model(&models.CRMTask{}).Where("customer_id = ?", u.ID).Count(&tasks)
	h.DB.Model(&models.CRMTask{}).
		Where("customer_id = ? AND status IN ?", u.ID, []string{models.TaskPending, models.TaskInProgress}).
		Count(&pending)
	cust.NotesCount = int(notes)
	cust.TasksCount = int(tasks)
	cust.PendingTasks = int(pending)

	var cartLines int64
	h.DB.Model(&models.CartItem{}).Where("user_id = ?", u.ID).Count(&cartLines)
	cust.HasAbandonedCart = cartLines > 0

	return cust
}

func (h *CRMHandler) ListCustomers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Where("role = ?", models.RoleCustomer).Order("id ASC").Find(&users).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	stats, err := h.orderStats()
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	segment := c.QueryParam("segment")
	now := time.Now()
	customers := make([]crmCustomer, 0, len(users))
	for i := range users {
		cust := h.buildCustomer(&users[i], stats[users[i].ID], now)
		if segment != "" && cust.Segment != segment {
			continue
		}
		customers = append(customers, cust)
	}

	return c.JSON(http.StatusOK, customers)
}

func (h *CRMHandler) GetCustomer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "customer not found")
	}

	stats, err := h.orderStats()
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, h.buildCustomer(&user, stats[user.ID], time.Now()))
}

// ---- notes ----

type noteResponse struct {
	models.CustomerNote
	AuthorName string `json:"author_name"`
}

func (h *CRMHandler) ListNotes(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var notes []models.CustomerNote
	if err := h.DB.Where("customer_id = ?", id).Order("created_at DESC").Find(&notes).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	resp := make([]noteResponse, len(notes))
	for i, n := range notes {
		resp[i] = noteResponse{CustomerNote: n}
		var author models.User
		if err := h.DB.Select("full_name").First(&author, n.AuthorID).Error; err == nil {
			resp[i].AuthorName = author.FullName
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CRMHandler) CreateNote(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Note string `json:"note"`
		Type string `json:"type"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Note == "" {
		return errorMessage(c, http.StatusBadRequest, "note is required")
	}
	if req.Type == "" {
		req.Type = models.NoteGeneral
	}
	switch req.Type {
	case models.NoteGeneral, models.NoteCall, models.NoteEmail,
		models.NoteMeeting, models.NoteComplaint, models.NoteOrderUpdate:
	default:
		return errorMessage(c, http.StatusBadRequest, "invalid note type")
	}

	var customer models.User
	if err := h.DB.First(&customer, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "customer not found")
	}

	note := models.CustomerNote{
		CustomerID: id,
		AuthorID:   token.UserID(c),
		Note:       req.Note,
		Type:       req.Type,
	}
	if err := h.DB.Create(&note).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *CRMHandler) DeleteNote(c echo.Context) error {
	id, err := parseID(c, "noteID")
	if err != nil {
		return err
	}
	if err := h.DB.Delete(&models.CustomerNote{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- tasks ----

func (h *CRMHandler) ListTasks(c echo.Context) error {
	q := h.DB.Model(&models.CRMTask{}).Order("created_at DESC")
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if assigned := c.QueryParam("assigned_to"); assigned != "" {
		q = q.Where("assigned_to = ?", assigned)
	}

	var tasks []models.CRMTask
	if err := q.Find(&tasks).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *CRMHandler) CreateTask(c echo.Context) error {
	var task models.CRMTask
	if err := c.Bind(&task); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if task.Title == "" {
		return errorMessage(c, http.StatusBadRequest, "title is required")
	}
	if task.AssignedTo == 0 {
		task.AssignedTo = token.UserID(c)
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if !models.ValidTaskPriority(task.Priority) {
		return errorMessage(c, http.StatusBadRequest, "invalid priority")
	}
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if task.Type == "" {
		task.Type = models.TaskFollowUp
	}
	if !models.ValidTaskType(task.Type) {
		return errorMessage(c, http.StatusBadRequest, "invalid type")
	}

	task.ID = 0
	task.CompletedAt = nil
	if err := h.DB.Create(&task).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *CRMHandler) PatchTask(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var task models.CRMTask
	if err := h.DB.First(&task, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "task not found")
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		DueDate     *time.Time `json:"due_date"`
		Priority    *string    `json:"priority"`
		Status      *string    `json:"status"`
		AssignedTo  *uint      `json:"assigned_to"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Priority != nil {
		if !models.ValidTaskPriority(*req.Priority) {
			return errorMessage(c, http.StatusBadRequest, "invalid priority")
		}
		task.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		task.AssignedTo = *req.AssignedTo
	}
	if req.Status != nil {
		switch *req.Status {
		case models.TaskPending, models.TaskInProgress, models.TaskCancelled:
			task.Status = *req.Status
			task.CompletedAt = nil
		case models.TaskCompleted:
			task.Status = models.TaskCompleted
			now := time.Now()
			task.CompletedAt = &now
		default:
			return errorMessage(c, http.StatusBadRequest, "invalid status")
		}
	}

	if err := h.DB.Save(&task).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *CRMHandler) DeleteTask(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.DB.Delete(&models.CRMTask{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- leads ----

func (h *CRMHandler) ListLeads(c echo.Context) error {
	q := h.DB.Model(&models.Lead{}).Order("created_at DESC")
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var leads []models.Lead
	if err := q.Find(&leads).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, leads)
}

func (h *CRMHandler) CreateLead(c echo.Context) error {
	var lead models.Lead
	if err := c.Bind(&lead); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if lead.Name == "" || lead.Email == "" {
		return errorMessage(c, http.StatusBadRequest, "name and email are required")
	}
	if lead.Source == "" {
		lead.Source = "website"
	}
	lead.ID = 0
	lead.Status = models.LeadNew
	lead.ConvertedToCustomerID = nil
	if err := h.DB.Create(&lead).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, lead)
}

func (h *CRMHandler) PatchLead(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var lead models.Lead
	if err := h.DB.First(&lead, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "lead not found")
	}

	var req struct {
		Name       *string `json:"name"`
		Email      *string `json:"email"`
		Phone      *string `json:"phone"`
		Source     *string `json:"source"`
		Status     *string `json:"status"`
		Interest   *string `json:"interest"`
		Notes      *string `json:"notes"`
		AssignedTo *uint   `json:"assigned_to"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}
	if req.Interest != nil {
		lead.Interest = *req.Interest
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	if req.AssignedTo != nil {
		lead.AssignedTo = req.AssignedTo
	}
	if req.Status != nil {
		switch *req.Status {
		case models.LeadNew, models.LeadContacted, models.LeadQualified, models.LeadLost:
			lead.Status = *req.Status
		case models.LeadConverted:
			return errorMessage(c, http.StatusBadRequest, "use the convert endpoint")
		default:
			return errorMessage(c, http.StatusBadRequest, "invalid status")
		}
	}

	if err := h.DB.Save(&lead).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// ConvertLead links a lead to the registered customer with the same email
// and marks it converted.
func (h *CRMHandler) ConvertLead(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var lead models.Lead
	if err := h.DB.First(&lead, id).Error; err != nil {
		return errorMessage(c, http.StatusNotFound, "lead not found")
	}
	if lead.Status == models.LeadConverted {
		return errorMessage(c, http.StatusConflict, "lead already converted")
	}

	var customer models.User
	if err := h.DB.Where("email = ?", lead.Email).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorMessage(c, http.StatusConflict, "no registered customer with this email")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	lead.Status = models.LeadConverted
	lead.ConvertedToCustomerID = &customer.ID
	if err := h.DB.Save(&lead).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *CRMHandler) DeleteLead(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.DB.Delete(&models.Lead{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- dashboard ----

func (h *CRMHandler) Dashboard(c echo.Context) error {
	periodDays := parseIntDefault(c.QueryParam("days"), 30)
	now := time.Now()
	periodStart := now.AddDate(0, 0, -periodDays)

	var totalUsers int64
	if err := h.DB.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&totalUsers).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var usersWithCart int64
	h.DB.Model(&models.CartItem{}).Distinct("user_id").Count(&usersWithCart)

	stats, err := h.orderStats()
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	usersWithOrders := len(stats)
	repeatCustomers := 0
	for _, s := range stats {
		if s.orders > 1 {
			repeatCustomers++
		}
	}

	var users []models.User
	if err := h.DB.Where("role = ?", models.RoleCustomer).Find(&users).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	segments := make(map[string]int, len(crm.Segments))
	for _, s := range crm.Segments {
		segments[s] = 0
	}
	activeCustomers := 0
	for i := range users {
		seg := crm.Stats{RegisteredAt: users[i].CreatedAt}
		if s := stats[users[i].ID]; s != nil {
			seg.TotalOrders = s.orders
			seg.TotalSpent = s.spent
			seg.LastOrder = s.lastOrder
			if s.lastOrder != nil && s.lastOrder.After(periodStart) {
				activeCustomers++
			}
		}
		segments[crm.Segment(seg, now)]++
	}

	var newCustomers, ordersPlaced int64
	h.DB.Model(&models.User{}).
		Where("role = ? AND created_at >= ?", models.RoleCustomer, periodStart).
		Count(&newCustomers)
	h.DB.Model(&models.Order{}).Where("created_at >= ?", periodStart).Count(&ordersPlaced)

	var pendingTasks, overdueTasks int64
	open := []string{models.TaskPending, models.TaskInProgress}
	h.DB.Model(&models.CRMTask{}).Where("status IN ?", open).Count(&pendingTasks)
	h.DB.Model(&models.CRMTask{}).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?", open, now).
		Count(&overdueTasks)

	var newCustomersWeek int64
	h.DB.Model(&models.User{}).
		Where("role = ? AND created_at >= ?", models.RoleCustomer, now.AddDate(0, 0, -7)).
		Count(&newCustomersWeek)

	pct := func(part, whole int64) float64 {
		if whole == 0 {
			return 0
		}
		return math.Round(float64(part)/float64(whole)*10000) / 100
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sales_funnel": echo.Map{
			"total_users":        totalUsers,
			"users_with_cart":    usersWithCart,
			"users_with_orders":  usersWithOrders,
			"repeat_customers":   repeatCustomers,
			"cart_conversion":    pct(int64(usersWithOrders), usersWithCart),
			"overall_conversion": pct(int64(usersWithOrders), totalUsers),
			"repeat_rate":        pct(int64(repeatCustomers), int64(usersWithOrders)),
		},
		"customer_segments": segments,
		"customer_activity": echo.Map{
			"new_customers":    newCustomers,
			"orders_placed":    ordersPlaced,
			"active_customers": activeCustomers,
			"period_days":      periodDays,
		},
		"pending_tasks":      pendingTasks,
		"overdue_tasks":      overdueTasks,
		"new_customers_week": newCustomersWeek,
	})
}
