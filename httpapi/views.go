package httpapi

import (
	"time"

	"rentflow/auth"
	"rentflow/contract"
	"rentflow/maintenance"
	"rentflow/notification"
	"rentflow/payment"
	"rentflow/property"
	"rentflow/tenant"
)

// Wire representations. Domain structs stay tag-free so each surface can
// shape its own payloads; the converters below are the single place field
// names are decided.

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u auth.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toUserViews(users []auth.User) []userView {
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return views
}

type tenantView struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	UserID    *string   `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTenantView(t tenant.Tenant) tenantView {
	return tenantView{
		ID:        t.ID,
		FullName:  t.FullName,
		Email:     t.Email,
		Phone:     t.Phone,
		UserID:    t.UserID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toTenantViews(tenants []tenant.Tenant) []tenantView {
	views := make([]tenantView, 0, len(tenants))
	for _, t := range tenants {
		views = append(views, toTenantView(t))
	}
	return views
}

type propertyView struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Address           string          `json:"address"`
	City              string          `json:"city"`
	Price             float64         `json:"price"`
	Charges           float64         `json:"charges"`
	Status            property.Status `json:"status"`
	OwnerID           *string         `json:"owner_id"`
	PhotoURLs         []string        `json:"photo_urls"`
	HasActiveContract bool            `json:"has_active_contract"`
	IsContractable    bool            `json:"is_contractable"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toPropertyView(p property.Property) propertyView {
	return propertyView{
		ID:                p.ID,
		Title:             p.Title,
		Address:           p.Address,
		City:              p.City,
		Price:             p.Price,
		Charges:           p.Charges,
		Status:            p.Status,
		OwnerID:           p.OwnerID,
		PhotoURLs:         p.PhotoURLs,
		HasActiveContract: p.HasActiveContract,
		IsContractable:    p.IsContractable,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toPropertyViews(props []property.Property) []propertyView {
	views := make([]propertyView, 0, len(props))
	for _, p := range props {
		views = append(views, toPropertyView(p))
	}
	return views
}

type contractView struct {
	ID               string          `json:"id"`
	PropertyID       string          `json:"property_id"`
	TenantID         string          `json:"tenant_id"`
	MonthlyRent      float64         `json:"monthly_rent"`
	Charges          float64         `json:"charges"`
	PaymentDay       int             `json:"payment_day"`
	GracePeriodDays  int             `json:"grace_period_days"`
	Status           contract.Status `json:"status"`
	SignedByTenant   bool            `json:"signed_by_tenant"`
	SignedByLandlord bool            `json:"signed_by_landlord"`
	StartDate        *time.Time      `json:"start_date"`
	EndDate          *time.Time      `json:"end_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toContractView(c contract.Contract) contractView {
	return contractView{
		ID:               c.ID,
		PropertyID:       c.PropertyID,
		TenantID:         c.TenantID,
		MonthlyRent:      c.MonthlyRent,
		Charges:          c.Charges,
		PaymentDay:       c.PaymentDay,
		GracePeriodDays:  c.GracePeriodDays,
		Status:           c.Status,
		SignedByTenant:   c.SignedByTenant,
		SignedByLandlord: c.SignedByLandlord,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func toContractViews(contracts []contract.Contract) []contractView {
	views := make([]contractView, 0, len(contracts))
	for _, c := range contracts {
		views = append(views, toContractView(c))
	}
	return views
}

type paymentView struct {
	ID               string                   `json:"id"`
	ContractID       string                   `json:"contract_id"`
	PeriodMonth      string                   `json:"period_month"`
	Amount           float64                  `json:"amount"`
	DueDate          time.Time                `json:"due_date"`
	Status           payment.Status           `json:"status"`
	ValidationStatus payment.ValidationStatus `json:"validation_status"`
	LateFee          float64                  `json:"late_fee"`
	ProofURLs        []string                 `json:"proof_urls"`
	RejectionReason  *string                  `json:"rejection_reason"`
	PaymentDate      *time.Time               `json:"payment_date"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

func toPaymentView(p payment.Payment) paymentView {
	return paymentView{
		ID:               p.ID,
		ContractID:       p.ContractID,
		PeriodMonth:      p.PeriodMonth,
		Amount:           p.Amount,
		DueDate:          p.DueDate,
		Status:           p.Status,
		ValidationStatus: p.ValidationStatus,
		LateFee:          p.LateFee,
		ProofURLs:        p.ProofURLs,
		RejectionReason:  p.RejectionReason,
		PaymentDate:      p.PaymentDate,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toPaymentViews(payments []payment.Payment) []paymentView {
	views := make([]paymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, toPaymentView(p))
	}
	return views
}

type maintenanceView struct {
	ID          string              `json:"id"`
	PropertyID  string              `json:"property_id"`
	TenantID    string              `json:"tenant_id"`
	Category    string              `json:"category"`
	Description string              `json:"description"`
	Urgency     maintenance.Urgency `json:"urgency"`
	Status      maintenance.Status  `json:"status"`
	PhotoURLs   []string            `json:"photo_urls"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toMaintenanceView(m maintenance.Request) maintenanceView {
	return maintenanceView{
		ID:          m.ID,
		PropertyID:  m.PropertyID,
		TenantID:    m.TenantID,
		Category:    m.Category,
		Description: m.Description,
		Urgency:     m.Urgency,
		Status:      m.Status,
		PhotoURLs:   m.PhotoURLs,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toMaintenanceViews(requests []maintenance.Request) []maintenanceView {
	views := make([]maintenanceView, 0, len(requests))
	for _, m := range requests {
		views = append(views, toMaintenanceView(m))
	}
	return views
}

type notificationView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	EntityType *string   `json:"entity_type"`
	EntityID   *string   `json:"entity_id"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

func toNotificationView(n notification.Notification) notificationView {
	return notificationView{
		ID:         n.ID,
		Title:      n.Title,
		Message:    n.Message,
		Type:       n.Type,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt,
	}
}

func toNotificationViews(notifications []notification.Notification) []notificationView {
	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, toNotificationView(n))
	}
	return views
}
