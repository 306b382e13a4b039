package types

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=homeowner contractor admin"`

	// Contractor profile, required when role is contractor.
	CompanyName string `json:"company_name" validate:"required_if=Role contractor"`
	City        string `json:"city"`
	State       string `json:"state"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProjectCreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	ProjectType string   `json:"project_type" validate:"required,oneof=homebuilding renovation interior_design"`
	Street      string   `json:"street"`
	City        string   `json:"city" validate:"required"`
	State       string   `json:"state" validate:"required"`
	Zip         string   `json:"zip"`
	Country     string   `json:"country"`
	Lat         *float64 `json:"lat" validate:"omitempty,latitude"`
	Long        *float64 `json:"long" validate:"omitempty,longitude"`
	Budget      float64  `json:"budget" validate:"gte=0"`
}

type StageBreakdownItem struct {
	Name              string  `json:"name" validate:"required"`
	EstimatedCost     float64 `json:"estimated_cost" validate:"gt=0"`
	EstimatedDuration string  `json:"estimated_duration"`
}

type AcceptGCRequestRequest struct {
	EstimatedBudget   float64              `json:"estimated_budget" validate:"required,gt=0"`
	EstimatedDuration string               `json:"estimated_duration" validate:"required"`
	GCNotes           string               `json:"gc_notes"`
	Stages            []StageBreakdownItem `json:"stages" validate:"omitempty,min=1,max=20,dive"`
}

type RejectGCRequestRequest struct {
	Reason string `json:"reason"`
}

type PaymentLinkRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason"`
}

type CompleteStageRequest struct {
	ActualCost *float64 `json:"actual_cost" validate:"omitempty,gte=0"`
}

type SettlePaymentRequest struct {
	TransactionID string `json:"transaction_id"`
}
