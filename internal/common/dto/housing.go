package dto

// Dates travel as YYYY-MM-DD. Handlers check only the shape of a request;
// the domain rules run after the caller has been authorized.

type AccommodationRequest struct {
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Description    string  `json:"description"`
	MonthlyRent    float64 `json:"monthlyRent"`
	RoomsAvailable int     `json:"roomsAvailable"`
	ImagePath      string  `json:"imagePath"`
	AdminID        uint    `json:"adminId"`
}

type SubmitApplicationRequest struct {
	AccommodationID uint   `json:"accommodationId"`
	MoveInDate      string `json:"moveInDate" binding:"omitempty,datetime=2006-01-02"`
	Notes           string `json:"notes" binding:"max=2000"`
}

type CreateLeaseRequest struct {
	StudentID       uint    `json:"studentId"`
	AccommodationID uint    `json:"accommodationId"`
	ApplicationID   *uint   `json:"applicationId"`
	StartDate       string  `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate         string  `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	MonthlyRent     float64 `json:"monthlyRent"`
	SecurityDeposit float64 `json:"securityDeposit"`
}

type TerminateLeaseRequest struct {
	NewEndDate string `json:"newEndDate" binding:"omitempty,datetime=2006-01-02"`
}

type CreateInvoiceRequest struct {
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
	Description string  `json:"description"`
}

type InvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SubmitMaintenanceRequest struct {
	AccommodationID uint   `json:"accommodationId"`
	Title           string `json:"title" binding:"max=255"`
	Description     string `json:"description"`
	Priority        string `json:"priority"`
}

// MaintenanceStatusRequest replaces the admin notes when Notes is present
type MaintenanceStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

type NotifyStudentsRequest struct {
	Target          string   `json:"target" binding:"required,oneof=all accommodation specific"`
	AccommodationID uint     `json:"accommodationId"`
	StudentIDs      []uint   `json:"studentIds"`
	Subject         string   `json:"subject"`
	Message         string   `json:"message"`
	Channels        []string `json:"channels"`
}
