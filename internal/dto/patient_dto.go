package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreatePatientRequest struct {
	FirstName string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string  `json:"last_name"  validate:"required,min=1,max=100"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Sex       *string `json:"sex"        validate:"omitempty,oneof=male female other"`
	Phone     *string `json:"phone"      validate:"omitempty,max=30"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	Region    *string `json:"region"`
	Country   *string `json:"country"`
}

type UpdatePatientRequest struct {
	FirstName string  `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  string  `json:"last_name"  validate:"omitempty,min=1,max=100"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Sex       *string `json:"sex"        validate:"omitempty,oneof=male female other"`
	Phone     *string `json:"phone"      validate:"omitempty,max=30"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	Region    *string `json:"region"`
	Country   *string `json:"country"`
}

type PatientFilter struct {
	Search string // matches MRN, first or last name
	Page   int
	Limit  int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PatientResponse struct {
	ID        string  `json:"id"`
	MRN       string  `json:"mrn"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	BirthDate *string `json:"birth_date,omitempty"`
	Sex       *string `json:"sex,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
	Region    *string `json:"region,omitempty"`
	Country   *string `json:"country,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type PatientListResponse struct {
	Data  []PatientResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
