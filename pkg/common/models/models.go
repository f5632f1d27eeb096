package models

import (
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // patient.merged, patient.created, admission.discharged
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Patient records
type Patient struct {
	Code           int        `json:"code"`
	FirstName      string     `json:"first_name"`
	SecondName     string     `json:"second_name"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Age            int        `json:"age"`
	AgeType        string     `json:"age_type,omitempty"`
	Sex            string     `json:"sex"` // M, F
	Address        string     `json:"address,omitempty"`
	City           string     `json:"city,omitempty"`
	NextOfKin      string     `json:"next_of_kin,omitempty"`
	Telephone      string     `json:"telephone,omitempty"`
	MotherName     string     `json:"mother_name,omitempty"`
	Mother         string     `json:"mother,omitempty"` // A=alive, D=dead, U=unknown
	FatherName     string     `json:"father_name,omitempty"`
	Father         string     `json:"father,omitempty"`
	BloodType      string     `json:"blood_type,omitempty"`
	HasInsurance   string     `json:"has_insurance,omitempty"`
	ParentTogether string     `json:"parent_together,omitempty"`
	Note           string     `json:"note,omitempty"`
	Deleted        bool       `json:"deleted"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type CreatePatientRequest struct {
	FirstName      string     `json:"first_name"`
	SecondName     string     `json:"second_name"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Age            int        `json:"age,omitempty"`
	AgeType        string     `json:"age_type,omitempty"`
	Sex            string     `json:"sex"`
	Address        string     `json:"address,omitempty"`
	City           string     `json:"city,omitempty"`
	NextOfKin      string     `json:"next_of_kin,omitempty"`
	Telephone      string     `json:"telephone,omitempty"`
	MotherName     string     `json:"mother_name,omitempty"`
	Mother         string     `json:"mother,omitempty"`
	FatherName     string     `json:"father_name,omitempty"`
	Father         string     `json:"father,omitempty"`
	BloodType      string     `json:"blood_type,omitempty"`
	HasInsurance   string     `json:"has_insurance,omitempty"`
	ParentTogether string     `json:"parent_together,omitempty"`
	Note           string     `json:"note,omitempty"`
}

type MergeRequest struct {
	SurvivorCode int `json:"survivor_code"`
	ObsoleteCode int `json:"obsolete_code"`
}

type MergeResponse struct {
	SurvivorCode int       `json:"survivor_code"`
	ObsoleteCode int       `json:"obsolete_code"`
	MergedAt     time.Time `json:"merged_at"`
}

// Dependent history records
type Visit struct {
	ID          int       `json:"id"`
	PatientCode int       `json:"patient_code"`
	Ward        string    `json:"ward,omitempty"`
	Date        time.Time `json:"date"`
	Duration    int       `json:"duration,omitempty"`
	Service     string    `json:"service,omitempty"`
	Note        string    `json:"note,omitempty"`
}

type Examination struct {
	ID            int       `json:"id"`
	PatientCode   int       `json:"patient_code"`
	Date          time.Time `json:"date"`
	Height        float64   `json:"height,omitempty"`
	Weight        float64   `json:"weight,omitempty"`
	Temperature   float64   `json:"temperature,omitempty"`
	Saturation    float64   `json:"saturation,omitempty"`
	BloodPressure string    `json:"blood_pressure,omitempty"`
	Note          string    `json:"note,omitempty"`
}

// Admin subsystem
type User struct {
	Username    string `json:"username"`
	Description string `json:"description,omitempty"`
	GroupCode   string `json:"group_code"`
	Deleted     bool   `json:"deleted"`
}

type UserGroup struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Deleted     bool   `json:"deleted"`
}

type MenuItem struct {
	Code        string `json:"code"`
	ButtonLabel string `json:"button_label"`
	AltLabel    string `json:"alt_label,omitempty"`
	Tooltip     string `json:"tooltip,omitempty"`
	Shortcut    string `json:"shortcut,omitempty"`
	SubmenuOf   string `json:"submenu_of,omitempty"`
	IsSubmenu   bool   `json:"is_submenu"`
	Position    int    `json:"position"`
	Active      bool   `json:"active"`
}

type SetGroupMenuRequest struct {
	Items []MenuItem `json:"items"`
}
