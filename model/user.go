package model

type Role string

const (
	RoleViewer  Role = "VIEWER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanAuthor reports whether the role may build and manage forms.
func (r Role) CanAuthor() bool {
	return r == RoleManager || r == RoleAdmin
}

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

type User struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        Role        `json:"role"`
	Status      UserStatus  `json:"status"`
	Directorate Directorate `json:"directorate"`
	Password    string      `json:"password,omitempty"`
}

type Directorate string

const (
	DIJUD Directorate = "DIJUD"
	DPE   Directorate = "DPE"
	DTI   Directorate = "DTI"
	DSTI  Directorate = "DSTI"
	SGJT  Directorate = "SGJT"

	// AllDirectorates is only meaningful inside a form audience.
	AllDirectorates Directorate = "ALL"
)

var Directorates = []Directorate{DIJUD, DPE, DTI, DSTI, SGJT}

func (d Directorate) Valid() bool {
	for _, known := range Directorates {
		if d == known {
			return true
		}
	}
	return false
}
