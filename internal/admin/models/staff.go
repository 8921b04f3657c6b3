package models

// Staff is one STAFFMASTER row as exposed to the admin panel. The
// password hash never leaves the service layer.
type Staff struct {
	StaffID     string `json:"staff_id"`
	StaffName   string `json:"staff_name"`
	DeptName    string `json:"dept_name"`
	Designation string `json:"designation"`
	HospitalID  string `json:"hospital_id"`
	DeptCode    string `json:"dept_code"`
	AthmaID     string `json:"athma_id"`
	LoginOK     string `json:"login_ok"`
	AccessRole  string `json:"access_role"`
}

// Role maps the stored ACCESS_ROLE flag to the API role name.
func (s Staff) Role() string {
	if s.AccessRole == "A" {
		return "admin"
	}
	return "staff"
}

// AuthenticatedStaff is the login result carried into the JWT claims.
type AuthenticatedStaff struct {
	StaffID    string `json:"staff_id"`
	StaffName  string `json:"staff_name"`
	Role       string `json:"role"`
	HospitalID string `json:"hospital_id"`
}

// NewStaffInput is the add-staff request payload.
type NewStaffInput struct {
	StaffID     string `json:"staff_id" validate:"required"`
	StaffName   string `json:"staff_name" validate:"required"`
	DeptName    string `json:"dept_name"`
	Designation string `json:"designation"`
	HospitalID  string `json:"hospital_id"`
	DeptCode    string `json:"dept_code"`
	AthmaID     string `json:"athma_id"`
	Password    string `json:"password" validate:"required,min=6"`
	LoginOK     string `json:"login_ok" validate:"omitempty,oneof=Y N"`
	AccessRole  string `json:"access_role" validate:"omitempty,oneof=A U"`
}
