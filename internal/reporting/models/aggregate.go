package models

import "time"

// AggregateRow is one summarized data point produced by the query builders:
// a key (category, subcategory, department, state...) with its total, the
// per-day average over the active range and the largest single entry.
type AggregateRow struct {
	Key         string  `json:"key"`
	Total       int     `json:"total"`
	AvgPerDay   float64 `json:"avg_per_day"`
	MaxEntry    int     `json:"max_entry"`
}

// InpatientRow is the raw inpatient record the KPI calculations run over.
type InpatientRow struct {
	InpatientID   string
	MRN           string
	DaysCared     float64
	AdmissionType string
	DOA           time.Time
	DeathDate     *time.Time
	DeptCode      string
	HospitalID    string
}

// GeneralKPIs is the client-side aggregate block of the General tab.
type GeneralKPIs struct {
	TotalInpatients  int     `json:"total_inpatients"`
	TotalOutpatients int     `json:"total_outpatients"`
	AvgLengthOfStay  float64 `json:"avg_length_of_stay"`
	Deaths           int     `json:"deaths"`
	MortalityRate    float64 `json:"mortality_rate"`
	Readmissions     int     `json:"readmissions"`
	ReadmissionRate  float64 `json:"readmission_rate"`
	MorbidityCount   int     `json:"morbidity_count"`
	MorbidityRate    float64 `json:"morbidity_rate"`
}

// OccupancySummary carries the bed occupancy KPI for the active filter.
type OccupancySummary struct {
	OccupancyRate  float64 `json:"occupancy_rate"`
	AvgDailyCensus float64 `json:"avg_daily_census"`
	TotalBeds      int     `json:"total_beds"`
}

// CensusDay is one daily census delta row.
type CensusDay struct {
	Date        time.Time `json:"date"`
	Speciality  string    `json:"speciality"`
	Opening     int       `json:"opening"`
	Admitted    int       `json:"admitted"`
	Discharged  int       `json:"discharged"`
	TransferIn  int       `json:"transfer_in"`
	TransferOut int       `json:"transfer_out"`
	Deaths      int       `json:"deaths"`
	Occupancy   int       `json:"occupancy"`
}

// OccupancyBreakdownRow is a per-department or per-location occupancy line.
type OccupancyBreakdownRow struct {
	Department     string  `json:"department"`
	Location       string  `json:"location,omitempty"`
	TotalBeds      int     `json:"total_beds"`
	AvgDailyCensus float64 `json:"avg_daily_census"`
	OccupancyRate  float64 `json:"occupancy_rate"`
}

// SurgeryMetrics is the Surgery Details tab block.
type SurgeryMetrics struct {
	Total       int     `json:"total"`
	BySurgeon   *int    `json:"by_surgeon,omitempty"`
	TopType     string  `json:"top_type"`
	DailyAvg    float64 `json:"daily_avg"`
}

// Surgeon is one roster entry of the surgeon selector.
type Surgeon struct {
	StaffID        string `json:"staff_id"`
	StaffName      string `json:"staff_name"`
	TotalSurgeries int    `json:"total_surgeries"`
}

// SurgeryWait summarizes admission-to-surgery wait days.
type SurgeryWait struct {
	AvgWaitDays    float64 `json:"avg_wait_days"`
	TotalSurgeries int     `json:"total_surgeries"`
	MinWaitDays    float64 `json:"min_wait_days"`
	MaxWaitDays    float64 `json:"max_wait_days"`
}

// NoteSummary is one clinical note header for the reports viewer.
type NoteSummary struct {
	AccessionNum string     `json:"accession_num"`
	NoteName     string     `json:"note_name"`
	VisitType    string     `json:"visit_type"`
	VisitDate    *time.Time `json:"visit_date"`
	DoneBy       string     `json:"done_by"`
	DeptName     string     `json:"dept_name"`
	NoteData     string     `json:"note_data"`
}

// Department is one selector entry resolved from the DEPARTMENT table.
type Department struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	HospitalID string `json:"hospital_id"`
}

// Table is a generic column/row result used by the passthrough sections
// (financial summary, quality metrics, staff:patient ratio).
type Table struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}
