package services

import (
	"time"

	"github.com/sssihms/dashboard-backend/internal/reporting/models"
)

// Client-side KPI math over fetched inpatient rows. These run after the
// raw rows come back from the store, so a zero inpatient count yields zero
// rates instead of a division error.

const morbidityThresholdDays = 15

var readmissionTypes = map[string]bool{
	"READMISSION":           true,
	"EMERGENCY READMISSION": true,
}

// ComputeGeneralKPIs derives length-of-stay, mortality, readmission and
// morbidity figures for the inpatients admitted inside the filter range.
// A death counts only when the death date falls inside the range itself.
func ComputeGeneralKPIs(inpatients []models.InpatientRow, totalOutpatients int, from, to time.Time) models.GeneralKPIs {
	k := models.GeneralKPIs{
		TotalInpatients:  len(inpatients),
		TotalOutpatients: totalOutpatients,
	}
	if k.TotalInpatients == 0 {
		return k
	}

	var staySum float64
	for _, p := range inpatients {
		staySum += p.DaysCared

		if p.DeathDate != nil {
			d := p.DeathDate.Truncate(24 * time.Hour)
			if !d.Before(from) && !d.After(to) {
				k.Deaths++
			}
		}
		if readmissionTypes[p.AdmissionType] {
			k.Readmissions++
		}
		if p.DaysCared > morbidityThresholdDays {
			k.MorbidityCount++
		}
	}

	n := float64(k.TotalInpatients)
	k.AvgLengthOfStay = staySum / n
	k.MortalityRate = float64(k.Deaths) / n * 100
	k.ReadmissionRate = float64(k.Readmissions) / n * 100
	k.MorbidityRate = float64(k.MorbidityCount) / n * 100
	return k
}
