package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sssihms/dashboard-backend/internal/common/errs"
	"github.com/sssihms/dashboard-backend/internal/reporting/models"
)

const mrnSearchLimit = 100

// NotesService serves the clinical reports viewer over NOTESDATA.
type NotesService struct {
	DB      *sql.DB
	Timeout time.Duration
}

func NewNotesService(db *sql.DB, timeout time.Duration) *NotesService {
	return &NotesService{DB: db, Timeout: timeout}
}

func (s *NotesService) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// SearchMRNs returns up to 100 distinct MRNs containing the given
// fragment. A blank fragment yields no rows instead of a full table scan.
func (s *NotesService) SearchMRNs(ctx context.Context, fragment string) ([]string, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, nil
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx,
		"SELECT DISTINCT MRN FROM NOTESDATA WHERE MRN LIKE ? ORDER BY MRN LIMIT ?",
		"%"+fragment+"%", mrnSearchLimit)
	if err != nil {
		log.Error().Err(err).Msg("mrn search failed")
		return nil, errs.NewQueryError("mrn search", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var mrn string
		if err := rows.Scan(&mrn); err != nil {
			return nil, errs.NewQueryError("mrn search", err)
		}
		out = append(out, mrn)
	}
	return out, rows.Err()
}

// ReportsForMRN lists the note headers and bodies for one patient, newest
// visit first with undated notes last.
func (s *NotesService) ReportsForMRN(ctx context.Context, mrn string) ([]models.NoteSummary, error) {
	if mrn == "" {
		return nil, nil
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	q := `SELECT ACCESSION_NUM, COALESCE(NOTENAME, ''), COALESCE(VISITTYPE, ''),
		VISITDATE, COALESCE(DONEBY, ''), COALESCE(DEPTNAME, ''), COALESCE(NOTEDATA, '')
	FROM NOTESDATA
	WHERE MRN = ?
	ORDER BY COALESCE(VISITDATE, '1900-01-01') DESC`

	rows, err := s.DB.QueryContext(ctx, q, mrn)
	if err != nil {
		log.Error().Err(err).Str("mrn", mrn).Msg("reports fetch failed")
		return nil, errs.NewQueryError("reports for mrn", err)
	}
	defer rows.Close()

	var out []models.NoteSummary
	for rows.Next() {
		var n models.NoteSummary
		var visit sql.NullTime
		if err := rows.Scan(&n.AccessionNum, &n.NoteName, &n.VisitType, &visit,
			&n.DoneBy, &n.DeptName, &n.NoteData); err != nil {
			return nil, errs.NewQueryError("reports for mrn", err)
		}
		if visit.Valid {
			t := visit.Time
			n.VisitDate = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
