package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sssihms/dashboard-backend/internal/common/errs"
	"github.com/sssihms/dashboard-backend/internal/reporting/models"
)

// DrillDownService runs the three-level operational-efficiency hierarchy
// over STATS_DETAILS and keeps one DrillDownState per logged-in session.
// State lives for the session and is only mutated by explicit navigation.
type DrillDownService struct {
	DB      *sql.DB
	Timeout time.Duration

	mu     sync.Mutex
	states map[string]*models.DrillDownState
}

func NewDrillDownService(db *sql.DB, timeout time.Duration) *DrillDownService {
	return &DrillDownService{
		DB:      db,
		Timeout: timeout,
		states:  make(map[string]*models.DrillDownState),
	}
}

// State returns the session's navigator state, creating it at the category
// level on first use.
func (s *DrillDownService) State(sessionID string) *models.DrillDownState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[sessionID]
	if !ok {
		st = models.NewDrillDownState()
		s.states[sessionID] = st
	}
	return st
}

// Enter advances the session one level down with the selected key.
func (s *DrillDownService) Enter(sessionID, key string) *models.DrillDownState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[sessionID]
	if !ok {
		st = models.NewDrillDownState()
		s.states[sessionID] = st
	}
	st.Enter(key)
	return st
}

// Back moves the session one level up; no-op at the category level.
func (s *DrillDownService) Back(sessionID string) *models.DrillDownState {
	st := s.State(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Back()
	return st
}

// Home resets the session to the category level.
func (s *DrillDownService) Home(sessionID string) *models.DrillDownState {
	st := s.State(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Home()
	return st
}

func (s *DrillDownService) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// orderingDeptCondition matches ORDERING_DEPT against the selected
// department's display name or its resolved code. When a department name
// and another department's code collide the predicate matches both; that
// ambiguity is a known limitation of the source data.
func (s *DrillDownService) orderingDeptCondition(ctx context.Context, orderingDept string) (string, []interface{}) {
	if orderingDept == "" {
		return "", nil
	}
	var code string
	err := s.DB.QueryRowContext(ctx,
		"SELECT DEPTCODE FROM DEPARTMENT WHERE DEPTNAME = ? LIMIT 1", orderingDept).Scan(&code)
	if err == nil && code != "" {
		return "(SD.ORDERING_DEPT = ? OR SD.ORDERING_DEPT = ?)", []interface{}{orderingDept, code}
	}
	return "SD.ORDERING_DEPT = ?", []interface{}{orderingDept}
}

func (s *DrillDownService) baseConditions(ctx context.Context, f models.FilterContext) ([]string, []interface{}) {
	conditions := []string{"SD.THEDATE BETWEEN ? AND ?"}
	params := []interface{}{f.FromDate(), f.ToDate()}
	if f.Hospital != "" {
		conditions = append(conditions, "SD.HOSPITALID = ?")
		params = append(params, f.Hospital)
	}
	if cond, p := s.orderingDeptCondition(ctx, f.OrderingDept); cond != "" {
		conditions = append(conditions, cond)
		params = append(params, p...)
	}
	return conditions, params
}

// CurrentRows recomputes the aggregate rows for the session's active level
// and keys. Rows come back ordered by total descending, key ascending.
func (s *DrillDownService) CurrentRows(ctx context.Context, sessionID string, f models.FilterContext) ([]models.AggregateRow, error) {
	st := s.State(sessionID)

	s.mu.Lock()
	level, category, subcatg := st.Level, st.Category, st.Subcategory
	s.mu.Unlock()

	switch level {
	case models.LevelSubcategory:
		return s.levelRows(ctx, f, "SUBCATG", map[string]string{"CATEGORY": category})
	case models.LevelSubSubcategory:
		return s.levelRows(ctx, f, "SUBCATGL2", map[string]string{"CATEGORY": category, "SUBCATG": subcatg})
	default:
		return s.CategoryRows(ctx, f)
	}
}

// CategoryRows is the level-1 aggregate: one row per category, optionally
// restricted to the filter's category selector.
func (s *DrillDownService) CategoryRows(ctx context.Context, f models.FilterContext) ([]models.AggregateRow, error) {
	fixed := map[string]string{}
	if f.Category != "" {
		fixed["CATEGORY"] = f.Category
	}
	return s.levelRows(ctx, f, "CATEGORY", fixed)
}

// levelRows runs one GROUP BY over STATS_DETAILS for the requested key
// column with the parent keys pinned.
func (s *DrillDownService) levelRows(ctx context.Context, f models.FilterContext, keyColumn string, fixedKeys map[string]string) ([]models.AggregateRow, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	conditions, params := s.baseConditions(ctx, f)
	conditions = append(conditions, "SD."+keyColumn+" IS NOT NULL")
	for _, col := range []string{"CATEGORY", "SUBCATG"} {
		if v, ok := fixedKeys[col]; ok {
			conditions = append(conditions, "SD."+col+" = ?")
			params = append(params, v)
		}
	}

	q := "SELECT SD." + keyColumn + ", SUM(COALESCE(SD.THEVALUE, 0)) AS TOTAL_CNT, MAX(COALESCE(SD.THEVALUE, 0)) AS MAX_ENTRY " +
		"FROM STATS_DETAILS SD WHERE " + strings.Join(conditions, " AND ") +
		" GROUP BY SD." + keyColumn +
		" ORDER BY TOTAL_CNT DESC, SD." + keyColumn + " ASC"

	rows, err := s.DB.QueryContext(ctx, q, params...)
	if err != nil {
		log.Error().Err(err).Str("level", keyColumn).Msg("drill-down query failed")
		return nil, errs.NewQueryError("drill-down "+keyColumn, err)
	}
	defer rows.Close()

	var out []models.AggregateRow
	for rows.Next() {
		var r models.AggregateRow
		if err := rows.Scan(&r.Key, &r.Total, &r.MaxEntry); err != nil {
			return nil, errs.NewQueryError("drill-down "+keyColumn, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewQueryError("drill-down "+keyColumn, err)
	}

	FillAverages(out, f.Days())
	SortRows(out)
	return out, nil
}
