package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sssihms/dashboard-backend/internal/common/errs"
	"github.com/sssihms/dashboard-backend/internal/metrics/models"
	"github.com/sssihms/dashboard-backend/internal/metrics/store"
	rmodels "github.com/sssihms/dashboard-backend/internal/reporting/models"
)

const (
	defaultIcon  = "📊"
	defaultColor = "kpi-grad-1"
)

// MetricService parses, stores and executes admin-defined custom metrics.
type MetricService struct {
	DB      *sql.DB
	Store   *store.Store
	Timeout time.Duration
}

func NewMetricService(db *sql.DB, st *store.Store, timeout time.Duration) *MetricService {
	return &MetricService{DB: db, Store: st, Timeout: timeout}
}

// MetricID derives the storage key from a metric name.
func MetricID(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// ParseDefinition reads the line-oriented metric definition format:
// header lines up to QUERY:, then every remaining line is the query body.
func ParseDefinition(content string) (models.CustomMetricDefinition, error) {
	def := models.CustomMetricDefinition{
		Icon:       defaultIcon,
		ColorTag:   defaultColor,
		ResultKind: models.KindScalar,
		CreatedAt:  time.Now(),
	}

	queryStarted := false
	var queryLines []string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case queryStarted:
			queryLines = append(queryLines, line)
		case strings.HasPrefix(line, "METRIC_NAME:"):
			def.Name = strings.TrimSpace(strings.TrimPrefix(line, "METRIC_NAME:"))
		case strings.HasPrefix(line, "METRIC_ICON:"):
			def.Icon = strings.TrimSpace(strings.TrimPrefix(line, "METRIC_ICON:"))
		case strings.HasPrefix(line, "METRIC_COLOR:"):
			def.ColorTag = strings.TrimSpace(strings.TrimPrefix(line, "METRIC_COLOR:"))
		case strings.HasPrefix(line, "METRIC_TYPE:"):
			def.ResultKind = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "METRIC_TYPE:")))
		case strings.HasPrefix(line, "DESCRIPTION:"):
			def.Description = strings.TrimSpace(strings.TrimPrefix(line, "DESCRIPTION:"))
		case strings.HasPrefix(line, "QUERY:"):
			queryStarted = true
		}
	}
	def.QueryTemplate = strings.TrimSpace(strings.Join(queryLines, "\n"))

	if def.Name == "" {
		return def, &errs.MalformedDefinitionError{Field: "METRIC_NAME"}
	}
	if def.QueryTemplate == "" {
		return def, &errs.MalformedDefinitionError{Field: "QUERY"}
	}
	def.ID = MetricID(def.Name)
	return def, nil
}

// Save stores a definition. Re-saving the same name overwrites; a
// different name that collapses to an existing id is rejected so one
// metric can never silently shadow another.
func (s *MetricService) Save(def models.CustomMetricDefinition) (string, error) {
	def.ID = MetricID(def.Name)

	var existing models.CustomMetricDefinition
	found, err := s.Store.Get(def.ID, &existing)
	if err != nil {
		return "", err
	}
	if found && existing.Name != def.Name {
		return "", fmt.Errorf("metric id %q already taken by %q", def.ID, existing.Name)
	}

	if err := s.Store.Put(def.ID, def); err != nil {
		return "", err
	}
	log.Info().Str("metric_id", def.ID).Str("name", def.Name).Msg("custom metric saved")
	return def.ID, nil
}

func (s *MetricService) List() ([]models.CustomMetricDefinition, error) {
	var out []models.CustomMetricDefinition
	err := s.Store.List(func(id string, raw json.RawMessage) error {
		var def models.CustomMetricDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return err
		}
		def.ID = id
		out = append(out, def)
		return nil
	})
	return out, err
}

func (s *MetricService) Get(id string) (models.CustomMetricDefinition, error) {
	var def models.CustomMetricDefinition
	found, err := s.Store.Get(id, &def)
	if err != nil {
		return def, err
	}
	if !found {
		return def, &errs.NotFoundError{Kind: "metric", ID: id}
	}
	def.ID = id
	return def, nil
}

func (s *MetricService) Delete(id string) error {
	found, err := s.Store.Delete(id)
	if err != nil {
		return err
	}
	if !found {
		return &errs.NotFoundError{Kind: "metric", ID: id}
	}
	log.Info().Str("metric_id", id).Msg("custom metric deleted")
	return nil
}

// substitute fills the template placeholders. Values land inside string
// literals the admin wrote, so single quotes are doubled; templates are
// admin-only input and are otherwise run verbatim.
func substitute(template string, f rmodels.FilterContext) string {
	quote := func(v string) string { return strings.ReplaceAll(v, "'", "''") }
	r := strings.NewReplacer(
		"{from_date}", f.FromDate(),
		"{to_date}", f.ToDate(),
		"{hospital}", quote(f.Hospital),
		"{dept}", quote(f.Department),
	)
	return r.Replace(template)
}

// Execute runs a saved metric against the live database and classifies the
// outcome: more than one row or column is a table, otherwise a scalar,
// preferring a column named VALUE.
func (s *MetricService) Execute(ctx context.Context, id string, f rmodels.FilterContext) (models.MetricResult, error) {
	def, err := s.Get(id)
	if err != nil {
		return models.MetricResult{}, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	rows, err := s.DB.QueryContext(ctx, substitute(def.QueryTemplate, f))
	if err != nil {
		log.Error().Err(err).Str("metric_id", id).Msg("custom metric query failed")
		return models.MetricResult{}, &errs.MetricExecutionError{MetricID: id, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return models.MetricResult{}, &errs.MetricExecutionError{MetricID: id, Err: err}
	}

	var data [][]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return models.MetricResult{}, &errs.MetricExecutionError{MetricID: id, Err: err}
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		data = append(data, vals)
	}
	if err := rows.Err(); err != nil {
		return models.MetricResult{}, &errs.MetricExecutionError{MetricID: id, Err: err}
	}

	if len(data) > 1 || len(cols) > 1 {
		return models.MetricResult{
			Kind:  models.KindTable,
			Table: &models.TableResult{Columns: cols, Rows: data},
		}, nil
	}

	scalar := &models.ScalarResult{}
	if len(data) == 1 {
		idx := 0
		for i, c := range cols {
			if strings.EqualFold(c, "VALUE") {
				idx = i
				break
			}
		}
		scalar.Value = data[0][idx]
	}
	return models.MetricResult{Kind: models.KindScalar, Scalar: scalar}, nil
}
