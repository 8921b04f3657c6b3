package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/sssihms/dashboard-backend/internal/admin/models"
	"github.com/sssihms/dashboard-backend/internal/common/errs"
)

var (
	ErrInvalidCredentials = errors.New("invalid staff id or password")
	ErrLoginDisabled      = errors.New("login not activated")
	ErrStaffExists        = errors.New("staff id already exists")
)

// StaffService owns STAFFMASTER: login verification and the admin panel
// operations. Legacy rows store a lowercase SHA-256 hex digest in
// TXTPASSWD; accounts created or reset here store a bcrypt hash, and
// verification handles both.
type StaffService struct {
	DB      *sql.DB
	Timeout time.Duration
}

func NewStaffService(db *sql.DB, timeout time.Duration) *StaffService {
	return &StaffService{DB: db, Timeout: timeout}
}

func (s *StaffService) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func sha256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return strings.ToLower(hex.EncodeToString(sum[:]))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return stored == sha256Hex(password)
}

// Authenticate verifies credentials and the LOGINOK activation flag.
// A bad staff id and a bad password both come back as
// ErrInvalidCredentials.
func (s *StaffService) Authenticate(ctx context.Context, staffID, password string) (models.AuthenticatedStaff, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var (
		auth    models.AuthenticatedStaff
		name    sql.NullString
		stored  string
		loginOK string
		role    string
		hosp    sql.NullString
	)
	err := s.DB.QueryRowContext(ctx,
		"SELECT STAFFNAME, TXTPASSWD, LOGINOK, ACCESS_ROLE, HOSPITALID FROM STAFFMASTER WHERE STAFFID = ?",
		staffID).Scan(&name, &stored, &loginOK, &role, &hosp)
	if err == sql.ErrNoRows {
		return auth, ErrInvalidCredentials
	}
	if err != nil {
		log.Error().Err(err).Msg("staff lookup failed")
		return auth, errs.NewQueryError("staff lookup", err)
	}

	if !verifyPassword(stored, password) {
		return auth, ErrInvalidCredentials
	}
	if loginOK != "Y" {
		return auth, ErrLoginDisabled
	}

	auth = models.AuthenticatedStaff{
		StaffID:    staffID,
		StaffName:  name.String,
		HospitalID: hosp.String,
		Role:       "staff",
	}
	if role == "A" {
		auth.Role = "admin"
	}
	return auth, nil
}

// FetchRole re-reads ACCESS_ROLE from the database. Admin endpoints call
// this on every request so a demoted admin loses access immediately, not
// at token expiry.
func (s *StaffService) FetchRole(ctx context.Context, staffID string) (string, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var role string
	err := s.DB.QueryRowContext(ctx,
		"SELECT ACCESS_ROLE FROM STAFFMASTER WHERE STAFFID = ?", staffID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", &errs.NotFoundError{Kind: "staff", ID: staffID}
	}
	if err != nil {
		return "", errs.NewQueryError("fetch role", err)
	}
	return role, nil
}

// ListStaff returns the full roster ordered by staff id.
func (s *StaffService) ListStaff(ctx context.Context) ([]models.Staff, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx,
		`SELECT STAFFID, COALESCE(STAFFNAME, ''), COALESCE(DEPTNAME, ''), COALESCE(DESIGNATION, ''),
			COALESCE(HOSPITALID, ''), COALESCE(DEPTCODE, ''), COALESCE(ATHMAID, ''),
			COALESCE(LOGINOK, 'N'), COALESCE(ACCESS_ROLE, 'U')
		FROM STAFFMASTER ORDER BY STAFFID`)
	if err != nil {
		log.Error().Err(err).Msg("staff roster query failed")
		return nil, errs.NewQueryError("staff roster", err)
	}
	defer rows.Close()

	var out []models.Staff
	for rows.Next() {
		var st models.Staff
		if err := rows.Scan(&st.StaffID, &st.StaffName, &st.DeptName, &st.Designation,
			&st.HospitalID, &st.DeptCode, &st.AthmaID, &st.LoginOK, &st.AccessRole); err != nil {
			return nil, errs.NewQueryError("staff roster", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// AddStaff inserts a new account. New accounts default to LOGINOK='N'
// and ACCESS_ROLE='U' until an admin activates them.
func (s *StaffService) AddStaff(ctx context.Context, in models.NewStaffInput) error {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var exists int
	err := s.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM STAFFMASTER WHERE STAFFID = ?", in.StaffID).Scan(&exists)
	if err != nil {
		return errs.NewQueryError("add staff", err)
	}
	if exists > 0 {
		return ErrStaffExists
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return err
	}
	if in.LoginOK == "" {
		in.LoginOK = "N"
	}
	if in.AccessRole == "" {
		in.AccessRole = "U"
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO STAFFMASTER
			(STAFFID, STAFFNAME, DEPTNAME, DESIGNATION, HOSPITALID, DEPTCODE, ATHMAID, TXTPASSWD, LOGINOK, ACCESS_ROLE)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.StaffID, in.StaffName, in.DeptName, in.Designation, in.HospitalID,
		in.DeptCode, in.AthmaID, hash, in.LoginOK, in.AccessRole)
	if err != nil {
		log.Error().Err(err).Str("staff_id", in.StaffID).Msg("add staff failed")
		return errs.NewQueryError("add staff", err)
	}
	log.Info().Str("staff_id", in.StaffID).Str("role", in.AccessRole).Msg("staff account created")
	return nil
}

func (s *StaffService) updateOne(ctx context.Context, op, query string, args ...interface{}) error {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return errs.NewQueryError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.NewQueryError(op, err)
	}
	if n == 0 {
		return &errs.NotFoundError{Kind: "staff", ID: args[len(args)-1].(string)}
	}
	return nil
}

// SetLoginEnabled flips LOGINOK between Y and N.
func (s *StaffService) SetLoginEnabled(ctx context.Context, staffID string, enabled bool) error {
	val := "N"
	if enabled {
		val = "Y"
	}
	if err := s.updateOne(ctx, "set login flag",
		"UPDATE STAFFMASTER SET LOGINOK = ? WHERE STAFFID = ?", val, staffID); err != nil {
		return err
	}
	log.Info().Str("staff_id", staffID).Str("login_ok", val).Msg("login flag updated")
	return nil
}

// SetAccessRole sets ACCESS_ROLE to A or U.
func (s *StaffService) SetAccessRole(ctx context.Context, staffID, role string) error {
	if role != "A" && role != "U" {
		return errors.New("role must be A or U")
	}
	if err := s.updateOne(ctx, "set access role",
		"UPDATE STAFFMASTER SET ACCESS_ROLE = ? WHERE STAFFID = ?", role, staffID); err != nil {
		return err
	}
	log.Info().Str("staff_id", staffID).Str("role", role).Msg("access role updated")
	return nil
}

// ResetPassword sets a new password for an account without checking the
// old one. Admin only.
func (s *StaffService) ResetPassword(ctx context.Context, staffID, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.updateOne(ctx, "reset password",
		"UPDATE STAFFMASTER SET TXTPASSWD = ? WHERE STAFFID = ?", hash, staffID); err != nil {
		return err
	}
	log.Info().Str("staff_id", staffID).Msg("password reset")
	return nil
}

// ChangePassword verifies the current password before storing a new one.
func (s *StaffService) ChangePassword(ctx context.Context, staffID, oldPassword, newPassword string) error {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var stored string
	err := s.DB.QueryRowContext(ctx,
		"SELECT TXTPASSWD FROM STAFFMASTER WHERE STAFFID = ?", staffID).Scan(&stored)
	if err == sql.ErrNoRows {
		return &errs.NotFoundError{Kind: "staff", ID: staffID}
	}
	if err != nil {
		return errs.NewQueryError("change password", err)
	}
	if !verifyPassword(stored, oldPassword) {
		return ErrInvalidCredentials
	}
	return s.ResetPassword(ctx, staffID, newPassword)
}

// DeleteStaff removes an account permanently.
func (s *StaffService) DeleteStaff(ctx context.Context, staffID string) error {
	if err := s.updateOne(ctx, "delete staff",
		"DELETE FROM STAFFMASTER WHERE STAFFID = ?", staffID); err != nil {
		return err
	}
	log.Info().Str("staff_id", staffID).Msg("staff account deleted")
	return nil
}
