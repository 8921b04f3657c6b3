package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockNotes(t *testing.T) (*NotesService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewNotesService(db, 5*time.Second), mock
}

func TestSearchMRNsBlankFragmentSkipsQuery(t *testing.T) {
	svc, mock := newMockNotes(t)

	mrns, err := svc.SearchMRNs(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, mrns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchMRNsBindsFragmentAndLimit(t *testing.T) {
	svc, mock := newMockNotes(t)

	mock.ExpectQuery("SELECT DISTINCT MRN FROM NOTESDATA").
		WithArgs("%1234%", mrnSearchLimit).
		WillReturnRows(sqlmock.NewRows([]string{"MRN"}).AddRow("W1234").AddRow("W12345"))

	mrns, err := svc.SearchMRNs(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, []string{"W1234", "W12345"}, mrns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportsForMRN(t *testing.T) {
	svc, mock := newMockNotes(t)

	visit := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM NOTESDATA").
		WithArgs("W1234").
		WillReturnRows(sqlmock.NewRows([]string{"ACCESSION_NUM", "NOTENAME", "VISITTYPE", "VISITDATE", "DONEBY", "DEPTNAME", "NOTEDATA"}).
			AddRow("ACC9", "Discharge Summary", "IP", visit, "Dr. Rao", "Cardiology", "<html>...</html>").
			AddRow("ACC2", "OPD Note", "OP", nil, "", "Cardiology", ""))

	notes, err := svc.ReportsForMRN(context.Background(), "W1234")
	require.NoError(t, err)
	require.Len(t, notes, 2)

	require.NotNil(t, notes[0].VisitDate)
	assert.Equal(t, visit, *notes[0].VisitDate)
	assert.Nil(t, notes[1].VisitDate)
	assert.Equal(t, "Discharge Summary", notes[0].NoteName)
}

func TestReportsForEmptyMRN(t *testing.T) {
	svc, _ := newMockNotes(t)
	notes, err := svc.ReportsForMRN(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, notes)
}
