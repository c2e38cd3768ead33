package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/database/postgres"
	pkgerrors "github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

var screeningCols = []string{"id", "query", "mode", "result", "model_version", "created_at"}

type ScreeningRepoTestSuite struct {
	suite.Suite
	db     *sql.DB
	mock   sqlmock.Sqlmock
	repo   *ScreeningRepository
	ctx    context.Context
	result *risk.AnalysisResult
}

func (s *ScreeningRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)
	s.repo = NewScreeningRepository(postgres.NewConnectionWithDB(s.db, nil), nil)
	s.ctx = context.Background()
	s.result = risk.NewFoundResult("Ivan Petrov", []risk.EvidenceItem{
		{Headline: "Petrov charged", PredictedRisk: risk.TypologyCorruption, Confidence: 0.9},
	})
}

func (s *ScreeningRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *ScreeningRepoTestSuite) TestSave_AssignsID() {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.mock.ExpectQuery(`INSERT INTO screenings`).
		WithArgs(sqlmock.AnyArg(), "petrov", "local", "Ivan Petrov", "found", s.result.RiskScore, sqlmock.AnyArg(), "abc123").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	rec := &risk.ScreeningRecord{Query: "petrov", Mode: "local", Result: s.result, ModelVersion: "abc123"}
	s.Require().NoError(s.repo.Save(s.ctx, rec))

	_, err := uuid.Parse(rec.ID)
	s.NoError(err)
	s.Equal(created, rec.CreatedAt)
}

func (s *ScreeningRepoTestSuite) TestSave_Rejects() {
	s.True(pkgerrors.IsValidation(s.repo.Save(s.ctx, nil)))
	s.True(pkgerrors.IsValidation(s.repo.Save(s.ctx, &risk.ScreeningRecord{Query: "x"})))
	s.True(pkgerrors.IsValidation(s.repo.Save(s.ctx, &risk.ScreeningRecord{ID: "not-a-uuid", Result: s.result})))
}

func (s *ScreeningRepoTestSuite) TestSave_DatabaseError() {
	s.mock.ExpectQuery(`INSERT INTO screenings`).WillReturnError(errors.New("disk full"))

	err := s.repo.Save(s.ctx, &risk.ScreeningRecord{Query: "q", Mode: "local", Result: s.result})
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

func (s *ScreeningRepoTestSuite) TestFindByID() {
	id := uuid.NewString()
	payload, err := json.Marshal(s.result)
	s.Require().NoError(err)
	s.mock.ExpectQuery(`FROM screenings WHERE id = \$1`).WithArgs(id).
		WillReturnRows(sqlmock.NewRows(screeningCols).AddRow(id, "petrov", "local", payload, "v1", time.Now()))

	rec, err := s.repo.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(id, rec.ID)
	s.Equal(s.result, rec.Result)
	s.Equal("v1", rec.ModelVersion)
}

func (s *ScreeningRepoTestSuite) TestFindByID_NotFound() {
	id := uuid.NewString()
	s.mock.ExpectQuery(`FROM screenings WHERE id = \$1`).WithArgs(id).
		WillReturnRows(sqlmock.NewRows(screeningCols))

	_, err := s.repo.FindByID(s.ctx, id)
	s.True(pkgerrors.IsNotFound(err))

	_, err = s.repo.FindByID(s.ctx, "garbage")
	s.True(pkgerrors.IsNotFound(err))
}

func (s *ScreeningRepoTestSuite) TestListByEntity() {
	payload, _ := json.Marshal(s.result)
	s.mock.ExpectQuery(`FROM screenings\s+WHERE entity = \$1\s+ORDER BY created_at DESC\s+LIMIT \$2`).
		WithArgs("Ivan Petrov", DefaultListLimit).
		WillReturnRows(sqlmock.NewRows(screeningCols).
			AddRow(uuid.NewString(), "petrov", "local", payload, "v2", time.Now()).
			AddRow(uuid.NewString(), "ivan petrov", "local", payload, "v1", time.Now().Add(-time.Hour)))

	recs, err := s.repo.ListByEntity(s.ctx, "Ivan Petrov", 0)
	s.Require().NoError(err)
	s.Len(recs, 2)
	s.Equal("v2", recs[0].ModelVersion)
}

func (s *ScreeningRepoTestSuite) TestListByEntity_Empty() {
	s.mock.ExpectQuery(`FROM screenings`).WithArgs("Nobody", 5).
		WillReturnRows(sqlmock.NewRows(screeningCols))

	recs, err := s.repo.ListByEntity(s.ctx, "Nobody", 5)
	s.NoError(err)
	s.NotNil(recs)
	s.Empty(recs)
}

func TestScreeningRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ScreeningRepoTestSuite))
}

//Personal.AI order the ending
