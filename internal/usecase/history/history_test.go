package usecase_history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/restaurantpicker/internal/model"
	history_mocks "github.com/humanbelnik/restaurantpicker/mocks/history"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UsecaseHistoryUnitSuite struct {
	suite.Suite

	usecase *Usecase
	repo    *history_mocks.SelectionRepository

	ctx context.Context
}

func (s *UsecaseHistoryUnitSuite) BeforeEach(t provider.T) {
	s.repo = history_mocks.NewSelectionRepository(t)
	s.usecase = New(s.repo)
	s.ctx = context.Background()
}

func validOutcome() model.Outcome {
	return model.Outcome{
		RoomID:       uuid.New(),
		RoomCode:     "ABCD",
		Mode:         model.GameModeWheel,
		Winner:       model.Suggestion{Name: "Taco Place", Submitter: "conn-1"},
		Participants: 4,
		DecidedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *UsecaseHistoryUnitSuite) TestRecord(t provider.T) {
	t.Run("Should store the winner as a history row", func(t provider.T) {
		outcome := validOutcome()

		s.repo.On("Insert", s.ctx, mock.MatchedBy(func(rec model.SelectionRecord) bool {
			return rec.ID != uuid.Nil &&
				rec.RoomCode == "ABCD" &&
				rec.Restaurant == "Taco Place" &&
				rec.Submitter == "conn-1" &&
				rec.Participants == 4 &&
				rec.DecidedAt.Equal(outcome.DecidedAt)
		})).Return(nil).Once()

		err := s.usecase.Record(s.ctx, outcome)

		assert.NoError(t, err)
		s.repo.AssertExpectations(t)
	})

	t.Run("Should wrap repository errors", func(t provider.T) {
		s.repo.On("Insert", s.ctx, mock.Anything).Return(errors.New("db down")).Once()

		err := s.usecase.Record(s.ctx, validOutcome())

		assert.ErrorIs(t, err, ErrInternal)
		s.repo.AssertExpectations(t)
	})
}

func (s *UsecaseHistoryUnitSuite) TestRecent(t provider.T) {
	t.Run("Should apply the default limit", func(t provider.T) {
		want := []model.SelectionRecord{{RoomCode: "ABCD", Restaurant: "Taco Place"}}
		s.repo.On("Recent", s.ctx, DefaultLimit).Return(want, nil).Once()

		got, err := s.usecase.Recent(s.ctx, 0)

		assert.NoError(t, err)
		assert.Equal(t, want, got)
		s.repo.AssertExpectations(t)
	})

	testCases := []struct {
		name  string
		limit int
	}{
		{name: "Should refuse a negative limit", limit: -1},
		{name: "Should refuse a limit above the maximum", limit: MaxLimit + 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			_, err := s.usecase.Recent(s.ctx, tc.limit)

			assert.ErrorIs(t, err, ErrInvalidLimit)
		})
	}

	t.Run("Should wrap repository errors", func(t provider.T) {
		s.repo.On("Recent", s.ctx, 5).Return(nil, errors.New("db down")).Once()

		_, err := s.usecase.Recent(s.ctx, 5)

		assert.ErrorIs(t, err, ErrInternal)
	})
}

func (s *UsecaseHistoryUnitSuite) TestDisabled(t provider.T) {
	u := New(nil)

	assert.False(t, u.Enabled())
	assert.NoError(t, u.Record(s.ctx, validOutcome()))
	_, err := u.Recent(s.ctx, 10)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestUsecaseHistoryUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseHistoryUnitSuite))
}
