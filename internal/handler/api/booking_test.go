//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"rently-backend/internal/domain/booking"
	"rently-backend/internal/handler/api"
	resdto "rently-backend/internal/handler/dto/response"
	"rently-backend/internal/pkg/errs"
	"rently-backend/internal/usecase/commands"
	"rently-backend/internal/usecase/queries"
	"rently-backend/tests/common/builder"
	"rently-backend/tests/common/httptest"
	"rently-backend/tests/common/testutil"
	commandsmock "rently-backend/tests/mock/commands"
	queriesmock "rently-backend/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
	actorID      uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries)
	s.actorID = uuid.New()

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		c.Set("actor_id", s.actorID)
		c.Set("actor_role", "member")
		c.Next()
	}

	bookings := s.router.Group("/bookings", authMiddleware)
	bookings.POST("", s.handler.CreateBooking)
	bookings.GET("", s.handler.ListBookings)
	bookings.GET("/:id", s.handler.GetBooking)
	bookings.GET("/:id/history", s.handler.GetBookingHistory)
	bookings.POST("/:id/accept", s.handler.AcceptBooking)
	bookings.POST("/:id/confirm", s.handler.ConfirmBooking)
	bookings.POST("/:id/extend", s.handler.ExtendBooking)
	bookings.POST("/:id/logistics", s.handler.AssignLogistics)
	bookings.POST("/:id/return", s.handler.ReturnItem)
	bookings.POST("/:id/complete", s.handler.CompleteBooking)
	bookings.POST("/:id/cancel", s.handler.CancelBooking)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) TestCreateBooking() {
	url := "/bookings"
	bld := builder.NewBookingBuilder()
	view := bld.BuildView()
	reqBody := bld.BuildCreateRequestDTO()
	key := uuid.New().String()

	s.Run("creates and returns 201", func() {
		s.mockCommands.EXPECT().
			Request(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&commands.RequestBookingResult{BookingID: view.ID}, nil)
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, view.ID).
			Return(view, nil)

		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "token", map[string]string{"Idempotency-Key": key})
		s.Equal(http.StatusCreated, w.Code)
		s.Contains(w.Body.String(), view.ID.String())
	})

	s.Run("replayed request returns 200", func() {
		s.mockCommands.EXPECT().
			Request(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&commands.RequestBookingResult{BookingID: view.ID, IsReplayed: true}, nil)
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, view.ID).
			Return(view, nil)

		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "token", map[string]string{"Idempotency-Key": key})
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("missing idempotency key is rejected", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("malformed idempotency key is rejected", func() {
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "token", map[string]string{"Idempotency-Key": "not-a-uuid"})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("validation boundaries", func() {
		cases := []struct {
			name       string
			mutate     func(m map[string]any)
			expectCode int
		}{
			{name: "missing item_id", mutate: testutil.Field("item_id", nil), expectCode: http.StatusBadRequest},
			{name: "missing start_date", mutate: testutil.Field("start_date", nil), expectCode: http.StatusBadRequest},
			{name: "bad date format", mutate: testutil.Field("start_date", "03/10/2026"), expectCode: http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, body, "token", map[string]string{"Idempotency-Key": key})
				s.Equal(tc.expectCode, w.Code)
			})
		}
	})

	s.Run("range conflict returns 409", func() {
		s.mockCommands.EXPECT().
			Request(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrBookingConflict)

		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "token", map[string]string{"Idempotency-Key": key})
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("unknown item returns 404", func() {
		s.mockCommands.EXPECT().
			Request(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrItemNotFound)

		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "token", map[string]string{"Idempotency-Key": key})
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("unauthenticated returns 401", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *BookingHandlerTestSuite) TestGetBooking() {
	view := builder.NewBookingBuilder().BuildView()
	url := "/bookings/" + view.ID.String()

	s.Run("returns the view", func() {
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, view.ID).
			Return(view, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), view.Status)
	})

	s.Run("stranger gets 403", func() {
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, view.ID).
			Return(nil, errs.ErrForbiddenActor)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("unknown id gets 404", func() {
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, view.ID).
			Return(nil, errs.ErrBookingNotFound)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("malformed id gets 400", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/not-a-uuid", nil, "token")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("history lists the raw entries", func() {
		withHistory := builder.NewBookingBuilder().BuildView()
		withHistory.History = []queries.HistoryEntry{
			{NewStatus: "pending", ActorID: s.actorID, ActorParty: "renter"},
			{PreviousStatus: "pending", NewStatus: "accepted_by_owner", ActorID: uuid.New(), ActorParty: "owner", Note: "see you Friday"},
		}

		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, withHistory.ID).
			Return(withHistory, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+withHistory.ID.String()+"/history", nil, "token")

		var entries []resdto.HistoryEntry
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &entries)
		s.Require().Len(entries, 2)
		s.Equal("accepted_by_owner", entries[1].NewStatus)
		s.Equal("see you Friday", entries[1].Note)
	})
}

func (s *BookingHandlerTestSuite) TestListBookings() {
	items := []*queries.BookingListItem{
		{ID: uuid.New(), ItemID: uuid.New(), Status: "pending", TotalPricePaise: 40000},
		{ID: uuid.New(), ItemID: uuid.New(), Status: "confirmed", TotalPricePaise: 51200},
	}

	s.Run("lists the actor's bookings", func() {
		s.mockQueries.EXPECT().
			ListByActor(gomock.Any(), s.actorID, 50).
			Return(items, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings", nil, "token")
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), items[0].ID.String())
		s.Contains(w.Body.String(), items[1].ID.String())
	})

	s.Run("empty list is an empty array", func() {
		s.mockQueries.EXPECT().
			ListByActor(gomock.Any(), s.actorID, 50).
			Return([]*queries.BookingListItem{}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings", nil, "token")
		s.Equal(http.StatusOK, w.Code)
		s.JSONEq("[]", w.Body.String())
	})
}

func (s *BookingHandlerTestSuite) TestTransitions() {
	bld := builder.NewBookingBuilder().WithStatus(booking.StatusAcceptedByOwner)
	view := bld.BuildView()
	id := view.ID

	s.Run("accept succeeds with a note", func() {
		s.mockCommands.EXPECT().
			Accept(gomock.Any(), gomock.Any(), id, "pickup after 6pm").
			Return(nil)
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, id).
			Return(view, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/accept", map[string]string{"note": "pickup after 6pm"}, "token")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("accept without body is allowed", func() {
		s.mockCommands.EXPECT().
			Accept(gomock.Any(), gomock.Any(), id, "").
			Return(nil)
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, id).
			Return(view, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/accept", nil, "token")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("invalid transition returns 409", func() {
		s.mockCommands.EXPECT().
			Confirm(gomock.Any(), gomock.Any(), id).
			Return(errs.ErrInvalidTransition)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/confirm", nil, "token")
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("wrong party returns 403", func() {
		s.mockCommands.EXPECT().
			Complete(gomock.Any(), gomock.Any(), id).
			Return(errs.ErrForbiddenActor)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/complete", nil, "token")
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("extend validates days", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/extend", map[string]int{"days": 0}, "token")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("extend passes days through", func() {
		s.mockCommands.EXPECT().
			Extend(gomock.Any(), gomock.Any(), id, 2).
			Return(nil)
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, id).
			Return(view, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/extend", map[string]int{"days": 2}, "token")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("logistics requires a provider", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/logistics", map[string]string{"details": "AWB 12345"}, "token")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("cancel with a note", func() {
		s.mockCommands.EXPECT().
			Cancel(gomock.Any(), gomock.Any(), id, "plans changed").
			Return(nil)
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.actorID, id).
			Return(view, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/cancel", map[string]string{"note": "plans changed"}, "token")
		s.Equal(http.StatusOK, w.Code)
	})
}
