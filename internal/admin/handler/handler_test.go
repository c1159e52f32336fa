package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"hackportal/internal/admin/handler/mocks"
	"hackportal/internal/admin/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/middleware/admin"
	"hackportal/pkg/testutil"
)

type AdminHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	admin   *id.Identity
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger, admin.RequireAdmin(logger)).Register(s.router)
	s.admin = testutil.Admin("boss@final.co.il")
}

func (s *AdminHandlerSuite) TestAdminRoutesRequireAdmin() {
	member := testutil.Member("m@final.co.il")
	for _, path := range []string{"/admin/users", "/admin/analytics/registrations"} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthenticated")

		rr = testutil.DoRequest(s.router, testutil.WithIdentity(testutil.NewRequest(s.T(), http.MethodGet, path), member))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	}
}

func (s *AdminHandlerSuite) TestListUsers() {
	s.service.EXPECT().ListUsers(gomock.Any(), s.admin).Return([]*models.UserSummary{
		{ID: s.admin.UserID, Email: s.admin.Email, IsAdmin: true},
	}, nil)

	req := testutil.WithIdentity(testutil.NewRequest(s.T(), http.MethodGet, "/admin/users"), s.admin)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[UsersResponse](s.T(), rr)
	s.Equal(1, resp.Total)
	s.Equal(s.admin.UserID, resp.Users[0].ID)
}

func (s *AdminHandlerSuite) TestSetAdmin() {
	target := id.NewUserID()
	path := "/admin/users/" + target.String()

	s.Run("last admin is protected", func() {
		s.service.EXPECT().SetAdmin(gomock.Any(), s.admin, target, false).
			Return(nil, dErrors.New(dErrors.CodeLastAdminProtected, "cannot remove the last admin"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]bool{"isAdmin": false})
		rr := testutil.DoRequest(s.router, testutil.WithIdentity(req, s.admin))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "last_admin_protected")
	})

	s.Run("grant", func() {
		s.service.EXPECT().SetAdmin(gomock.Any(), s.admin, target, true).
			Return(&models.UserSummary{ID: target, Email: "t@final.co.il", IsAdmin: true}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]bool{"isAdmin": true})
		rr := testutil.DoRequest(s.router, testutil.WithIdentity(req, s.admin))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "isAdmin", true)
	})

	s.Run("missing flag", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, path, map[string]any{})
		rr := testutil.DoRequest(s.router, testutil.WithIdentity(req, s.admin))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *AdminHandlerSuite) TestAnalytics() {
	s.service.EXPECT().RegistrationAnalytics(gomock.Any(), s.admin).
		Return(&models.RegistrationAnalytics{TotalProjects: 2, TotalRegistrations: 5}, nil)

	req := testutil.WithIdentity(testutil.NewRequest(s.T(), http.MethodGet, "/admin/analytics/registrations"), s.admin)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[models.RegistrationAnalytics](s.T(), rr)
	s.Equal(5, resp.TotalRegistrations)
}

func (s *AdminHandlerSuite) TestSetupAdmin() {
	s.Run("bad key", func() {
		s.service.EXPECT().SetupAdmin(gomock.Any(), "first@final.co.il", "wrong").
			Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid or missing setup key"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/setup/admin", SetupAdminRequest{Email: "first@final.co.il", Key: "wrong"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthenticated")
	})

	s.Run("promoted", func() {
		s.service.EXPECT().SetupAdmin(gomock.Any(), "first@final.co.il", "key").
			Return(&models.UserSummary{ID: id.NewUserID(), Email: "first@final.co.il", IsAdmin: true}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/setup/admin", SetupAdminRequest{Email: "first@final.co.il", Key: "key"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
	})
}
