package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"hackportal/internal/registration/handler/mocks"
	"hackportal/internal/registration/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/platform/middleware/auth"
	"hackportal/pkg/testutil"
)

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(svc, logger, auth.RequireAuth(logger)).Register(r)
	return r, svc
}

func TestRegistrationRoutes(t *testing.T) {
	member := testutil.Member("m@final.co.il")
	projectID := id.NewProjectID()
	path := "/projects/" + projectID.String() + "/registration"

	tests := []struct {
		name       string
		method     string
		expect     func(svc *mocks.MockService)
		wantStatus int
		wantCode   string
		wantCount  int
	}{
		{
			name:   "register",
			method: http.MethodPost,
			expect: func(svc *mocks.MockService) {
				svc.EXPECT().Register(gomock.Any(), member, projectID).
					Return(&models.Status{ProjectID: projectID, RegistrationCount: 1, IsRegistered: true}, nil)
			},
			wantStatus: http.StatusCreated,
			wantCount:  1,
		},
		{
			name:   "register twice",
			method: http.MethodPost,
			expect: func(svc *mocks.MockService) {
				svc.EXPECT().Register(gomock.Any(), member, projectID).
					Return(nil, dErrors.New(dErrors.CodeAlreadyRegistered, "already registered"))
			},
			wantStatus: http.StatusConflict,
			wantCode:   "already_registered",
		},
		{
			name:   "creator registers own project",
			method: http.MethodPost,
			expect: func(svc *mocks.MockService) {
				svc.EXPECT().Register(gomock.Any(), member, projectID).
					Return(nil, dErrors.New(dErrors.CodeOwnerCannotRegister, "creators cannot register"))
			},
			wantStatus: http.StatusForbidden,
			wantCode:   "owner_cannot_register",
		},
		{
			name:   "team is full",
			method: http.MethodPost,
			expect: func(svc *mocks.MockService) {
				svc.EXPECT().Register(gomock.Any(), member, projectID).
					Return(nil, dErrors.New(dErrors.CodeCapacityReached, "team is full"))
			},
			wantStatus: http.StatusConflict,
			wantCode:   "capacity_reached",
		},
		{
			name:   "unregister",
			method: http.MethodDelete,
			expect: func(svc *mocks.MockService) {
				svc.EXPECT().Unregister(gomock.Any(), member, projectID).
					Return(&models.Status{ProjectID: projectID}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "status of missing project",
			method: http.MethodGet,
			expect: func(svc *mocks.MockService) {
				svc.EXPECT().Status(gomock.Any(), member, projectID).
					Return(nil, dErrors.New(dErrors.CodeNotFound, "project not found"))
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:   "store failure",
			method: http.MethodDelete,
			expect: func(svc *mocks.MockService) {
				svc.EXPECT().Unregister(gomock.Any(), member, projectID).
					Return(nil, dErrors.Wrap(errors.New("conn refused"), dErrors.CodeStoreUnavailable, "failed"))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "store_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newTestRouter(t)
			tt.expect(svc)

			req := testutil.WithIdentity(testutil.NewRequest(t, tt.method, path), member)
			rr := testutil.DoRequest(router, req)

			testutil.AssertStatus(t, rr, tt.wantStatus)
			if tt.wantCode != "" {
				testutil.AssertErrorCode(t, rr, tt.wantCode)
				return
			}
			status := testutil.UnmarshalResponse[models.Status](t, rr)
			assert.Equal(t, projectID, status.ProjectID)
			assert.Equal(t, tt.wantCount, status.RegistrationCount)
		})
	}
}

func TestRegistrationRequiresSignIn(t *testing.T) {
	router, _ := newTestRouter(t)
	path := "/projects/" + id.NewProjectID().String() + "/registration"

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, method, path))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthenticated")
	}
}

func TestRegistrationBadProjectID(t *testing.T) {
	router, _ := newTestRouter(t)
	req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodPost, "/projects/123/registration"), testutil.Member("m@final.co.il"))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}
