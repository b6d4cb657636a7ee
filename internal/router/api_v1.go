// ===============================
// FILE: internal/router/api_v1.go
// Versioned API route registration
// ===============================

package router

import (
	"net/http"

	"campusboard/internal/handlers/api/v1/activities"
	"campusboard/internal/handlers/api/v1/admin"
	"campusboard/internal/handlers/api/v1/auth"
	"campusboard/internal/handlers/api/v1/users"
	"campusboard/internal/middleware"
	"campusboard/internal/response"
	"campusboard/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// registerAPIv1 wires every /api/v1 endpoint. Route groups are split by
// auth requirement: public routes carry optional auth (so owners see
// their own pending activities), everything else requires a session,
// and the admin group sits behind RequireAdmin.
func registerAPIv1(
	r *mux.Router,
	sc *services.ServiceCollection,
	authMiddleware *middleware.AuthMiddleware,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) {
	authController := auth.NewAuthController(sc, logger, responseBuilder)
	usersController := users.NewUsersController(sc, logger, responseBuilder)
	activitiesController := activities.NewActivitiesController(sc, logger, responseBuilder)
	adminController := admin.NewAdminController(sc, logger, responseBuilder)

	api := r.PathPrefix("/api/v1").Subrouter()

	// ===============================
	// PUBLIC ROUTES (optional auth)
	// ===============================

	public := api.NewRoute().Subrouter()
	public.Use(authMiddleware.OptionalAuth())

	public.HandleFunc("/auth/register", authController.Register).Methods(http.MethodPost)
	public.HandleFunc("/auth/login", authController.Login).Methods(http.MethodPost)

	public.HandleFunc("/activities", activitiesController.List).Methods(http.MethodGet)
	public.HandleFunc("/activities/{id}", activitiesController.Get).Methods(http.MethodGet)
	public.HandleFunc("/activities/{id}/comments", activitiesController.Comments).Methods(http.MethodGet)
	public.HandleFunc("/activities/{id}/participants", activitiesController.Participants).Methods(http.MethodGet)

	public.HandleFunc("/users/{id:[0-9]+}", usersController.GetUser).Methods(http.MethodGet)
	public.HandleFunc("/users/{id:[0-9]+}/activities", usersController.GetUserActivities).Methods(http.MethodGet)

	// ===============================
	// AUTHENTICATED ROUTES
	// ===============================

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware.RequireAuth())

	authed.HandleFunc("/auth/logout", authController.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/auth/me", authController.Me).Methods(http.MethodGet)
	authed.HandleFunc("/auth/change-password", authController.ChangePassword).Methods(http.MethodPost)

	authed.HandleFunc("/users/me", usersController.GetMe).Methods(http.MethodGet)
	authed.HandleFunc("/users/me", usersController.UpdateMe).Methods(http.MethodPatch)
	authed.HandleFunc("/users/me/joined", usersController.GetJoined).Methods(http.MethodGet)
	authed.HandleFunc("/users/me/verification", usersController.RequestVerification).Methods(http.MethodPost)
	authed.HandleFunc("/users/me/verification", usersController.GetVerificationStatus).Methods(http.MethodGet)

	authed.HandleFunc("/activities/{id}", activitiesController.Update).Methods(http.MethodPatch)
	authed.HandleFunc("/activities/{id}", activitiesController.Delete).Methods(http.MethodDelete)
	authed.HandleFunc("/activities/{id}/like", activitiesController.ToggleLike).Methods(http.MethodPost)
	authed.HandleFunc("/activities/{id}/join", activitiesController.Join).Methods(http.MethodPost)
	authed.HandleFunc("/activities/{id}/join", activitiesController.Leave).Methods(http.MethodDelete)
	authed.HandleFunc("/activities/{id}/comments", activitiesController.AddComment).Methods(http.MethodPost)
	authed.HandleFunc("/activities/{id}/report", activitiesController.Report).Methods(http.MethodPost)
	authed.HandleFunc("/comments/{id}", activitiesController.DeleteComment).Methods(http.MethodDelete)

	// Creating an activity additionally requires a verified ID.
	verified := api.NewRoute().Subrouter()
	verified.Use(authMiddleware.RequireAuth(), authMiddleware.RequireVerified())
	verified.HandleFunc("/activities", activitiesController.Create).Methods(http.MethodPost)

	// ===============================
	// ADMIN ROUTES
	// ===============================

	adminRoutes := api.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())

	adminRoutes.HandleFunc("/verifications", adminController.ListVerificationRequests).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/verifications/{id}/review", adminController.ReviewVerification).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/reports", adminController.ListReports).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/reports/{id}/resolve", adminController.ResolveReport).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/activities/pending", adminController.ListPendingFunded).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/activities/{id}/approve", adminController.ApproveFunded).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/users", adminController.ListUsers).Methods(http.MethodGet)
}
