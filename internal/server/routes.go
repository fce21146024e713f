// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import "net/http"

func (s *Server) routes(mux *http.ServeMux) {
	mux.Handle("GET /healthz", s.public(s.handleHealth))

	mux.Handle("POST /api/auth/register", s.public(s.handleRegister))
	mux.Handle("POST /api/auth/login", s.public(s.handleLogin))
	mux.Handle("POST /api/auth/logout", s.public(s.handleLogout))
	mux.Handle("GET /api/me", s.user(s.handleMe))
	mux.Handle("PUT /api/me", s.user(s.handleUpdateMe))
	mux.Handle("PUT /api/me/password", s.user(s.handleChangePassword))

	mux.Handle("GET /api/research", s.user(s.handleListResearch))
	mux.Handle("POST /api/research", s.user(s.handleCreateResearch))
	mux.Handle("POST /api/research/lookup", s.user(s.handleLookupResearch))
	mux.Handle("GET /api/research/{id}", s.user(s.handleGetResearch))
	mux.Handle("PUT /api/research/{id}", s.user(s.handleUpdateResearch))
	mux.Handle("DELETE /api/research/{id}", s.user(s.handleDeleteResearch))

	mux.Handle("GET /api/field-visits", s.user(s.handleListFieldVisits))
	mux.Handle("POST /api/field-visits", s.user(s.handleCreateFieldVisit))
	mux.Handle("GET /api/field-visits/{id}", s.user(s.handleGetFieldVisit))
	mux.Handle("PUT /api/field-visits/{id}", s.user(s.handleUpdateFieldVisit))
	mux.Handle("DELETE /api/field-visits/{id}", s.user(s.handleDeleteFieldVisit))

	mux.Handle("GET /api/volunteering", s.user(s.handleListVolunteering))
	mux.Handle("POST /api/volunteering", s.user(s.handleCreateVolunteering))
	mux.Handle("POST /api/volunteering/duration", s.user(s.handleVolunteeringDuration))
	mux.Handle("GET /api/volunteering/{id}", s.user(s.handleGetVolunteering))
	mux.Handle("PUT /api/volunteering/{id}", s.user(s.handleUpdateVolunteering))
	mux.Handle("DELETE /api/volunteering/{id}", s.user(s.handleDeleteVolunteering))

	mux.Handle("GET /api/projects", s.user(s.handleListProjects))
	mux.Handle("POST /api/projects", s.user(s.handleCreateProject))
	mux.Handle("GET /api/projects/{id}", s.user(s.handleGetProject))
	mux.Handle("PUT /api/projects/{id}", s.user(s.handleUpdateProject))
	mux.Handle("DELETE /api/projects/{id}", s.user(s.handleDeleteProject))
	mux.Handle("GET /api/projects/{id}/members", s.user(s.handleMembers))
	mux.Handle("DELETE /api/projects/{id}/members/{userID}", s.user(s.handleRemoveMember))
	mux.Handle("POST /api/projects/{id}/leave", s.user(s.handleLeaveProject))
	mux.Handle("GET /api/projects/{id}/suggestions", s.user(s.handleSuggestions))
	mux.Handle("GET /api/projects/{id}/join-requests", s.user(s.handleListJoinRequests))
	mux.Handle("POST /api/projects/{id}/join-requests", s.user(s.handleRequestJoin))
	mux.Handle("POST /api/join-requests/{id}/accept", s.user(s.handleRespondJoin(true)))
	mux.Handle("POST /api/join-requests/{id}/reject", s.user(s.handleRespondJoin(false)))
	mux.Handle("POST /api/join-requests/{id}/cancel", s.user(s.handleCancelJoin))

	mux.Handle("GET /api/cv", s.user(s.handleGetCV))
	mux.Handle("PUT /api/cv", s.user(s.handleSaveCV))
	mux.Handle("GET /api/cv/export", s.user(s.handleExportCV))
	mux.Handle("POST /api/cv/file", s.user(s.handleUploadCVFile))
	mux.Handle("GET /api/cv/file", s.user(s.handleDownloadCVFile))
	mux.Handle("DELETE /api/cv/file", s.user(s.handleDeleteCVFile))
	mux.Handle("GET /api/researchers/{id}/cv", s.user(s.handleResearcherCV))

	mux.Handle("GET /api/dashboard", s.user(s.handleDashboard))
	mux.Handle("GET /api/admin/dashboard", s.admin(s.handleGlobalDashboard))
	mux.Handle("GET /api/admin/users", s.admin(s.handleListUsers))
	mux.Handle("PUT /api/admin/users/{id}/role", s.admin(s.handleSetRole))
	mux.Handle("PUT /api/admin/users/{id}/active", s.admin(s.handleSetActive))
}
