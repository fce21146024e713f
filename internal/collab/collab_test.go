// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collab

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/store"
	"github.com/pdiddy/research-portal/pkg/types"
)

type fixture struct {
	svc   *Service
	st    *store.Store
	owner types.Actor
	alice types.Actor
	bob   types.Actor
	admin types.Actor
}

func setup(t *testing.T) fixture {
	t.Helper()
	st, err := store.Open(types.DatabaseConfig{Path: filepath.Join(t.TempDir(), "portal.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mk := func(email, name string, role types.Role, mutate func(*types.User)) types.Actor {
		u := types.User{Email: email, FullName: name, Role: role, Active: true, PasswordHash: "x"}
		if mutate != nil {
			mutate(&u)
		}
		require.NoError(t, st.CreateUser(context.Background(), &u))
		return types.Actor{UserID: u.ID, Role: role}
	}
	return fixture{
		svc:   NewService(st, nil),
		st:    st,
		owner: mk("owner@uni.example", "Owner", types.RoleResearcher, nil),
		alice: mk("alice@uni.example", "Alice", types.RoleResearcher, func(u *types.User) {
			u.Interests = []string{"hydrology"}
			u.Specialization = "Hydrology"
		}),
		bob:   mk("bob@uni.example", "Bob", types.RoleResearcher, func(u *types.User) { u.Interests = []string{"gis"} }),
		admin: mk("admin@uni.example", "Admin", types.RoleAdmin, nil),
	}
}

func (f fixture) project(t *testing.T, maxMembers int) types.Project {
	t.Helper()
	p, err := f.svc.CreateProject(context.Background(), f.owner, types.ProjectInput{
		Title: "Water security", Field: "Hydrology", Keywords: []string{"Hydrology", "GIS"}, MaxMembers: maxMembers,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProjectValidation(t *testing.T) {
	f := setup(t)
	start, end := types.NewDate(2024, 5, 1), types.NewDate(2024, 4, 1)
	_, err := f.svc.CreateProject(context.Background(), f.owner, types.ProjectInput{
		MaxMembers: 1, Status: "DONE", StartDate: &start, EndDate: &end,
	})
	fields := apperr.FieldsOf(err)
	for _, k := range []string{"title", "field", "status", "max_members", "end_date"} {
		assert.Contains(t, fields, k)
	}

	p := f.project(t, 0)
	assert.Equal(t, types.ProjectOpen, p.Status)
	assert.Equal(t, 1, p.MemberCount)
	assert.Equal(t, []string{"hydrology", "gis"}, p.Keywords)
}

func TestJoinFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.project(t, 2)

	req, err := f.svc.RequestJoin(ctx, f.alice, p.ID, " I work on aquifers ")
	require.NoError(t, err)
	assert.Equal(t, "I work on aquifers", req.Message)
	assert.Equal(t, types.JoinPending, req.Status)

	_, err = f.svc.RequestJoin(ctx, f.alice, p.ID, "")
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	bobReq, err := f.svc.RequestJoin(ctx, f.bob, p.ID, "")
	require.NoError(t, err)

	// Visibility: the owner sees both, Bob only his own.
	all, err := f.svc.ListJoinRequests(ctx, f.owner, p.ID, types.JoinPending)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	own, err := f.svc.ListJoinRequests(ctx, f.bob, p.ID, "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, bobReq.ID, own[0].ID)

	_, err = f.svc.RespondJoinRequest(ctx, f.bob, req.ID, true)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	accepted, err := f.svc.RespondJoinRequest(ctx, f.owner, req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, types.JoinAccepted, accepted.Status)

	_, err = f.svc.RespondJoinRequest(ctx, f.admin, bobReq.ID, true)
	assert.True(t, errors.Is(err, apperr.ErrConflict), "project is full")

	_, err = f.svc.CancelJoinRequest(ctx, f.alice, bobReq.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	cancelled, err := f.svc.CancelJoinRequest(ctx, f.bob, bobReq.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JoinCancelled, cancelled.Status)

	_, err = f.svc.CancelJoinRequest(ctx, f.bob, bobReq.ID)
	assert.True(t, errors.Is(err, apperr.ErrConflict), "no longer pending")

	members, err := f.svc.Members(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, types.MemberOwner, members[0].Role)
	assert.Equal(t, "Alice", members[1].FullName)
}

func TestRespondReject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.project(t, 0)

	req, err := f.svc.RequestJoin(ctx, f.alice, p.ID, "")
	require.NoError(t, err)
	rejected, err := f.svc.RespondJoinRequest(ctx, f.owner, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, types.JoinRejected, rejected.Status)

	ok, err := f.st.IsMember(ctx, p.ID, f.alice.UserID)
	require.NoError(t, err)
	assert.False(t, ok)

	// A rejected researcher may ask again.
	_, err = f.svc.RequestJoin(ctx, f.alice, p.ID, "second try")
	assert.NoError(t, err)
}

func TestLeaveAndRemove(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.project(t, 0)

	for _, a := range []types.Actor{f.alice, f.bob} {
		req, err := f.svc.RequestJoin(ctx, a, p.ID, "")
		require.NoError(t, err)
		_, err = f.svc.RespondJoinRequest(ctx, f.owner, req.ID, true)
		require.NoError(t, err)
	}

	assert.True(t, errors.Is(f.svc.LeaveProject(ctx, f.owner, p.ID), apperr.ErrConflict))
	require.NoError(t, f.svc.LeaveProject(ctx, f.alice, p.ID))
	assert.True(t, errors.Is(f.svc.LeaveProject(ctx, f.alice, p.ID), apperr.ErrNotFound))

	assert.True(t, errors.Is(f.svc.RemoveMember(ctx, f.alice, p.ID, f.bob.UserID), apperr.ErrForbidden))
	assert.True(t, errors.Is(f.svc.RemoveMember(ctx, f.admin, p.ID, f.owner.UserID), apperr.ErrForbidden))
	require.NoError(t, f.svc.RemoveMember(ctx, f.admin, p.ID, f.bob.UserID))

	got, err := f.svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MemberCount)
}

func TestUpdateProjectCapacity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.project(t, 0)
	for _, a := range []types.Actor{f.alice, f.bob} {
		req, err := f.svc.RequestJoin(ctx, a, p.ID, "")
		require.NoError(t, err)
		_, err = f.svc.RespondJoinRequest(ctx, f.owner, req.ID, true)
		require.NoError(t, err)
	}

	in := types.ProjectInput{Title: "Water security", Field: "Hydrology", MaxMembers: 2}
	_, err := f.svc.UpdateProject(ctx, f.owner, p.ID, in)
	assert.Contains(t, apperr.FieldsOf(err), "max_members")

	_, err = f.svc.UpdateProject(ctx, f.alice, p.ID, in)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	in.MaxMembers = 3
	in.Status = types.ProjectInProgress
	updated, err := f.svc.UpdateProject(ctx, f.owner, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectInProgress, updated.Status)
	assert.True(t, updated.Full())

	assert.True(t, errors.Is(f.svc.DeleteProject(ctx, f.bob, p.ID), apperr.ErrForbidden))
	require.NoError(t, f.svc.DeleteProject(ctx, f.owner, p.ID))
}

func TestJoinClosedProject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p, err := f.svc.CreateProject(ctx, f.owner, types.ProjectInput{Title: "Done", Field: "Law", Status: types.ProjectCompleted})
	require.NoError(t, err)

	_, err = f.svc.RequestJoin(ctx, f.alice, p.ID, "")
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestSuggestResearchers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.project(t, 0)

	got, err := f.svc.SuggestResearchers(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, f.alice.UserID, got[0].UserID, "keyword and field match")
	assert.Equal(t, 65.0, got[0].Score)
	assert.Equal(t, f.bob.UserID, got[1].UserID)
	assert.Equal(t, 40.0, got[1].Score)

	// Members and admins are never suggested; pending requests are flagged.
	req, err := f.svc.RequestJoin(ctx, f.alice, p.ID, "")
	require.NoError(t, err)
	got, err = f.svc.SuggestResearchers(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].PendingRequest)

	_, err = f.svc.RespondJoinRequest(ctx, f.owner, req.ID, true)
	require.NoError(t, err)
	got, err = f.svc.SuggestResearchers(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f.bob.UserID, got[0].UserID)

	_, err = f.svc.SuggestResearchers(ctx, "missing", 5)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
