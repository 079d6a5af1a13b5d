package team_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/team"
	"github.com/zervos/desk/tests/testutil"
)

func newServiceFixture(t *testing.T) (*team.Service, *bus.Bus) {
	t.Helper()

	b := bus.New(nil)
	return team.NewService(testutil.NewTestStore(t), b, nil), b
}

func TestAddMirrorsScopedMemberIntoGlobalList(t *testing.T) {
	svc, _ := newServiceFixture(t)

	member := svc.Add("ws1", model.TeamMember{Name: "Sam"})

	assert.NotEmpty(t, member.ID)
	assert.False(t, member.CreatedAt.IsZero())

	scoped := svc.Members("ws1")
	require.Len(t, scoped, 1)
	assert.Equal(t, member.ID, scoped[0].ID)

	global := svc.Members("")
	require.Len(t, global, 1)
	assert.Equal(t, member.ID, global[0].ID)
}

func TestAddToGlobalListOnly(t *testing.T) {
	svc, _ := newServiceFixture(t)

	svc.Add("", model.TeamMember{Name: "Sam"})

	assert.Len(t, svc.Members(""), 1)
	assert.Empty(t, svc.Members("ws1"))
}

func TestRemoveDeletesFromBothLists(t *testing.T) {
	svc, _ := newServiceFixture(t)

	member := svc.Add("ws1", model.TeamMember{Name: "Sam"})
	svc.Add("ws1", model.TeamMember{Name: "Alex"})

	svc.Remove("ws1", member.ID)

	scoped := svc.Members("ws1")
	require.Len(t, scoped, 1)
	assert.Equal(t, "Alex", scoped[0].Name)

	global := svc.Members("")
	require.Len(t, global, 1)
	assert.Equal(t, "Alex", global[0].Name)
}

func TestMutationsPublishTeamMembersUpdated(t *testing.T) {
	svc, b := newServiceFixture(t)

	fired := 0
	b.Subscribe(bus.EventTeamMembersUpdated, func(any) { fired++ })

	member := svc.Add("ws1", model.TeamMember{Name: "Sam"})
	svc.Remove("ws1", member.ID)

	assert.Equal(t, 2, fired)
}

func TestSaveCallInsertsAndReplaces(t *testing.T) {
	svc, _ := newServiceFixture(t)

	call := svc.SaveCall("ws1", model.SalesCall{Title: "Intro"})
	assert.NotEmpty(t, call.ID)

	call.Title = "Intro (rescheduled)"
	svc.SaveCall("ws1", call)

	calls := svc.Calls("ws1")
	require.Len(t, calls, 1)
	assert.Equal(t, "Intro (rescheduled)", calls[0].Title)
}

func TestAssignSalesperson(t *testing.T) {
	svc, _ := newServiceFixture(t)

	call := svc.SaveCall("ws1", model.SalesCall{Title: "Demo"})

	svc.AssignSalesperson("ws1", call.ID, "m1")
	svc.AssignSalesperson("ws1", call.ID, "m1") // duplicate is a no-op
	svc.AssignSalesperson("ws1", call.ID, "m2")

	calls := svc.Calls("ws1")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"m1", "m2"}, calls[0].AssignedSalespersons)
}

func TestUnassignSalesperson(t *testing.T) {
	svc, _ := newServiceFixture(t)

	call := svc.SaveCall("ws1", model.SalesCall{Title: "Demo"})
	svc.AssignSalesperson("ws1", call.ID, "m1")
	svc.AssignSalesperson("ws1", call.ID, "m2")

	svc.UnassignSalesperson("ws1", call.ID, "m1")
	svc.UnassignSalesperson("ws1", call.ID, "missing") // no-op

	calls := svc.Calls("ws1")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"m2"}, calls[0].AssignedSalespersons)
}

func TestTimeSlotsRoundTripAndPublish(t *testing.T) {
	svc, b := newServiceFixture(t)

	fired := 0
	b.Subscribe(bus.EventTimeSlotsUpdated, func(any) { fired++ })

	slots := []model.TimeSlot{
		{Day: "Monday", Start: "09:00", End: "10:00"},
		{Day: "Tuesday", Start: "14:00", End: "15:00"},
	}
	svc.SetTimeSlots("ws1", slots)

	assert.Equal(t, slots, svc.TimeSlots("ws1"))
	assert.Equal(t, 1, fired)

	// Slots are scoped per workspace.
	assert.Empty(t, svc.TimeSlots("ws2"))
}
