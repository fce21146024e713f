// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

type dated struct {
	Start Date  `json:"start" yaml:"start"`
	End   *Date `json:"end,omitempty" yaml:"end,omitempty"`
}

func TestDateJSON(t *testing.T) {
	end := NewDate(2024, time.March, 14)
	data, err := json.Marshal(dated{Start: NewDate(2023, time.January, 15), End: &end})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2023-01-15","end":"2024-03-14"}`, string(data))

	var got dated
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2023-01-15T22:30:00Z"}`), &got))
	assert.Equal(t, NewDate(2023, time.January, 15), got.Start)
	assert.Nil(t, got.End)

	require.NoError(t, json.Unmarshal([]byte(`{"start":""}`), &got))
	assert.True(t, got.Start.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"start":"15/01/2023"}`), &got))
	assert.Error(t, json.Unmarshal([]byte(`{"start":20230115}`), &got))

	zero, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(zero))
}

func TestDateYAML(t *testing.T) {
	data, err := yaml.Marshal(dated{Start: NewDate(2022, time.July, 4)})
	require.NoError(t, err)
	assert.Contains(t, string(data), "2022-07-04")
	assert.NotContains(t, string(data), "end:")

	var got dated
	require.NoError(t, yaml.Unmarshal([]byte("start: 2022-07-04\nend: 2022-07-10\n"), &got))
	assert.Equal(t, NewDate(2022, time.July, 4), got.Start)
	require.NotNil(t, got.End)
	assert.Equal(t, "2022-07-10", got.End.String())

	assert.Error(t, yaml.Unmarshal([]byte("start: yesterday\n"), &got))
}

func TestDateHelpers(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.False(t, d.Before(d))
	assert.Equal(t, "", Date{}.String())

	loc := time.FixedZone("UTC+3", 3*60*60)
	assert.Equal(t, NewDate(2024, time.March, 1), DateOf(time.Date(2024, time.March, 1, 1, 0, 0, 0, loc)))
}

func TestDurationString(t *testing.T) {
	tests := []struct {
		d    Duration
		want string
	}{
		{Duration{}, "0 days"},
		{Duration{TotalDays: 1, Days: 1}, "1 day"},
		{Duration{TotalDays: 425, Years: 1, Months: 2}, "1 year 2 months"},
		{Duration{TotalDays: 800, Years: 2, Months: 1, Days: 10}, "2 years 1 month 10 days"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.d.String())
	}
}

func TestBestWeight(t *testing.T) {
	tests := []struct {
		name string
		idx  Indexing
		want int
	}{
		{"not indexed", Indexing{ScopusQuartile: Q1}, 0},
		{"indexed without quartile", Indexing{Scopus: true}, 1},
		{"scopus quartile", Indexing{Scopus: true, ScopusQuartile: Q2}, 3},
		{"best of both", Indexing{Scopus: true, ScopusQuartile: Q3, ISI: true, ISIQuartile: Q1}, 4},
		{"quartile ignored when index unset", Indexing{Scopus: true, ScopusQuartile: Q4, ISIQuartile: Q1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.idx.BestWeight())
		})
	}
}

func TestActorCanModify(t *testing.T) {
	owner := Actor{UserID: "u1", Role: RoleResearcher}
	other := Actor{UserID: "u2", Role: RoleResearcher}
	admin := Actor{UserID: "a1", Role: RoleAdmin}

	assert.True(t, owner.CanModify("u1"))
	assert.False(t, other.CanModify("u1"))
	assert.True(t, admin.CanModify("u1"))
	assert.False(t, Actor{}.CanModify(""))
}

func TestProjectFull(t *testing.T) {
	assert.False(t, Project{MaxMembers: 0, MemberCount: 50}.Full())
	assert.False(t, Project{MaxMembers: 3, MemberCount: 2}.Full())
	assert.True(t, Project{MaxMembers: 3, MemberCount: 3}.Full())
}
