package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateFormPayload_NullSections(t *testing.T) {
	payload := UpdateFormPayload{
		Person: PersonPayload{LastName: "Pérez", FirstName: "Juan", DocumentNumber: "30123456"},
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"person": {"lastName":"Pérez","firstName":"Juan","documentNumber":"30123456","birthDate":null,"nationalityId":null,"birthCityId":null},
		"contact": null,
		"graduate": null,
		"address": null
	}`, string(body))
}

func TestGraduatePayload_Militar(t *testing.T) {
	body, err := json.Marshal(GraduatePayload{
		GraduateType:   GraduateTypeMilitar,
		MilitaryRankID: ptr(int64(5)),
		ForceID:        ptr(int64(1)),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"graduateType":"Militar","militaryRankId":5,"forceId":1}`, string(body))
}

func TestGraduateType_Valid(t *testing.T) {
	assert.True(t, GraduateTypeCivil.Valid())
	assert.True(t, GraduateTypeMilitar.Valid())
	assert.False(t, GraduateType("").Valid())
	assert.False(t, GraduateType("civil").Valid())
}

func TestSession_IsReviewer(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.IsReviewer(200))
	assert.False(t, (&Session{}).IsReviewer(200))
	assert.False(t, (&Session{RoleID: ptr(int64(199))}).IsReviewer(200))
	assert.True(t, (&Session{RoleID: ptr(int64(200))}).IsReviewer(200))
}

func TestSession_UserOmitsAccessToken(t *testing.T) {
	s := &Session{ID: "sid", UserID: 12, Username: "jperez", AccessToken: "secret"}

	body, err := json.Marshal(s.User())
	require.NoError(t, err)
	assert.NotContains(t, string(body), "secret")
	assert.Equal(t, int64(12), s.User().ID)
}
