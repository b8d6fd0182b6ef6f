package api

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markpoint/backend/pkg/validator"
)

func TestCreateMarkRequestValidation(t *testing.T) {
	valid := CreateMarkRequest{
		CategoryID: uuid.New(),
		Name:       "pop-up market",
		Latitude:   55.75,
		Longitude:  37.61,
		Duration:   24,
	}
	assert.False(t, validator.Struct(&valid).HasErrors())

	cases := []struct {
		name  string
		req   CreateMarkRequest
		field string
	}{
		{"missing category", CreateMarkRequest{Name: "x", Latitude: 1, Longitude: 1, Duration: 24}, "categoryid"},
		{"missing name", CreateMarkRequest{CategoryID: uuid.New(), Latitude: 1, Longitude: 1, Duration: 24}, "name"},
		{"latitude out of range", CreateMarkRequest{CategoryID: uuid.New(), Name: "x", Latitude: 91, Longitude: 1, Duration: 24}, "latitude"},
		{"longitude out of range", CreateMarkRequest{CategoryID: uuid.New(), Name: "x", Latitude: 1, Longitude: 181, Duration: 24}, "longitude"},
		{"duration not allowed", CreateMarkRequest{CategoryID: uuid.New(), Name: "x", Latitude: 1, Longitude: 1, Duration: 13}, "duration"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := validator.Struct(&tc.req)
			require.True(t, errs.HasErrors())
			assert.Equal(t, tc.field, errs[0].Field)
		})
	}
}
