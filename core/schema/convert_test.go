package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string `json:"city"`
}

type venue struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DateCreated time.Time `json:"dateCreated"`
	Rating      *float64  `json:"rating,omitempty"`
	Address     address   `json:"address"`
}

func TestEncode(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	doc, err := Encode(venue{ID: 7, Name: "Cartoucherie", DateCreated: created, Address: address{City: "Paris"}})
	require.NoError(t, err)

	assert.Equal(t, float64(7), doc["id"])
	assert.Equal(t, "Cartoucherie", doc["name"])
	assert.Equal(t, "2026-03-01T09:30:00Z", doc["dateCreated"])
	assert.NotContains(t, doc, "rating")
	assert.Equal(t, json.RawMessage(`{"city":"Paris"}`), doc["address"])

	_, err = Encode[*venue](nil)
	assert.Error(t, err)
	_, err = Encode(42)
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	doc := Document{
		"id":          int64(7),
		"name":        "Cartoucherie",
		"dateCreated": created,
		"rating":      4.5,
		"address":     json.RawMessage(`{"city":"Paris"}`),
		"unknown":     true,
	}

	v, err := Decode[venue](doc)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.ID)
	assert.True(t, created.Equal(v.DateCreated))
	require.NotNil(t, v.Rating)
	assert.Equal(t, 4.5, *v.Rating)
	assert.Equal(t, "Paris", v.Address.City)

	p, err := Decode[*venue](doc)
	require.NoError(t, err)
	assert.Equal(t, "Cartoucherie", p.Name)

	_, err = Decode[venue](nil)
	assert.Error(t, err)
	_, err = Decode[int](doc)
	assert.Error(t, err)
}
