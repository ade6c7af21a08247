package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktake-dashboard/internal/models"
)

func TestCheckerProducts_GroupsAcrossSessions(t *testing.T) {
	sessions := Group([]models.CheckEvent{
		{Date: "2024-01-05", CheckedBy: "Ali", ProductCode: "A1", SystemID: "9981"},
		{Date: "2024-01-06", CheckedBy: "Ali", ProductCode: "A1", SystemID: "9981"},
		{Date: "2024-01-06", CheckedBy: "Ali", ProductCode: "B2"},
		{Date: "2024-01-06", CheckedBy: "Zoe", ProductCode: "C3"},
	})

	details := CheckerProducts(sessions, "Ali", nil)
	require.Len(t, details, 2)
	assert.Equal(t, "A1 (9981)", details[0].Label)
	assert.Equal(t, 2, details[0].CheckCount)
	assert.Equal(t, "B2", details[1].Label)
	assert.Equal(t, 1, details[1].CheckCount)
}

func TestCheckerProducts_Enrichment(t *testing.T) {
	sessions := Group([]models.CheckEvent{
		{Date: "2024-01-05", CheckedBy: "Ali", ProductCode: "X1", SystemID: "9981"},
	})
	payloads := map[string]models.ProductPayload{
		"9981": {
			ID:     "9981",
			Name:   "Gold Watch",
			Images: []string{"https://cdn/group-shot.jpg", "https://cdn/front.jpg"},
		},
	}

	details := CheckerProducts(sessions, "Ali", payloads)
	require.Len(t, details, 1)
	assert.Equal(t, "9981", details[0].ResolvedID)
	require.NotNil(t, details[0].Payload)
	assert.Equal(t, "Gold Watch", details[0].Payload.Name)
	assert.Equal(t, "https://cdn/front.jpg", details[0].Image)
}

func TestCheckerProducts_MissYieldsEmptyDetail(t *testing.T) {
	sessions := Group([]models.CheckEvent{
		{Date: "2024-01-05", CheckedBy: "Ali", ProductCode: "X1"},
	})

	details := CheckerProducts(sessions, "Ali", map[string]models.ProductPayload{})
	require.Len(t, details, 1)
	assert.Empty(t, details[0].ResolvedID)
	assert.Nil(t, details[0].Payload)
	assert.Equal(t, 1, details[0].CheckCount)
}

func TestCheckerProducts_UnknownChecker(t *testing.T) {
	sessions := Group([]models.CheckEvent{
		{Date: "2024-01-05", CheckedBy: "Ali", ProductCode: "X1"},
	})
	assert.Empty(t, CheckerProducts(sessions, "Nobody", nil))
}
