package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "galang/pkg/domain-errors"
)

func TestParseCampaignID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseCampaignID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseCampaignID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseCampaignID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("round-trips through String", func(t *testing.T) {
		campaignID := NewCampaignID()
		parsed, err := ParseCampaignID(campaignID.String())
		require.NoError(t, err)
		assert.Equal(t, campaignID, parsed)
	})
}

func TestIsNil(t *testing.T) {
	var zero DonationID
	assert.True(t, zero.IsNil())
	assert.False(t, NewDonationID().IsNil())
}

func TestIDJSONEncoding(t *testing.T) {
	withdrawalID := NewWithdrawalID()

	raw, err := json.Marshal(withdrawalID)
	require.NoError(t, err)
	assert.Equal(t, `"`+withdrawalID.String()+`"`, string(raw))

	var decoded WithdrawalID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, withdrawalID, decoded)

	var bad ReportID
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &bad))
}
