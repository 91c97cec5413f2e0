package handler

import (
	dErrors "galang/pkg/domain-errors"
)

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (r *updateStatusRequest) Validate() error {
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	return nil
}

type setEmergencyRequest struct {
	IsEmergency bool `json:"is_emergency"`
}

type balanceResponse struct {
	CampaignID      string `json:"campaign_id"`
	AvailableAmount int64  `json:"available_amount"`
}
