package http

import identityv1 "practicedesk/contracts/gen/identity/v1"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MeResponse struct {
	Actor        identityv1.Actor        `json:"actor"`
	Capabilities identityv1.Capabilities `json:"capabilities"`
}
