package handler

import "encoding/json"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Msg string `json:"msg" example:"saved"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required" example:"bob"`
	Password string `json:"password" validate:"required" example:"pw123"`
}

// loginRequest accepts the OAuth2 password-grant form as well as JSON.
// grant_type and scope are read but not enforced.
type loginRequest struct {
	Username  string `json:"username"   form:"username"`
	Password  string `json:"password"   form:"password"`
	GrantType string `json:"grant_type" form:"grant_type"`
	Scope     string `json:"scope"      form:"scope"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"86400"`
}

// --- Planner ---

type saveDayRequest struct {
	DateKey string          `json:"date_key" validate:"required" example:"2024-03-05"`
	Payload json.RawMessage `json:"payload"  validate:"required" swaggertype:"object"`
}

type dayResponse struct {
	Data *string `json:"data" example:"{\"tasks\":[\"a\"]}"`
}

type historyItem struct {
	DateKey string `json:"date_key"`
	Payload string `json:"payload"`
}
