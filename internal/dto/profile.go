package dto

type ProfileResponse struct {
	ID                  string   `json:"id"`
	Username            string   `json:"username"`
	Email               string   `json:"email"`
	RiskTolerance       string   `json:"risk_tolerance"`
	CustomBufferTarget  *float64 `json:"custom_buffer_target,omitempty"`
	CustomCurrentBuffer *float64 `json:"custom_current_buffer,omitempty"`
}

type UpdateProfileRequest struct {
	RiskTolerance       string   `json:"risk_tolerance" validate:"omitempty,oneof=low medium high"`
	CustomBufferTarget  *float64 `json:"custom_buffer_target"`
	CustomCurrentBuffer *float64 `json:"custom_current_buffer"`
}
