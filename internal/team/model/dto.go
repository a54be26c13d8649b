package model

// CreateTeamRequest represents the request to create a team.
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// TeamResponse represents a team in API responses.
type TeamResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewTeamResponse converts a team for output.
func NewTeamResponse(t *Team) TeamResponse {
	return TeamResponse{ID: t.ID, Name: t.Name}
}
