package model

// MemberDto is the API view of a member.
type MemberDto struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	TeamName string `json:"teamName"`
}

// NewMemberDto converts a member whose team, if any, is loaded.
func NewMemberDto(m *Member) MemberDto {
	dto := MemberDto{ID: m.ID, Username: m.Username}
	if m.Team != nil {
		dto.TeamName = m.Team.Name
	}
	return dto
}

// UsernameOnly is a projection holding "<username> <age>".
type UsernameOnly struct {
	Username string `json:"username"`
}
