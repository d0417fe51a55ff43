package domain

import "time"

// User is the verified identity tickets are created and triaged by. Role is
// free text (titles like "Senior HR Executive" occur in real data), so the
// manager capability is carried by the explicit flag plus the managed
// department set rather than by the role string.
type User struct {
	ID                 int64
	Username           string
	PasswordHash       string
	Name               string
	Role               string
	Department         *string
	ManagedDepartments []Department
	IsManager          bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
