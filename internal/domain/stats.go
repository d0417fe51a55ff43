package domain

// DepartmentCounts breaks ticket totals down per department.
type DepartmentCounts struct {
	Admin   int `json:"admin"`
	Finance int `json:"finance"`
	HR      int `json:"hr"`
}

// PriorityCounts breaks ticket totals down per priority.
type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// TicketStats aggregates counts over a visible ticket set. A scope or filter
// matching no rows yields the zero value, never an error.
type TicketStats struct {
	Total        int              `json:"total"`
	Open         int              `json:"open"`
	InProgress   int              `json:"inProgress"`
	OnHold       int              `json:"onHold"`
	Cancelled    int              `json:"cancelled"`
	Closed       int              `json:"closed"`
	ByDepartment DepartmentCounts `json:"byDepartment"`
	ByPriority   PriorityCounts   `json:"byPriority"`
}
