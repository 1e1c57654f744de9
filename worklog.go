package worklog_api

// Roles escalate forward only: user -> vip -> admin.
const (
	RoleUser  = "user"
	RoleVIP   = "vip"
	RoleAdmin = "admin"
)

// User is a registered account as persisted in the accounts collection.
// The password is stored as given unless hashing is enabled in config.
type User struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	UpgradeRequested bool   `json:"upgrade_requested"`
}

// Identity is the reduced representation of an authenticated caller.
// It never carries the password.
type Identity struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	UpgradeRequested bool   `json:"upgrade_requested"`
}

// Report is a single work-time entry owned by Username.
type Report struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Minutes  int    `json:"minutes"`
	Date     string `json:"date"`
	Module   string `json:"module"`
	Content  string `json:"content"`
}

// ModuleSummary is the aggregated time for one module label.
type ModuleSummary struct {
	Module  string  `json:"module"`
	Minutes int     `json:"minutes"`
	Percent float64 `json:"percent"`
}

// Summary is the per-user work-time breakdown, sorted descending by minutes.
type Summary struct {
	TotalMinutes int             `json:"total_minutes"`
	ByModule     []ModuleSummary `json:"by_module"`
}
