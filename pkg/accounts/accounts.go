package accounts

import (
	log "github.com/sirupsen/logrus"

	worklog_api "worklog/worklog-api"
	"worklog/worklog-api/pkg/store"
)

// Collection is the name of the backing account collection.
const Collection = "accounts"

// Repository implements account CRUD and the role upgrade workflow. Every
// operation is a full load-scan-save over the collection; the store is the
// single source of truth and nothing is cached between calls.
type Repository struct {
	store store.Store
}

func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

func (r *Repository) load() []worklog_api.User {
	return store.LoadAll[worklog_api.User](r.store, Collection)
}

func (r *Repository) save(users []worklog_api.User) error {
	return store.SaveAll(r.store, Collection, users)
}

// AddUser appends a new account. Role defaults to "user" and the upgrade
// flag starts cleared. No duplicate-username check is made; registering the
// same username twice stores two records and lookups return the first.
func (r *Repository) AddUser(u worklog_api.User) error {
	if u.Role == "" {
		u.Role = worklog_api.RoleUser
	}
	users := r.load()
	users = append(users, u)
	return r.save(users)
}

// FindUser returns the first account with the given username, matched
// case-sensitively, or nil.
func (r *Repository) FindUser(username string) *worklog_api.User {
	for _, u := range r.load() {
		if u.Username == username {
			found := u
			return &found
		}
	}
	return nil
}

// Authenticate compares the stored password byte for byte and returns the
// caller identity on a match. The identity never carries the password.
func (r *Repository) Authenticate(username, password string) *worklog_api.Identity {
	u := r.FindUser(username)
	if u == nil {
		return nil
	}
	if u.Password != password {
		return nil
	}
	return &worklog_api.Identity{
		Username:         u.Username,
		Email:            u.Email,
		Role:             u.Role,
		UpgradeRequested: u.UpgradeRequested,
	}
}

// ListUsers returns the whole account collection in storage order.
func (r *Repository) ListUsers() []worklog_api.User {
	return r.load()
}

// PendingUpgrades returns the accounts with an open upgrade request.
func (r *Repository) PendingUpgrades() []worklog_api.User {
	var pending []worklog_api.User
	for _, u := range r.load() {
		if u.UpgradeRequested {
			pending = append(pending, u)
		}
	}
	return pending
}

// UpdateRole sets the role unconditionally, with no check that the value is
// a known role. This is the administrative escape hatch outside the upgrade
// workflow. Returns whether a matching account was found and persisted.
func (r *Repository) UpdateRole(username, role string) bool {
	users := r.load()
	for i := range users {
		if users[i].Username == username {
			users[i].Role = role
			return r.persist(users, username, "role change")
		}
	}
	return false
}

// RequestUpgrade marks an upgrade request. Admins cannot request and a
// pending request cannot be re-requested; both fail with no mutation,
// indistinguishable from a missing account by design of the boolean
// contract.
func (r *Repository) RequestUpgrade(username string) bool {
	users := r.load()
	for i := range users {
		if users[i].Username == username {
			if users[i].Role == worklog_api.RoleAdmin {
				return false
			}
			if users[i].UpgradeRequested {
				return false
			}
			users[i].UpgradeRequested = true
			return r.persist(users, username, "upgrade request")
		}
	}
	return false
}

// AcceptUpgrade promotes one tier, user -> vip -> admin, and clears the
// request flag. Any other current role, including admin, fails with no
// mutation.
func (r *Repository) AcceptUpgrade(username string) bool {
	users := r.load()
	for i := range users {
		if users[i].Username == username {
			var next string
			switch users[i].Role {
			case worklog_api.RoleUser:
				next = worklog_api.RoleVIP
			case worklog_api.RoleVIP:
				next = worklog_api.RoleAdmin
			default:
				return false
			}
			users[i].Role = next
			users[i].UpgradeRequested = false
			return r.persist(users, username, "upgrade accept")
		}
	}
	return false
}

// DenyUpgrade clears a pending request. Fails with no mutation when none is
// pending.
func (r *Repository) DenyUpgrade(username string) bool {
	users := r.load()
	for i := range users {
		if users[i].Username == username {
			if !users[i].UpgradeRequested {
				return false
			}
			users[i].UpgradeRequested = false
			return r.persist(users, username, "upgrade deny")
		}
	}
	return false
}

func (r *Repository) persist(users []worklog_api.User, username, op string) bool {
	if err := r.save(users); err != nil {
		log.WithFields(log.Fields{
			"user":  username,
			"op":    op,
			"error": err,
		}).Error("unable to persist account collection")
		return false
	}
	return true
}
