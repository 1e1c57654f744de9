package reports

import (
	"math"
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	worklog_api "worklog/worklog-api"
	"worklog/worklog-api/pkg/store"
)

// Collection is the name of the backing report collection, shared by all
// owners.
const Collection = "work_reports"

// Repository implements work-report CRUD over a whole-collection document
// store, same load-scan-save discipline as the account repository.
type Repository struct {
	store store.Store
}

func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

func (r *Repository) load() []worklog_api.Report {
	return store.LoadAll[worklog_api.Report](r.store, Collection)
}

func (r *Repository) save(reports []worklog_api.Report) error {
	return store.SaveAll(r.store, Collection, reports)
}

// Add appends a report for username. Each report gets an ID so it can later
// be deleted individually; the ID stays out of every export format.
func (r *Repository) Add(username string, minutes int, date, module, content string) error {
	reports := r.load()
	reports = append(reports, worklog_api.Report{
		ID:       uuid.NewString(),
		Username: username,
		Minutes:  minutes,
		Date:     date,
		Module:   module,
		Content:  content,
	})
	return r.save(reports)
}

// ForUser returns all reports owned by username, in storage order.
func (r *Repository) ForUser(username string) []worklog_api.Report {
	var out []worklog_api.Report
	for _, rep := range r.load() {
		if rep.Username == username {
			out = append(out, rep)
		}
	}
	return out
}

// Summarize groups a user's reports by module and computes the share of the
// total per module, descending by minutes. Ties keep first-encountered
// module order. An empty module label counts as "unknown".
func (r *Repository) Summarize(username string) worklog_api.Summary {
	totals := map[string]int{}
	var order []string
	for _, rep := range r.ForUser(username) {
		mod := rep.Module
		if mod == "" {
			mod = "unknown"
		}
		if _, ok := totals[mod]; !ok {
			order = append(order, mod)
		}
		totals[mod] += rep.Minutes
	}

	total := 0
	for _, mod := range order {
		total += totals[mod]
	}

	byModule := make([]worklog_api.ModuleSummary, 0, len(order))
	for _, mod := range order {
		mins := totals[mod]
		percent := 0.0
		if total > 0 {
			percent = math.Round(float64(mins)/float64(total)*100*100) / 100
		}
		byModule = append(byModule, worklog_api.ModuleSummary{
			Module:  mod,
			Minutes: mins,
			Percent: percent,
		})
	}
	sort.SliceStable(byModule, func(i, j int) bool {
		return byModule[i].Minutes > byModule[j].Minutes
	})

	return worklog_api.Summary{
		TotalMinutes: total,
		ByModule:     byModule,
	}
}

// OverwriteForUser replaces all of a user's reports with records, leaving
// every other owner's reports untouched. The owner is forced onto each new
// record. Atomic only from the caller's perspective: the store itself gives
// no such guarantee.
func (r *Repository) OverwriteForUser(username string, records []worklog_api.Report) error {
	all := r.load()
	merged := make([]worklog_api.Report, 0, len(all)+len(records))
	for _, rep := range all {
		if rep.Username != username {
			merged = append(merged, rep)
		}
	}
	for _, rep := range records {
		rep.Username = username
		if rep.ID == "" {
			rep.ID = uuid.NewString()
		}
		merged = append(merged, rep)
	}
	return r.save(merged)
}

// Delete removes the report with the given ID if username owns it. Returns
// whether anything was removed.
func (r *Repository) Delete(username, id string) bool {
	all := r.load()
	for i := range all {
		if all[i].Username == username && all[i].ID == id {
			all = append(all[:i], all[i+1:]...)
			if err := r.save(all); err != nil {
				log.WithFields(log.Fields{
					"user":   username,
					"report": id,
					"error":  err,
				}).Error("unable to persist report collection")
				return false
			}
			return true
		}
	}
	return false
}
