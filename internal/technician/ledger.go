package technician

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Job is one completed, paid job.
type Job struct {
	ID           string    `json:"_id,omitempty"`
	TechnicianID string    `json:"technicianId,omitempty"`
	Job          string    `json:"job"`
	Amount       int       `json:"amount"`
	Date         time.Time `json:"date"`
}

// Day returns the calendar date of the job as YYYY-MM-DD.
func (j Job) Day() string {
	return j.Date.Format(dateLayout)
}

// NewJob is the input for recording earnings.
type NewJob struct {
	TechnicianID string    `json:"technicianId"`
	Job          string    `json:"job"`
	Amount       int       `json:"amount"`
	Date         time.Time `json:"date"`
}

// Validate checks every field is present.
func (n NewJob) Validate() error {
	switch {
	case strings.TrimSpace(n.TechnicianID) == "":
		return ErrMissingTechnician
	case strings.TrimSpace(n.Job) == "":
		return ErrMissingJob
	case n.Amount <= 0:
		return ErrInvalidAmount
	case n.Date.IsZero():
		return ErrMissingDate
	}
	return nil
}

// ParseDay parses a YYYY-MM-DD date, or the date part of an RFC 3339 timestamp.
func ParseDay(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, 'T'); i >= 0 {
		v = v[:i]
	}
	return time.Parse(dateLayout, v)
}

// Ledger is a technician's job history, newest first.
type Ledger struct {
	jobs []Job
}

// NewLedger wraps jobs as returned by the backend, newest first.
func NewLedger(jobs []Job) *Ledger {
	out := make([]Job, len(jobs))
	copy(out, jobs)
	return &Ledger{jobs: out}
}

// Jobs returns a copy of the history.
func (l *Ledger) Jobs() []Job {
	out := make([]Job, len(l.jobs))
	copy(out, l.jobs)
	return out
}

// Total sums all amounts.
func (l *Ledger) Total() int {
	total := 0
	for _, j := range l.jobs {
		total += j.Amount
	}
	return total
}

// MonthTotal sums amounts in the calendar month and year of now.
func (l *Ledger) MonthTotal(now time.Time) int {
	y, m, _ := now.Date()
	total := 0
	for _, j := range l.jobs {
		jy, jm, _ := j.Date.In(now.Location()).Date()
		if jy == y && jm == m {
			total += j.Amount
		}
	}
	return total
}

// Count is the number of jobs completed.
func (l *Ledger) Count() int {
	return len(l.jobs)
}

// Recent returns up to n of the newest jobs, oldest first, for charting.
func (l *Ledger) Recent(n int) []Job {
	if n > len(l.jobs) {
		n = len(l.jobs)
	}
	if n <= 0 {
		return []Job{}
	}
	out := make([]Job, n)
	for i := 0; i < n; i++ {
		out[i] = l.jobs[n-1-i]
	}
	return out
}

// Summary is the earnings dashboard view.
type Summary struct {
	Jobs       []Job `json:"jobs"`
	Total      int   `json:"total"`
	MonthTotal int   `json:"monthTotal"`
	Count      int   `json:"count"`
	Chart      []Job `json:"chart"`
}

// Summarize builds the dashboard view as of now.
func (l *Ledger) Summarize(now time.Time) Summary {
	return Summary{
		Jobs:       l.Jobs(),
		Total:      l.Total(),
		MonthTotal: l.MonthTotal(now),
		Count:      l.Count(),
		Chart:      l.Recent(7),
	}
}
