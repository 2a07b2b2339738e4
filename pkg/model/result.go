package model

// ItemError records a single failed item inside an otherwise
// successful batch.
type ItemError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// SyncResult is the aggregate outcome of one synchronization call.
// Partial failure is the expected steady state: callers read Errors,
// they do not get an overall failure when some items went through.
type SyncResult struct {
	Created int         `json:"created"`
	Updated int         `json:"updated"`
	Deleted int         `json:"deleted"`
	Skipped int         `json:"skipped"`
	Errors  []ItemError `json:"errors,omitempty"`
}

// Merge folds another result into r. Used to reduce per-item results
// collected from workers.
func (r *SyncResult) Merge(other SyncResult) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Deleted += other.Deleted
	r.Skipped += other.Skipped
	r.Errors = append(r.Errors, other.Errors...)
}

// InboundResult is the outcome of a calendar→store synchronization.
type InboundResult struct {
	TasksFound int         `json:"tasksFound"`
	Updated    int         `json:"updated"`
	Created    int         `json:"created"`
	Errors     []ItemError `json:"errors,omitempty"`
}
