package model

// Task is the domain model for a to-do entry.
// Content is immutable once created; only IsDone ever changes.
type Task struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	IsDone    bool   `json:"isDone"`
	Timestamp int64  `json:"timestamp"` // creation time, ms since epoch
}

// MaxContentLen is the upper bound on Content, in runes.
const MaxContentLen = 255

// CountDone returns how many tasks are marked done.
func CountDone(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.IsDone {
			n++
		}
	}
	return n
}
