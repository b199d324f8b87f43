// ABOUTME: Facts is the raw input of every aggregation and rule pass.
// ABOUTME: It is loaded in one read so a pass sees a consistent snapshot.
package models

// Facts holds every fact row needed to derive aggregates.
type Facts struct {
	Subjects   []Subject
	Topics     []Topic
	Tasks      []Task
	TaskTopics []TaskTopic
	Sessions   []StudySession
	Results    []Result
}

// TaskIndex maps task ID to task.
func (f *Facts) TaskIndex() map[int64]*Task {
	idx := make(map[int64]*Task, len(f.Tasks))
	for i := range f.Tasks {
		idx[f.Tasks[i].ID] = &f.Tasks[i]
	}
	return idx
}

// SubjectNames maps subject ID to name.
func (f *Facts) SubjectNames() map[int64]string {
	names := make(map[int64]string, len(f.Subjects))
	for _, s := range f.Subjects {
		names[s.ID] = s.Name
	}
	return names
}
