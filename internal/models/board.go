package models

// findColumn returns the column with the given ID, searching boards in
// order, or nil when no column matches.
func (b *BoardData) findColumn(columnID string) *Column {
	for bi := range b.Boards {
		for ci := range b.Boards[bi].Columns {
			if b.Boards[bi].Columns[ci].ID == columnID {
				return &b.Boards[bi].Columns[ci]
			}
		}
	}
	return nil
}

// AddTask appends the task to the column matching task.ColumnID.
func (b *BoardData) AddTask(task Task) error {
	col := b.findColumn(task.ColumnID)
	if col == nil {
		return ErrColumnNotFound
	}
	col.Tasks = append(col.Tasks, task)
	return nil
}

// FindTask returns a copy of the task with the given ID.
func (b *BoardData) FindTask(taskID string) (Task, error) {
	for bi := range b.Boards {
		for ci := range b.Boards[bi].Columns {
			for _, t := range b.Boards[bi].Columns[ci].Tasks {
				if t.ID == taskID {
					return t, nil
				}
			}
		}
	}
	return Task{}, ErrTaskNotFound
}

// UpdateTask applies a partial update to the task with the given ID.
// Empty-string fields are treated as "not provided" and left untouched.
// A non-empty columnID different from the task's current column moves the
// task to the end of the target column.
func (b *BoardData) UpdateTask(taskID, title, description, columnID string) (Task, error) {
	for bi := range b.Boards {
		for ci := range b.Boards[bi].Columns {
			col := &b.Boards[bi].Columns[ci]
			for ti := range col.Tasks {
				if col.Tasks[ti].ID != taskID {
					continue
				}
				task := &col.Tasks[ti]
				if title != "" {
					task.Title = title
				}
				if description != "" {
					task.Description = description
				}
				if columnID != "" && columnID != task.ColumnID {
					dest := b.findColumn(columnID)
					if dest == nil {
						return Task{}, ErrColumnNotFound
					}
					moved := *task
					moved.ColumnID = columnID
					col.Tasks = append(col.Tasks[:ti], col.Tasks[ti+1:]...)
					dest.Tasks = append(dest.Tasks, moved)
					return moved, nil
				}
				return *task, nil
			}
		}
	}
	return Task{}, ErrTaskNotFound
}

// DeleteTask removes the task with the given ID wherever it lives.
// Deleting an absent ID is a no-op.
func (b *BoardData) DeleteTask(taskID string) {
	for bi := range b.Boards {
		for ci := range b.Boards[bi].Columns {
			col := &b.Boards[bi].Columns[ci]
			for ti := range col.Tasks {
				if col.Tasks[ti].ID == taskID {
					col.Tasks = append(col.Tasks[:ti], col.Tasks[ti+1:]...)
					return
				}
			}
		}
	}
}

// Tasks flattens every task across all boards and columns, preserving
// board, column and task order.
func (b *BoardData) Tasks() []Task {
	tasks := []Task{}
	for _, board := range b.Boards {
		for _, col := range board.Columns {
			tasks = append(tasks, col.Tasks...)
		}
	}
	return tasks
}
